package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.10:4321", nil, false, "192.0.2.10"},
		{"headers ignored without trust", "192.0.2.10:4321", map[string]string{"X-Forwarded-For": "203.0.113.5"}, false, "192.0.2.10"},
		{"cloudflare first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "198.51.100.7", "X-Forwarded-For": "203.0.113.5"}, true, "198.51.100.7"},
		{"left-most forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, true, "203.0.113.5"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "203.0.113.9"}, true, "203.0.113.9"},
		{"ipv6 remote", "[::1]:8080", nil, false, "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r, tt.trustProxy))
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.1 ", "garbage", "", "::1"})
	assert.Equal(t, 3, m.Len())
	assert.False(t, m.IsEmpty())

	assert.True(t, m.Allow("10.20.30.40"))
	assert.True(t, m.Allow("192.0.2.1"))
	assert.True(t, m.Allow("::1"))
	assert.True(t, m.Allow("::ffff:10.1.1.1"))
	assert.False(t, m.Allow("192.0.2.2"))
	assert.False(t, m.Allow("not-an-ip"))

	assert.True(t, NewIPMatcher(nil).IsEmpty())
}
