package redis

import (
	"context"
	"testing"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/logger"
	"github.com/stretchr/testify/assert"
)

func validOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "127.0.0.1:1",
		DialTimeout:    50 * time.Millisecond,
		ConnectTimeout: 300 * time.Millisecond,
		RetryInterval:  20 * time.Millisecond,
		MaxWait:        50 * time.Millisecond,
		PingTimeout:    50 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestConnectRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConnectOptions)
	}{
		{"empty addr", func(o *ConnectOptions) { o.Addr = "" }},
		{"no connect timeout", func(o *ConnectOptions) { o.ConnectTimeout = 0 }},
		{"no retry interval", func(o *ConnectOptions) { o.RetryInterval = 0 }},
		{"no max wait", func(o *ConnectOptions) { o.MaxWait = 0 }},
		{"no ping timeout", func(o *ConnectOptions) { o.PingTimeout = 0 }},
		{"negative warn threshold", func(o *ConnectOptions) { o.WarnThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)
			_, err := Connect(context.Background(), opts, logger.Nop())
			assert.Error(t, err)
		})
	}
}

func TestConnectGivesUp(t *testing.T) {
	start := time.Now()
	client, err := Connect(context.Background(), validOptions(), logger.Nop())

	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestConnectHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := validOptions()
	opts.ConnectTimeout = time.Minute
	_, err := Connect(ctx, opts, logger.Nop())
	assert.Error(t, err)
}
