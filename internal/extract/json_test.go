package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain object", `{"productType":"mug"}`, `{"productType":"mug"}`},
		{"think tags", "<think>\nthe user wants mugs\n</think>\n{\"productType\":\"mug\"}", `{"productType":"mug"}`},
		{"markdown fence", "```json\n{\"productType\":\"mug\"}\n```", `{"productType":"mug"}`},
		{"braces in strings", `Sure: {"productType":"mug {large}","color":null} hope that helps`, `{"productType":"mug {large}","color":null}`},
		{"nested", `{"items":[{"productType":"mug"}],"globalUrgent":false}`, `{"items":[{"productType":"mug"}],"globalUrgent":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONInvalid(t *testing.T) {
	for _, response := range []string{"", "no json here", `{"productType": `} {
		_, err := ExtractJSON(response)
		assert.ErrorIs(t, err, ErrInvalidOutput, response)
	}
}
