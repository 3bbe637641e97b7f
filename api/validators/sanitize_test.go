package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "trims whitespace", input: "  Checking  ", maxLen: 120, want: "Checking"},
		{name: "under cap unchanged", input: "Brokerage", maxLen: 120, want: "Brokerage"},
		{name: "clips at cap", input: "abcdefgh", maxLen: 5, want: "abcde"},
		{name: "clips whole runes", input: "café latte", maxLen: 4, want: "café"},
		{name: "zero cap trims only", input: " anything goes ", maxLen: 0, want: "anything goes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeString(tt.input, tt.maxLen))
		})
	}
}
