package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMemoryLimit_Units(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1024", 1024},
		{"512B", 512},
		{"4KB", 4 << 10},
		{"16MB", 16 << 20},
		{"8GB", 8 << 30},
		{"1TB", 1 << 40},
		{"8gb", 8 << 30},
		{" 2 GB ", 2 << 30},
		{"1.5GB", 1610612736},
	}

	for _, tt := range tests {
		got, err := ParseMemoryLimit(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseMemoryLimit_Invalid(t *testing.T) {
	for _, in := range []string{"", "GB", "lots", "-1GB", "0"} {
		_, err := ParseMemoryLimit(in)
		assert.Error(t, err, "input %q", in)
	}
}
