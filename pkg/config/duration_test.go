package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpariah/nh/pkg/config"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"0h", 0},
		{"30m", 30 * time.Minute},
		{"48h", 48 * time.Hour},
		{"1d", 24 * time.Hour},
		{"30d", 30 * 24 * time.Hour},
		{"2w", 14 * 24 * time.Hour},
		{"2w12h", 14*24*time.Hour + 12*time.Hour},
		{"1d6h30m", 30*time.Hour + 30*time.Minute},
	}

	for _, tt := range tests {
		got, err := config.ParseDuration(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10x", "d", "-5d"} {
		_, err := config.ParseDuration(in)
		assert.Error(t, err, "input %q", in)
	}
}
