package logging_test

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/unixpariah/nh/pkg/logging"
)

func TestSetupVerbosityLevels(t *testing.T) {
	tests := []struct {
		verbosity int
		level     zerolog.Level
	}{
		{0, zerolog.WarnLevel},
		{1, zerolog.InfoLevel},
		{2, zerolog.DebugLevel},
		{3, zerolog.TraceLevel},
		{5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		logging.Setup(tt.verbosity)
		assert.Equal(t, tt.level, zerolog.GlobalLevel(), "verbosity %d", tt.verbosity)
	}
}

func TestGetLogger(t *testing.T) {
	logger := logging.GetLogger("retention")
	// Component loggers must be usable without further setup.
	logger.Debug().Msg("probe")
}

func TestLogFilePath(t *testing.T) {
	path := logging.LogFilePath()
	assert.True(t, strings.HasSuffix(path, "nh/nh.log"), "got %q", path)
}
