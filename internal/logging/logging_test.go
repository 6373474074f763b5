package logging_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/ttb-portal/internal/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logging.Setup(tt.level, &buf)
			require.Equal(t, tt.expected, zerolog.GlobalLevel())

			log.WithLevel(tt.expected).Msg("hello")
			require.Contains(t, buf.String(), "hello")
		})
	}
}
