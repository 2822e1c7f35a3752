package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFile(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "service.log")
	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	l := WithComponent("store")
	l.Info().Msg("ready")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"component":"store"`)
	assert.Contains(t, string(raw), `"message":"ready"`)
}

func TestSetup_BadLevel(t *testing.T) {
	assert.Error(t, Setup(LogConfig{Level: "loud"}))
}

func TestWithContext_FallsBackToGlobal(t *testing.T) {
	assert.Equal(t, &log.Logger, WithContext(context.Background()))

	l := zerolog.New(os.Stderr).With().Str("request_id", "r1").Logger()
	ctx := l.WithContext(context.Background())
	assert.NotEqual(t, &log.Logger, WithContext(ctx))
}
