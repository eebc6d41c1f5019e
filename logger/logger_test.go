package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-engine/logger"
)

func TestNew_Enabled(t *testing.T) {
	log := logger.New()
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestNewWithWriter_WritesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewWithWriter(buf)

	log.Info().Str("budget_id", "b-1").Msg("variance computed")

	assert.Contains(t, buf.String(), `"message":"variance computed"`)
	assert.Contains(t, buf.String(), `"budget_id":"b-1"`)
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf))

	fromCtx := logger.FromContext(ctx)
	fromCtx.Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := logger.FromContext(context.Background())
	assert.NotEqual(t, zerolog.Disabled, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.WithFields(logger.NewWithWriter(buf), map[string]any{"user_id": "u1"})

	log.Info().Msg("scoped")

	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := logger.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = logger.ParseLevel(" DEBUG ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, err = logger.ParseLevel("chatty")
	assert.Error(t, err)
}
