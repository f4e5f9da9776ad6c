package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := New(env)
		require.NoError(t, err, env)
		assert.NotNil(t, log)
	}
}

func TestRequestID(t *testing.T) {
	assert.Equal(t, "unknown", RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))

	core, logs := observer.New(zap.InfoLevel)
	For(ctx, zap.New(core)).Info("hello")
	require.Len(t, logs.All(), 1)
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}
