package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContext(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithContext(context.Background(), logger)

	retrieved := FromContext(ctx)
	assert.Same(t, logger, retrieved)
}

func TestFromContext_NotFound(t *testing.T) {
	retrieved := FromContext(context.Background())
	require.NotNil(t, retrieved, "missing logger must degrade to a no-op, not nil")
}

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	newCtx, newLogger := WithRequestID(ctx, logger, "req-123")

	assert.NotNil(t, newLogger)
	assert.Equal(t, "req-123", GetRequestID(newCtx))
	assert.Empty(t, GetRequestID(ctx), "original context must be untouched")
}

func TestWithUserID(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	newCtx, _ := WithUserID(ctx, logger, "user-456")
	assert.Equal(t, "user-456", GetUserID(newCtx))
}

func TestContextLogger_InjectsContextFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, base, "req-abc")
	ctx = context.WithValue(ctx, UserIDKey, "user-def")

	L(ctx).Info("credits deducted", zap.Int64("amount", 10))

	entries := observed.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-abc", fields["request_id"])
	assert.Equal(t, "user-def", fields["user_id"])
	assert.Equal(t, int64(10), fields["amount"])
}

func TestContextLogger_WithLogger(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithLogger(context.Background(), base).Warn("voucher exhausted")

	entries := observed.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "voucher exhausted", entries[0].Message)
}

func TestContextLogger_NilLoggerDegradesToNop(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("should not panic")
	})
}
