package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := FromContext(context.Background())
	assert.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestWithRequestIDAndUserID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-1")
	ctx, _ = WithUserID(ctx, FromContext(ctx), "user-9")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-9", GetUserID(ctx))
	assert.Empty(t, GetTraceID(ctx))

	L(ctx).Info("hello")

	entries := recorded.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "user-9", fields["user_id"])
	}
}

func TestForContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	fallback := zap.New(core)

	ForContext(context.Background(), fallback).Info("from fallback")

	reqCore, reqRecorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(reqCore))
	ForContext(ctx, fallback).Info("from request")

	assert.Equal(t, 1, recorded.Len())
	assert.Equal(t, 1, reqRecorded.Len())
	assert.Equal(t, "from request", reqRecorded.All()[0].Message)
}
