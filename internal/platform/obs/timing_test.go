package obs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTimeLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)
	ctx := WithRequestID(context.Background(), "abc-123")

	func() (err error) {
		defer Time(ctx, logger, "route.cache.GetMany")(&err)
		return nil
	}()
	func() (err error) {
		defer Time(ctx, logger, "route.cache.PutMany")(&err)
		return errors.New("disk full")
	}()

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "route.cache.GetMany", entries[0].ContextMap()["op"])
	assert.Equal(t, "abc-123", entries[0].ContextMap()["req_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "disk full", entries[1].ContextMap()["error"])
}

func TestTimeNilLogger(t *testing.T) {
	var err error
	assert.NotPanics(t, func() { Time(context.Background(), nil, "op")(&err) })
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := NewLogger(env, "mandi-profit-service")
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
}
