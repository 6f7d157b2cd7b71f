package knnspace

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/space"
)

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	l.WithIndex("products").WithEngine(engine.Faiss).WithSpaceType(space.L2).
		LogResolve(context.Background(), "products", 2, nil)

	out := buf.String()
	assert.Contains(t, out, `"engine":"faiss"`)
	assert.Contains(t, out, `"space_type":"l2"`)
	assert.Contains(t, out, `"count":2`)
}

func TestLogger_Errors(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, nil))

	l.LogSearch(context.Background(), "products", 10, 0, errors.New("backend down"))
	l.LogSearch(context.Background(), "products", 10, 3, nil)

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "backend down")
	// Successful searches log at debug.
	assert.NotContains(t, out, "search completed")
}

func TestNoopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NoopLogger().LogResolve(context.Background(), "x", 1, errors.New("ignored"))
	})
}

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}
	m.RecordResolve(2*time.Millisecond, nil)
	m.RecordResolve(4*time.Millisecond, errors.New("boom"))
	m.RecordScore(5, time.Millisecond)
	m.RecordSearch(10, time.Millisecond, nil)
	m.RecordVersionFallback()

	s := m.GetStats()
	assert.Equal(t, int64(2), s.ResolveCount)
	assert.Equal(t, int64(1), s.ResolveErrors)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.ResolveAvgNanos)
	assert.Equal(t, int64(5), s.ScoredResults)
	assert.Equal(t, int64(1), s.SearchCount)
	assert.Equal(t, int64(1), s.VersionFallbacks)
}

func TestApplyOptions(t *testing.T) {
	o := applyOptions([]Option{nil, WithLogger(nil), WithMetricsCollector(nil), WithConcurrency(4)})
	assert.NotNil(t, o.logger)
	assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Equal(t, 4, o.concurrency)
	assert.False(t, o.localVersion.IsZero())
}
