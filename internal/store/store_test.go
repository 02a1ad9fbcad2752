package store

import (
	"context"
	"path/filepath"
	"testing"

	"collapse-mapper/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := NewRun(32, 3, 16, true, "pre/post pair over test site")
	require.NotEmpty(t, run.ID)
	require.NoError(t, s.SaveRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, 32, got.TileSize)
	assert.Equal(t, 16, got.SampleCount)
	assert.True(t, got.MultiTemporal)
	assert.Equal(t, run.Notes, got.Notes)
}

func TestGetMissingRun(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSaveAndLoadMetrics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := NewRun(32, 1, 4, false, "")
	require.NoError(t, s.SaveRun(ctx, run))

	history := []model.EpochMetric{
		{Epoch: 1, Loss: 0.9, Accuracy: 0.55, ValLoss: 0.95, ValAccuracy: 0.5},
		{Epoch: 2, Loss: 0.6, Accuracy: 0.7, ValLoss: 0.7, ValAccuracy: 0.65},
	}
	require.NoError(t, s.SaveMetrics(ctx, run.ID, history))

	got, err := s.Metrics(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, history, got)
}

func TestMetricsEmptyForUnknownRun(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Metrics(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewRunsHaveDistinctIDs(t *testing.T) {
	a := NewRun(32, 3, 1, false, "")
	b := NewRun(32, 3, 1, false, "")
	assert.NotEqual(t, a.ID, b.ID)
}
