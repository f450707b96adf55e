package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/waypoint/internal/model"
)

func TestTrackProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	summary, err := env.engine.TrackProgress(ctx, "u1", "solar")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CompletedCount)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Len(t, summary.Modules, 3)
	assert.Empty(t, summary.Progress, "summaries never create records")

	env.complete(t, "u1", "sol-1", nil)
	env.complete(t, "u1", "sol-2", nil)
	_, err = env.engine.OpenModule(ctx, "u1", "sol-3")
	require.NoError(t, err)

	summary, err = env.engine.TrackProgress(ctx, "u1", "solar")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.CompletedCount)
	assert.Equal(t, 66, summary.Percentage)
	assert.Len(t, summary.Progress, 3)
	assert.Nil(t, summary.Certificate)

	env.complete(t, "u1", "sol-3", model.IntPtr(100))
	summary, err = env.engine.TrackProgress(ctx, "u1", "solar")
	require.NoError(t, err)
	assert.Equal(t, 100, summary.Percentage)
	require.NotNil(t, summary.Certificate)
}

func TestTrackProgress_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.TrackProgress(context.Background(), "u1", "geothermal")
	assert.True(t, IsNotFound(err))
}

func TestAllTrackProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.complete(t, "u1", "wind-1", nil)

	all, err := env.engine.AllTrackProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "solar", all[0].Track.Slug)
	assert.Equal(t, 0, all[0].CompletedCount)
	assert.Equal(t, "wind", all[1].Track.Slug)
	assert.Equal(t, 50, all[1].Percentage)
}
