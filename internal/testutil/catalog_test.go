package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogFixture(t *testing.T) {
	cat := Catalog(t)

	solar, err := cat.TrackByID(TrackSolar)
	require.NoError(t, err)
	assert.Equal(t, []string{"sol-1", "sol-2", "sol-3"}, solar.ModuleIDs)

	wind, err := cat.TrackBySlug("wind")
	require.NoError(t, err)
	assert.Equal(t, []string{"wind-1", "wind-2"}, wind.ModuleIDs)

	assert.Len(t, cat.Badges(), 6)
}
