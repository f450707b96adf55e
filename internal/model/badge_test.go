package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTier_Ordering(t *testing.T) {
	assert.Less(t, TierBronze, TierSilver)
	assert.Less(t, TierSilver, TierGold)
	assert.Less(t, TierGold, TierPlatinum)
}

func TestTier_Text(t *testing.T) {
	for _, name := range []string{"bronze", "silver", "gold", "platinum"} {
		tier, err := ParseTier(name)
		require.NoError(t, err)
		assert.Equal(t, name, tier.String())
	}

	assert.Equal(t, "Platinum", TierPlatinum.Title())

	_, err := ParseTier("diamond")
	assert.Error(t, err)

	_, err = Tier(0).MarshalText()
	assert.Error(t, err)
}

func TestNewCriteria(t *testing.T) {
	tests := []struct {
		typ      CriteriaType
		count    int
		want     Criteria
		required int
	}{
		{CriteriaModuleComplete, 3, ModuleComplete{RequiredCount: 3}, 3},
		{CriteriaTourComplete, 0, TourComplete{}, 1},
		{CriteriaCertificateComplete, 0, CertificateComplete{}, 1},
		{CriteriaCertificateComplete, 3, CertificateComplete{RequiredCount: 3}, 3},
		{CriteriaWebinarAttend, 5, WebinarAttend{RequiredCount: 5}, 5},
		{CriteriaStreakDays, 7, StreakDays{RequiredCount: 7}, 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			got, err := NewCriteria(tt.typ, tt.count)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.typ, got.Type())
			assert.Equal(t, tt.required, got.Required())
		})
	}

	_, err := NewCriteria("quiz_perfect", 1)
	assert.Error(t, err)
}

func TestBadge_JSON(t *testing.T) {
	b := Badge{
		ID:       "badge-certified",
		Slug:     "certified",
		Name:     "Certified",
		Tier:     TierGold,
		Points:   100,
		Criteria: CertificateComplete{},
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "badge-certified",
		"slug": "certified",
		"name": "Certified",
		"tier": "gold",
		"points": 100,
		"criteria_type": "certificate_complete",
		"required_count": 1
	}`, string(data))
}

func TestModule_JSON(t *testing.T) {
	m := Module{
		ID:        "res-002",
		TrackID:   "track-residential",
		TrackSlug: "residential-energy",
		Title:     "Heat Pumps",
		Sequence:  2,
		Content:   Video{DurationSeconds: 1200},
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "res-002",
		"track_id": "track-residential",
		"track_slug": "residential-energy",
		"title": "Heat Pumps",
		"sequence": 2,
		"content_type": "video",
		"content": {"duration_seconds": 1200}
	}`, string(data))
}
