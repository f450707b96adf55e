package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestApply_StartsProgress(t *testing.T) {
	p := ModuleProgress{UserID: "u1", ModuleID: "m1", LastAccessed: t0}

	got := Apply(p, ProgressPatch{
		Status:     StatusPtr(StatusInProgress),
		Percentage: IntPtr(40),
		At:         t0.Add(time.Minute),
	})

	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, 40, got.Percentage)
	assert.Equal(t, t0.Add(time.Minute), got.LastAccessed)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.QuizScore)
}

func TestApply_CompletesWithScore(t *testing.T) {
	p := ModuleProgress{Status: StatusInProgress, Percentage: 30, LastAccessed: t0}
	at := t0.Add(time.Hour)

	got := Apply(p, ProgressPatch{
		Status:    StatusPtr(StatusCompleted),
		QuizScore: IntPtr(88),
		At:        at,
	})

	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Percentage)
	require.NotNil(t, got.QuizScore)
	assert.Equal(t, 88, *got.QuizScore)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, at, *got.CompletedAt)
}

func TestApply_CompletedIsTerminal(t *testing.T) {
	done := t0.Add(time.Hour)
	score := 90
	p := ModuleProgress{
		Status:       StatusCompleted,
		Percentage:   100,
		QuizScore:    &score,
		LastAccessed: done,
		CompletedAt:  &done,
	}

	later := done.Add(time.Hour)
	got := Apply(p, ProgressPatch{
		Status:     StatusPtr(StatusNotStarted),
		Percentage: IntPtr(10),
		QuizScore:  IntPtr(10),
		At:         later,
	})

	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Percentage)
	assert.Equal(t, 90, *got.QuizScore)
	assert.Equal(t, done, *got.CompletedAt)
	assert.Equal(t, later, got.LastAccessed, "last_accessed still moves")
}

func TestApply_NeverRegresses(t *testing.T) {
	p := ModuleProgress{Status: StatusInProgress, Percentage: 60, LastAccessed: t0}

	got := Apply(p, ProgressPatch{
		Status:     StatusPtr(StatusNotStarted),
		Percentage: IntPtr(20),
		At:         t0.Add(-time.Hour),
	})

	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, 60, got.Percentage)
	assert.Equal(t, t0, got.LastAccessed, "older timestamps are ignored")
}

func TestApply_ScoreOnlyPersistedOnCompletion(t *testing.T) {
	p := ModuleProgress{Status: StatusInProgress, LastAccessed: t0}

	got := Apply(p, ProgressPatch{
		Status:    StatusPtr(StatusInProgress),
		QuizScore: IntPtr(40),
		At:        t0,
	})

	assert.Nil(t, got.QuizScore)
}

func TestApply_OrderIndependent(t *testing.T) {
	patches := []ProgressPatch{
		{Status: StatusPtr(StatusInProgress), Percentage: IntPtr(50), At: t0.Add(1 * time.Minute)},
		{Status: StatusPtr(StatusCompleted), At: t0.Add(2 * time.Minute)},
		{Percentage: IntPtr(80), At: t0.Add(3 * time.Minute)},
	}

	forward := ModuleProgress{LastAccessed: t0}
	for _, patch := range patches {
		forward = Apply(forward, patch)
	}
	backward := ModuleProgress{LastAccessed: t0}
	for i := len(patches) - 1; i >= 0; i-- {
		backward = Apply(backward, patches[i])
	}

	assert.Equal(t, forward.Status, backward.Status)
	assert.Equal(t, forward.Percentage, backward.Percentage)
	assert.Equal(t, forward.LastAccessed, backward.LastAccessed)
}

func TestApply_ClampsPercentage(t *testing.T) {
	got := Apply(ModuleProgress{}, ProgressPatch{Percentage: IntPtr(250)})
	assert.Equal(t, 100, got.Percentage)
}

func TestApply_AccumulatesTimeSpent(t *testing.T) {
	p := ModuleProgress{TimeSpentMinutes: 5}
	p = Apply(p, ProgressPatch{TimeSpentMinutes: 3})
	p = Apply(p, ProgressPatch{TimeSpentMinutes: -10})
	assert.Equal(t, 8, p.TimeSpentMinutes)
}

func TestStatus_Names(t *testing.T) {
	tests := []struct {
		status Status
		name   string
	}{
		{StatusNotStarted, "not_started"},
		{StatusInProgress, "in_progress"},
		{StatusCompleted, "completed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.status.String())
			parsed, err := ParseStatus(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.status, parsed)
		})
	}

	_, err := ParseStatus("finished")
	assert.Error(t, err)
}

func TestModuleProgress_JSON(t *testing.T) {
	p := ModuleProgress{
		ID:           "p1",
		UserID:       "u1",
		ModuleID:     "res-001",
		Status:       StatusInProgress,
		Percentage:   25,
		LastAccessed: t0,
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "p1",
		"user_id": "u1",
		"module_id": "res-001",
		"status": "in_progress",
		"percentage": 25,
		"time_spent_minutes": 0,
		"last_accessed": "2025-01-01T00:00:00Z"
	}`, string(data))
}
