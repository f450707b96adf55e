package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleUnlocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		module  string
		missing []string
	}{
		{"sol-1", nil},
		{"sol-2", []string{"sol-1"}},
		{"wind-1", nil},
		// Declared prerequisites replace the previous-module rule.
		{"wind-2", []string{"sol-1"}},
	}
	for _, tt := range tests {
		unlocked, missing, err := env.engine.ModuleUnlocked(ctx, "u1", tt.module)
		require.NoError(t, err)
		assert.Equal(t, len(tt.missing) == 0, unlocked, tt.module)
		assert.Equal(t, tt.missing, missing, tt.module)
	}

	env.complete(t, "u1", "sol-1", nil)

	unlocked, _, err := env.engine.ModuleUnlocked(ctx, "u1", "wind-2")
	require.NoError(t, err)
	assert.True(t, unlocked)

	_, _, err = env.engine.ModuleUnlocked(ctx, "u1", "missing")
	assert.True(t, IsNotFound(err))
}

func TestPrerequisites_AdvisoryDoesNotBlock(t *testing.T) {
	env := newTestEnv(t)

	res := env.complete(t, "u1", "wind-2", nil)
	assert.True(t, res.Completed())
}

func TestPrerequisites_Enforced(t *testing.T) {
	env := newTestEnv(t, WithPrerequisitePolicy(PrerequisitesEnforced))
	ctx := context.Background()

	_, err := env.engine.CompleteModule(ctx, "u1", "wind-2", nil)
	require.Error(t, err)
	assert.True(t, IsPrerequisites(err))

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "sol-1", e.Details["missing"])
	assert.False(t, e.Retryable())

	env.complete(t, "u1", "sol-1", nil)
	res := env.complete(t, "u1", "wind-2", nil)
	assert.True(t, res.Completed())
}

func TestPrerequisitePolicy_String(t *testing.T) {
	assert.Equal(t, "advisory", PrerequisitesAdvisory.String())
	assert.Equal(t, "enforced", PrerequisitesEnforced.String())
}
