package engine

import (
	"context"

	"github.com/roach88/waypoint/internal/model"
)

// ModuleUnlocked reports whether the user has completed a module's
// prerequisites, and lists the ones still missing.
//
// Declared prerequisites take precedence. A module without declared
// prerequisites depends on the previous module in its track; the first
// module is always unlocked.
func (e *Engine) ModuleUnlocked(ctx context.Context, userID, moduleID string) (bool, []string, error) {
	m, err := e.module(moduleID)
	if err != nil {
		return false, nil, err
	}
	missing, err := e.missingPrerequisites(ctx, userID, m)
	if err != nil {
		return false, nil, err
	}
	return len(missing) == 0, missing, nil
}

func (e *Engine) prerequisitesOf(m model.Module) ([]string, error) {
	if len(m.Prerequisites) > 0 {
		return m.Prerequisites, nil
	}
	prev, err := e.catalog.PreviousModule(m.ID)
	if err != nil {
		return nil, notFound(err)
	}
	if prev == nil {
		return nil, nil
	}
	return []string{prev.ID}, nil
}

func (e *Engine) missingPrerequisites(ctx context.Context, userID string, m model.Module) ([]string, error) {
	required, err := e.prerequisitesOf(m)
	if err != nil || len(required) == 0 {
		return nil, err
	}
	records, err := e.store.ListProgress(ctx, userID, required)
	if err != nil {
		return nil, persistence("list progress", err)
	}
	done := make(map[string]bool, len(records))
	for _, r := range records {
		if r.IsCompleted() {
			done[r.ModuleID] = true
		}
	}
	var missing []string
	for _, id := range required {
		if !done[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
