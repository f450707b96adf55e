package engine

import (
	"context"

	"github.com/roach88/waypoint/internal/model"
)

// CompletionResult is the outcome of CompleteModule and RecordInteraction.
type CompletionResult struct {
	// Progress is the stored record after the call.
	Progress model.ModuleProgress `json:"progress"`

	// Evaluation is set when the result came from RecordInteraction.
	Evaluation *Evaluation `json:"evaluation,omitempty"`

	// Certificate is the user's certificate for the module's track, when
	// the track is complete. It is the same row on every call.
	Certificate *model.Certificate `json:"certificate,omitempty"`

	// BadgeAwarded is the first badge newly earned by this call.
	BadgeAwarded *model.Badge `json:"badge_awarded,omitempty"`

	// Badges lists every badge newly earned by this call.
	Badges []model.Badge `json:"badges,omitempty"`
}

// Completed reports whether the module is completed after the call.
func (r CompletionResult) Completed() bool {
	return r.Progress.IsCompleted()
}

func (e *Engine) module(moduleID string) (model.Module, error) {
	m, err := e.catalog.ModuleByID(moduleID)
	if err != nil {
		return model.Module{}, notFound(err)
	}
	return m, nil
}

// GetModuleProgress returns the user's progress on a module, creating a
// NotStarted record on first access.
func (e *Engine) GetModuleProgress(ctx context.Context, userID, moduleID string) (model.ModuleProgress, error) {
	if _, err := e.module(moduleID); err != nil {
		return model.ModuleProgress{}, err
	}
	p, err := e.store.GetOrCreateProgress(ctx, userID, moduleID, e.now())
	if err != nil {
		return model.ModuleProgress{}, persistence("get module progress", err)
	}
	return p, nil
}

// OpenModule records that the user opened a module: the record moves to
// InProgress (if not already further) and last_accessed is touched.
func (e *Engine) OpenModule(ctx context.Context, userID, moduleID string) (model.ModuleProgress, error) {
	if _, err := e.module(moduleID); err != nil {
		return model.ModuleProgress{}, err
	}
	p, err := e.store.UpdateProgress(ctx, userID, moduleID, model.ProgressPatch{
		Status: model.StatusPtr(model.StatusInProgress),
		At:     e.now(),
	})
	if err != nil {
		return model.ModuleProgress{}, persistence("open module", err)
	}
	return p, nil
}

// UpdateModuleProgress applies a partial update. Requesting the Completed
// status is the same as calling CompleteModule without a quiz score.
func (e *Engine) UpdateModuleProgress(ctx context.Context, userID, moduleID string, update ProgressUpdate) (model.ModuleProgress, error) {
	if _, err := e.module(moduleID); err != nil {
		return model.ModuleProgress{}, err
	}
	if err := payloads.check("progress update", update); err != nil {
		return model.ModuleProgress{}, err
	}
	if update.Status != nil && *update.Status == model.StatusCompleted {
		res, err := e.CompleteModule(ctx, userID, moduleID, nil)
		if err != nil {
			return model.ModuleProgress{}, err
		}
		return res.Progress, nil
	}

	p, err := e.store.UpdateProgress(ctx, userID, moduleID, model.ProgressPatch{
		Status:           update.Status,
		Percentage:       update.Percentage,
		TimeSpentMinutes: update.TimeSpentMinutes,
		At:               e.now(),
	})
	if err != nil {
		return model.ModuleProgress{}, persistence("update module progress", err)
	}
	return p, nil
}

// RecordInteraction evaluates an interaction and applies its effect.
// A completing interaction is handed to CompleteModule; otherwise the
// record moves to InProgress and its percentage may rise.
func (e *Engine) RecordInteraction(ctx context.Context, userID, moduleID string, in Interaction) (CompletionResult, error) {
	m, err := e.module(moduleID)
	if err != nil {
		return CompletionResult{}, err
	}
	eval, err := Evaluate(m, in)
	if err != nil {
		return CompletionResult{}, err
	}

	if eval.Completed {
		res, err := e.CompleteModule(ctx, userID, moduleID, eval.QuizScore)
		if err != nil {
			return CompletionResult{}, err
		}
		res.Evaluation = &eval
		return res, nil
	}

	p, err := e.store.UpdateProgress(ctx, userID, moduleID, model.ProgressPatch{
		Status:     model.StatusPtr(model.StatusInProgress),
		Percentage: &eval.Percentage,
		At:         e.now(),
	})
	if err != nil {
		return CompletionResult{}, persistence("record interaction", err)
	}
	return CompletionResult{Progress: p, Evaluation: &eval}, nil
}

// CompleteModule marks a module completed and runs the follow-on effects:
// badge evaluation, certificate issuance for a finished track, and
// certificate badge evaluation.
//
// Quiz modules require a score in [0, 100]. A score below the passing
// threshold leaves the module InProgress and is not persisted. A score on a
// non-quiz module is a VALIDATION error.
func (e *Engine) CompleteModule(ctx context.Context, userID, moduleID string, quizScore *int) (CompletionResult, error) {
	m, err := e.module(moduleID)
	if err != nil {
		return CompletionResult{}, err
	}
	if verr := checkQuizScore(m, quizScore); verr != nil {
		return CompletionResult{}, verr
	}
	if e.policy == PrerequisitesEnforced {
		missing, err := e.missingPrerequisites(ctx, userID, m)
		if err != nil {
			return CompletionResult{}, err
		}
		if len(missing) > 0 {
			return CompletionResult{}, prerequisitesUnmet(m.ID, missing)
		}
	}

	now := e.now()
	if quiz, ok := m.Content.(model.Quiz); ok && *quizScore < quiz.PassingScorePercent {
		p, err := e.store.UpdateProgress(ctx, userID, moduleID, model.ProgressPatch{
			Status: model.StatusPtr(model.StatusInProgress),
			At:     now,
		})
		if err != nil {
			return CompletionResult{}, persistence("complete module", err)
		}
		e.logger.Debug("quiz below passing",
			"user", userID, "module", moduleID, "score", *quizScore, "passing", quiz.PassingScorePercent)
		return CompletionResult{Progress: p}, nil
	}

	p, err := e.store.UpdateProgress(ctx, userID, moduleID, model.ProgressPatch{
		Status:    model.StatusPtr(model.StatusCompleted),
		QuizScore: quizScore,
		At:        now,
	})
	if err != nil {
		return CompletionResult{}, persistence("complete module", err)
	}
	res := CompletionResult{Progress: p}

	awarded, err := e.awardBadges(ctx, userID, Event{Type: EventModuleComplete, ModuleID: moduleID})
	if err != nil {
		return CompletionResult{}, err
	}
	res.Badges = append(res.Badges, awarded...)

	track, err := e.catalog.TrackByID(m.TrackID)
	if err != nil {
		return CompletionResult{}, notFound(err)
	}
	cert, err := e.IssueCertificateIfEligible(ctx, userID, track)
	if err != nil {
		return CompletionResult{}, err
	}
	if cert != nil {
		res.Certificate = cert
		awarded, err := e.awardBadges(ctx, userID, Event{Type: EventCertificateComplete, TrackID: track.ID})
		if err != nil {
			return CompletionResult{}, err
		}
		res.Badges = append(res.Badges, awarded...)
	}

	if len(res.Badges) > 0 {
		res.BadgeAwarded = &res.Badges[0]
	}
	return res, nil
}

func checkQuizScore(m model.Module, score *int) *Error {
	_, isQuiz := m.Content.(model.Quiz)
	switch {
	case isQuiz && score == nil:
		return validationf("module %s is a quiz and requires a score", m.ID)
	case !isQuiz && score != nil:
		return validationf("module %s is not a quiz; quiz score not accepted", m.ID)
	case score != nil && (*score < 0 || *score > 100):
		return &Error{
			Code:    ErrCodeValidation,
			Message: "quiz score out of range",
			Details: map[string]string{"quiz_score": "must be between 0 and 100"},
		}
	}
	return nil
}
