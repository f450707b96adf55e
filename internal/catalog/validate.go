package catalog

import (
	"fmt"
	"strings"

	"github.com/roach88/waypoint/internal/model"
)

// Validation error codes (E200-E299)
const (
	// Identity errors (E200-E209)
	ErrDuplicateID  = "E201" // duplicate track, module or badge ID
	ErrMissingField = "E202" // required identifier or name is empty

	// Structure errors (E210-E219)
	ErrUnknownTrack        = "E210" // module references a track that does not exist
	ErrDuplicateSequence   = "E211" // two modules in a track share a sequence number
	ErrEmptyTrack          = "E212" // track has no modules
	ErrUnknownPrerequisite = "E213" // prerequisite module does not exist
	ErrPrerequisiteCycle   = "E214" // prerequisites form a cycle

	// Content errors (E220-E229)
	ErrInvalidContent = "E220" // content variant fields out of range
	ErrInvalidQuiz    = "E221" // quiz questions or passing score invalid

	// Badge errors (E230-E239)
	ErrInvalidCriteria = "E230" // criteria threshold invalid
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found while building a catalog.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("catalog has %d validation error(s):\n  %s", len(e), strings.Join(msgs, "\n  "))
}

// validate checks cross references over a partially built catalog. raw is
// the module list as given to New, so duplicates are still visible.
func validate(c *Catalog, raw []model.Module) ValidationErrors {
	var errs ValidationErrors
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	trackIDs := make(map[string]bool)
	trackSlugs := make(map[string]bool)
	for _, t := range c.tracks {
		field := "track." + t.Slug
		if t.ID == "" || t.Slug == "" || t.Name == "" {
			add(ErrMissingField, field, "track requires id, slug and name")
		}
		if trackIDs[t.ID] {
			add(ErrDuplicateID, field, "duplicate track id %q", t.ID)
		}
		if trackSlugs[t.Slug] {
			add(ErrDuplicateID, field, "duplicate track slug %q", t.Slug)
		}
		trackIDs[t.ID] = true
		trackSlugs[t.Slug] = true

		if len(t.ModuleIDs) == 0 {
			add(ErrEmptyTrack, field, "track has no modules")
		}
		seen := make(map[int]string)
		for _, m := range c.modulesByTrack[t.Slug] {
			if other, dup := seen[m.Sequence]; dup {
				add(ErrDuplicateSequence, field, "modules %s and %s share sequence %d", other, m.ID, m.Sequence)
			}
			seen[m.Sequence] = m.ID
		}
	}

	moduleIDs := make(map[string]bool)
	for _, m := range raw {
		field := "module." + m.ID
		if m.ID == "" || m.Title == "" {
			add(ErrMissingField, field, "module requires id and title")
		}
		if moduleIDs[m.ID] {
			add(ErrDuplicateID, field, "duplicate module id %q", m.ID)
		}
		moduleIDs[m.ID] = true

		if !trackSlugs[m.TrackSlug] {
			add(ErrUnknownTrack, field, "unknown track %q", m.TrackSlug)
		}
		for _, p := range m.Prerequisites {
			if _, ok := c.modules[p]; !ok {
				add(ErrUnknownPrerequisite, field, "unknown prerequisite %q", p)
			}
			if p == m.ID {
				add(ErrPrerequisiteCycle, field, "module lists itself as a prerequisite")
			}
		}
		errs = append(errs, validateContent(m)...)
	}

	for _, w := range AnalyzePrerequisites(c.modules) {
		add(ErrPrerequisiteCycle, "module."+w.Path[0], "%s", w.Message)
	}

	badgeIDs := make(map[string]bool)
	for _, b := range c.badges {
		field := "badge." + b.Slug
		if b.ID == "" || b.Slug == "" || b.Name == "" {
			add(ErrMissingField, field, "badge requires id, slug and name")
		}
		if badgeIDs[b.ID] {
			add(ErrDuplicateID, field, "duplicate badge id %q", b.ID)
		}
		badgeIDs[b.ID] = true
		if err := validateCriteria(b.Criteria); err != "" {
			add(ErrInvalidCriteria, field, "%s", err)
		}
	}

	return errs
}

// validateContent checks variant fields. The type switch is exhaustive.
func validateContent(m model.Module) []ValidationError {
	field := "module." + m.ID + ".content"
	invalid := func(code, msg string) []ValidationError {
		return []ValidationError{{Code: code, Field: field, Message: msg}}
	}

	switch c := m.Content.(type) {
	case model.Reading:
		if c.EstimatedReadMinutes < 0 {
			return invalid(ErrInvalidContent, "estimated_read_minutes must not be negative")
		}
	case model.Video:
		if c.DurationSeconds <= 0 {
			return invalid(ErrInvalidContent, "duration_seconds must be positive")
		}
	case model.Quiz:
		var errs []ValidationError
		if len(c.Questions) == 0 {
			errs = append(errs, invalid(ErrInvalidQuiz, "quiz has no questions")...)
		}
		if c.PassingScorePercent < 0 || c.PassingScorePercent > 100 {
			errs = append(errs, invalid(ErrInvalidQuiz, "passing_score_percent must be within 0..100")...)
		}
		for _, q := range c.Questions {
			if len(q.Options) < 2 {
				errs = append(errs, invalid(ErrInvalidQuiz, fmt.Sprintf("question %s needs at least two options", q.ID))...)
			}
			if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
				errs = append(errs, invalid(ErrInvalidQuiz, fmt.Sprintf("question %s correct_answer out of range", q.ID))...)
			}
		}
		return errs
	case model.Interactive:
		if c.Tool == "" {
			return invalid(ErrInvalidContent, "interactive tool is required")
		}
	case nil:
		return invalid(ErrInvalidContent, "content is required")
	default:
		return invalid(ErrInvalidContent, fmt.Sprintf("unsupported content type %T", c))
	}
	return nil
}

// validateCriteria returns a message describing why c is invalid, or "".
func validateCriteria(c model.Criteria) string {
	switch c := c.(type) {
	case model.ModuleComplete:
		if c.RequiredCount < 1 {
			return "module_complete requires required_count >= 1"
		}
	case model.WebinarAttend:
		if c.RequiredCount < 1 {
			return "webinar_attend requires required_count >= 1"
		}
	case model.StreakDays:
		if c.RequiredCount < 1 {
			return "streak_days requires required_count >= 1"
		}
	case model.CertificateComplete:
		if c.RequiredCount < 0 {
			return "certificate_complete required_count must not be negative"
		}
	case model.TourComplete:
	case nil:
		return "criteria is required"
	default:
		return fmt.Sprintf("unsupported criteria %T", c)
	}
	return ""
}
