package model

import "encoding/json"

// Track is an ordered collection of modules that can be completed for a
// certificate.
type Track struct {
	ID           string   `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	ModuleIDs    []string `json:"module_ids"`    // Ordered by module sequence
	RequiredTier string   `json:"required_tier"` // Opaque to the engine
}

// Module is a single unit of learning inside a track.
type Module struct {
	ID              string   `json:"id"`
	TrackID         string   `json:"track_id"`
	TrackSlug       string   `json:"track_slug"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Sequence        int      `json:"sequence"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Content         Content  `json:"-"`
	Prerequisites   []string `json:"prerequisites,omitempty"`
}

// ContentType names a Content variant.
type ContentType string

const (
	ContentReading     ContentType = "reading"
	ContentVideo       ContentType = "video"
	ContentQuiz        ContentType = "quiz"
	ContentInteractive ContentType = "interactive"
)

// Content is a sealed interface over the module content variants.
// Only Reading, Video, Quiz and Interactive implement it.
type Content interface {
	content() // Sealed
	Type() ContentType
}

// Reading is text content completed by reaching its end.
type Reading struct {
	EstimatedReadMinutes int `json:"estimated_read_minutes"`
}

func (Reading) content() {}

// Type implements Content.
func (Reading) Type() ContentType { return ContentReading }

// Video is content completed by watching a large enough fraction of it.
type Video struct {
	DurationSeconds int `json:"duration_seconds"`
}

func (Video) content() {}

// Type implements Content.
func (Video) Type() ContentType { return ContentVideo }

// Quiz is a scored question set with a passing threshold.
type Quiz struct {
	Questions           []Question `json:"questions"`
	PassingScorePercent int        `json:"passing_score_percent"`
}

func (Quiz) content() {}

// Type implements Content.
func (Quiz) Type() ContentType { return ContentQuiz }

// Question is a single multiple-choice quiz question.
// CorrectAnswer indexes into Options.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Interactive is a tool the learner runs and then acknowledges.
type Interactive struct {
	Tool string `json:"tool"`
}

func (Interactive) content() {}

// Type implements Content.
func (Interactive) Type() ContentType { return ContentInteractive }

// ContentTypeOf returns the content type of a module, or "" when the module
// has no content attached.
func ContentTypeOf(m Module) ContentType {
	if m.Content == nil {
		return ""
	}
	return m.Content.Type()
}

// MarshalJSON renders a module with its content type and content fields
// under "content".
func (m Module) MarshalJSON() ([]byte, error) {
	type plain Module
	return json.Marshal(struct {
		plain
		ContentType ContentType `json:"content_type"`
		Content     Content     `json:"content,omitempty"`
	}{plain(m), ContentTypeOf(m), m.Content})
}
