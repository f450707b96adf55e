package engine

import "github.com/roach88/waypoint/internal/model"

// Interaction is a sealed interface over learner interaction results.
// Each variant corresponds to one model.Content variant.
type Interaction interface {
	interaction() // Sealed
	ContentType() model.ContentType
}

// ReadingResult reports how far a learner got through a reading.
type ReadingResult struct {
	ReachedEnd bool `json:"reached_end"`
}

func (ReadingResult) interaction() {}

// ContentType implements Interaction.
func (ReadingResult) ContentType() model.ContentType { return model.ContentReading }

// VideoResult reports how many seconds of a video were watched.
type VideoResult struct {
	WatchedSeconds int `json:"watched_seconds" validate:"gte=0"`
}

func (VideoResult) interaction() {}

// ContentType implements Interaction.
func (VideoResult) ContentType() model.ContentType { return model.ContentVideo }

// QuizResult is a full answer set: one option index per question, in
// question order.
type QuizResult struct {
	Answers []int `json:"answers" validate:"required,dive,gte=0"`
}

func (QuizResult) interaction() {}

// ContentType implements Interaction.
func (QuizResult) ContentType() model.ContentType { return model.ContentQuiz }

// InteractiveResult reports tool runs and whether the learner acknowledged
// the exercise.
type InteractiveResult struct {
	Runs         int  `json:"runs" validate:"gte=0"`
	Acknowledged bool `json:"acknowledged"`
}

func (InteractiveResult) interaction() {}

// ContentType implements Interaction.
func (InteractiveResult) ContentType() model.ContentType { return model.ContentInteractive }

// ProgressUpdate is a partial progress change requested by the boundary.
// Nil fields are left unchanged.
type ProgressUpdate struct {
	Status           *model.Status `json:"status,omitempty"`
	Percentage       *int          `json:"percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	TimeSpentMinutes int           `json:"time_spent_minutes" validate:"gte=0"`
}
