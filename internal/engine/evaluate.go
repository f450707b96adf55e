package engine

import (
	"fmt"
	"math"

	"github.com/roach88/waypoint/internal/model"
)

// VideoCompletionThreshold is the watched fraction at which a video counts
// as completed.
const VideoCompletionThreshold = 0.8

// Evaluation is the outcome of evaluating one interaction.
type Evaluation struct {
	// Completed reports whether the module's completion predicate holds.
	Completed bool `json:"completed"`

	// Percentage is the progress the interaction demonstrates, 0-100.
	Percentage int `json:"percentage"`

	// QuizScore is set for quiz interactions, passing or not. Only a
	// passing score is ever persisted.
	QuizScore *int `json:"quiz_score,omitempty"`
}

// Evaluate decides whether an interaction satisfies a module's completion
// predicate. It is pure: nothing is read from or written to a store.
//
// A malformed interaction (wrong variant for the module, wrong answer count,
// answer index out of range, negative watch time) returns a VALIDATION error.
func Evaluate(m model.Module, in Interaction) (Evaluation, error) {
	if in == nil {
		return Evaluation{}, validationf("module %s: missing interaction", m.ID)
	}
	if m.Content == nil {
		return Evaluation{}, validationf("module %s has no content", m.ID)
	}
	if got, want := in.ContentType(), m.Content.Type(); got != want {
		return Evaluation{}, validationf("module %s expects a %s interaction, got %s", m.ID, want, got)
	}
	if err := payloads.check(string(in.ContentType())+" interaction", in); err != nil {
		return Evaluation{}, err
	}

	switch c := m.Content.(type) {
	case model.Reading:
		r := in.(ReadingResult)
		if r.ReachedEnd {
			return Evaluation{Completed: true, Percentage: 100}, nil
		}
		return Evaluation{}, nil

	case model.Video:
		return evaluateVideo(m, c, in.(VideoResult))

	case model.Quiz:
		return evaluateQuiz(m, c, in.(QuizResult))

	case model.Interactive:
		r := in.(InteractiveResult)
		if r.Acknowledged && r.Runs > 0 {
			return Evaluation{Completed: true, Percentage: 100}, nil
		}
		return Evaluation{}, nil

	default:
		return Evaluation{}, fmt.Errorf("evaluate: unknown content type %T", m.Content)
	}
}

func evaluateVideo(m model.Module, c model.Video, r VideoResult) (Evaluation, error) {
	if c.DurationSeconds <= 0 {
		return Evaluation{}, validationf("module %s: video has no duration", m.ID)
	}
	fraction := float64(r.WatchedSeconds) / float64(c.DurationSeconds)
	return Evaluation{
		Completed:  fraction >= VideoCompletionThreshold,
		Percentage: int(math.Floor(math.Min(100, fraction*100))),
	}, nil
}

func evaluateQuiz(m model.Module, c model.Quiz, r QuizResult) (Evaluation, error) {
	if len(r.Answers) != len(c.Questions) {
		return Evaluation{}, validationf("module %s: expected %d answers, got %d",
			m.ID, len(c.Questions), len(r.Answers))
	}

	correct := 0
	for i, q := range c.Questions {
		answer := r.Answers[i]
		if answer >= len(q.Options) {
			return Evaluation{}, &Error{
				Code:    ErrCodeValidation,
				Message: fmt.Sprintf("module %s: answer out of range", m.ID),
				Details: map[string]string{
					fmt.Sprintf("answers[%d]", i): fmt.Sprintf("question %s has %d options", q.ID, len(q.Options)),
				},
			}
		}
		if answer == q.CorrectAnswer {
			correct++
		}
	}

	score := QuizScore(correct, len(c.Questions))
	eval := Evaluation{QuizScore: &score}
	if score >= c.PassingScorePercent {
		eval.Completed = true
		eval.Percentage = 100
	}
	return eval, nil
}

// QuizScore returns round(100 * correct / total), or 0 for an empty quiz.
func QuizScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
