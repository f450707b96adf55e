package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a progression test scenario: a catalog, a sequence of
// learner actions with expected outcomes, and assertions on final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the CUE catalog directory.
	// Relative paths are resolved against the scenario file location.
	Catalog string `yaml:"catalog"`

	// StartTime is the RFC 3339 time the scenario clock starts at.
	// Defaults to testutil.DefaultStart.
	StartTime string `yaml:"start_time,omitempty"`

	// Prerequisites selects the engine policy: "advisory" (default) or
	// "enforced".
	Prerequisites string `yaml:"prerequisites,omitempty"`

	// Steps run in order. Each step names exactly one action.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one learner action. Exactly one of Complete, Interact, Open or
// Event is set.
type Step struct {
	Complete string `yaml:"complete,omitempty"` // Module ID
	Interact string `yaml:"interact,omitempty"` // Module ID
	Open     string `yaml:"open,omitempty"`     // Module ID
	Event    string `yaml:"event,omitempty"`    // Event type

	User string `yaml:"user"`

	// QuizScore is passed to complete steps on quiz modules.
	QuizScore *int `yaml:"quiz_score,omitempty"`

	// Interaction payload for interact steps. Only the fields matching the
	// module's content type are used.
	ReachedEnd     bool  `yaml:"reached_end,omitempty"`
	WatchedSeconds int   `yaml:"watched_seconds,omitempty"`
	Answers        []int `yaml:"answers,omitempty"`
	Runs           int   `yaml:"runs,omitempty"`
	Acknowledged   bool  `yaml:"acknowledged,omitempty"`

	// Count is carried by event steps (webinar_attend, login).
	Count int `yaml:"count,omitempty"`

	// Advance moves the clock forward (Go duration) before the step runs.
	Advance string `yaml:"advance,omitempty"`

	// Repeat runs the step sequentially this many times (default 1).
	Repeat int `yaml:"repeat,omitempty"`

	// Concurrent runs the step this many times in parallel.
	Concurrent int `yaml:"concurrent,omitempty"`

	// Expect is checked against the step's outcome. For repeated or
	// concurrent steps the outcome is aggregated over all calls.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Status is the module's progress status after the step.
	Status string `yaml:"status,omitempty"`

	// Certificate reports whether the step returned a certificate.
	Certificate *bool `yaml:"certificate,omitempty"`

	// Badges lists every badge newly earned by the step, by ID. An empty
	// list asserts that none were earned.
	Badges *[]string `yaml:"badges,omitempty"`

	// QuizScore is the evaluated quiz score of an interact step.
	QuizScore *int `yaml:"quiz_score,omitempty"`

	// Error is the expected engine error code, e.g. "VALIDATION".
	Error string `yaml:"error,omitempty"`
}

// Assertion validates final store state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "certificate_count": certificates held by User (optionally for Track)
	// - "badge_count": badges held by User (optionally only Badge)
	// - "progress_status": status of User's progress on Module
	// - "completed_count": lifetime completed modules for User
	Type string `yaml:"type"`

	User   string `yaml:"user"`
	Track  string `yaml:"track,omitempty"`
	Badge  string `yaml:"badge,omitempty"`
	Module string `yaml:"module,omitempty"`
	Status string `yaml:"status,omitempty"`
	Count  *int   `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCertificateCount = "certificate_count"
	AssertBadgeCount       = "badge_count"
	AssertProgressStatus   = "progress_status"
	AssertCompletedCount   = "completed_count"
)

// Step action names, as recorded in the trace.
const (
	ActionComplete = "complete"
	ActionInteract = "interact"
	ActionOpen     = "open"
	ActionEvent    = "event"
)

// Action returns the step's action name and target.
func (s Step) Action() (action, target string) {
	switch {
	case s.Complete != "":
		return ActionComplete, s.Complete
	case s.Interact != "":
		return ActionInteract, s.Interact
	case s.Open != "":
		return ActionOpen, s.Open
	case s.Event != "":
		return ActionEvent, s.Event
	}
	return "", ""
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The catalog path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Catalog != "" && !filepath.IsAbs(scenario.Catalog) {
		scenario.Catalog = filepath.Join(filepath.Dir(path), scenario.Catalog)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if info, err := os.Stat(s.Catalog); err != nil || !info.IsDir() {
		return fmt.Errorf("catalog directory not found: %s", s.Catalog)
	}
	if s.StartTime != "" {
		if _, err := time.Parse(time.RFC3339, s.StartTime); err != nil {
			return fmt.Errorf("start_time: %w", err)
		}
	}
	switch s.Prerequisites {
	case "", "advisory", "enforced":
	default:
		return fmt.Errorf("prerequisites must be advisory or enforced, got %q", s.Prerequisites)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, s Step) error {
	set := 0
	for _, v := range []string{s.Complete, s.Interact, s.Open, s.Event} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of complete, interact, open, event is required", i)
	}
	if s.User == "" {
		return fmt.Errorf("steps[%d]: user is required", i)
	}
	if s.Repeat < 0 || s.Concurrent < 0 {
		return fmt.Errorf("steps[%d]: repeat and concurrent must not be negative", i)
	}
	if s.Repeat > 1 && s.Concurrent > 1 {
		return fmt.Errorf("steps[%d]: repeat and concurrent are mutually exclusive", i)
	}
	if s.Advance != "" {
		if d, err := time.ParseDuration(s.Advance); err != nil || d < 0 {
			return fmt.Errorf("steps[%d]: advance must be a non-negative duration", i)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.User == "" {
		return fmt.Errorf("assertions[%d]: user is required", index)
	}

	switch a.Type {
	case AssertCertificateCount, AssertBadgeCount, AssertCompletedCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
	case AssertProgressStatus:
		if a.Module == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: module and status are required for progress_status", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
