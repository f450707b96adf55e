package harness

// TraceEvent records the outcome of one step execution.
//
// Concurrent steps produce a single aggregated event. Certificates are
// recorded by track ID rather than verification code; codes depend on
// which concurrent insert wins.
type TraceEvent struct {
	Step        int      `json:"step"`
	Action      string   `json:"action"`
	User        string   `json:"user"`
	Target      string   `json:"target"`
	Calls       int      `json:"calls"`
	At          string   `json:"at"`
	Status      string   `json:"status,omitempty"`
	Percentage  *int     `json:"percentage,omitempty"`
	QuizScore   *int     `json:"quiz_score,omitempty"`
	Certificate string   `json:"certificate,omitempty"`
	Badges      []string `json:"badges,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains one event per step execution, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
