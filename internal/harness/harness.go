package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/waypoint/internal/catalog"
	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/model"
	"github.com/roach88/waypoint/internal/store"
	"github.com/roach88/waypoint/internal/testutil"
)

// Harness is the scenario execution engine.
// It drives a real engine over a fresh in-memory store with a fixed clock
// and sequential ID and code generators.
type Harness struct {
	catalog *catalog.Catalog
	store   *store.Store
	engine  *engine.Engine
	clock   *testutil.FixedClock
	logger  *slog.Logger
}

// outcome is the observable result of one engine call.
type outcome struct {
	progress    *model.ModuleProgress
	quizScore   *int
	certificate *model.Certificate
	badges      []string
	err         error
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the scenario catalog and open an in-memory store
// 2. Seed the catalog badges
// 3. Execute steps, checking each expect clause
// 4. Evaluate assertions against the final store state
func Run(scenario *Scenario) (*Result, error) {
	cat, err := catalog.LoadDir(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	var start time.Time
	if scenario.StartTime != "" {
		// Already validated by LoadScenario
		start, _ = time.Parse(time.RFC3339, scenario.StartTime)
	}
	clock := testutil.NewFixedClock(start)

	policy := engine.PrerequisitesAdvisory
	if scenario.Prerequisites == "enforced" {
		policy = engine.PrerequisitesEnforced
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng := engine.New(cat, st,
		engine.WithLogger(logger),
		engine.WithClock(clock),
		engine.WithIDGenerator(testutil.NewSequenceIDs("id")),
		engine.WithCodeGenerator(testutil.NewSequenceCodes()),
		engine.WithPrerequisitePolicy(policy),
	)

	h := &Harness{
		catalog: cat,
		store:   st,
		engine:  eng,
		clock:   clock,
		logger:  logger,
	}

	ctx := context.Background()
	if err := eng.SeedBadges(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed badges: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{Ctx: ctx, Store: st, Engine: eng}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs a step once, Repeat times in sequence, or Concurrent
// times in parallel, then checks its expect clause against the combined
// outcome.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	if step.Advance != "" {
		d, _ := time.ParseDuration(step.Advance)
		h.clock.Advance(d)
	}
	action, target := step.Action()

	var outcomes []outcome
	switch {
	case step.Concurrent > 1:
		outcomes = h.runConcurrent(ctx, step)
		event := h.traceEvent(index, action, step.User, target, outcomes)
		// Concurrent calls finish in any order; report the settled record.
		if action != ActionEvent {
			if p, err := h.engine.GetModuleProgress(ctx, step.User, target); err == nil {
				event.Status = p.Status.String()
				event.Percentage = model.IntPtr(p.Percentage)
			}
		}
		if msg := sameCertificate(outcomes); msg != "" {
			result.AddError(fmt.Sprintf("steps[%d]: %s", index, msg))
		}
		result.Trace = append(result.Trace, event)
	default:
		n := max(step.Repeat, 1)
		for range n {
			o := h.call(ctx, step)
			outcomes = append(outcomes, o)
			result.Trace = append(result.Trace, h.traceEvent(index, action, step.User, target, []outcome{o}))
		}
	}

	for _, msg := range checkExpect(index, step, outcomes) {
		result.AddError(msg)
	}

	h.logger.Info("step executed",
		"step", index,
		"action", action,
		"target", target,
		"user", step.User,
		"calls", len(outcomes),
	)
	return nil
}

func (h *Harness) runConcurrent(ctx context.Context, step Step) []outcome {
	outcomes := make([]outcome, step.Concurrent)
	var g errgroup.Group
	for i := range step.Concurrent {
		g.Go(func() error {
			outcomes[i] = h.call(ctx, step)
			return nil
		})
	}
	_ = g.Wait() // Calls record their errors in the outcome
	return outcomes
}

// call performs the step's action once against the engine.
func (h *Harness) call(ctx context.Context, step Step) outcome {
	switch action, target := step.Action(); action {
	case ActionComplete:
		res, err := h.engine.CompleteModule(ctx, step.User, target, step.QuizScore)
		return completionOutcome(res, err)
	case ActionInteract:
		in, err := h.interaction(target, step)
		if err != nil {
			return outcome{err: err}
		}
		res, err := h.engine.RecordInteraction(ctx, step.User, target, in)
		return completionOutcome(res, err)
	case ActionOpen:
		p, err := h.engine.OpenModule(ctx, step.User, target)
		if err != nil {
			return outcome{err: err}
		}
		return outcome{progress: &p}
	default:
		b, err := h.engine.OnEvent(ctx, step.User, engine.Event{
			Type:  engine.EventType(target),
			Count: step.Count,
		})
		if err != nil {
			return outcome{err: err}
		}
		o := outcome{}
		if b != nil {
			o.badges = []string{b.ID}
		}
		return o
	}
}

// interaction builds the typed interaction for a module from the step's
// payload fields. Unknown modules fall through to the engine, which
// reports them as NOT_FOUND.
func (h *Harness) interaction(moduleID string, step Step) (engine.Interaction, error) {
	m, err := h.catalog.ModuleByID(moduleID)
	if err != nil {
		return engine.ReadingResult{ReachedEnd: step.ReachedEnd}, nil
	}
	switch model.ContentTypeOf(m) {
	case model.ContentReading:
		return engine.ReadingResult{ReachedEnd: step.ReachedEnd}, nil
	case model.ContentVideo:
		return engine.VideoResult{WatchedSeconds: step.WatchedSeconds}, nil
	case model.ContentQuiz:
		return engine.QuizResult{Answers: step.Answers}, nil
	case model.ContentInteractive:
		return engine.InteractiveResult{Runs: step.Runs, Acknowledged: step.Acknowledged}, nil
	}
	return nil, fmt.Errorf("module %s has no content", moduleID)
}

func completionOutcome(res engine.CompletionResult, err error) outcome {
	if err != nil {
		return outcome{err: err}
	}
	o := outcome{progress: &res.Progress, certificate: res.Certificate}
	switch {
	case res.Evaluation != nil && res.Evaluation.QuizScore != nil:
		o.quizScore = res.Evaluation.QuizScore
	case res.Progress.QuizScore != nil:
		o.quizScore = res.Progress.QuizScore
	}
	for _, b := range res.Badges {
		o.badges = append(o.badges, b.ID)
	}
	return o
}

// traceEvent folds one or more outcomes into a single trace event.
func (h *Harness) traceEvent(index int, action, user, target string, outcomes []outcome) TraceEvent {
	event := TraceEvent{
		Step:   index,
		Action: action,
		User:   user,
		Target: target,
		Calls:  len(outcomes),
		At:     h.clock.Now().Format(time.RFC3339),
	}
	agg := aggregate(outcomes)
	if agg.progress != nil {
		event.Status = agg.progress.Status.String()
		event.Percentage = model.IntPtr(agg.progress.Percentage)
	}
	event.QuizScore = agg.quizScore
	if agg.certificate != nil {
		event.Certificate = agg.certificate.TrackID
	}
	event.Badges = agg.badges
	event.Error = agg.errorCodes
	return event
}

type aggregated struct {
	progress    *model.ModuleProgress // Last reported
	quizScore   *int                  // Last reported
	certificate *model.Certificate    // First reported
	badges      []string              // Union, sorted
	errorCodes  string                // Distinct codes, sorted, comma-joined
	errs        []error
}

func aggregate(outcomes []outcome) aggregated {
	var agg aggregated
	var codes []string
	for _, o := range outcomes {
		if o.err != nil {
			agg.errs = append(agg.errs, o.err)
			if c := errorCode(o.err); !slices.Contains(codes, c) {
				codes = append(codes, c)
			}
			continue
		}
		if o.progress != nil {
			agg.progress = o.progress
		}
		if o.quizScore != nil {
			agg.quizScore = o.quizScore
		}
		if agg.certificate == nil && o.certificate != nil {
			agg.certificate = o.certificate
		}
		for _, b := range o.badges {
			if !slices.Contains(agg.badges, b) {
				agg.badges = append(agg.badges, b)
			}
		}
	}
	slices.Sort(agg.badges)
	slices.Sort(codes)
	agg.errorCodes = strings.Join(codes, ",")
	return agg
}

// errorCode returns the engine error code for err, or INTERNAL for
// errors that did not come from the engine.
func errorCode(err error) string {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return string(engErr.Code)
	}
	return "INTERNAL"
}

// sameCertificate reports a mismatch when concurrent calls returned
// different certificates.
func sameCertificate(outcomes []outcome) string {
	var first *model.Certificate
	for _, o := range outcomes {
		if o.certificate == nil {
			continue
		}
		if first == nil {
			first = o.certificate
			continue
		}
		if o.certificate.Code != first.Code {
			return fmt.Sprintf("concurrent calls returned different certificates: %s and %s",
				first.Code, o.certificate.Code)
		}
	}
	return ""
}

// checkExpect compares a step's combined outcome with its expect clause.
// An error the step did not expect is always reported.
func checkExpect(index int, step Step, outcomes []outcome) []string {
	agg := aggregate(outcomes)
	var errs []string
	prefix := fmt.Sprintf("steps[%d]", index)

	exp := step.Expect
	if exp == nil {
		exp = &Expect{}
	}

	if exp.Error == "" {
		for _, err := range agg.errs {
			errs = append(errs, fmt.Sprintf("%s: unexpected error: %v", prefix, err))
		}
		if len(agg.errs) > 0 {
			return errs
		}
	} else {
		if len(agg.errs) == 0 {
			return append(errs, fmt.Sprintf("%s: expected error %s, got none", prefix, exp.Error))
		}
		if agg.errorCodes != exp.Error {
			errs = append(errs, fmt.Sprintf("%s: expected error %s, got %s", prefix, exp.Error, agg.errorCodes))
		}
	}

	if exp.Status != "" {
		got := ""
		if agg.progress != nil {
			got = agg.progress.Status.String()
		}
		if got != exp.Status {
			errs = append(errs, fmt.Sprintf("%s: expected status %s, got %q", prefix, exp.Status, got))
		}
	}
	if exp.Certificate != nil && *exp.Certificate != (agg.certificate != nil) {
		errs = append(errs, fmt.Sprintf("%s: expected certificate=%t, got %t",
			prefix, *exp.Certificate, agg.certificate != nil))
	}
	if exp.Badges != nil {
		want := slices.Clone(*exp.Badges)
		slices.Sort(want)
		if !slices.Equal(want, agg.badges) && !(len(want) == 0 && len(agg.badges) == 0) {
			errs = append(errs, fmt.Sprintf("%s: expected badges %v, got %v", prefix, want, agg.badges))
		}
	}
	if exp.QuizScore != nil {
		if agg.quizScore == nil || *agg.quizScore != *exp.QuizScore {
			errs = append(errs, fmt.Sprintf("%s: expected quiz score %d, got %s",
				prefix, *exp.QuizScore, formatIntPtr(agg.quizScore)))
		}
	}
	return errs
}

func formatIntPtr(p *int) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprint(*p)
}

