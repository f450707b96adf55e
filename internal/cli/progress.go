package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/model"
)

type progressOutput model.ModuleProgress

// RenderText implements TextRenderer.
func (p progressOutput) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s %s: %s (%d%%)", p.UserID, p.ModuleID, p.Status, p.Percentage)
	if p.QuizScore != nil {
		fmt.Fprintf(w, " score %d", *p.QuizScore)
	}
	fmt.Fprintln(w)
}

type completionOutput engine.CompletionResult

// RenderText implements TextRenderer.
func (r completionOutput) RenderText(w io.Writer) {
	progressOutput(r.Progress).RenderText(w)
	if r.Evaluation != nil && r.Evaluation.QuizScore != nil && !r.Evaluation.Completed {
		fmt.Fprintf(w, "Quiz score %d is below the passing score\n", *r.Evaluation.QuizScore)
	}
	for _, b := range r.Badges {
		fmt.Fprintf(w, "★ Badge earned: %s (%s)\n", b.Name, b.Tier.Title())
	}
	if r.Certificate != nil {
		fmt.Fprintf(w, "✓ Certificate %s for %s\n", r.Certificate.Code, r.Certificate.TrackID)
	}
}

type summaryOutput []engine.TrackSummary

// RenderText implements TextRenderer.
func (s summaryOutput) RenderText(w io.Writer) {
	for _, ts := range s {
		status := make(map[string]model.ModuleProgress, len(ts.Progress))
		for _, p := range ts.Progress {
			status[p.ModuleID] = p
		}
		fmt.Fprintf(w, "%s: %d/%d modules (%d%%)\n", ts.Track.Name, ts.CompletedCount, ts.TotalCount, ts.Percentage)
		for _, m := range ts.Modules {
			p, ok := status[m.ID]
			state := model.StatusNotStarted.String()
			if ok {
				state = p.Status.String()
			}
			fmt.Fprintf(w, "  %-10s %-12s %s\n", m.ID, state, m.Title)
		}
		if ts.Certificate != nil {
			fmt.Fprintf(w, "  certificate: %s\n", ts.Certificate.Code)
		}
	}
}

// NewOpenCommand creates the open command.
func NewOpenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "open <user> <module>",
		Short:         "Record that a user opened a module",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				p, err := app.Engine.OpenModule(commandContext(cmd), args[0], args[1])
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(progressOutput(p))
			})
		},
	}
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <user> [track-slug]",
		Short: "Show a user's progress through one or all tracks",
		Long: `Show completed and total module counts per track, the status of each
module and the certificate if one was issued. Reading progress never
creates records.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				ctx := commandContext(cmd)
				if len(args) == 2 {
					s, err := app.Engine.TrackProgress(ctx, args[0], args[1])
					if err != nil {
						return f.EngineError(err)
					}
					return f.Success(summaryOutput{s})
				}
				all, err := app.Engine.AllTrackProgress(ctx, args[0])
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(summaryOutput(all))
			})
		},
	}
}

// CompleteOptions holds flags for the complete command.
type CompleteOptions struct {
	*RootOptions
	Score int
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "complete <user> <module>",
		Short: "Mark a module completed",
		Long: `Mark a module completed, then award any badges earned and issue the
track certificate if this finished the track.

Quiz modules require --score. A score below the passing threshold leaves
the module in progress.

Examples:
  waypoint complete alice res-001
  waypoint complete alice res-003 --score 88`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var score *int
			if cmd.Flags().Changed("score") {
				score = &opts.Score
			}
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				res, err := app.Engine.CompleteModule(commandContext(cmd), args[0], args[1], score)
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(completionOutput(res))
			})
		},
	}

	cmd.Flags().IntVar(&opts.Score, "score", 0, "quiz score percentage (quiz modules only)")
	return cmd
}

// InteractOptions holds the interaction payload flags. Only the fields
// matching the module's content type are used.
type InteractOptions struct {
	*RootOptions
	ReachedEnd     bool
	WatchedSeconds int
	Answers        []int
	Runs           int
	Acknowledged   bool
}

// NewInteractCommand creates the interact command.
func NewInteractCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InteractOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "interact <user> <module>",
		Short: "Record a learner interaction and evaluate completion",
		Long: `Evaluate an interaction against the module's content and record the
result. A completing interaction behaves like complete.

  reading      --reached-end
  video        --watched-seconds N   (completes at 80% of the duration)
  quiz         --answers 2,1,0,...   (one option index per question)
  interactive  --runs N --acknowledged`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				in := opts.interaction(app, args[1])
				res, err := app.Engine.RecordInteraction(commandContext(cmd), args[0], args[1], in)
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(completionOutput(res))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.ReachedEnd, "reached-end", false, "reading: reached the end")
	cmd.Flags().IntVar(&opts.WatchedSeconds, "watched-seconds", 0, "video: seconds watched")
	cmd.Flags().IntSliceVar(&opts.Answers, "answers", nil, "quiz: selected option index per question")
	cmd.Flags().IntVar(&opts.Runs, "runs", 0, "interactive: tool runs")
	cmd.Flags().BoolVar(&opts.Acknowledged, "acknowledged", false, "interactive: learner acknowledged")
	return cmd
}

// interaction builds the payload for the module's content type. Unknown
// modules get a reading payload and the engine reports NOT_FOUND.
func (o *InteractOptions) interaction(app *App, moduleID string) engine.Interaction {
	m, err := app.Catalog.ModuleByID(moduleID)
	if err != nil {
		return engine.ReadingResult{ReachedEnd: o.ReachedEnd}
	}
	switch model.ContentTypeOf(m) {
	case model.ContentVideo:
		return engine.VideoResult{WatchedSeconds: o.WatchedSeconds}
	case model.ContentQuiz:
		return engine.QuizResult{Answers: o.Answers}
	case model.ContentInteractive:
		return engine.InteractiveResult{Runs: o.Runs, Acknowledged: o.Acknowledged}
	default:
		return engine.ReadingResult{ReachedEnd: o.ReachedEnd}
	}
}

// withApp opens the App for the duration of fn.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(*App, *OutputFormatter) error) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	app, err := openApp(cmd, opts, f)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			app.Logger.Error("error closing database", "error", closeErr)
		}
	}()
	return fn(app, f)
}
