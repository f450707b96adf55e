package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/waypoint/internal/engine"
	"github.com/roach88/waypoint/internal/model"
)

type badgeProgressOutput []engine.BadgeStatus

// RenderText implements TextRenderer.
func (s badgeProgressOutput) RenderText(w io.Writer) {
	for _, b := range s {
		mark := " "
		if b.Earned {
			mark = "★"
		}
		fmt.Fprintf(w, "%s %-24s %-8s %d/%d (%d%%)\n",
			mark, b.Badge.Name, b.Badge.Tier.Title(), b.Current, b.Total, b.Percentage)
	}
}

// EventResult is the output of the event command.
type EventResult struct {
	Event   engine.Event `json:"event"`
	Awarded *model.Badge `json:"awarded,omitempty"`
}

// RenderText implements TextRenderer.
func (r EventResult) RenderText(w io.Writer) {
	if r.Awarded == nil {
		fmt.Fprintf(w, "%s recorded; no new badge\n", r.Event.Type)
		return
	}
	fmt.Fprintf(w, "★ Badge earned: %s (%s)\n", r.Awarded.Name, r.Awarded.Tier.Title())
}

// NewBadgesCommand creates the badges command.
func NewBadgesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "badges <user>",
		Short:         "Show every badge with the user's progress toward it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				statuses, err := app.Engine.BadgeProgress(commandContext(cmd), args[0])
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(badgeProgressOutput(statuses))
			})
		},
	}
}

// EventOptions holds flags for the event command.
type EventOptions struct {
	*RootOptions
	Count int
}

// NewEventCommand creates the event command.
func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "event <user> <type>",
		Short: "Deliver a badge event",
		Long: `Deliver an event to the badge engine and award any badges it earns.

Event types: module_complete, certificate_complete, tour_complete,
webinar_attend, login. webinar_attend and login take the external counter
value with --count (webinars attended, consecutive login days).`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				ev := engine.Event{Type: engine.EventType(args[1]), Count: opts.Count}
				b, err := app.Engine.OnEvent(commandContext(cmd), args[0], ev)
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(EventResult{Event: ev, Awarded: b})
			})
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 0, "counter value for webinar_attend and login events")
	return cmd
}
