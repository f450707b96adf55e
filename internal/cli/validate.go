package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/waypoint/internal/catalog"
	"github.com/roach88/waypoint/internal/model"
)

// ValidationResult holds catalog validation results.
type ValidationResult struct {
	Valid bool          `json:"valid"`
	Dir   string        `json:"dir"`
	Stats catalog.Stats `json:"stats"`
}

// RenderText implements TextRenderer.
func (r ValidationResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "✓ %s is valid: %d track(s), %d module(s), %d badge(s)\n",
		r.Dir, r.Stats.Tracks, r.Stats.Modules, r.Stats.Badges)
}

// TrackList is the output of catalog tracks.
type TrackList struct {
	Tracks []TrackListing `json:"tracks"`
}

// TrackListing is one track with its ordered modules.
type TrackListing struct {
	Track   model.Track    `json:"track"`
	Modules []model.Module `json:"modules"`
}

// RenderText implements TextRenderer.
func (l TrackList) RenderText(w io.Writer) {
	for _, t := range l.Tracks {
		fmt.Fprintf(w, "%s (%s) - %d module(s)\n", t.Track.Name, t.Track.Slug, len(t.Modules))
		for _, m := range t.Modules {
			fmt.Fprintf(w, "  %d. %-10s %-12s %s\n", m.Sequence, m.ID, model.ContentTypeOf(m), m.Title)
		}
	}
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate the content catalog",
	}
	cmd.AddCommand(newCatalogValidateCommand(rootOpts))
	cmd.AddCommand(newCatalogTracksCommand(rootOpts))
	return cmd
}

func newCatalogValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog-dir]",
		Short: "Validate catalog definitions without touching the database",
		Long: `Compile every CUE file in the catalog directory and check cross
references: track membership, unique sequence numbers, quiz answer indices,
prerequisite targets and prerequisite cycles.

The directory defaults to catalog.dir from the configuration.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // We handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			dir, err := catalogDir(rootOpts, f, args)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(f, dir)
			if err != nil {
				if missingCatalog(err) {
					return err
				}
				// Invalid definitions are a validation failure, not a usage error
				return WrapExitError(ExitFailure, "catalog is invalid", err)
			}
			return f.Success(ValidationResult{Valid: true, Dir: dir, Stats: cat.Stats()})
		},
	}
}

func newCatalogTracksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tracks",
		Short:         "List tracks and their modules in order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
			dir, err := catalogDir(rootOpts, f, nil)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(f, dir)
			if err != nil {
				return err
			}

			var out TrackList
			for _, t := range cat.Tracks() {
				modules, err := cat.ModulesByTrack(t.Slug)
				if err != nil {
					return WrapExitError(ExitFailure, "list modules", err)
				}
				out.Tracks = append(out.Tracks, TrackListing{Track: t, Modules: modules})
			}
			return f.Success(out)
		},
	}
}

// catalogDir picks the catalog directory from the first argument, or from
// configuration when no argument is given.
func catalogDir(opts *RootOptions, f *OutputFormatter, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return "", WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg.Catalog.Dir, nil
}

// missingCatalog reports whether a load failed because there was nothing
// to load, as opposed to definitions that failed to compile or validate.
func missingCatalog(err error) bool {
	var loadErr *catalog.LoadError
	if !errors.As(err, &loadErr) {
		return false
	}
	switch loadErr.Code {
	case catalog.ErrCodeNotFound, catalog.ErrCodeNoFiles, catalog.ErrCodeScanError:
		return true
	}
	return false
}
