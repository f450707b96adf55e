package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/waypoint/internal/model"
)

// IssueResult is the output of certificate issue.
type IssueResult struct {
	Issued      bool               `json:"issued"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

// RenderText implements TextRenderer.
func (r IssueResult) RenderText(w io.Writer) {
	if !r.Issued {
		fmt.Fprintln(w, "Track not complete; no certificate issued")
		return
	}
	renderCertificate(w, *r.Certificate)
}

// VerifyResult is the output of certificate verify.
type VerifyResult struct {
	Code        string             `json:"verification_code"`
	Valid       bool               `json:"valid"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

// RenderText implements TextRenderer.
func (r VerifyResult) RenderText(w io.Writer) {
	if !r.Valid {
		fmt.Fprintf(w, "✗ %s is not a valid certificate code\n", r.Code)
		return
	}
	fmt.Fprintf(w, "✓ %s is valid\n", r.Code)
	renderCertificate(w, *r.Certificate)
}

type certificateList []model.Certificate

// RenderText implements TextRenderer.
func (l certificateList) RenderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "No certificates.")
		return
	}
	for _, c := range l {
		renderCertificate(w, c)
	}
}

func renderCertificate(w io.Writer, c model.Certificate) {
	fmt.Fprintf(w, "%s  %s  %s  issued %s\n", c.Code, c.UserID, c.TrackID, c.IssuedAt.Format(time.RFC3339))
}

// NewCertificateCommand creates the certificate command group.
func NewCertificateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Issue, verify and list track certificates",
	}
	cmd.AddCommand(newCertificateIssueCommand(rootOpts))
	cmd.AddCommand(newCertificateVerifyCommand(rootOpts))
	cmd.AddCommand(newCertificateListCommand(rootOpts))
	return cmd
}

func newCertificateIssueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <user> <track>",
		Short: "Issue a certificate if the user has completed the track",
		Long: `Issue the user's certificate for a track, identified by slug or ID.
Nothing is issued unless every module in the track is completed. Issuing
again returns the existing certificate.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				trackID := args[1]
				if t, err := app.Catalog.TrackBySlug(args[1]); err == nil {
					trackID = t.ID
				}
				cert, err := app.Engine.IssueCertificate(commandContext(cmd), args[0], trackID)
				if err != nil {
					return f.EngineError(err)
				}
				return f.Success(IssueResult{Issued: cert != nil, Certificate: cert})
			})
		},
	}
}

func newCertificateVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "verify <code>",
		Short:         "Verify a certificate by its verification code",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				cert, ok, err := app.Engine.VerifyCertificate(commandContext(cmd), args[0])
				if err != nil {
					return f.EngineError(err)
				}
				if err := f.Success(VerifyResult{Code: args[0], Valid: ok, Certificate: cert}); err != nil {
					return err
				}
				if !ok {
					return NewExitError(ExitFailure, "certificate not found")
				}
				return nil
			})
		},
	}
}

func newCertificateListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list <user>",
		Short:         "List a user's certificates, newest first",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(app *App, f *OutputFormatter) error {
				certs, err := app.Engine.Certificates(commandContext(cmd), args[0])
				if err != nil {
					return f.EngineError(err)
				}
				if certs == nil {
					certs = []model.Certificate{}
				}
				return f.Success(certificateList(certs))
			})
		},
	}
}
