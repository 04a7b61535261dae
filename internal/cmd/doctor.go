package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/health"
	"github.com/sakura-poetry/poetryctl/internal/ux"
)

// doctorView is the JSON/YAML shape of a doctor run.
type doctorView struct {
	Status health.Status   `json:"status" yaml:"status"`
	Checks []health.Report `json:"checks" yaml:"checks"`
}

func (v doctorView) Table() ux.Table {
	t := ux.Table{Headers: []string{"CHECK", "STATUS", "MESSAGE", "LATENCY"}}
	for _, r := range v.Checks {
		t.Rows = append(t.Rows, []string{r.Name, r.Status.String(), r.Message, r.Latency.Round(time.Millisecond).String()})
	}
	return t
}

func newDoctorCommand(st *state) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check storage, session and backend connectivity",
		Long: `Run local diagnostics: the token storage is readable, Redis answers
(for the redis backend), the stored token has not expired and the backend
is reachable. The session is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)

			m := health.NewManager(health.NewStorageChecker(app.storage)).WithTimeout(timeout)
			if app.redis != nil {
				m.Add(health.NewRedisChecker(app.redis))
			}
			m.Add(health.NewSessionChecker(app.Store))
			m.Add(health.NewBackendChecker(app.Config.API.BaseURL, &http.Client{Timeout: timeout}))

			reports := m.Check(cmd.Context())
			view := doctorView{Status: health.Overall(reports), Checks: reports}
			for _, r := range reports {
				app.Logger.Debug("check finished", "check", r.Name, "status", r.Status, "latency", r.Latency)
			}
			if err := app.Print(view); err != nil {
				return err
			}

			if view.Status == health.StatusUnhealthy {
				return errors.NewStateError(errors.ErrCodeHealthCheck, "one or more checks failed")
			}
			if app.format == "" || app.format == "text" {
				fmt.Fprintf(app.Out, "\nOverall: %s\n", view.Status)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", health.DefaultTimeout, "timeout for each check")
	return cmd
}
