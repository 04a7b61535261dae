package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakura-poetry/poetryctl/internal/version"
)

func newVersionCommand(st *state) *cobra.Command {
	var (
		verbose bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationSkipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()

			if asJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info: %w", err)
				}
				fmt.Fprintln(st.stdout, string(data))
				return nil
			}
			if verbose {
				fmt.Fprintln(st.stdout, info.String())
				return nil
			}
			fmt.Fprintf(st.stdout, "poetryctl %s\n", info.Version)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed version information")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output version information as JSON")
	return cmd
}
