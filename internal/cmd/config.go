package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakura-poetry/poetryctl/internal/config"
	"github.com/sakura-poetry/poetryctl/internal/errors"
)

func newConfigCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the local configuration",
		Long: `Manage ~/.poetryctl/config.yaml.

Every key can be overridden with a POETRY_ environment variable, for example
POETRY_API_BASE_URL or POETRY_STORAGE_BACKEND.`,
		Annotations: map[string]string{annotationSkipApp: "true"},
	}

	cmd.AddCommand(
		newConfigViewCommand(st),
		newConfigPathCommand(st),
		newConfigInitCommand(st),
	)
	return cmd
}

func newConfigViewCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(st.opts.ConfigPath)
			if err != nil {
				return err
			}
			if st.opts.APIURL != "" {
				cfg.API.BaseURL = st.opts.APIURL
			}
			if cfg.Storage.Redis.Password != "" {
				cfg.Storage.Redis.Password = "********"
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			if cfg.Source != "" {
				fmt.Fprintf(st.stdout, "# %s\n", cfg.Source)
			} else {
				fmt.Fprintln(st.stdout, "# defaults (no config file)")
			}
			_, err = st.stdout.Write(data)
			return err
		},
	}
}

func newConfigPathCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the configuration file is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(st)
			if err != nil {
				return err
			}
			fmt.Fprintln(st.stdout, path)
			return nil
		},
	}
}

func newConfigInitCommand(st *state) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(st)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.NewConfigError(errors.ErrCodeConfigInvalid, "config file already exists: "+path, nil).
					WithSuggestion("Use --force to overwrite it")
			}

			cfg := config.Default()
			if st.opts.APIURL != "" {
				cfg.API.BaseURL = st.opts.APIURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(st.stdout, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configPath(st *state) (string, error) {
	if st.opts.ConfigPath != "" {
		return st.opts.ConfigPath, nil
	}
	return config.Resolve()
}
