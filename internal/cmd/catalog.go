package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sakura-poetry/poetryctl/internal/api"
	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/ux"
)

// resourceDef describes one catalog resource as a command group.
type resourceDef[T api.Entity] struct {
	use     string
	aliases []string
	short   string
	headers []string
	row     func(T) []string
	res     func(*api.Catalog) api.Resource[T]

	// readOnly drops create and update.
	readOnly bool
	finders  []func(*state) *cobra.Command
}

func (d resourceDef[T]) table(items []T) ux.Table {
	t := ux.Table{Headers: d.headers, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, d.row(it))
	}
	return t
}

func (d resourceDef[T]) command(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     d.use,
		Aliases: d.aliases,
		Short:   d.short,
	}

	cmd.AddCommand(d.listCommand(st), d.deleteCommand(st))
	if !d.readOnly {
		cmd.AddCommand(d.createCommand(st), d.updateCommand(st))
	}
	for _, f := range d.finders {
		cmd.AddCommand(f(st))
	}
	return cmd
}

func (d resourceDef[T]) listCommand(st *state) *cobra.Command {
	var (
		page       api.Page
		filterFile string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + d.use + " records",
		Long: `List records. --filter takes a JSON or YAML file whose non-empty
fields must match; use - to read it from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			if err := requireSession(app); err != nil {
				return err
			}

			var filter T
			if filterFile != "" {
				if err := decodeRecord(st.stdin, filterFile, &filter); err != nil {
					return err
				}
			}

			items, err := d.res(app.Catalog).List(cmd.Context(), filter, page)
			if err != nil {
				return err
			}
			return app.Render(items, d.table(items))
		},
	}

	cmd.Flags().IntVar(&page.Offset, "offset", 0, "number of records to skip")
	cmd.Flags().IntVar(&page.Limit, "limit", 20, "maximum number of records")
	cmd.Flags().StringVar(&filterFile, "filter", "", "filter record file (JSON or YAML, - for stdin)")
	return cmd
}

func (d resourceDef[T]) createCommand(st *state) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + d.use + " from a JSON or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			if err := requireSession(app); err != nil {
				return err
			}

			var v T
			if err := decodeRecord(st.stdin, file, &v); err != nil {
				return err
			}
			ok, err := d.res(app.Catalog).Create(cmd.Context(), v)
			if err != nil {
				return err
			}
			return reportChange(app, ok, "created", d.use)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "record file (JSON or YAML, - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (d resourceDef[T]) updateCommand(st *state) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a " + d.use + " from a JSON or YAML file",
		Long:  `Update a record. The file must carry the record's id.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			if err := requireSession(app); err != nil {
				return err
			}

			var v T
			if err := decodeRecord(st.stdin, file, &v); err != nil {
				return err
			}
			if v.Identity() == 0 {
				return errors.NewValidationError("record has no id", nil).
					WithSuggestion("Add the id field to the file; use 'create' for new records")
			}
			ok, err := d.res(app.Catalog).Update(cmd.Context(), v)
			if err != nil {
				return err
			}
			return reportChange(app, ok, "updated", d.use)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "record file (JSON or YAML, - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (d resourceDef[T]) deleteCommand(st *state) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + d.use + " by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := requireSession(app); err != nil {
				return err
			}

			if !yes {
				if !st.canPrompt() {
					return errors.NewValidationError("refusing to delete without confirmation", nil).
						WithSuggestion("Pass --yes to delete non-interactively")
				}
				confirmed, err := ux.Confirm(fmt.Sprintf("Delete %s %d?", d.use, id), false)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(app.Out, "Aborted.")
					return nil
				}
			}

			ok, err := d.res(app.Catalog).Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			return reportChange(app, ok, "deleted", d.use)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// listFinder builds a finder subcommand returning many records.
func listFinder[T api.Entity](d resourceDef[T], use, short string, args cobra.PositionalArgs,
	find func(ctx context.Context, app *App, args []string) ([]T, error)) func(*state) *cobra.Command {
	return func(st *state) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  args,
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFor(st)
				if err := requireSession(app); err != nil {
					return err
				}
				items, err := find(cmd.Context(), app, args)
				if err != nil {
					return err
				}
				return app.Render(items, d.table(items))
			},
		}
	}
}

// oneFinder builds a finder subcommand returning at most one record.
func oneFinder[T api.Entity](d resourceDef[T], use, short string,
	find func(ctx context.Context, app *App, key string) (*T, error)) func(*state) *cobra.Command {
	return func(st *state) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app := appFor(st)
				if err := requireSession(app); err != nil {
					return err
				}
				item, err := find(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}
				if item == nil {
					return app.Render(nil, d.table(nil))
				}
				return app.Render(item, d.table([]T{*item}))
			},
		}
	}
}

func reportChange(app *App, ok bool, verb, what string) error {
	if !ok {
		return errors.New(errors.KindBusiness, errors.ErrCodeBusinessError,
			fmt.Sprintf("server did not confirm the %s was %s", what, verb))
	}
	fmt.Fprintf(app.Out, "%s %s.\n", capitalize(what), verb)
	return nil
}

// decodeRecord reads a JSON or YAML record from path, or from stdin when
// path is "-". JSON is valid YAML, so one decoder serves both.
func decodeRecord(stdin io.Reader, path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("failed to read %s", path), err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return errors.NewValidationError(fmt.Sprintf("failed to parse %s", path), err).
			WithSuggestion("Records are JSON or YAML objects using the backend's field names")
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid id %q", s), err).
			WithSuggestion("Ids are positive integers")
	}
	return id, nil
}

func parseLimit(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid limit %q", s), err)
	}
	return n, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
