package cmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakura-poetry/poetryctl/internal/api"
	"github.com/sakura-poetry/poetryctl/internal/errors"
)

func newCatalogCommands(st *state) []*cobra.Command {
	return []*cobra.Command{
		poemResource().command(st),
		poetResource().command(st),
		dynastyResource().command(st),
		categoryResource().command(st),
		userResource().command(st),
		roleResource().command(st),
		settingResource().command(st),
		logResource().command(st),
	}
}

func poemResource() resourceDef[api.Poetry] {
	d := resourceDef[api.Poetry]{
		use:     "poem",
		aliases: []string{"poems", "poetry"},
		short:   "Manage poems",
		headers: []string{"ID", "TITLE", "POET", "DYNASTY", "STATUS", "VIEWS"},
		row: func(p api.Poetry) []string {
			return []string{id(p.ID), p.Title, id(p.PoetID), id(p.DynastyID), string(p.Status), strconv.FormatInt(p.ViewCount, 10)}
		},
		res: func(c *api.Catalog) api.Resource[api.Poetry] { return c.Poetry.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		listFinder(d, "title <title>", "Find poems by exact title", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Poetry, error) {
				return app.Catalog.Poetry.ByTitle(ctx, args[0])
			}),
		listFinder(d, "hot [limit]", "Show the most viewed poems", cobra.MaximumNArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Poetry, error) {
				limit, err := optionalLimit(args)
				if err != nil {
					return nil, err
				}
				return app.Catalog.Poetry.Hot(ctx, limit)
			}),
		listFinder(d, "featured [limit]", "Show editor-picked poems", cobra.MaximumNArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Poetry, error) {
				limit, err := optionalLimit(args)
				if err != nil {
					return nil, err
				}
				return app.Catalog.Poetry.Featured(ctx, limit)
			}),
	}
	return d
}

func poetResource() resourceDef[api.Poet] {
	d := resourceDef[api.Poet]{
		use:     "poet",
		aliases: []string{"poets"},
		short:   "Manage poets",
		headers: []string{"ID", "NAME", "DYNASTY", "LIFETIME", "STATUS"},
		row: func(p api.Poet) []string {
			return []string{id(p.ID), p.Name, id(p.DynastyID), span(p.BirthYear, p.DeathYear), string(p.Status)}
		},
		res: func(c *api.Catalog) api.Resource[api.Poet] { return c.Poets.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		listFinder(d, "name <name>", "Find poets by name", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Poet, error) {
				return app.Catalog.Poets.ByName(ctx, args[0])
			}),
		listFinder(d, "of-dynasty <dynasty-id>", "List the poets of a dynasty", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Poet, error) {
				dynastyID, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				return app.Catalog.Poets.ByDynasty(ctx, dynastyID)
			}),
	}
	return d
}

func dynastyResource() resourceDef[api.Dynasty] {
	d := resourceDef[api.Dynasty]{
		use:     "dynasty",
		aliases: []string{"dynasties"},
		short:   "Manage dynasties",
		headers: []string{"ID", "CODE", "NAME", "YEARS", "STATUS"},
		row: func(v api.Dynasty) []string {
			return []string{id(v.ID), v.Code, v.Name, span(v.StartYear, v.EndYear), string(v.Status)}
		},
		res: func(c *api.Catalog) api.Resource[api.Dynasty] { return c.Dynasties.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		oneFinder(d, "get <code>", "Show the dynasty with a code",
			func(ctx context.Context, app *App, code string) (*api.Dynasty, error) {
				return app.Catalog.Dynasties.ByCode(ctx, code)
			}),
		listFinder(d, "enabled", "List enabled dynasties", cobra.NoArgs,
			func(ctx context.Context, app *App, _ []string) ([]api.Dynasty, error) {
				return app.Catalog.Dynasties.Enabled(ctx)
			}),
	}
	return d
}

func categoryResource() resourceDef[api.Category] {
	d := resourceDef[api.Category]{
		use:     "category",
		aliases: []string{"categories"},
		short:   "Manage poem categories",
		headers: []string{"ID", "CODE", "NAME", "PARENT", "LEVEL", "STATUS"},
		row: func(v api.Category) []string {
			return []string{id(v.ID), v.Code, v.Name, id(v.ParentID), strconv.Itoa(v.Level), string(v.Status)}
		},
		res: func(c *api.Catalog) api.Resource[api.Category] { return c.Categories.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		oneFinder(d, "get <code>", "Show the category with a code",
			func(ctx context.Context, app *App, code string) (*api.Category, error) {
				return app.Catalog.Categories.ByCode(ctx, code)
			}),
		listFinder(d, "enabled", "List enabled categories", cobra.NoArgs,
			func(ctx context.Context, app *App, _ []string) ([]api.Category, error) {
				return app.Catalog.Categories.Enabled(ctx)
			}),
		listFinder(d, "children <parent-id>", "List the direct children of a category", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Category, error) {
				parentID, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				return app.Catalog.Categories.ByParent(ctx, parentID)
			}),
	}
	return d
}

func userResource() resourceDef[api.User] {
	d := resourceDef[api.User]{
		use:     "user",
		aliases: []string{"users"},
		short:   "Manage system users",
		headers: []string{"ID", "USERNAME", "NICKNAME", "EMAIL", "STATUS", "LAST LOGIN"},
		row: func(u api.User) []string {
			return []string{id(u.ID), u.Username, u.Nickname, u.Email, string(u.Status), u.LastLoginTime}
		},
		res: func(c *api.Catalog) api.Resource[api.User] { return c.Users.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		oneFinder(d, "get <username>", "Show the user with a username",
			func(ctx context.Context, app *App, username string) (*api.User, error) {
				return app.Catalog.Users.ByUsername(ctx, username)
			}),
		oneFinder(d, "by-email <email>", "Show the user with an email address",
			func(ctx context.Context, app *App, email string) (*api.User, error) {
				return app.Catalog.Users.ByEmail(ctx, email)
			}),
		oneFinder(d, "by-phone <phone>", "Show the user with a phone number",
			func(ctx context.Context, app *App, phone string) (*api.User, error) {
				return app.Catalog.Users.ByPhone(ctx, phone)
			}),
	}
	return d
}

func roleResource() resourceDef[api.Role] {
	d := resourceDef[api.Role]{
		use:     "role",
		aliases: []string{"roles"},
		short:   "Manage roles",
		headers: []string{"ID", "CODE", "NAME", "STATUS"},
		row: func(r api.Role) []string {
			return []string{id(r.ID), r.Code, r.Name, string(r.Status)}
		},
		res: func(c *api.Catalog) api.Resource[api.Role] { return c.Roles.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		oneFinder(d, "get <code>", "Show the role with a code",
			func(ctx context.Context, app *App, code string) (*api.Role, error) {
				return app.Catalog.Roles.ByCode(ctx, code)
			}),
		listFinder(d, "of-user <user-id>", "List the roles granted to a user", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.Role, error) {
				userID, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				return app.Catalog.Roles.ByUser(ctx, userID)
			}),
	}
	return d
}

// settingResource is the backend's system config. The command is named
// "setting" so it does not clash with the local "config" command.
func settingResource() resourceDef[api.SysConfig] {
	d := resourceDef[api.SysConfig]{
		use:     "setting",
		aliases: []string{"settings"},
		short:   "Manage backend settings",
		headers: []string{"ID", "KEY", "VALUE", "GROUP", "TYPE", "STATUS"},
		row: func(c api.SysConfig) []string {
			return []string{id(c.ID), c.Key, c.Value, c.Group, string(c.Type), string(c.Status)}
		},
		res: func(c *api.Catalog) api.Resource[api.SysConfig] { return c.Configs.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		oneFinder(d, "get <key>", "Show the setting with a key",
			func(ctx context.Context, app *App, key string) (*api.SysConfig, error) {
				return app.Catalog.Configs.ByKey(ctx, key)
			}),
		listFinder(d, "group <group>", "List the settings of a group", cobra.ExactArgs(1),
			func(ctx context.Context, app *App, args []string) ([]api.SysConfig, error) {
				return app.Catalog.Configs.ByGroup(ctx, args[0])
			}),
		listFinder(d, "enabled", "List enabled settings", cobra.NoArgs,
			func(ctx context.Context, app *App, _ []string) ([]api.SysConfig, error) {
				return app.Catalog.Configs.Enabled(ctx)
			}),
		newSettingBatchCommand,
	}
	return d
}

func newSettingBatchCommand(st *state) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch-update",
		Short: "Update several settings from a JSON or YAML list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appFor(st)
			if err := requireSession(app); err != nil {
				return err
			}

			var configs []api.SysConfig
			if err := decodeRecord(st.stdin, file, &configs); err != nil {
				return err
			}
			if len(configs) == 0 {
				return errors.NewValidationError("no settings to update", nil)
			}
			for _, c := range configs {
				if c.ID == 0 {
					return errors.NewValidationError("every setting needs an id", nil)
				}
			}

			ok, err := app.Catalog.Configs.BatchUpdate(cmd.Context(), configs)
			if err != nil {
				return err
			}
			return reportChange(app, ok, "updated", "settings")
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "list of settings (JSON or YAML, - for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func logResource() resourceDef[api.SysLog] {
	d := resourceDef[api.SysLog]{
		use:      "log",
		aliases:  []string{"logs"},
		short:    "Read the audit log",
		readOnly: true,
		headers:  []string{"ID", "USER", "OPERATION", "METHOD", "MS", "STATUS", "AT"},
		row: func(l api.SysLog) []string {
			return []string{id(l.ID), l.Username, l.Operation, l.Method,
				strconv.FormatInt(l.DurationMS, 10), strconv.Itoa(l.Status), l.CreatedTime}
		},
		res: func(c *api.Catalog) api.Resource[api.SysLog] { return c.Logs.Resource },
	}
	d.finders = []func(*state) *cobra.Command{
		listFinder(d, "of-user <user-id> [limit]", "Show recent log lines of a user", cobra.RangeArgs(1, 2),
			func(ctx context.Context, app *App, args []string) ([]api.SysLog, error) {
				userID, err := parseID(args[0])
				if err != nil {
					return nil, err
				}
				limit, err := optionalLimit(args[1:])
				if err != nil {
					return nil, err
				}
				return app.Catalog.Logs.ByUser(ctx, userID, limit)
			}),
		listFinder(d, "between <from> <to>", "Show log lines created in a time range", cobra.ExactArgs(2),
			func(ctx context.Context, app *App, args []string) ([]api.SysLog, error) {
				from, err := parseTime(args[0])
				if err != nil {
					return nil, err
				}
				to, err := parseTime(args[1])
				if err != nil {
					return nil, err
				}
				if to.Before(from) {
					return nil, errors.NewValidationError("end of range is before its start", nil)
				}
				return app.Catalog.Logs.Between(ctx, from, to)
			}),
	}
	return d
}

const defaultFinderLimit = 10

func optionalLimit(args []string) (int, error) {
	if len(args) == 0 {
		return defaultFinderLimit, nil
	}
	return parseLimit(args[0])
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseTime accepts RFC 3339 or a zone-less local date or date-time.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError("invalid time "+strconv.Quote(s), nil).
		WithSuggestion("Use 2006-01-02, 2006-01-02T15:04:05 or RFC 3339")
}

func id(v int64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func span(from, to int) string {
	switch {
	case from == 0 && to == 0:
		return "-"
	case to == 0:
		return strconv.Itoa(from) + "-"
	default:
		return strconv.Itoa(from) + "-" + strconv.Itoa(to)
	}
}
