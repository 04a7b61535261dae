package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sakura-poetry/poetryctl/internal/gateway"
)

// backendTimeLayout matches the backend's LocalDateTime parser.
const backendTimeLayout = "2006-01-02T15:04:05"

// Catalog groups every catalog resource behind one gateway.
type Catalog struct {
	Poetry     PoetryAPI
	Poets      PoetAPI
	Dynasties  DynastyAPI
	Categories CategoryAPI
	Users      UserAPI
	Roles      RoleAPI
	Configs    ConfigAPI
	Logs       LogAPI
}

// NewCatalog binds all resources to client.
func NewCatalog(client *gateway.Client) *Catalog {
	return &Catalog{
		Poetry:     PoetryAPI{NewResource[Poetry](client, "/api/poetry")},
		Poets:      PoetAPI{NewResource[Poet](client, "/api/poet")},
		Dynasties:  DynastyAPI{NewResource[Dynasty](client, "/api/dynasty")},
		Categories: CategoryAPI{NewResource[Category](client, "/api/category")},
		Users:      UserAPI{NewResource[User](client, "/api/user")},
		Roles:      RoleAPI{NewResource[Role](client, "/api/role")},
		Configs:    ConfigAPI{NewResource[SysConfig](client, "/api/config")},
		Logs:       LogAPI{NewResource[SysLog](client, "/api/log")},
	}
}

// PoetryAPI manages poems.
type PoetryAPI struct {
	Resource[Poetry]
}

// ByTitle finds poems by exact title.
func (a PoetryAPI) ByTitle(ctx context.Context, title string) ([]Poetry, error) {
	return get[[]Poetry](ctx, a.client, a.Base()+"/title"+segment(title), nil)
}

// Hot returns up to limit of the most viewed poems.
func (a PoetryAPI) Hot(ctx context.Context, limit int) ([]Poetry, error) {
	return get[[]Poetry](ctx, a.client, a.Base()+"/hot/"+strconv.Itoa(limit), nil)
}

// Featured returns up to limit editor-picked poems.
func (a PoetryAPI) Featured(ctx context.Context, limit int) ([]Poetry, error) {
	return get[[]Poetry](ctx, a.client, a.Base()+"/featured/"+strconv.Itoa(limit), nil)
}

// PoetAPI manages poets.
type PoetAPI struct {
	Resource[Poet]
}

// ByName finds poets by name.
func (a PoetAPI) ByName(ctx context.Context, name string) ([]Poet, error) {
	return get[[]Poet](ctx, a.client, a.Base()+"/name"+segment(name), nil)
}

// ByDynasty lists the poets of a dynasty.
func (a PoetAPI) ByDynasty(ctx context.Context, dynastyID int64) ([]Poet, error) {
	return get[[]Poet](ctx, a.client, a.Base()+"/dynasty"+idSegment(dynastyID), nil)
}

// DynastyAPI manages dynasties.
type DynastyAPI struct {
	Resource[Dynasty]
}

// ByCode returns the dynasty with the given code, or nil.
func (a DynastyAPI) ByCode(ctx context.Context, code string) (*Dynasty, error) {
	return get[*Dynasty](ctx, a.client, a.Base()+"/code"+segment(code), nil)
}

// Enabled lists enabled dynasties.
func (a DynastyAPI) Enabled(ctx context.Context) ([]Dynasty, error) {
	return get[[]Dynasty](ctx, a.client, a.Base()+"/enabled", nil)
}

// CategoryAPI manages poem categories.
type CategoryAPI struct {
	Resource[Category]
}

// ByCode returns the category with the given code, or nil.
func (a CategoryAPI) ByCode(ctx context.Context, code string) (*Category, error) {
	return get[*Category](ctx, a.client, a.Base()+"/code"+segment(code), nil)
}

// Enabled lists enabled categories.
func (a CategoryAPI) Enabled(ctx context.Context) ([]Category, error) {
	return get[[]Category](ctx, a.client, a.Base()+"/enabled", nil)
}

// ByParent lists the direct children of a category.
func (a CategoryAPI) ByParent(ctx context.Context, parentID int64) ([]Category, error) {
	return get[[]Category](ctx, a.client, a.Base()+"/parent"+idSegment(parentID), nil)
}

// UserAPI manages system users.
type UserAPI struct {
	Resource[User]
}

// ByUsername returns the user with the given username, or nil.
func (a UserAPI) ByUsername(ctx context.Context, username string) (*User, error) {
	return get[*User](ctx, a.client, a.Base()+"/username"+segment(username), nil)
}

// ByEmail returns the user with the given email, or nil.
func (a UserAPI) ByEmail(ctx context.Context, email string) (*User, error) {
	return get[*User](ctx, a.client, a.Base()+"/email"+segment(email), nil)
}

// ByPhone returns the user with the given phone number, or nil.
func (a UserAPI) ByPhone(ctx context.Context, phone string) (*User, error) {
	return get[*User](ctx, a.client, a.Base()+"/phone"+segment(phone), nil)
}

// RoleAPI manages roles.
type RoleAPI struct {
	Resource[Role]
}

// ByCode returns the role with the given code, or nil.
func (a RoleAPI) ByCode(ctx context.Context, code string) (*Role, error) {
	return get[*Role](ctx, a.client, a.Base()+"/code"+segment(code), nil)
}

// ByUser lists the roles granted to a user.
func (a RoleAPI) ByUser(ctx context.Context, userID int64) ([]Role, error) {
	return get[[]Role](ctx, a.client, a.Base()+"/user"+idSegment(userID), nil)
}

// ConfigAPI manages backend settings.
type ConfigAPI struct {
	Resource[SysConfig]
}

// ByKey returns the setting with the given key, or nil.
func (a ConfigAPI) ByKey(ctx context.Context, key string) (*SysConfig, error) {
	return get[*SysConfig](ctx, a.client, a.Base()+"/key"+segment(key), nil)
}

// ByGroup lists the settings of a group.
func (a ConfigAPI) ByGroup(ctx context.Context, group string) ([]SysConfig, error) {
	return get[[]SysConfig](ctx, a.client, a.Base()+"/group"+segment(group), nil)
}

// Enabled lists enabled settings.
func (a ConfigAPI) Enabled(ctx context.Context) ([]SysConfig, error) {
	return get[[]SysConfig](ctx, a.client, a.Base()+"/enabled", nil)
}

// BatchUpdate updates the values of several settings at once.
func (a ConfigAPI) BatchUpdate(ctx context.Context, configs []SysConfig) (bool, error) {
	return gateway.Call[bool](ctx, a.client, gateway.Request{
		Method: http.MethodPut,
		Path:   a.Base() + "/batch",
		Body:   configs,
	})
}

// LogAPI reads the audit log. The backend has no update endpoint for logs.
type LogAPI struct {
	Resource[SysLog]
}

// ByUser returns up to limit recent log lines of a user.
func (a LogAPI) ByUser(ctx context.Context, userID int64, limit int) ([]SysLog, error) {
	return get[[]SysLog](ctx, a.client, a.Base()+"/user"+idSegment(userID), Page{Limit: limit}.query())
}

// Between returns log lines created in [start, end].
func (a LogAPI) Between(ctx context.Context, start, end time.Time) ([]SysLog, error) {
	q := url.Values{}
	q.Set("startTime", start.Format(backendTimeLayout))
	q.Set("endTime", end.Format(backendTimeLayout))
	return get[[]SysLog](ctx, a.client, a.Base()+"/time", q)
}
