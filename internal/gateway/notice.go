package gateway

import "context"

// Notice texts emitted by the gateway.
const (
	MsgSessionExpired = "session expired, please log in again"
	MsgPermission     = "insufficient permission"
	MsgServerError    = "internal server error"
	MsgRequestFailed  = "request failed"
	MsgBadRequest     = "invalid request parameters"
	MsgUnauthorized   = "unauthorized, please log in again"
	MsgNotFound       = "requested resource not found"
	MsgNetwork        = "network error, please check your connection"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// Notice is a short user-visible message.
type Notice struct {
	Level   Level
	Message string
}

// Notifier surfaces notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Navigator forces the application back to its login entry point.
type Navigator interface {
	NavigateToLogin(ctx context.Context)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) { f(ctx, n) }

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context)

// NavigateToLogin calls f.
func (f NavigatorFunc) NavigateToLogin(ctx context.Context) { f(ctx) }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notice) {}

type nopNavigator struct{}

func (nopNavigator) NavigateToLogin(context.Context) {}
