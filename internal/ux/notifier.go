package ux

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakura-poetry/poetryctl/internal/gateway"
)

// Styles are the terminal styles used for notices and hints.
type Styles struct {
	Error   lipgloss.Style
	Warn    lipgloss.Style
	Info    lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style
}

// NewStyles builds styles bound to w. With noColor every style is plain.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		plain := r.NewStyle()
		return Styles{Error: plain, Warn: plain, Info: plain, Hint: plain, Success: plain}
	}
	return Styles{
		Error:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Warn:    r.NewStyle().Foreground(lipgloss.Color("3")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Hint:    r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// TerminalNotifier prints gateway notices to a terminal stream, normally
// stderr so they never mix with command output.
type TerminalNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
}

// NewTerminalNotifier creates a notifier writing to w.
func NewTerminalNotifier(w io.Writer, noColor bool) *TerminalNotifier {
	return &TerminalNotifier{w: w, styles: NewStyles(w, noColor)}
}

// Notify implements gateway.Notifier.
func (n *TerminalNotifier) Notify(_ context.Context, notice gateway.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var line string
	switch notice.Level {
	case gateway.LevelInfo:
		line = n.styles.Info.Render("• " + notice.Message)
	case gateway.LevelWarn:
		line = n.styles.Warn.Render("! " + notice.Message)
	default:
		line = n.styles.Error.Render("✗ " + notice.Message)
	}
	fmt.Fprintln(n.w, line)
}

// LoginNavigator is the CLI's stand-in for redirecting to the login screen:
// it prints a re-login hint once and remembers that it fired so the process
// can exit with the auth exit code.
type LoginNavigator struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	fired  int
}

// NewLoginNavigator creates a navigator writing to w.
func NewLoginNavigator(w io.Writer, noColor bool) *LoginNavigator {
	return &LoginNavigator{w: w, styles: NewStyles(w, noColor)}
}

// NavigateToLogin implements gateway.Navigator.
func (n *LoginNavigator) NavigateToLogin(_ context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.fired++
	if n.fired == 1 {
		fmt.Fprintln(n.w, n.styles.Hint.Render("Your session has ended. Run 'poetryctl auth login' to sign in again."))
	}
}

// Fired reports how many times navigation was requested.
func (n *LoginNavigator) Fired() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}

var (
	_ gateway.Notifier  = (*TerminalNotifier)(nil)
	_ gateway.Navigator = (*LoginNavigator)(nil)
)
