package cmd

import (
	"time"

	"github.com/sakura-poetry/poetryctl/internal/errors"
	"github.com/sakura-poetry/poetryctl/internal/session"
)

// requireSession fails fast when no token is stored, before any request is
// sent. A token whose exp claim has passed is only logged; the server has
// the final word and the gateway handles its verdict.
func requireSession(app *App) error {
	if !app.Store.IsLoggedIn() {
		return errors.NewNotLoggedInError()
	}

	claims, err := app.Store.Claims()
	if err != nil {
		// Opaque tokens carry no claims.
		return nil
	}
	if claims.Expired(time.Now()) {
		app.Logger.Debug("token looks expired, sending anyway",
			"expired_at", claims.ExpiresAt,
			"token_fp", session.Fingerprint(app.Store.Token()))
	}
	return nil
}
