package handlers

import (
	"context"
	"time"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/session"
)

// TextSessionExpired is sent to a chat whose session could not be renewed.
const TextSessionExpired = "⌛ Your session has expired. Please sign in again with /login <email> <password>."

// NotifyFunc sends a message to a chat.
type NotifyFunc func(chatID int64, text string)

// StartRefreshScheduler runs a background loop that renews sessions close to
// expiry every interval. A session is renewed when it expires within two
// intervals. It blocks until the context is cancelled, so it should be
// launched in a separate goroutine.
func (a *Apps) StartRefreshScheduler(ctx context.Context, interval time.Duration, notify NotifyFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.logger.Info("Session refresh scheduler started")

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Session refresh scheduler stopped")
			return
		case <-ticker.C:
			a.refreshSessions(ctx, 2*interval, notify)
		}
	}
}

// refreshSessions renews every present session that expires within window.
// Chats whose token was rejected are told to sign in again; a store outage
// leaves the session for the next tick.
func (a *Apps) refreshSessions(ctx context.Context, window time.Duration, notify NotifyFunc) {
	a.Each(func(chatID int64, client *app.App) {
		sess := client.Session()
		if sess.State().Status != session.StatusPresent || !sess.NeedsRefresh(window) {
			return
		}

		err := sess.Refresh(ctx)
		if a.metrics != nil {
			a.metrics.SessionRefreshed(err)
		}
		if err != nil {
			a.logger.WithError(err).WithField("chat_id", chatID).Warn("Failed to refresh session")
			if sess.State().Status == session.StatusAbsent {
				notify(chatID, TextSessionExpired)
			}
			return
		}
		a.logger.WithField("chat_id", chatID).Debug("Session refreshed")
	})
}
