// Package app is the client shell: it owns the session, the history and the
// mounted screen, and puts the session guard in front of gated routes.
package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/session"
)

// StoreFactory returns the store view a session's collection calls go
// through.
type StoreFactory func(tokens remote.TokenSource) remote.Store

// App is one client. It is safe for use from several goroutines, but
// actions of one user are expected to arrive in order.
type App struct {
	session *session.Context
	history *nav.History
	deps    screens.Deps
	logger  *logrus.Logger

	mu          sync.Mutex
	current     screens.Screen
	unsubscribe func()
}

// New creates an app at the dashboard route. auth serves sign-in and
// refresh; store builds the collection view bound to the session token.
func New(auth remote.Auth, store StoreFactory, confirm collection.ConfirmFunc, logger *logrus.Logger) *App {
	sess := session.New(auth, logger)
	a := &App{
		session: sess,
		history: nav.NewHistory(nav.To(nav.Dashboard)),
		logger:  logger,
	}
	a.deps = screens.Deps{
		Session: sess,
		Store:   store(sess),
		Nav:     a,
		Confirm: confirm,
		Logger:  logger,
	}
	return a
}

// Session returns the session of the app.
func (a *App) Session() *session.Context {
	return a.session
}

// Start subscribes to session changes and resolves the session from
// restored, which may be nil.
func (a *App) Start(ctx context.Context, restored *models.Session) {
	a.mu.Lock()
	a.unsubscribe = a.session.Subscribe(a.onSession)
	a.mu.Unlock()

	a.session.Init(ctx, restored)
}

// Close tears the session down.
func (a *App) Close() {
	a.mu.Lock()
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.current = nil
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	a.session.Close()
}

// Current returns the mounted screen, or nil while the session is pending.
func (a *App) Current() screens.Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Route returns the route on top of the history.
func (a *App) Route() nav.Route {
	return a.history.Current()
}

// History returns the visited routes, oldest first.
func (a *App) History() []nav.Route {
	return a.history.Entries()
}

// Navigate implements screens.Navigator.
func (a *App) Navigate(ctx context.Context, r nav.Route) error {
	a.history.Push(r)
	return a.show(ctx)
}

// Back returns to the previous route. At the first entry it stays put.
func (a *App) Back(ctx context.Context) error {
	if _, ok := a.history.Back(); !ok {
		return nil
	}
	return a.show(ctx)
}

// SignOut drops the session. A gated screen is replaced by the login screen.
func (a *App) SignOut(ctx context.Context) {
	a.session.SignOut(ctx)
}

func (a *App) onSession(ctx context.Context, st session.State) {
	r := a.history.Current()
	if !r.Gated() {
		return
	}
	// A refreshed token keeps the mounted screen and its drafts.
	if cur := a.Current(); st.Status == session.StatusPresent && cur != nil && cur.Route() == r {
		return
	}
	if err := a.show(ctx); err != nil {
		a.logger.WithError(err).Debug("Screen mounted with errors")
	}
}

// show mounts a screen for the current route, applying the guard.
func (a *App) show(ctx context.Context) error {
	r := a.history.Current()
	if r.Gated() {
		switch session.Guard(a.session.State()) {
		case session.Suspend:
			a.setCurrent(nil)
			return nil
		case session.Redirect:
			a.logger.WithField("route", r.String()).Debug("Redirecting to login")
			r = nav.To(nav.Login)
			a.history.Redirect(r)
		}
	}

	screen := screens.Build(r, a.deps)
	a.setCurrent(screen)
	return screen.Mount(ctx)
}

func (a *App) setCurrent(s screens.Screen) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = s
}
