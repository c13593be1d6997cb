// Package session holds the authentication state of one client and the guard
// that gates screens on it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// Status is the resolution state of the session.
type Status int

const (
	StatusPending Status = iota
	StatusPresent
	StatusAbsent
)

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "present"
	case StatusAbsent:
		return "absent"
	default:
		return "pending"
	}
}

// State is a snapshot of the session.
type State struct {
	Status Status
	User   *models.User
}

// Listener is notified after every state change.
type Listener func(ctx context.Context, st State)

// Context is the session of one client. It starts pending, is resolved by
// Init, changes on sign-in, sign-up, sign-out and refresh, and is torn down
// by Close.
type Context struct {
	auth   remote.Auth
	logger *logrus.Logger
	now    func() time.Time

	mu        sync.Mutex
	status    Status
	session   *models.Session
	listeners map[int]Listener
	nextID    int
	closed    bool
}

// New creates a pending session context.
func New(auth remote.Auth, logger *logrus.Logger) *Context {
	return &Context{
		auth:      auth,
		logger:    logger,
		now:       time.Now,
		status:    StatusPending,
		listeners: make(map[int]Listener),
	}
}

// State returns the current snapshot.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Context) stateLocked() State {
	st := State{Status: c.status}
	if c.session != nil {
		u := c.session.User
		st.User = &u
	}
	return st
}

// AccessToken returns the token of the current session, or an empty string.
func (c *Context) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

// ExpiresAt returns the expiry of the current session.
func (c *Context) ExpiresAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return time.Time{}, false
	}
	return c.session.ExpiresAt, true
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (c *Context) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Init resolves the pending session. A restored session is refreshed with
// the store; without one, or when the refresh fails, the session is absent.
func (c *Context) Init(ctx context.Context, restored *models.Session) {
	if restored == nil || restored.Expired(c.now()) {
		c.set(ctx, nil)
		return
	}

	fresh, err := c.auth.Refresh(ctx, restored.AccessToken)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to restore session")
		c.set(ctx, nil)
		return
	}
	c.set(ctx, fresh)
}

// SignIn authenticates with the store. On failure the session is left as it
// was and the error carries the message to show on the form.
func (c *Context) SignIn(ctx context.Context, email, password string) error {
	sess, err := c.auth.SignIn(ctx, email, password)
	if err != nil {
		c.logger.WithError(err).Info("Sign in failed")
		return fmt.Errorf("sign in: %w", err)
	}
	c.set(ctx, sess)
	c.logger.WithField("user_id", sess.User.ID).Info("Signed in")
	return nil
}

// SignUp creates an account and signs in with it. Like SignIn, a failure
// does not touch the current session.
func (c *Context) SignUp(ctx context.Context, email, password string) error {
	sess, err := c.auth.SignUp(ctx, email, password)
	if err != nil {
		c.logger.WithError(err).Info("Sign up failed")
		return fmt.Errorf("sign up: %w", err)
	}
	c.set(ctx, sess)
	c.logger.WithField("user_id", sess.User.ID).Info("Signed up")
	return nil
}

// SignOut drops the current session.
func (c *Context) SignOut(ctx context.Context) {
	c.set(ctx, nil)
}

// Refresh exchanges the current token for a new one. When the store rejects
// it the session becomes absent; any other failure keeps the session.
func (c *Context) Refresh(ctx context.Context) error {
	token := c.AccessToken()
	if token == "" {
		return remote.ErrUnauthorized
	}

	fresh, err := c.auth.Refresh(ctx, token)
	if err != nil {
		if !rejected(err) {
			c.logger.WithError(err).Warn("Session refresh failed, keeping session")
			return fmt.Errorf("refresh session: %w", err)
		}
		c.logger.WithError(err).Warn("Session refresh rejected")
		c.set(ctx, nil)
		return fmt.Errorf("refresh session: %w", err)
	}
	c.set(ctx, fresh)
	return nil
}

// rejected reports whether err is the store refusing the token, as opposed to
// the store being unreachable.
func rejected(err error) bool {
	if errors.Is(err, remote.ErrUnauthorized) {
		return true
	}
	if errors.Is(err, remote.ErrUnavailable) {
		return false
	}
	var storeErr *remote.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Status >= 400 && storeErr.Status < 500
	}
	var authErr *remote.AuthError
	return errors.As(err, &authErr)
}

// NeedsRefresh reports whether the session expires within window.
func (c *Context) NeedsRefresh(window time.Duration) bool {
	expiresAt, ok := c.ExpiresAt()
	return ok && c.now().Add(window).After(expiresAt)
}

// Close tears the context down: listeners are dropped and the session is
// absent. Later state changes are ignored.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.session = nil
	c.status = StatusAbsent
	c.listeners = make(map[int]Listener)
}

// set replaces the session and notifies listeners outside the lock.
func (c *Context) set(ctx context.Context, sess *models.Session) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.session = sess
	if sess == nil {
		c.status = StatusAbsent
	} else {
		c.status = StatusPresent
	}
	st := c.stateLocked()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, st)
	}
}
