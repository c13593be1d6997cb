package screens

import (
	"context"
	"sync"

	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

type authFunc func(ctx context.Context, email, password string) error

// authForm is the email/password form shared by login and signup.
type authForm struct {
	route  nav.Route
	submit authFunc
	nav    Navigator

	mu  sync.Mutex
	err string
}

// Route implements Screen.
func (f *authForm) Route() nav.Route { return f.route }

// Mount implements Screen.
func (f *authForm) Mount(ctx context.Context) error {
	f.setError("")
	return nil
}

// Error returns the message of the last failed submit.
func (f *authForm) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *authForm) setError(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = msg
}

// Submit authenticates and moves to the dashboard. On failure the provider
// message is kept on the form and the error is returned.
func (f *authForm) Submit(ctx context.Context, email, password string) error {
	f.setError("")
	if err := f.submit(ctx, email, password); err != nil {
		f.setError(remote.AuthMessage(err))
		return err
	}
	return f.nav.Navigate(ctx, nav.To(nav.Dashboard))
}

// Login is the sign-in screen.
type Login struct {
	authForm
}

func NewLogin(d Deps) *Login {
	return &Login{authForm{route: nav.To(nav.Login), submit: d.Session.SignIn, nav: d.Nav}}
}

// Signup is the account creation screen.
type Signup struct {
	authForm
}

func NewSignup(d Deps) *Signup {
	return &Signup{authForm{route: nav.To(nav.Signup), submit: d.Session.SignUp, nav: d.Nav}}
}
