// Package screens holds the state and actions of every client screen. A
// front-end renders a screen and calls its actions; navigation goes through
// the Navigator the screen was built with.
package screens

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote"
	"github.com/Kerhoff/GiftMind/internal/session"
)

// Texts shown by the screens.
const (
	TextLoadingRecipient = "Loading recipient..."
	TextNoRecipients     = `No recipients yet. Click "Add New Recipient" to get started.`
	TextNoIdeas          = "No gift ideas yet."
	TextNotAvailable     = "N/A"
)

var ErrUnknownField = errors.New("unknown field")

// Screen is a mounted screen.
type Screen interface {
	Route() nav.Route
	// Mount loads the data the screen shows. A failed load leaves the
	// screen usable with whatever it had.
	Mount(ctx context.Context) error
}

// Navigator moves the client to another route.
type Navigator interface {
	Navigate(ctx context.Context, r nav.Route) error
}

// Deps are the collaborators every screen is built from.
type Deps struct {
	Session *session.Context
	Store   remote.Store
	Nav     Navigator
	Confirm collection.ConfirmFunc
	Logger  *logrus.Logger
}

// Build returns a fresh screen for r. Every call creates independent
// collections, so screens never share state.
func Build(r nav.Route, d Deps) Screen {
	switch r.Name {
	case nav.Login:
		return NewLogin(d)
	case nav.Signup:
		return NewSignup(d)
	case nav.AddRecipient:
		return NewAddRecipient(d)
	case nav.RecipientDetail:
		return NewRecipientDetail(r.ID, d)
	default:
		return NewDashboard(d)
	}
}
