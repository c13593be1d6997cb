// Package nav describes the screens of the client and the history stack the
// app shell moves through.
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Name identifies a screen.
type Name string

const (
	Login           Name = "login"
	Signup          Name = "signup"
	Dashboard       Name = "dashboard"
	AddRecipient    Name = "add-recipient"
	RecipientDetail Name = "recipient-detail"
)

var ErrUnknownRoute = errors.New("unknown route")

// Route is one navigation target. ID is only set for recipient-detail.
type Route struct {
	Name Name
	ID   int64
}

// To returns the route for a screen without parameters.
func To(name Name) Route {
	return Route{Name: name}
}

// Recipient returns the detail route of recipient id.
func Recipient(id int64) Route {
	return Route{Name: RecipientDetail, ID: id}
}

// Gated reports whether the route needs a signed-in user.
func (r Route) Gated() bool {
	switch r.Name {
	case Login, Signup:
		return false
	default:
		return true
	}
}

// String returns the path form of the route.
func (r Route) String() string {
	switch r.Name {
	case Dashboard:
		return "/"
	case RecipientDetail:
		return "/recipient/" + strconv.FormatInt(r.ID, 10)
	default:
		return "/" + string(r.Name)
	}
}

// Parse reads a path such as "/recipient/42" into a route.
func Parse(path string) (Route, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	switch p {
	case "", string(Dashboard):
		return To(Dashboard), nil
	case string(Login), string(Signup), string(AddRecipient):
		return To(Name(p)), nil
	}

	rest, ok := strings.CutPrefix(p, "recipient/")
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, path)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, path)
	}
	return Recipient(id), nil
}
