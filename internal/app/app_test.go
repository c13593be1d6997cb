package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote/memstore"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/session"
)

func newApp(t *testing.T) (*App, *memstore.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := memstore.New()
	a := New(s.Unscoped().Auth(), s.As, collection.Always, logger)
	t.Cleanup(a.Close)
	return a, s
}

func signUp(t *testing.T, s *memstore.Store, email string) *models.Session {
	t.Helper()
	sess, err := s.Unscoped().Auth().SignUp(context.Background(), email, "secret1")
	require.NoError(t, err)
	return sess
}

func TestApp_PendingSuspends(t *testing.T) {
	a, _ := newApp(t)
	require.NoError(t, a.Navigate(context.Background(), nav.To(nav.AddRecipient)))
	assert.Nil(t, a.Current())
	assert.Equal(t, nav.To(nav.AddRecipient), a.Route())
}

func TestApp_StartWithoutSessionShowsLogin(t *testing.T) {
	a, _ := newApp(t)
	a.Start(context.Background(), nil)

	require.NotNil(t, a.Current())
	assert.IsType(t, &screens.Login{}, a.Current())
	assert.Equal(t, []nav.Route{nav.To(nav.Login)}, a.History())
}

func TestApp_StartWithRestoredSessionShowsDashboard(t *testing.T) {
	a, s := newApp(t)
	a.Start(context.Background(), signUp(t, s, "ann@example.com"))

	assert.IsType(t, &screens.Dashboard{}, a.Current())
	assert.Equal(t, session.StatusPresent, a.Session().State().Status)
}

func TestApp_RedirectAndReturnAfterLogin(t *testing.T) {
	ctx := context.Background()
	a, s := newApp(t)
	issued := signUp(t, s, "ann@example.com")
	s.SeedRecipient(models.Recipient{ID: 42, UserID: issued.User.ID, Name: "Mom"})
	a.Start(ctx, nil)

	require.NoError(t, a.Navigate(ctx, nav.Recipient(42)))
	assert.Equal(t, nav.To(nav.Login), a.Route())
	assert.NotContains(t, a.History(), nav.Recipient(42), "back must not return to the gated screen")

	login, ok := a.Current().(*screens.Login)
	require.True(t, ok)
	require.NoError(t, login.Submit(ctx, "ann@example.com", "secret1"))
	assert.IsType(t, &screens.Dashboard{}, a.Current())

	require.NoError(t, a.Navigate(ctx, nav.Recipient(42)))
	detail, ok := a.Current().(*screens.RecipientDetail)
	require.True(t, ok)
	r, loaded := detail.Recipient()
	require.True(t, loaded)
	assert.Equal(t, "Mom", r.Name)
}

func TestApp_RepeatedRedirectsKeepOneLoginEntry(t *testing.T) {
	ctx := context.Background()
	a, _ := newApp(t)
	a.Start(ctx, nil)

	require.NoError(t, a.Navigate(ctx, nav.Recipient(42)))
	require.NoError(t, a.Navigate(ctx, nav.Recipient(43)))
	require.NoError(t, a.Navigate(ctx, nav.To(nav.AddRecipient)))

	assert.Equal(t, []nav.Route{nav.To(nav.Login)}, a.History())
	assert.IsType(t, &screens.Login{}, a.Current())
}

func TestApp_SignOutRedirects(t *testing.T) {
	ctx := context.Background()
	a, s := newApp(t)
	a.Start(ctx, signUp(t, s, "ann@example.com"))
	require.NoError(t, a.Navigate(ctx, nav.To(nav.AddRecipient)))

	a.SignOut(ctx)

	assert.IsType(t, &screens.Login{}, a.Current())
	assert.Equal(t, nav.To(nav.Login), a.Route())
}

func TestApp_RefreshKeepsMountedScreen(t *testing.T) {
	ctx := context.Background()
	a, s := newApp(t)
	issued := signUp(t, s, "ann@example.com")
	mom := s.SeedRecipient(models.Recipient{UserID: issued.User.ID, Name: "Mom"})
	a.Start(ctx, issued)

	dash, ok := a.Current().(*screens.Dashboard)
	require.True(t, ok)
	require.NoError(t, dash.BeginEdit(mom.ID))

	require.NoError(t, a.Session().Refresh(ctx))

	assert.Same(t, dash, a.Current())
	assert.Len(t, dash.Rows(), 1)
}

func TestApp_CollectionsUseSessionToken(t *testing.T) {
	ctx := context.Background()
	a, s := newApp(t)
	ann := signUp(t, s, "ann@example.com")
	bob := signUp(t, s, "bob@example.com")
	s.SeedRecipient(models.Recipient{UserID: ann.User.ID, Name: "Mom"})
	s.SeedRecipient(models.Recipient{UserID: bob.User.ID, Name: "Boss"})

	a.Start(ctx, bob)

	dash := a.Current().(*screens.Dashboard)
	rows := dash.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Boss", rows[0].Name)
}

func TestApp_BackStaysAtFirstEntry(t *testing.T) {
	ctx := context.Background()
	a, s := newApp(t)
	a.Start(ctx, signUp(t, s, "ann@example.com"))

	require.NoError(t, a.Navigate(ctx, nav.To(nav.AddRecipient)))
	require.NoError(t, a.Back(ctx))
	assert.Equal(t, nav.To(nav.Dashboard), a.Route())

	require.NoError(t, a.Back(ctx))
	assert.Equal(t, nav.To(nav.Dashboard), a.Route())
}
