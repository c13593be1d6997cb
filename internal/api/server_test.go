package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/GiftMind/internal/auth"
	"github.com/Kerhoff/GiftMind/internal/metrics"
	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
	"github.com/Kerhoff/GiftMind/internal/remote/httpstore"
	"github.com/Kerhoff/GiftMind/internal/repository/memory"
	"github.com/Kerhoff/GiftMind/internal/service"
)

func newServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	db := memory.New()
	svc := service.New(logger, auth.NewIssuer([]byte("test-secret"), time.Hour), db.Users(), db.Recipients(), db.Ideas())
	m := metrics.New()
	ts := httptest.NewServer(NewServer(svc, m, logger).Handler())
	t.Cleanup(ts.Close)
	return ts, m
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signUp(t *testing.T, ts *httptest.Server, email string) models.Session {
	t.Helper()
	resp := call(t, ts, http.MethodPost, "/auth/signup", "", credentialsRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.Session](t, resp)
}

func TestServer_SignUpAndSignIn(t *testing.T) {
	ts, _ := newServer(t)

	sess := signUp(t, ts, "ann@example.com")
	assert.Equal(t, "ann@example.com", sess.User.Email)
	assert.NotEmpty(t, sess.AccessToken)

	resp := call(t, ts, http.MethodPost, "/auth/signup", "", credentialsRequest{Email: "ann@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, auth.MsgAlreadyRegistered, decode[map[string]string](t, resp)["error"])

	resp = call(t, ts, http.MethodPost, "/auth/signin", "", credentialsRequest{Email: "ann@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, auth.MsgInvalidCredentials, decode[map[string]string](t, resp)["error"])

	resp = call(t, ts, http.MethodPost, "/auth/signin", "", credentialsRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sess.User.ID, decode[models.Session](t, resp).User.ID)
}

func TestServer_Refresh(t *testing.T) {
	ts, _ := newServer(t)
	sess := signUp(t, ts, "ann@example.com")

	resp := call(t, ts, http.MethodPost, "/auth/refresh", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sess.User.ID, decode[models.Session](t, resp).User.ID)

	resp = call(t, ts, http.MethodPost, "/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/refresh", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RequiresToken(t *testing.T) {
	ts, _ := newServer(t)

	resp := call(t, ts, http.MethodGet, "/api/recipients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/api/recipients", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_RecipientsCRUD(t *testing.T) {
	ts, _ := newServer(t)
	token := signUp(t, ts, "ann@example.com").AccessToken

	resp := call(t, ts, http.MethodGet, "/api/recipients", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]\n", readAll(t, resp), "empty list is an array")

	resp = call(t, ts, http.MethodPost, "/api/recipients", token, models.RecipientInput{Name: " Mom "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	mom := decode[models.Recipient](t, resp)
	assert.Equal(t, "Mom", mom.Name)

	resp = call(t, ts, http.MethodPost, "/api/recipients", token, models.RecipientInput{Name: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	occasion := "Birthday"
	resp = call(t, ts, http.MethodPut, "/api/recipients/"+itoa(mom.ID), token, models.RecipientInput{Name: "Mother", Occasion: &occasion})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/api/recipients/"+itoa(mom.ID), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.Recipient](t, resp)
	assert.Equal(t, "Mother", got.Name)
	assert.Equal(t, "Birthday", got.OccasionOr(""))

	resp = call(t, ts, http.MethodDelete, "/api/recipients/"+itoa(mom.ID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/api/recipients/"+itoa(mom.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/api/recipients/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_IdeasScopedToOwner(t *testing.T) {
	ts, _ := newServer(t)
	ann := signUp(t, ts, "ann@example.com").AccessToken
	bob := signUp(t, ts, "bob@example.com").AccessToken

	resp := call(t, ts, http.MethodPost, "/api/recipients", ann, models.RecipientInput{Name: "Mom"})
	mom := decode[models.Recipient](t, resp)

	resp = call(t, ts, http.MethodPost, "/api/ideas", bob, models.IdeaInput{RecipientID: mom.ID, Text: "Socks"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/api/ideas", ann, models.IdeaInput{Text: "Socks"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/api/ideas", ann, models.IdeaInput{RecipientID: mom.ID, Text: "Socks"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	idea := decode[models.GiftIdea](t, resp)

	resp = call(t, ts, http.MethodGet, "/api/ideas/recipient-ids", ann, nil)
	assert.Equal(t, []int64{mom.ID}, decode[[]int64](t, resp))

	resp = call(t, ts, http.MethodGet, "/api/ideas/recipient-ids", bob, nil)
	assert.Empty(t, decode[[]int64](t, resp))

	resp = call(t, ts, http.MethodPut, "/api/ideas/"+itoa(idea.ID), bob, models.IdeaInput{Text: "Scarf"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, ts, http.MethodDelete, "/api/ideas/"+itoa(idea.ID), ann, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts, m := newServer(t)

	resp := call(t, ts, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err = ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))

	series, err := testutil.GatherAndCount(m.Registry(), "giftmind_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, series, "both requests share one label set")

	resp = call(t, ts, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), `route="GET /healthz"`)
}

// The HTTP client of the bot talks to this API; run it against the real
// handlers.
func TestServer_WithHTTPStore(t *testing.T) {
	ctx := context.Background()
	ts, _ := newServer(t)
	logger, _ := test.NewNullLogger()
	client := httpstore.New(ts.URL, logger)

	_, err := client.Auth().SignIn(ctx, "ann@example.com", "secret1")
	assert.Equal(t, auth.MsgInvalidCredentials, remote.AuthMessage(err))

	sess, err := client.Auth().SignUp(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	store := client.As(remote.TokenFunc(func() string { return sess.AccessToken }))

	mom, err := store.Recipients().Insert(ctx, models.RecipientInput{Name: "Mom"})
	require.NoError(t, err)
	_, err = store.Ideas().Insert(ctx, models.IdeaInput{RecipientID: mom.ID, Text: "Socks"})
	require.NoError(t, err)
	_, err = store.Ideas().Insert(ctx, models.IdeaInput{RecipientID: mom.ID, Text: "Scarf"})
	require.NoError(t, err)

	ids, err := store.Ideas().SelectAllRecipientIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{mom.ID, mom.ID}, ids)

	ideas, err := store.Ideas().SelectByRecipient(ctx, mom.ID)
	require.NoError(t, err)
	require.Len(t, ideas, 2)

	_, err = store.Recipients().SelectOne(ctx, mom.ID+100)
	assert.ErrorIs(t, err, remote.ErrNotFound)

	fresh, err := client.Auth().Refresh(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, fresh.User.ID)

	anon := client.As(nil)
	_, err = anon.Recipients().SelectAll(ctx)
	assert.ErrorIs(t, err, remote.ErrUnauthorized)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
