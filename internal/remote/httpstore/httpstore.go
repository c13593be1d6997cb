// Package httpstore is the remote store client that talks to the GiftMind
// store service over its JSON HTTP API.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/remote"
)

// DefaultTimeout bounds every request made by a client built without an
// explicit http.Client.
const DefaultTimeout = 10 * time.Second

// Client is the base of the store views. It holds no token; views returned
// by As attach one to every collection call.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the service at baseURL, e.g. http://localhost:8080.
func New(baseURL string, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Auth returns the authentication surface. It needs no token.
func (c *Client) Auth() remote.Auth {
	return authClient{c}
}

// As returns a store whose collection calls carry the token supplied by
// tokens.
func (c *Client) As(tokens remote.TokenSource) remote.Store {
	return &view{client: c, tokens: tokens}
}

type errorBody struct {
	Error string `json:"error"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// do sends one request and decodes a JSON response into out when out is
// not nil.
func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("op", op).Warn("Store request failed")
		return &remote.StoreError{Op: op, Message: err.Error(), Err: remote.ErrUnavailable}
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Store request")

	if resp.StatusCode >= 300 {
		return c.statusError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &remote.StoreError{Op: op, Status: resp.StatusCode, Message: "invalid response body", Err: err}
	}
	return nil
}

// statusError maps a non-2xx response to the remote error taxonomy.
func (c *Client) statusError(op string, resp *http.Response) error {
	var eb errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(raw))
	}

	se := &remote.StoreError{Op: op, Status: resp.StatusCode, Message: eb.Error}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		se.Err = remote.ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		se.Err = remote.ErrNotFound
	case resp.StatusCode >= 500:
		se.Err = remote.ErrUnavailable
	}
	return se
}

type authClient struct {
	c *Client
}

func (a authClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	return a.authenticate(ctx, remote.OpSignIn, "/auth/signin", email, password)
}

func (a authClient) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	return a.authenticate(ctx, remote.OpSignUp, "/auth/signup", email, password)
}

// authenticate turns rejected credentials into an AuthError carrying the
// service message. Transport and server failures stay StoreErrors.
func (a authClient) authenticate(ctx context.Context, op, path, email, password string) (*models.Session, error) {
	var sess models.Session
	err := a.c.do(ctx, op, http.MethodPost, path, "", credentials{Email: email, Password: password}, &sess)
	if err != nil {
		var se *remote.StoreError
		if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 && se.Message != "" {
			return nil, &remote.AuthError{Message: se.Message}
		}
		return nil, err
	}
	return &sess, nil
}

func (a authClient) Refresh(ctx context.Context, accessToken string) (*models.Session, error) {
	var sess models.Session
	if err := a.c.do(ctx, remote.OpRefresh, http.MethodPost, "/auth/refresh", accessToken, nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
