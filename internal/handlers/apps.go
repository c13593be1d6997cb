package handlers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/metrics"
)

// AppFactory builds the client app of one chat.
type AppFactory func(chatID int64) *app.App

type chatApp struct {
	mu  sync.Mutex
	app *app.App
}

// Apps runs one client app per chat. Commands of one chat are handled one
// at a time.
type Apps struct {
	factory AppFactory
	metrics *metrics.Metrics
	logger  *logrus.Logger

	mu      sync.Mutex
	chats   map[int64]*chatApp
	running map[int64]*app.App
}

// NewApps creates an empty registry. m may be nil.
func NewApps(factory AppFactory, m *metrics.Metrics, logger *logrus.Logger) *Apps {
	return &Apps{
		factory: factory,
		metrics: m,
		logger:  logger,
		chats:   make(map[int64]*chatApp),
		running: make(map[int64]*app.App),
	}
}

// Acquire returns the app of chatID, starting it on first use, and locks
// it for the caller. release must be called when the command is done.
func (a *Apps) Acquire(ctx context.Context, chatID int64) (_ *app.App, release func()) {
	a.mu.Lock()
	c, ok := a.chats[chatID]
	if !ok {
		c = &chatApp{}
		a.chats[chatID] = c
	}
	a.mu.Unlock()

	c.mu.Lock()
	if c.app == nil {
		c.app = a.factory(chatID)
		c.app.Start(ctx, nil)

		a.mu.Lock()
		a.running[chatID] = c.app
		n := len(a.running)
		a.mu.Unlock()

		a.logger.WithField("chat_id", chatID).Info("Started client app")
		if a.metrics != nil {
			a.metrics.SetActiveChats(n)
		}
	}
	return c.app, c.mu.Unlock
}

// Lookup returns the running app of chatID without locking it.
func (a *Apps) Lookup(chatID int64) (*app.App, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	client, ok := a.running[chatID]
	return client, ok
}

// Each calls fn for every running app. The apps are not locked, so fn may
// run while a command of the same chat is in progress.
func (a *Apps) Each(fn func(chatID int64, client *app.App)) {
	a.mu.Lock()
	running := make(map[int64]*app.App, len(a.running))
	for id, client := range a.running {
		running[id] = client
	}
	a.mu.Unlock()

	for id, client := range running {
		fn(id, client)
	}
}

// Len returns the number of running apps.
func (a *Apps) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.running)
}

// Close tears every app down.
func (a *Apps) Close() {
	a.mu.Lock()
	chats := a.chats
	a.chats = make(map[int64]*chatApp)
	a.running = make(map[int64]*app.App)
	a.mu.Unlock()

	for _, c := range chats {
		c.mu.Lock()
		if c.app != nil {
			c.app.Close()
		}
		c.mu.Unlock()
	}
	if a.metrics != nil {
		a.metrics.SetActiveChats(0)
	}
}
