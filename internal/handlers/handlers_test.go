package handlers

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/GiftMind/internal/app"
	"github.com/Kerhoff/GiftMind/internal/collection"
	"github.com/Kerhoff/GiftMind/internal/nav"
	"github.com/Kerhoff/GiftMind/internal/remote"
	"github.com/Kerhoff/GiftMind/internal/remote/memstore"
	"github.com/Kerhoff/GiftMind/internal/screens"
	"github.com/Kerhoff/GiftMind/internal/telegram"
	"github.com/Kerhoff/GiftMind/internal/telegram/telegramtest"
)

const chatID = 100

type fixture struct {
	t        *testing.T
	store    *memstore.Store
	apps     *Apps
	router   *telegram.Router
	sender   *telegramtest.Sender
	prompter *telegram.Prompter
}

// newFixture wires the bot against an in-memory store. A nil confirm asks
// through the Prompter.
func newFixture(t *testing.T, confirm collection.ConfirmFunc) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	f := &fixture{
		t:      t,
		store:  memstore.New(),
		router: telegram.NewRouter(logger, nil),
		sender: &telegramtest.Sender{},
	}
	f.prompter = telegram.NewPrompter(f.sender, time.Minute, logger)
	f.apps = NewApps(func(chatID int64) *app.App {
		c := confirm
		if c == nil {
			c = func(ctx context.Context, prompt string) (bool, error) {
				return f.prompter.Ask(ctx, chatID, prompt)
			}
		}
		return app.New(f.store.Unscoped().Auth(), f.store.As, c, logger)
	}, nil, logger)
	t.Cleanup(f.apps.Close)
	Register(f.router, f.apps, f.prompter, logger)
	return f
}

// send runs a command and returns the text of the last message sent.
func (f *fixture) send(text string) string {
	f.t.Helper()
	f.router.HandleMessage(context.Background(), f.sender, telegramtest.Command(chatID, text))
	return f.sender.LastText()
}

func (f *fixture) app() *app.App {
	f.t.Helper()
	a, ok := f.apps.Lookup(chatID)
	require.True(f.t, ok)
	return a
}

func (f *fixture) signedUp() {
	f.t.Helper()
	out := f.send("/signup ann@example.com secret1")
	require.Contains(f.t, out, "No recipients yet")
}

// addRecipient adds a recipient through the bot and returns its id.
func (f *fixture) addRecipient(name string) int64 {
	f.t.Helper()
	f.send("/add " + name + " | Birthday")
	dash, ok := f.app().Current().(*screens.Dashboard)
	require.True(f.t, ok)
	for _, row := range dash.Rows() {
		if row.Name == name {
			return row.ID
		}
	}
	f.t.Fatalf("recipient %s not listed", name)
	return 0
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestStart_ShowsLogin(t *testing.T) {
	f := newFixture(t, collection.Always)

	out := f.send("/start")

	require.Len(t, f.sender.Messages(), 2)
	assert.Contains(t, f.sender.Messages()[0].Text, "Welcome to GiftMind")
	assert.Contains(t, out, "Sign in")
	assert.Equal(t, tgbotapi.ModeMarkdownV2, f.sender.Messages()[1].ParseMode)
	assert.Equal(t, nav.To(nav.Login), f.app().Route())
	assert.Equal(t, 1, f.apps.Len())
}

func TestHelp_ListsCommands(t *testing.T) {
	f := newFixture(t, collection.Always)

	out := f.send("/help")
	for _, cmd := range []string{"/login", "/signup", "/add", "/idea", "/edit", "/delete", "/back"} {
		assert.Contains(t, out, cmd)
	}
	assert.Equal(t, 0, f.apps.Len())
}

func TestLogin_ShowsProviderMessageAndDeletesPassword(t *testing.T) {
	f := newFixture(t, collection.Always)

	out := f.send("/login ann@example.com wrong-pw")

	assert.Contains(t, out, "Invalid login credentials")
	require.Len(t, f.sender.Requests(), 1)
	_, ok := f.sender.Requests()[0].(tgbotapi.DeleteMessageConfig)
	assert.True(t, ok)
}

func TestLogin_WithoutArgumentsShowsForm(t *testing.T) {
	f := newFixture(t, collection.Always)

	out := f.send("/login")
	assert.Contains(t, out, "Sign in")
	assert.Empty(t, f.sender.Requests())
}

func TestRecipientAndIdeaFlow(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()

	out := f.send("/add Mom | Birthday")
	assert.Contains(t, out, "Recipient added")
	assert.Contains(t, out, "Mom")
	assert.Contains(t, out, "Birthday")
	assert.Contains(t, out, "0 ideas")

	id := f.addRecipient("Dad")
	_, ok := f.store.Recipient(id)
	require.True(t, ok)

	out = f.send("/open " + itoa(id))
	assert.Contains(t, out, "Gift ideas for Dad")
	assert.Contains(t, out, "No gift ideas yet")

	out = f.send("/idea Socks | wool")
	assert.Contains(t, out, "Idea added")
	assert.Contains(t, out, "Socks")
	assert.Contains(t, out, "wool")

	out = f.send("/back")
	assert.Contains(t, out, "1 idea")
	assert.Equal(t, nav.To(nav.Dashboard), f.app().Route())
}

func TestAdd_MissingNameKeepsForm(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()

	out := f.send("/add | Birthday")

	assert.Contains(t, out, "Name is required")
	assert.Equal(t, nav.To(nav.AddRecipient), f.app().Route())
}

func TestIdea_EmptyTextShowsError(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	id := f.addRecipient("Mom")
	f.send("/open " + itoa(id))

	out := f.send("/idea")
	assert.Contains(t, out, "Idea text is required")
	assert.Equal(t, 0, f.store.Calls(remote.OpIdeasInsert))
}

func TestEditSetSaveCancel(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	id := f.addRecipient("Mom")

	out := f.send("/set " + itoa(id) + " name Mother")
	assert.Contains(t, out, "is not being edited")

	f.send("/edit " + itoa(id))
	out = f.send("/set " + itoa(id) + " colour red")
	assert.Contains(t, out, "Unknown field")

	out = f.send("/set " + itoa(id) + " name Mother Dear")
	assert.Contains(t, out, "Mother Dear")

	out = f.send("/save " + itoa(id))
	assert.Contains(t, out, "Saved")
	r, _ := f.store.Recipient(id)
	assert.Equal(t, "Mother Dear", r.Name)

	f.send("/edit " + itoa(id))
	f.send("/set " + itoa(id) + " name Nobody")
	f.send("/cancel " + itoa(id))
	r, _ = f.store.Recipient(id)
	assert.Equal(t, "Mother Dear", r.Name)

	out = f.send("/edit 999")
	assert.Contains(t, out, `No item \#999`)

	out = f.send("/edit abc")
	assert.Contains(t, out, "Please provide a numeric id")
}

func TestEditIdea(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	id := f.addRecipient("Mom")
	f.send("/open " + itoa(id))
	f.send("/idea Socks")

	detail, ok := f.app().Current().(*screens.RecipientDetail)
	require.True(t, ok)
	rows := detail.Rows()
	require.Len(t, rows, 1)
	ideaID := rows[0].ID

	f.send("/edit " + itoa(ideaID))
	f.send("/set " + itoa(ideaID) + " text Scarf")
	out := f.send("/save " + itoa(ideaID))
	assert.Contains(t, out, "Scarf")

	idea, _ := f.store.Idea(ideaID)
	assert.Equal(t, "Scarf", idea.Text)

	out = f.send("/delete " + itoa(ideaID))
	assert.Contains(t, out, "Deleted")
	_, exists := f.store.Idea(ideaID)
	assert.False(t, exists)
}

func TestDelete_Declined(t *testing.T) {
	f := newFixture(t, collection.Never)
	f.signedUp()
	id := f.addRecipient("Mom")

	out := f.send("/delete " + itoa(id))

	assert.Contains(t, out, "Nothing was deleted")
	_, ok := f.store.Recipient(id)
	assert.True(t, ok)
}

func TestDelete_ConfirmedThroughPrompt(t *testing.T) {
	f := newFixture(t, nil)
	f.signedUp()
	id := f.addRecipient("Mom")
	f.sender.Reset()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.router.HandleMessage(context.Background(), f.sender, telegramtest.Command(chatID, "/delete "+itoa(id)))
	}()

	require.Eventually(t, func() bool { return len(f.sender.Messages()) == 1 }, time.Second, time.Millisecond)
	prompt := f.sender.Messages()[0]
	assert.Equal(t, collection.PromptDeleteRecipient, prompt.Text)
	buttons := telegramtest.ButtonData(prompt)
	require.Len(t, buttons, 2)

	f.router.HandleCallbackQuery(context.Background(), f.sender, telegramtest.Press(chatID, 1, prompt.Text, buttons[0]))
	wg.Wait()

	assert.Contains(t, f.sender.LastText(), "Deleted")
	_, ok := f.store.Recipient(id)
	assert.False(t, ok)
}

func TestCommandsNeedSession(t *testing.T) {
	f := newFixture(t, collection.Always)

	assert.Contains(t, f.send("/idea Socks"), "Please sign in first")
	assert.Contains(t, f.send("/edit 1"), "Please sign in first")
	assert.Contains(t, f.send("/open 1"), "Sign in")
	assert.Equal(t, nav.To(nav.Login), f.app().Route())
}

func TestGo(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	id := f.addRecipient("Mom")

	assert.Contains(t, f.send("/go nowhere"), "Unknown page")
	assert.Contains(t, f.send("/go recipient/"+itoa(id)), "Gift ideas for Mom")
	assert.Contains(t, f.send("/go dashboard"), "Mom")
}

func TestLogout(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()

	out := f.send("/logout")

	assert.Contains(t, out, "Signed out")
	assert.Contains(t, out, "Sign in")
	assert.Equal(t, nav.To(nav.Login), f.app().Route())
}

func TestChatsAreIndependent(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	f.addRecipient("Mom")

	f.router.HandleMessage(context.Background(), f.sender, telegramtest.Command(chatID+1, "/dashboard"))

	assert.Contains(t, f.sender.LastText(), "Sign in")
	assert.Equal(t, 2, f.apps.Len())
}

func TestRefreshSessions(t *testing.T) {
	f := newFixture(t, collection.Always)
	f.signedUp()
	before := f.app().Session().AccessToken()

	var notified []int64
	notify := func(chatID int64, text string) { notified = append(notified, chatID) }

	f.apps.refreshSessions(context.Background(), time.Minute, notify)
	assert.Equal(t, 0, f.store.Calls(remote.OpRefresh), "not due yet")

	f.apps.refreshSessions(context.Background(), 2*memstore.DefaultTTL, notify)
	assert.Equal(t, 1, f.store.Calls(remote.OpRefresh))
	assert.NotEqual(t, before, f.app().Session().AccessToken())
	assert.Equal(t, nav.To(nav.Dashboard), f.app().Route())
	assert.Empty(t, notified)

	f.store.Fail(remote.OpRefresh, remote.ErrUnavailable)
	f.apps.refreshSessions(context.Background(), 2*memstore.DefaultTTL, notify)
	assert.Empty(t, notified, "an outage does not sign the chat out")
	assert.Equal(t, nav.To(nav.Dashboard), f.app().Route())

	f.store.Fail(remote.OpRefresh, remote.ErrUnauthorized)
	f.apps.refreshSessions(context.Background(), 2*memstore.DefaultTTL, notify)
	assert.Equal(t, []int64{chatID}, notified)
	assert.Equal(t, nav.To(nav.Login), f.app().Route())
}

func TestRender_PendingSession(t *testing.T) {
	assert.Contains(t, Render(nil), "Checking your session")
}

func TestParseHelpers(t *testing.T) {
	id, ok := parseID([]string{"#12"})
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)

	_, ok = parseID([]string{"-1"})
	assert.False(t, ok)
	_, ok = parseID(nil)
	assert.False(t, ok)

	name, occasion := parsePair([]string{"Aunt", "May", "|", "Xmas", "Eve"})
	assert.Equal(t, "Aunt May", name)
	assert.Equal(t, "Xmas Eve", occasion)

	name, occasion = parsePair([]string{"Bob"})
	assert.Equal(t, "Bob", name)
	assert.Empty(t, occasion)
}
