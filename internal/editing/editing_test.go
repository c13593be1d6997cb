package editing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fields struct {
	Name     string
	Occasion string
}

func TestController_BeginSeedsFromCommitted(t *testing.T) {
	c := New[fields]()
	assert.Equal(t, View, c.Mode(1))

	c.Begin(1, fields{Name: "Mom"})
	require.NoError(t, c.Change(1, func(d *fields) { d.Name = "abandoned" }))
	c.Cancel(1)

	c.Begin(1, fields{Name: "Mom"})
	d, ok := c.Draft(1)
	require.True(t, ok)
	assert.Equal(t, "Mom", d.Name, "a new session never resumes an abandoned draft")
}

func TestController_CancelIsIdempotent(t *testing.T) {
	committed := fields{Name: "Mom", Occasion: "Birthday"}
	drafts := []func(*fields){
		func(d *fields) {},
		func(d *fields) { d.Name = "" },
		func(d *fields) { d.Name = "   "; d.Occasion = "x" },
		func(d *fields) { d.Name = "Mother" },
	}

	for _, edit := range drafts {
		c := New[fields]()
		c.Begin(7, committed)
		require.NoError(t, c.Change(7, edit))

		c.Cancel(7)
		assert.Equal(t, View, c.Mode(7))
		c.Cancel(7)
		assert.Equal(t, View, c.Mode(7))

		_, ok := c.Draft(7)
		assert.False(t, ok)
		assert.Equal(t, fields{Name: "Mom", Occasion: "Birthday"}, committed)
	}
}

func TestController_ChangeRequiresEditing(t *testing.T) {
	c := New[fields]()
	err := c.Change(3, func(d *fields) { d.Name = "x" })
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestController_SaveSuccessReturnsToView(t *testing.T) {
	c := New[fields]()
	c.Begin(1, fields{Name: "Mom"})
	require.NoError(t, c.Change(1, func(d *fields) { d.Name = "Mother" }))

	var got fields
	err := c.Save(context.Background(), 1, func(ctx context.Context, d fields) error {
		got = d
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Mother", got.Name)
	assert.Equal(t, View, c.Mode(1))
}

func TestController_SaveFailureStaysEditing(t *testing.T) {
	c := New[fields]()
	c.Begin(1, fields{Name: "Mom"})
	require.NoError(t, c.Change(1, func(d *fields) { d.Name = "" }))

	boom := errors.New("rejected")
	err := c.Save(context.Background(), 1, func(ctx context.Context, d fields) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Editing, c.Mode(1))

	d, ok := c.Draft(1)
	require.True(t, ok)
	assert.Equal(t, "", d.Name, "draft is kept as last edited")
}

func TestController_SaveWithoutSession(t *testing.T) {
	c := New[fields]()
	called := false
	err := c.Save(context.Background(), 1, func(ctx context.Context, d fields) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.False(t, called)
}

func TestController_SaveKeepsSessionBegunDuringCommit(t *testing.T) {
	c := New[fields]()
	c.Begin(1, fields{Name: "Mom"})

	err := c.Save(context.Background(), 1, func(ctx context.Context, d fields) error {
		c.Begin(1, fields{Name: "again"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Editing, c.Mode(1))
}

func TestController_IndependentItems(t *testing.T) {
	c := New[fields]()
	c.Begin(1, fields{Name: "Mom"})
	c.Begin(2, fields{Name: "Dad"})
	assert.ElementsMatch(t, []int64{1, 2}, c.Editing())

	c.Forget(1)
	assert.Equal(t, View, c.Mode(1))
	assert.Equal(t, Editing, c.Mode(2))
	assert.Equal(t, "editing", c.Mode(2).String())
}
