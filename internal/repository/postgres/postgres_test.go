package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func strPtr(s string) *string { return &s }

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*created_at\).*RETURNING\s+id,\s*created_at`).
		WithArgs("ann@example.com", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, created))

	got, err := NewUserRepository(db).Create(context.Background(), &models.User{Email: "ann@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	_, err := NewUserRepository(db).Create(context.Background(), &models.User{Email: "ann@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*email,\s*password_hash,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(7, "ann@example.com", "hash", time.Now()))
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.GetByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)

	got, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepository_GetByIDError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).
		WithArgs(int64(7)).
		WillReturnError(errors.New("db down"))

	_, err := NewUserRepository(db).GetByID(context.Background(), 7)
	assert.ErrorContains(t, err, "db down")
}

func TestRecipientRepository_CreateNullOccasion(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+recipients\s*\(user_id,\s*name,\s*occasion,\s*created_at,\s*updated_at\)`).
		WithArgs(int64(7), "Mom", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))

	got, err := NewRecipientRepository(db).Create(context.Background(), &models.Recipient{UserID: 7, Name: "Mom"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestRecipientRepository_GetByUser(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+recipients\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "occasion", "created_at", "updated_at"}).
			AddRow(1, 7, "Mom", "Birthday", now, now).
			AddRow(2, 7, "Dad", nil, now, now))

	got, err := NewRecipientRepository(db).GetByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Birthday", *got[0].Occasion)
	assert.Nil(t, got[1].Occasion)
}

func TestRecipientRepository_GetByIDScopedToUser(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)FROM\s+recipients\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2`).
		WithArgs(int64(3), int64(8)).
		WillReturnError(sql.ErrNoRows)

	got, err := NewRecipientRepository(db).GetByID(context.Background(), 8, 3)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRecipientRepository_UpdateAndDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecipientRepository(db)

	mock.ExpectExec(`(?s)UPDATE\s+recipients\s+SET\s+name\s*=\s*\$3,\s*occasion\s*=\s*\$4`).
		WithArgs(int64(3), int64(7), "Mother", "Xmas", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+recipients`).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+recipients`).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), 7, 3, models.RecipientInput{Name: "Mother", Occasion: strPtr("Xmas")}))
	require.NoError(t, repo.Delete(context.Background(), 7, 3))
	assert.ErrorIs(t, repo.Delete(context.Background(), 7, 3), repository.ErrNotFound)
}

func TestGiftIdeaRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+gift_ideas\s*\(recipient_id,\s*text,\s*note,\s*created_at\)`).
		WithArgs(int64(3), "Socks", "wool", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, created))

	got, err := NewGiftIdeaRepository(db).Create(context.Background(), &models.GiftIdea{RecipientID: 3, Text: "Socks", Note: strPtr("wool")})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, created, got.CreatedAt)
}

func TestGiftIdeaRepository_GetByRecipientNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM\s+gift_ideas\s+g\s+JOIN\s+recipients\s+r.*ORDER\s+BY\s+g\.created_at\s+DESC,\s*g\.id\s+DESC`).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "text", "note", "created_at"}).
			AddRow(12, 3, "Book", nil, now).
			AddRow(11, 3, "Socks", "wool", now.Add(-time.Hour)))

	got, err := NewGiftIdeaRepository(db).GetByRecipient(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Book", got[0].Text)
	assert.Nil(t, got[0].Note)
	assert.Equal(t, "wool", *got[1].Note)
}

func TestGiftIdeaRepository_GetRecipientIDs(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+g\.recipient_id\s+FROM\s+gift_ideas`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"recipient_id"}).AddRow(1).AddRow(1).AddRow(2))

	got, err := NewGiftIdeaRepository(db).GetRecipientIDs(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 2}, got)
}

func TestGiftIdeaRepository_GetRecipientIDsEmpty(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`SELECT\s+g\.recipient_id`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"recipient_id"}))

	got, err := NewGiftIdeaRepository(db).GetRecipientIDs(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGiftIdeaRepository_UpdateNotOwned(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`(?s)UPDATE\s+gift_ideas\s+g\s+SET\s+text\s*=\s*\$3,\s*note\s*=\s*\$4\s+FROM\s+recipients`).
		WithArgs(int64(11), int64(8), "Socks", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGiftIdeaRepository(db).Update(context.Background(), 8, 11, models.IdeaInput{Text: "Socks"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGiftIdeaRepository_DeleteError(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`(?s)DELETE\s+FROM\s+gift_ideas\s+g\s+USING\s+recipients`).
		WithArgs(int64(11), int64(7)).
		WillReturnError(errors.New("db down"))

	err := NewGiftIdeaRepository(db).Delete(context.Background(), 7, 11)
	assert.ErrorContains(t, err, "failed to delete gift idea")
}
