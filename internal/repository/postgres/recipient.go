package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/repository"
)

type recipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new recipient repository
func NewRecipientRepository(db *sql.DB) repository.RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) Create(ctx context.Context, recipient *models.Recipient) (*models.Recipient, error) {
	query := `
		INSERT INTO recipients (user_id, name, occasion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	recipient.CreatedAt = now
	recipient.UpdatedAt = now

	err := r.db.QueryRowContext(ctx, query,
		recipient.UserID,
		recipient.Name,
		recipient.Occasion,
		recipient.CreatedAt,
		recipient.UpdatedAt,
	).Scan(&recipient.ID, &recipient.CreatedAt, &recipient.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create recipient: %w", err)
	}

	return recipient, nil
}

func (r *recipientRepository) GetByID(ctx context.Context, userID, id int64) (*models.Recipient, error) {
	query := `
		SELECT id, user_id, name, occasion, created_at, updated_at
		FROM recipients
		WHERE id = $1 AND user_id = $2`

	recipient := &models.Recipient{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&recipient.ID,
		&recipient.UserID,
		&recipient.Name,
		&recipient.Occasion,
		&recipient.CreatedAt,
		&recipient.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipient by ID: %w", err)
	}

	return recipient, nil
}

func (r *recipientRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Recipient, error) {
	query := `
		SELECT id, user_id, name, occasion, created_at, updated_at
		FROM recipients
		WHERE user_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	defer rows.Close()

	var recipients []*models.Recipient
	for rows.Next() {
		recipient := &models.Recipient{}
		if err := rows.Scan(
			&recipient.ID,
			&recipient.UserID,
			&recipient.Name,
			&recipient.Occasion,
			&recipient.CreatedAt,
			&recipient.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		recipients = append(recipients, recipient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipients: %w", err)
	}

	return recipients, nil
}

func (r *recipientRepository) Update(ctx context.Context, userID, id int64, in models.RecipientInput) error {
	query := `
		UPDATE recipients
		SET name = $3, occasion = $4, updated_at = $5
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, in.Name, in.Occasion, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update recipient: %w", err)
	}

	return expectOneRow(result, "recipient", id)
}

func (r *recipientRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM recipients WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete recipient: %w", err)
	}

	return expectOneRow(result, "recipient", id)
}

func expectOneRow(result sql.Result, kind string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %d: %w", kind, id, repository.ErrNotFound)
	}

	return nil
}
