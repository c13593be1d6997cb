package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kerhoff/GiftMind/internal/models"
	"github.com/Kerhoff/GiftMind/internal/repository"
)

type giftIdeaRepository struct {
	db *sql.DB
}

// NewGiftIdeaRepository creates a new gift idea repository
func NewGiftIdeaRepository(db *sql.DB) repository.GiftIdeaRepository {
	return &giftIdeaRepository{db: db}
}

func (r *giftIdeaRepository) Create(ctx context.Context, idea *models.GiftIdea) (*models.GiftIdea, error) {
	query := `
		INSERT INTO gift_ideas (recipient_id, text, note, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	idea.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		idea.RecipientID,
		idea.Text,
		idea.Note,
		idea.CreatedAt,
	).Scan(&idea.ID, &idea.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create gift idea: %w", err)
	}

	return idea, nil
}

func (r *giftIdeaRepository) GetByRecipient(ctx context.Context, userID, recipientID int64) ([]*models.GiftIdea, error) {
	query := `
		SELECT g.id, g.recipient_id, g.text, g.note, g.created_at
		FROM gift_ideas g
		JOIN recipients r ON r.id = g.recipient_id
		WHERE g.recipient_id = $1 AND r.user_id = $2
		ORDER BY g.created_at DESC, g.id DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get gift ideas: %w", err)
	}
	defer rows.Close()

	var ideas []*models.GiftIdea
	for rows.Next() {
		idea := &models.GiftIdea{}
		if err := rows.Scan(
			&idea.ID,
			&idea.RecipientID,
			&idea.Text,
			&idea.Note,
			&idea.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan gift idea: %w", err)
		}
		ideas = append(ideas, idea)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gift ideas: %w", err)
	}

	return ideas, nil
}

func (r *giftIdeaRepository) GetRecipientIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT g.recipient_id
		FROM gift_ideas g
		JOIN recipients r ON r.id = g.recipient_id
		WHERE r.user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get idea recipient IDs: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipient ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipient IDs: %w", err)
	}

	return ids, nil
}

func (r *giftIdeaRepository) Update(ctx context.Context, userID, id int64, in models.IdeaInput) error {
	query := `
		UPDATE gift_ideas g
		SET text = $3, note = $4
		FROM recipients r
		WHERE g.id = $1 AND r.id = g.recipient_id AND r.user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID, in.Text, in.Note)
	if err != nil {
		return fmt.Errorf("failed to update gift idea: %w", err)
	}

	return expectOneRow(result, "gift idea", id)
}

func (r *giftIdeaRepository) Delete(ctx context.Context, userID, id int64) error {
	query := `
		DELETE FROM gift_ideas g
		USING recipients r
		WHERE g.id = $1 AND r.id = g.recipient_id AND r.user_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete gift idea: %w", err)
	}

	return expectOneRow(result, "gift idea", id)
}
