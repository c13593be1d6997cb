// Package aggregate derives per-recipient idea counts.
package aggregate

import "github.com/Kerhoff/GiftMind/internal/models"

// CountIdeas groups recipientIDs, one entry per gift idea, and attaches the
// count to every recipient. Recipients without ideas get zero. The order of
// recipients is preserved and ids of unknown recipients are ignored.
func CountIdeas(recipients []models.Recipient, recipientIDs []int64) []models.RecipientSummary {
	counts := make(map[int64]int, len(recipients))
	for _, id := range recipientIDs {
		counts[id]++
	}

	out := make([]models.RecipientSummary, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, models.RecipientSummary{Recipient: r, IdeaCount: counts[r.ID]})
	}
	return out
}
