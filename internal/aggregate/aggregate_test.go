package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/GiftMind/internal/models"
)

func TestCountIdeas_ThreeIdeas(t *testing.T) {
	recipients := []models.Recipient{{ID: 1, Name: "Mom"}, {ID: 2, Name: "Dad"}}

	got := CountIdeas(recipients, []int64{1, 1, 1})

	require.Len(t, got, 2)
	assert.Equal(t, "Mom", got[0].Name)
	assert.Equal(t, 3, got[0].IdeaCount)
	assert.Equal(t, 0, got[1].IdeaCount)
}

func TestCountIdeas_IgnoresUnknownRecipients(t *testing.T) {
	got := CountIdeas([]models.Recipient{{ID: 1}}, []int64{9, 9, 1})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].IdeaCount)
}

func TestCountIdeas_Empty(t *testing.T) {
	assert.Empty(t, CountIdeas(nil, []int64{1, 2}))
	assert.NotNil(t, CountIdeas(nil, nil))
}

// Every recipient's count equals the number of ideas referencing it.
func TestCountIdeas_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		n := rng.Intn(8)
		recipients := make([]models.Recipient, n)
		for i := range recipients {
			recipients[i] = models.Recipient{ID: int64(i + 1)}
		}
		ids := make([]int64, rng.Intn(40))
		for i := range ids {
			ids[i] = int64(rng.Intn(n+2) + 1)
		}

		got := CountIdeas(recipients, ids)
		require.Len(t, got, n)
		for _, s := range got {
			want := 0
			for _, id := range ids {
				if id == s.ID {
					want++
				}
			}
			assert.Equal(t, want, s.IdeaCount, "recipient %d", s.ID)
		}
	}
}
