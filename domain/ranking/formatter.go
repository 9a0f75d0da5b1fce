package ranking

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// UnknownParticipantName replaces names that cannot be resolved
const UnknownParticipantName = "Unknown"

// Result is one presentation record of a ranked participant
type Result struct {
	ParticipantID int64   `json:"player_id"`
	Rank          int     `json:"rank"`
	Name          string  `json:"name"`
	Score         int     `json:"score"`
	Winnings      float64 `json:"winnings"`
	Placeholder   bool    `json:"-"` // name could not be resolved
}

// ParticipantLookup resolves participant IDs to display names.
// IDs missing from the returned map are treated as unresolved.
type ParticipantLookup interface {
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// ParticipantLookupFunc adapts a function to ParticipantLookup
type ParticipantLookupFunc func(ctx context.Context, ids []int64) (map[int64]string, error)

// DisplayNames calls f
func (f ParticipantLookupFunc) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return f(ctx, ids)
}

// FormatResults joins the ranking with names and final winnings, in rank order.
// An unresolved participant keeps its place with a placeholder name.
func FormatResults(ctx context.Context, r Ranking, gains map[int64]float64, lookup ParticipantLookup) ([]Result, error) {
	ids := r.ParticipantIDs()
	if len(ids) == 0 {
		return []Result{}, nil
	}

	names, err := lookup.DisplayNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participant names: %w", err)
	}

	results := make([]Result, 0, len(ids))
	for _, tier := range r {
		for _, id := range tier.ParticipantIDs {
			name, ok := names[id]
			if !ok {
				log.WithFields(log.Fields{
					"participant_id": id,
					"rank":           tier.Rank,
				}).Warn("Ranked participant has no matching user, using placeholder name")
				name = UnknownParticipantName
			}
			results = append(results, Result{
				ParticipantID: id,
				Rank:          tier.Rank,
				Name:          name,
				Score:         tier.Score,
				Winnings:      gains[id],
				Placeholder:   !ok,
			})
		}
	}
	return results, nil
}
