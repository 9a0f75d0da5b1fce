// Package ranking scores lottery entries against a draw, builds the
// competition ranking and splits the reward pool between ranked players.
//
// Everything here is pure: callers pass in-memory entries and persist the
// outcome themselves.
package ranking

import (
	"fmt"
	"math"

	"apploto/domain/entities"
)

// Weights of the main and lucky numbers in the final score
const (
	NumbersWeight = 0.80
	LuckyWeight   = 0.20
)

// Participant is one entry ready for scoring
type Participant struct {
	ID      int64
	Numbers entities.NumberSet
	Lucky   entities.NumberSet
}

// Draw is the winning combination
type Draw struct {
	Numbers entities.NumberSet
	Lucky   entities.NumberSet
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both sets are empty
func Jaccard(a, b entities.NumberSet) float64 {
	setA := make(map[int]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[int]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}

	intersection := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Score returns the weighted similarity percentage in [0, 100]
func Score(drawNumbers, drawLucky, playerNumbers, playerLucky entities.NumberSet) int {
	numberSimilarity := Jaccard(drawNumbers, playerNumbers)
	luckySimilarity := Jaccard(drawLucky, playerLucky)
	return int(math.Round((numberSimilarity*NumbersWeight + luckySimilarity*LuckyWeight) * 100))
}

// ParticipantsFromEntries parses stored entries into participants keyed by user ID
func ParticipantsFromEntries(entries []*entities.Entry) ([]Participant, error) {
	participants := make([]Participant, 0, len(entries))
	for _, e := range entries {
		numbers, err := e.NumberSet()
		if err != nil {
			return nil, fmt.Errorf("failed to parse numbers of entry %d: %w", e.ID, err)
		}
		lucky, err := e.LuckySet()
		if err != nil {
			return nil, fmt.Errorf("failed to parse lucky numbers of entry %d: %w", e.ID, err)
		}
		participants = append(participants, Participant{ID: e.UserID, Numbers: numbers, Lucky: lucky})
	}
	return participants, nil
}

// DrawFromResult parses a stored lottery result
func DrawFromResult(r *entities.LotteryResult) (Draw, error) {
	numbers, err := r.Numbers()
	if err != nil {
		return Draw{}, fmt.Errorf("failed to parse winning numbers: %w", err)
	}
	lucky, err := r.LuckyNumbers()
	if err != nil {
		return Draw{}, fmt.Errorf("failed to parse winning lucky numbers: %w", err)
	}
	return Draw{Numbers: numbers, Lucky: lucky}, nil
}
