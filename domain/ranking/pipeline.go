package ranking

import (
	"context"
)

// Outcome is the full computation for one draw
type Outcome struct {
	Ranking    Ranking
	Allocation Allocation        // nominal split, zero value when nobody qualified
	Gains      map[int64]float64 // final winnings after redistribution
	Results    []Result
}

// HasWinners returns false when no participant reached the minimum score
func (o *Outcome) HasWinners() bool {
	return !o.Ranking.Empty()
}

// Distributed returns the sum of final winnings
func (o *Outcome) Distributed() float64 {
	total := 0.0
	for _, g := range o.Gains {
		total += g
	}
	return total
}

// PlaceholderCount returns how many results carry a placeholder name
func (o *Outcome) PlaceholderCount() int {
	n := 0
	for _, r := range o.Results {
		if r.Placeholder {
			n++
		}
	}
	return n
}

// Compute runs score, rank, allocate, redistribute and format for one draw.
// When nobody qualifies the reward is left undistributed and the outcome is empty.
func Compute(ctx context.Context, participants []Participant, draw Draw, reward float64, lookup ParticipantLookup, opts ...Option) (*Outcome, error) {
	r := BuildRanking(participants, draw, opts...)
	if r.Empty() {
		return &Outcome{
			Ranking: r,
			Gains:   map[int64]float64{},
			Results: []Result{},
		}, nil
	}

	allocation := ComputeGain(r, reward)
	gains := allocation.Gains
	if allocation.Remainder > 0 {
		gains = DistributeRemainder(allocation.Gains, allocation.Remainder)
	}

	results, err := FormatResults(ctx, r, gains, lookup)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Ranking:    r,
		Allocation: allocation,
		Gains:      gains,
		Results:    results,
	}, nil
}
