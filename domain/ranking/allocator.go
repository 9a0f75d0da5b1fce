package ranking

// PayoutTable maps a rank to its fraction of the reward pool.
// Ranks without an entry are paid nothing.
type PayoutTable map[int]float64

var defaultPayoutTable = PayoutTable{
	1:  0.40,
	2:  0.20,
	3:  0.12,
	4:  0.07,
	5:  0.06,
	6:  0.05,
	7:  0.04,
	8:  0.03,
	9:  0.02,
	10: 0.01,
}

// Share returns the fraction for rank, 0 when undefined
func (t PayoutTable) Share(rank int) float64 {
	return t[rank]
}

// LastRank returns the highest paid rank
func (t PayoutTable) LastRank() int {
	last := 0
	for rank := range t {
		if rank > last {
			last = rank
		}
	}
	return last
}

// Allocation is the nominal split of a reward pool before redistribution
type Allocation struct {
	Gains     map[int64]float64
	Total     float64
	Remainder float64
}

// ComputeGain splits reward across the ranking with the default payout table
func ComputeGain(r Ranking, reward float64) Allocation {
	return ComputeGainWithTable(r, reward, defaultPayoutTable)
}

// ComputeGainWithTable splits reward across the ranking.
//
// A tier of k players starting at rank r shares the payouts of ranks
// [r, min(r+k, last+1)) evenly, so slots past the last paid rank add nothing
// while the split is still over all k players. A single player is the k=1 case.
func ComputeGainWithTable(r Ranking, reward float64, table PayoutTable) Allocation {
	gains := make(map[int64]float64, r.ParticipantCount())
	end := table.LastRank() + 1

	for _, tier := range r {
		k := len(tier.ParticipantIDs)
		if k == 0 {
			continue
		}

		slotsEnd := min(tier.Rank+k, end)
		pool := 0.0
		for rank := tier.Rank; rank < slotsEnd; rank++ {
			pool += reward * table.Share(rank)
		}

		gain := pool / float64(k)
		for _, id := range tier.ParticipantIDs {
			gains[id] = gain
		}
	}

	total := 0.0
	seen := make(map[int64]struct{}, len(gains))
	for _, id := range r.ParticipantIDs() {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		total += gains[id]
	}

	return Allocation{
		Gains:     gains,
		Total:     total,
		Remainder: reward - total,
	}
}
