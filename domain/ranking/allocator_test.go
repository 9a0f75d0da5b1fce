package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestComputeGain_TiedTiers(t *testing.T) {
	t.Parallel()

	r := Ranking{
		{Rank: 1, Score: 80, ParticipantIDs: []int64{1, 2}},
		{Rank: 2, Score: 60, ParticipantIDs: []int64{3}},
		{Rank: 3, Score: 50, ParticipantIDs: []int64{4, 5}},
	}

	got := ComputeGain(r, 1000)

	want := map[int64]float64{1: 300, 2: 300, 3: 200, 4: 95, 5: 95}
	require.Len(t, got.Gains, len(want))
	for id, gain := range want {
		assert.InDelta(t, gain, got.Gains[id], tolerance, "participant %d", id)
	}
	assert.InDelta(t, 990, got.Total, tolerance)
	assert.InDelta(t, 10, got.Remainder, tolerance)
}

func TestComputeGain_TieAtTopPushesNextToRankThree(t *testing.T) {
	t.Parallel()

	r := RankScored([]Scored{{ID: 1, Score: 80}, {ID: 2, Score: 80}, {ID: 3, Score: 60}})
	got := ComputeGain(r, 1000)

	assert.InDelta(t, 300, got.Gains[1], tolerance)
	assert.InDelta(t, 300, got.Gains[2], tolerance)
	assert.InDelta(t, 120, got.Gains[3], tolerance)
}

func TestComputeGain_TenSingleWinnersSpendEverything(t *testing.T) {
	t.Parallel()

	var scored []Scored
	for i := 0; i < 10; i++ {
		scored = append(scored, Scored{ID: int64(i + 1), Score: 100 - i})
	}

	got := ComputeGain(RankScored(scored), 5000)

	assert.InDelta(t, 2000, got.Gains[1], tolerance)
	assert.InDelta(t, 50, got.Gains[10], tolerance)
	assert.InDelta(t, 5000, got.Total, 1e-6)
	assert.InDelta(t, 0, got.Remainder, 1e-6)
}

func TestComputeGain_TieStraddlingLastPaidRank(t *testing.T) {
	t.Parallel()

	// Three players tied at rank 9 occupy slots 9, 10 and 11. Only 9 and 10
	// are paid, and the two shares are split three ways.
	r := Ranking{{Rank: 9, Score: 30, ParticipantIDs: []int64{1, 2, 3}}}

	got := ComputeGain(r, 1000)

	for _, id := range []int64{1, 2, 3} {
		assert.InDelta(t, 10, got.Gains[id], tolerance)
	}
	assert.InDelta(t, 30, got.Total, tolerance)
	assert.InDelta(t, 970, got.Remainder, tolerance)
}

func TestComputeGain_RankBeyondTableIsZero(t *testing.T) {
	t.Parallel()

	r := Ranking{
		{Rank: 11, Score: 20, ParticipantIDs: []int64{1}},
		{Rank: 12, Score: 15, ParticipantIDs: []int64{2, 3}},
	}

	got := ComputeGain(r, 1000)

	assert.Equal(t, 0.0, got.Gains[1])
	assert.Equal(t, 0.0, got.Gains[2])
	assert.Equal(t, 0.0, got.Gains[3])
	assert.Equal(t, 0.0, got.Total)
	assert.Equal(t, 1000.0, got.Remainder)
}

func TestComputeGain_Empty(t *testing.T) {
	t.Parallel()

	got := ComputeGain(Ranking{}, 1000)
	assert.Empty(t, got.Gains)
	assert.Equal(t, 0.0, got.Total)
	assert.Equal(t, 1000.0, got.Remainder)
}

func TestComputeGain_Conservation(t *testing.T) {
	t.Parallel()

	rankings := []Ranking{
		RankScored([]Scored{{ID: 1, Score: 90}}),
		RankScored([]Scored{{ID: 1, Score: 90}, {ID: 2, Score: 90}, {ID: 3, Score: 90}}),
		RankScored([]Scored{
			{ID: 1, Score: 99}, {ID: 2, Score: 70}, {ID: 3, Score: 70}, {ID: 4, Score: 70},
			{ID: 5, Score: 40}, {ID: 6, Score: 40}, {ID: 7, Score: 20}, {ID: 8, Score: 20},
			{ID: 9, Score: 20}, {ID: 10, Score: 20}, {ID: 11, Score: 20},
		}),
	}

	for _, reward := range []float64{1, 999.99, 125000} {
		for _, r := range rankings {
			got := ComputeGain(r, reward)
			assert.InDelta(t, reward, got.Total+got.Remainder, 1e-6)
			assert.GreaterOrEqual(t, got.Remainder, -1e-6)
		}
	}
}

func TestComputeGainWithTable_CustomTable(t *testing.T) {
	t.Parallel()

	table := PayoutTable{1: 0.5, 2: 0.3}
	r := Ranking{
		{Rank: 1, Score: 90, ParticipantIDs: []int64{1}},
		{Rank: 2, Score: 80, ParticipantIDs: []int64{2, 3}},
	}

	got := ComputeGainWithTable(r, 100, table)

	assert.InDelta(t, 50, got.Gains[1], tolerance)
	assert.InDelta(t, 15, got.Gains[2], tolerance)
	assert.InDelta(t, 15, got.Gains[3], tolerance)
	assert.InDelta(t, 20, got.Remainder, tolerance)
}

func TestDefaultPayoutTable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, defaultPayoutTable.LastRank())

	sum := 0.0
	for _, share := range defaultPayoutTable {
		sum += share
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Equal(t, 0.40, defaultPayoutTable.Share(1))
	assert.Equal(t, 0.0, defaultPayoutTable.Share(11))
}
