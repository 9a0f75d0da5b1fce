package ranking

import (
	"math/rand"
	"testing"

	"apploto/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(values ...int) entities.NumberSet {
	return entities.NewNumberSet(values...)
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b entities.NumberSet
		want float64
	}{
		{name: "half overlap", a: set(1, 2, 3), b: set(2, 3, 4), want: 0.5},
		{name: "identical", a: set(4, 5), b: set(4, 5), want: 1},
		{name: "disjoint", a: set(1, 2), b: set(3, 4), want: 0},
		{name: "both empty", a: set(), b: set(), want: 0},
		{name: "one empty", a: set(1), b: set(), want: 0},
		{name: "duplicate members ignored", a: entities.NumberSet{1, 1, 2}, b: set(1, 2), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-12)
		})
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                                     string
		drawNumbers, drawLucky, player, playLuck entities.NumberSet
		want                                     int
	}{
		{
			name:        "perfect match",
			drawNumbers: set(1, 2, 3), drawLucky: set(1),
			player: set(1, 2, 3), playLuck: set(1),
			want: 100,
		},
		{
			name:        "two of three numbers and the lucky number",
			drawNumbers: set(1, 2, 3), drawLucky: set(1),
			player: set(1, 2, 4), playLuck: set(1),
			want: 60,
		},
		{
			name:        "two of three numbers without lucky number",
			drawNumbers: set(1, 2, 3), drawLucky: set(1),
			player: set(1, 3, 5), playLuck: set(2),
			want: 40,
		},
		{
			name:        "nothing in common",
			drawNumbers: set(1, 2), drawLucky: set(1),
			player: set(3, 4), playLuck: set(2),
			want: 0,
		},
		{
			name:        "only lucky numbers match",
			drawNumbers: set(1, 2, 3, 4, 5), drawLucky: set(1, 2),
			player: set(10, 11, 12, 13, 14), playLuck: set(1, 2),
			want: 20,
		},
		{
			name:        "empty everything",
			drawNumbers: set(), drawLucky: set(),
			player: set(), playLuck: set(),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Score(tt.drawNumbers, tt.drawLucky, tt.player, tt.playLuck)
			assert.Equal(t, tt.want, got)
			// Pure function: a second call gives the same answer
			assert.Equal(t, got, Score(tt.drawNumbers, tt.drawLucky, tt.player, tt.playLuck))
		})
	}
}

func randomSet(rng *rand.Rand, size, lo, hi int) entities.NumberSet {
	values := rng.Perm(hi - lo + 1)[:size]
	for i := range values {
		values[i] += lo
	}
	return set(values...)
}

func TestScore_Properties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		dn := randomSet(rng, 5, 1, 49)
		dl := randomSet(rng, 2, 1, 9)
		pn := randomSet(rng, 5, 1, 49)
		pl := randomSet(rng, 2, 1, 9)

		s := Score(dn, dl, pn, pl)
		require.GreaterOrEqual(t, s, 0)
		require.LessOrEqual(t, s, 100)

		assert.Equal(t, 100, Score(dn, dl, dn, dl), "identical sets must score 100")
		assert.Equal(t, s, Score(pn, pl, dn, dl), "score is symmetric")
	}
}

func TestScore_DisjointSetsScoreZero(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		// Draw from 1-24 and 1-4, play from 25-49 and 5-9
		dn := randomSet(rng, 5, 1, 24)
		dl := randomSet(rng, 2, 1, 4)
		pn := randomSet(rng, 5, 25, 49)
		pl := randomSet(rng, 2, 5, 9)
		assert.Equal(t, 0, Score(dn, dl, pn, pl))
	}
}

func TestParticipantsFromEntries(t *testing.T) {
	t.Parallel()

	entries := []*entities.Entry{
		{ID: 1, UserID: 10, Numbers: "1,2,3", LuckyNumbers: "1"},
		{ID: 2, UserID: 20, Numbers: "4, 5,6", LuckyNumbers: "2,3"},
	}

	participants, err := ParticipantsFromEntries(entries)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, Participant{ID: 10, Numbers: set(1, 2, 3), Lucky: set(1)}, participants[0])
	assert.Equal(t, Participant{ID: 20, Numbers: set(4, 5, 6), Lucky: set(2, 3)}, participants[1])

	_, err = ParticipantsFromEntries([]*entities.Entry{{ID: 3, UserID: 30, Numbers: "x", LuckyNumbers: "1"}})
	assert.ErrorContains(t, err, "entry 3")
}

func TestDrawFromResult(t *testing.T) {
	t.Parallel()

	draw, err := DrawFromResult(&entities.LotteryResult{WinningNumbers: "3,1,2", WinningLuckyNumbers: "1"})
	require.NoError(t, err)
	assert.Equal(t, Draw{Numbers: set(1, 2, 3), Lucky: set(1)}, draw)

	_, err = DrawFromResult(&entities.LotteryResult{WinningNumbers: "1", WinningLuckyNumbers: "?"})
	assert.Error(t, err)
}
