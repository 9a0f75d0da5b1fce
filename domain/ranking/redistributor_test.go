package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributeRemainder(t *testing.T) {
	t.Parallel()

	gains := map[int64]float64{1: 400, 2: 200, 3: 120}

	got := DistributeRemainder(gains, 280)

	assert.InDelta(t, 555.5555555555555, got[1], tolerance)
	assert.InDelta(t, 277.7777777777778, got[2], tolerance)
	assert.InDelta(t, 166.66666666666666, got[3], tolerance)
	assert.InDelta(t, 1000, sum(got), tolerance)

	// The input map is left untouched
	assert.Equal(t, map[int64]float64{1: 400, 2: 200, 3: 120}, gains)
}

func TestDistributeRemainder_PreservesRatios(t *testing.T) {
	t.Parallel()

	gains := map[int64]float64{1: 300, 2: 300, 3: 200, 4: 95, 5: 95}

	got := DistributeRemainder(gains, 10)

	assert.InDelta(t, 1000, sum(got), tolerance)
	assert.InDelta(t, got[1]/got[3], 300.0/200.0, tolerance)
	assert.InDelta(t, got[4], got[5], tolerance)
}

func TestDistributeRemainder_NoOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		gains     map[int64]float64
		remainder float64
	}{
		{name: "zero remainder", gains: map[int64]float64{1: 10}, remainder: 0},
		{name: "negative remainder", gains: map[int64]float64{1: 10}, remainder: -5},
		{name: "nothing distributed", gains: map[int64]float64{1: 0, 2: 0}, remainder: 100},
		{name: "no players", gains: map[int64]float64{}, remainder: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.gains, DistributeRemainder(tt.gains, tt.remainder))
		})
	}
}

func sum(m map[int64]float64) float64 {
	total := 0.0
	for _, v := range m {
		total += v
	}
	return total
}
