package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []LotteryStatus{
	LotteryStatusOpen,
	LotteryStatusPendingValidation,
	LotteryStatusFinished,
	LotteryStatusSimulation,
	LotteryStatusSimulationFinished,
}

func TestLotteryStatus_CanTransitionTo(t *testing.T) {
	t.Parallel()

	allowed := map[LotteryStatus]LotteryStatus{
		LotteryStatusOpen:              LotteryStatusPendingValidation,
		LotteryStatusPendingValidation: LotteryStatusFinished,
		LotteryStatusSimulation:        LotteryStatusSimulationFinished,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := allowed[from] == to
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestLottery_TransitionTo(t *testing.T) {
	t.Parallel()

	lottery := &Lottery{Status: LotteryStatusOpen}

	require.NoError(t, lottery.TransitionTo(LotteryStatusPendingValidation))
	assert.Equal(t, LotteryStatusPendingValidation, lottery.Status)

	err := lottery.TransitionTo(LotteryStatusOpen)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, LotteryStatusPendingValidation, lottery.Status, "status must not change on rejected transition")

	require.NoError(t, lottery.TransitionTo(LotteryStatusFinished))
	assert.ErrorIs(t, lottery.TransitionTo(LotteryStatusFinished), ErrInvalidStatusTransition)
}

func TestLotteryStatus_FinalStatus(t *testing.T) {
	t.Parallel()

	final, err := LotteryStatusPendingValidation.FinalStatus()
	require.NoError(t, err)
	assert.Equal(t, LotteryStatusFinished, final)

	final, err = LotteryStatusSimulation.FinalStatus()
	require.NoError(t, err)
	assert.Equal(t, LotteryStatusSimulationFinished, final)

	_, err = LotteryStatusOpen.FinalStatus()
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = LotteryStatus("BOGUS").FinalStatus()
	assert.ErrorIs(t, err, ErrUnknownLotteryStatus)
}

func TestParseLotteryStatus(t *testing.T) {
	t.Parallel()

	for _, s := range allStatuses {
		got, err := ParseLotteryStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseLotteryStatus("en_cour")
	assert.ErrorIs(t, err, ErrUnknownLotteryStatus)
}

func TestLottery_IsActive(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	lottery := &Lottery{StartDate: start, EndDate: end, Status: LotteryStatusOpen}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "before start", now: start.Add(-time.Second), want: false},
		{name: "at start", now: start, want: true},
		{name: "inside window", now: start.Add(48 * time.Hour), want: true},
		{name: "at end", now: end, want: false},
		{name: "after end", now: end.Add(time.Hour), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, lottery.IsActive(tt.now))
			assert.Equal(t, tt.want, lottery.AcceptsEntries(tt.now))
		})
	}
}

func TestLottery_AcceptsEntries_ByStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	window := Lottery{StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour)}

	for _, status := range allStatuses {
		l := window
		l.Status = status
		want := status == LotteryStatusOpen || status == LotteryStatusSimulation
		assert.Equal(t, want, l.AcceptsEntries(now), "status %s", status)
	}

	expiredSimulation := Lottery{Status: LotteryStatusSimulation, StartDate: now.Add(-2 * time.Hour), EndDate: now.Add(-time.Hour)}
	assert.True(t, expiredSimulation.AcceptsEntries(now))
}

func TestLottery_IsFull(t *testing.T) {
	t.Parallel()

	l := &Lottery{MaxParticipants: 3}
	assert.False(t, l.IsFull(2))
	assert.True(t, l.IsFull(3))

	unlimited := &Lottery{}
	assert.False(t, unlimited.IsFull(1000))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	role, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrUnknownRole)

	assert.False(t, (&User{Role: RoleFake}).CanLogin())
	assert.True(t, (&User{Role: RoleUser}).CanLogin())
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
}
