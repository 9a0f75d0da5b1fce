package services

import (
	"context"
	"strings"
	"testing"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/testhelpers"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// recordingLotteryService captures the calls a simulation makes
type recordingLotteryService struct {
	interfaces.LotteryService
	created   interfaces.CreateLotteryInput
	finalized int64
}

func (r *recordingLotteryService) CreateLottery(_ context.Context, input interfaces.CreateLotteryInput) (*entities.Lottery, error) {
	r.created = input
	return &entities.Lottery{ID: 99, Name: input.Name, Status: entities.LotteryStatusSimulation}, nil
}

func (r *recordingLotteryService) FinalizeDraw(_ context.Context, lotteryID int64, numbers *entities.DrawNumbers) (*interfaces.DrawOutcome, error) {
	r.finalized = lotteryID
	return &interfaces.DrawOutcome{Lottery: &entities.Lottery{ID: lotteryID, Status: entities.LotteryStatusSimulationFinished}}, nil
}

type recordingEntryService struct {
	interfaces.EntryService
	numbers []entities.NumberSet
	lucky   []entities.NumberSet
}

func (r *recordingEntryService) RegisterEntry(_ context.Context, userID, lotteryID int64, numbers, lucky entities.NumberSet) (*entities.Entry, error) {
	r.numbers = append(r.numbers, numbers)
	r.lucky = append(r.lucky, lucky)
	return &entities.Entry{UserID: userID, LotteryID: lotteryID}, nil
}

func TestSimulationService_Simulate(t *testing.T) {
	t.Parallel()

	lotteries := &recordingLotteryService{}
	entries := &recordingEntryService{}
	userRepo := new(testhelpers.MockUserRepository)

	nextID := int64(1000)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *entities.User) bool {
		return u.Role == entities.RoleFake && strings.HasPrefix(u.Email, "sim99.") && u.FirstName != ""
	})).Run(func(args mock.Arguments) {
		nextID++
		args.Get(1).(*entities.User).ID = nextID
	}).Return(nil).Times(25)

	svc := NewSimulationService(lotteries, entries, userRepo, gofakeit.New(42), clockwork.NewFakeClockAt(TestNow))
	outcome, err := svc.Simulate(context.Background(), interfaces.SimulationInput{
		Participants: 25,
		RewardPrice:  2500,
	})
	require.NoError(t, err)

	assert.Equal(t, entities.LotteryStatusSimulationFinished, outcome.Lottery.Status)
	assert.Equal(t, int64(99), lotteries.finalized)
	assert.True(t, lotteries.created.Simulation)
	assert.Equal(t, 25, lotteries.created.MaxParticipants)
	assert.Equal(t, "Simulation 2026-03-14 12:00", lotteries.created.Name)

	require.Len(t, entries.numbers, 25)
	for i := range entries.numbers {
		assert.Len(t, entries.numbers[i], entities.NumbersPerEntry)
		assert.True(t, entries.numbers[i].InRange(entities.MinNumber, entities.MaxNumber))
		assert.Len(t, entries.lucky[i], entities.LuckyNumbersPerEntry)
		assert.True(t, entries.lucky[i].InRange(entities.MinLuckyNumber, entities.MaxLuckyNumber))
	}
	userRepo.AssertExpectations(t)
}

func TestSimulationService_Simulate_ParticipantBounds(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -3, 1001} {
		svc := NewSimulationService(&recordingLotteryService{}, &recordingEntryService{}, new(testhelpers.MockUserRepository), nil, clockwork.NewFakeClockAt(TestNow))
		_, err := svc.Simulate(context.Background(), interfaces.SimulationInput{Participants: n, RewardPrice: 100})

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "participants=%d", n)
		assert.Contains(t, verr.Fields, "participants")
	}
}
