package services

import (
	"context"
	"testing"

	"apploto/domain/interfaces"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/mock"
)

// LotteryTestFixture provides a complete test environment for lottery service tests
type LotteryTestFixture struct {
	T       *testing.T
	Ctx     context.Context
	Service interfaces.LotteryService
	Mocks   *TestMocks
	Helper  *MockHelper
	Clock   *clockwork.FakeClock
}

// NewLotteryTestFixture creates a new test fixture with all dependencies configured
func NewLotteryTestFixture(t *testing.T) *LotteryTestFixture {
	f := &LotteryTestFixture{
		T:   t,
		Ctx: context.Background(),
	}
	f.Reset()
	return f
}

// Reset clears all mock expectations for reuse in sub-tests
func (f *LotteryTestFixture) Reset() {
	f.Mocks = NewTestMocks()
	f.Helper = NewMockHelper(f.Mocks)
	f.Clock = clockwork.NewFakeClockAt(TestNow)

	f.Service = NewLotteryService(
		f.Mocks.LotteryRepo,
		f.Mocks.EntryRepo,
		f.Mocks.ResultRepo,
		f.Mocks.RankingRepo,
		f.Mocks.UserRepo,
		nil,
		f.Mocks.EventPublisher,
		f.Clock,
	)
}

// WithScenario sets up the lookups a draw performs before computing the ranking
func (f *LotteryTestFixture) WithScenario(scenario *DrawScenario) *LotteryTestFixture {
	f.Helper.ExpectLockedLottery(scenario.Lottery)
	f.Helper.ExpectNoResult(scenario.Lottery.ID)
	f.Mocks.EntryRepo.On("ListByLottery", mock.Anything, scenario.Lottery.ID).Return(scenario.Entries, nil)

	if len(scenario.Names) > 0 {
		f.Mocks.UserRepo.On("DisplayNames", mock.Anything, mock.Anything).Return(scenario.Names, nil)
	}
	return f
}

// AssertAllMocks verifies all mock expectations were met
func (f *LotteryTestFixture) AssertAllMocks() {
	f.Mocks.AssertAllExpectations(f.T)
}
