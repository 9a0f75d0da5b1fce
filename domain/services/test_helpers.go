package services

import (
	"context"
	"time"

	"apploto/domain/entities"
	"apploto/domain/testhelpers"
	"apploto/events"

	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestLotteryID   = int64(1)
	TestResultID    = int64(7)
	TestUser1ID     = int64(10)
	TestUser2ID     = int64(20)
	TestUser3ID     = int64(30)
	TestRewardPrice = float64(1000)
	TestMaxEntries  = 100
)

// TestNow is the fixed instant every service test clock is set to
var TestNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	LotteryRepo    *testhelpers.MockLotteryRepository
	EntryRepo      *testhelpers.MockEntryRepository
	ResultRepo     *testhelpers.MockLotteryResultRepository
	RankingRepo    *testhelpers.MockLotteryRankingRepository
	UserRepo       *testhelpers.MockUserRepository
	TokenRepo      *testhelpers.MockTokenBlockRepository
	EventPublisher *testhelpers.MockEventPublisher
	Hasher         *testhelpers.MockPasswordHasher
	Issuer         *testhelpers.MockTokenIssuer
	Mailer         *testhelpers.MockMailer
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		LotteryRepo:    &testhelpers.MockLotteryRepository{},
		EntryRepo:      &testhelpers.MockEntryRepository{},
		ResultRepo:     &testhelpers.MockLotteryResultRepository{},
		RankingRepo:    &testhelpers.MockLotteryRankingRepository{},
		UserRepo:       &testhelpers.MockUserRepository{},
		TokenRepo:      &testhelpers.MockTokenBlockRepository{},
		EventPublisher: &testhelpers.MockEventPublisher{},
		Hasher:         &testhelpers.MockPasswordHasher{},
		Issuer:         &testhelpers.MockTokenIssuer{},
		Mailer:         &testhelpers.MockMailer{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t mock.TestingT) {
	m.LotteryRepo.AssertExpectations(t)
	m.EntryRepo.AssertExpectations(t)
	m.ResultRepo.AssertExpectations(t)
	m.RankingRepo.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
	m.TokenRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Hasher.AssertExpectations(t)
	m.Issuer.AssertExpectations(t)
	m.Mailer.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectLockedLottery sets up the locking lottery lookup
func (h *MockHelper) ExpectLockedLottery(lottery *entities.Lottery) {
	h.mocks.LotteryRepo.On("GetByIDForUpdate", mock.Anything, lottery.ID).Return(lottery, nil)
}

// ExpectLotteryLookup sets up the plain lottery lookup
func (h *MockHelper) ExpectLotteryLookup(lottery *entities.Lottery) {
	h.mocks.LotteryRepo.On("GetByID", mock.Anything, lottery.ID).Return(lottery, nil)
}

// ExpectLotteryNotFound sets up both lottery lookups to return not found
func (h *MockHelper) ExpectLotteryNotFound(lotteryID int64) {
	h.mocks.LotteryRepo.On("GetByID", mock.Anything, lotteryID).Return(nil, nil).Maybe()
	h.mocks.LotteryRepo.On("GetByIDForUpdate", mock.Anything, lotteryID).Return(nil, nil).Maybe()
}

// ExpectNoResult sets up the result repository to report an undrawn lottery
func (h *MockHelper) ExpectNoResult(lotteryID int64) {
	h.mocks.ResultRepo.On("GetByLottery", mock.Anything, lotteryID).Return(nil, nil)
}

// ExpectStatusChange sets up a persisted status transition and its event
func (h *MockHelper) ExpectStatusChange(lotteryID int64, from, to entities.LotteryStatus) {
	h.mocks.LotteryRepo.On("UpdateStatus", mock.Anything, lotteryID, from, to).Return(nil).Once()
	h.mocks.EventPublisher.On("Publish", events.LotteryStatusChangedEvent{
		LotteryID: lotteryID,
		OldStatus: from.String(),
		NewStatus: to.String(),
	}).Return(nil).Once()
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// ExpectUserByEmail sets up user repository email lookup
func (h *MockHelper) ExpectUserByEmail(email string, user *entities.User) {
	h.mocks.UserRepo.On("GetByEmail", mock.Anything, email).Return(user, nil)
}

// DrawScenario defines the lottery and entries a draw is computed over
type DrawScenario struct {
	Lottery *entities.Lottery
	Entries []*entities.Entry
	Names   map[int64]string
}

// NewDrawScenario creates a scenario over a lottery awaiting validation
func NewDrawScenario() *DrawScenario {
	return &DrawScenario{
		Lottery: NewTestLottery(TestLotteryID, entities.LotteryStatusPendingValidation, LotteryEnded),
		Names:   make(map[int64]string),
	}
}

// WithStatus changes the scenario lottery status
func (s *DrawScenario) WithStatus(status entities.LotteryStatus) *DrawScenario {
	s.Lottery.Status = status
	return s
}

// WithEntry adds an entry with its owner's display name
func (s *DrawScenario) WithEntry(userID int64, name, numbers, lucky string) *DrawScenario {
	s.Entries = append(s.Entries, &entities.Entry{
		ID:           int64(len(s.Entries) + 1),
		UserID:       userID,
		LotteryID:    s.Lottery.ID,
		Numbers:      numbers,
		LuckyNumbers: lucky,
	})
	if name != "" {
		s.Names[userID] = name
	}
	return s
}

// NewTestLottery creates a lottery around TestNow with common defaults
func NewTestLottery(id int64, status entities.LotteryStatus, opts ...func(*entities.Lottery)) *entities.Lottery {
	lottery := &entities.Lottery{
		ID:              id,
		Name:            "Spring draw",
		StartDate:       TestNow.Add(-24 * time.Hour),
		EndDate:         TestNow.Add(24 * time.Hour),
		Status:          status,
		RewardPrice:     TestRewardPrice,
		MaxParticipants: TestMaxEntries,
		CreatedAt:       TestNow.Add(-48 * time.Hour),
	}
	for _, opt := range opts {
		opt(lottery)
	}
	return lottery
}

// LotteryEnded moves the end date just before TestNow
func LotteryEnded(l *entities.Lottery) {
	l.EndDate = TestNow.Add(-time.Minute)
}

// LotteryNotStarted moves the start date just after TestNow
func LotteryNotStarted(l *entities.Lottery) {
	l.StartDate = TestNow.Add(time.Hour)
}
