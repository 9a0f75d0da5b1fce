package application

import (
	"context"
	"sync"

	"apploto/domain/interfaces"
	"apploto/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a UnitOfWork backed by repository mocks
type MockUnitOfWork struct {
	Users    *testhelpers.MockUserRepository
	Lottery  *testhelpers.MockLotteryRepository
	Entries  *testhelpers.MockEntryRepository
	Results  *testhelpers.MockLotteryResultRepository
	Rankings *testhelpers.MockLotteryRankingRepository
	Tokens   *testhelpers.MockTokenBlockRepository
	Events   *testhelpers.MockEventPublisher

	BeginErr  error
	CommitErr error

	mu         sync.Mutex
	began      int
	committed  int
	rolledBack int
	active     bool
}

// NewMockUnitOfWork creates a unit of work with fresh mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Users:    new(testhelpers.MockUserRepository),
		Lottery:  new(testhelpers.MockLotteryRepository),
		Entries:  new(testhelpers.MockEntryRepository),
		Results:  new(testhelpers.MockLotteryResultRepository),
		Rankings: new(testhelpers.MockLotteryRankingRepository),
		Tokens:   new(testhelpers.MockTokenBlockRepository),
		Events:   new(testhelpers.MockEventPublisher),
	}
}

func (u *MockUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.began++
	if u.BeginErr != nil {
		return u.BeginErr
	}
	u.active = true
	return nil
}

func (u *MockUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.CommitErr != nil {
		return u.CommitErr
	}
	u.committed++
	u.active = false
	return nil
}

func (u *MockUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.active {
		u.rolledBack++
		u.active = false
	}
	return nil
}

// Counts returns how many transactions were begun, committed and rolled back
func (u *MockUnitOfWork) Counts() (began, committed, rolledBack int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.began, u.committed, u.rolledBack
}

// AssertAllExpectations checks every repository mock
func (u *MockUnitOfWork) AssertAllExpectations(t mock.TestingT) {
	u.Users.AssertExpectations(t)
	u.Lottery.AssertExpectations(t)
	u.Entries.AssertExpectations(t)
	u.Results.AssertExpectations(t)
	u.Rankings.AssertExpectations(t)
	u.Tokens.AssertExpectations(t)
	u.Events.AssertExpectations(t)
}

func (u *MockUnitOfWork) UserRepository() interfaces.UserRepository { return u.Users }

func (u *MockUnitOfWork) LotteryRepository() interfaces.LotteryRepository { return u.Lottery }

func (u *MockUnitOfWork) EntryRepository() interfaces.EntryRepository { return u.Entries }

func (u *MockUnitOfWork) LotteryResultRepository() interfaces.LotteryResultRepository {
	return u.Results
}

func (u *MockUnitOfWork) LotteryRankingRepository() interfaces.LotteryRankingRepository {
	return u.Rankings
}

func (u *MockUnitOfWork) TokenBlockRepository() interfaces.TokenBlockRepository { return u.Tokens }

func (u *MockUnitOfWork) EventBus() interfaces.EventPublisher { return u.Events }

// MockUnitOfWorkFactory hands out the same MockUnitOfWork on every Create
type MockUnitOfWorkFactory struct {
	UoW *MockUnitOfWork
}

// NewMockUnitOfWorkFactory creates a factory around a fresh MockUnitOfWork
func NewMockUnitOfWorkFactory() *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{UoW: NewMockUnitOfWork()}
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	return f.UoW
}

// RecordingMetrics is a MetricsRecorder that keeps what it was given
type RecordingMetrics struct {
	mu            sync.Mutex
	Closed        []int
	Draws         map[string]float64
	Entries       int
	Notifications map[string]int
	Failures      map[string]int
}

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Draws:         make(map[string]float64),
		Notifications: make(map[string]int),
		Failures:      make(map[string]int),
	}
}

func (m *RecordingMetrics) RecordLotteriesClosed(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = append(m.Closed, count)
}

func (m *RecordingMetrics) RecordDrawFinalized(drawType string, distributed float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Draws[drawType] += distributed
}

func (m *RecordingMetrics) RecordEntryRegistered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries++
}

func (m *RecordingMetrics) RecordNotification(channel string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications[channel]++
	if err != nil {
		m.Failures[channel]++
	}
}
