package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"apploto/domain/entities"
	"apploto/events"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var workerNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestWorker(t *testing.T, spec string) (*LotteryCloseWorker, *MockUnitOfWork, *RecordingMetrics) {
	t.Helper()

	factory := NewMockUnitOfWorkFactory()
	metrics := NewRecordingMetrics()
	services := NewServiceFactory(ServiceDependencies{Clock: clockwork.NewFakeClockAt(workerNow)})

	worker, err := NewLotteryCloseWorker(factory, services, metrics, spec)
	require.NoError(t, err)
	return worker, factory.UoW, metrics
}

func expiredLottery(id int64) *entities.Lottery {
	return &entities.Lottery{
		ID:        id,
		Name:      "Expired",
		Status:    entities.LotteryStatusOpen,
		StartDate: workerNow.Add(-48 * time.Hour),
		EndDate:   workerNow.Add(-time.Minute),
	}
}

func TestLotteryCloseWorker_RunOnce(t *testing.T) {
	t.Parallel()

	worker, uow, metrics := newTestWorker(t, "")

	uow.Lottery.On("ListExpiredOpen", mock.Anything, workerNow).
		Return([]*entities.Lottery{expiredLottery(1), expiredLottery(2)}, nil)
	uow.Lottery.On("UpdateStatus", mock.Anything, int64(1), entities.LotteryStatusOpen, entities.LotteryStatusPendingValidation).Return(nil)
	uow.Lottery.On("UpdateStatus", mock.Anything, int64(2), entities.LotteryStatusOpen, entities.LotteryStatusPendingValidation).Return(nil)
	uow.Events.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.LotteryStatusChangedEvent)
		return ok && changed.NewStatus == string(entities.LotteryStatusPendingValidation)
	})).Return(nil).Twice()
	uow.Tokens.On("PurgeExpired", mock.Anything, workerNow).Return(int64(3), nil)

	result, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Closed: 2, Purged: 3}, result)
	assert.Equal(t, []int{2}, metrics.Closed)

	began, committed, rolledBack := uow.Counts()
	assert.Equal(t, 2, began)
	assert.Equal(t, 2, committed)
	assert.Zero(t, rolledBack)
	uow.AssertAllExpectations(t)
}

func TestLotteryCloseWorker_RunOnce_NothingExpired(t *testing.T) {
	t.Parallel()

	worker, uow, metrics := newTestWorker(t, "@every 30s")

	uow.Lottery.On("ListExpiredOpen", mock.Anything, workerNow).Return([]*entities.Lottery{}, nil)
	uow.Tokens.On("PurgeExpired", mock.Anything, workerNow).Return(int64(0), nil)

	result, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Closed)
	assert.Empty(t, metrics.Closed)
}

func TestLotteryCloseWorker_RunOnce_CloseFailureRollsBack(t *testing.T) {
	t.Parallel()

	worker, uow, _ := newTestWorker(t, "")

	uow.Lottery.On("ListExpiredOpen", mock.Anything, workerNow).Return(nil, errors.New("connection reset"))

	_, err := worker.RunOnce(context.Background())
	assert.ErrorContains(t, err, "failed to close expired lotteries")
	assert.ErrorContains(t, err, "connection reset")

	_, committed, rolledBack := uow.Counts()
	assert.Zero(t, committed)
	assert.Equal(t, 1, rolledBack)
	uow.Tokens.AssertNotCalled(t, "PurgeExpired", mock.Anything, mock.Anything)
}

func TestLotteryCloseWorker_RunOnce_BeginFailure(t *testing.T) {
	t.Parallel()

	worker, uow, _ := newTestWorker(t, "")
	uow.BeginErr = errors.New("pool closed")

	_, err := worker.RunOnce(context.Background())
	assert.ErrorContains(t, err, "failed to begin transaction")
}

func TestNewLotteryCloseWorker_InvalidSchedule(t *testing.T) {
	t.Parallel()

	services := NewServiceFactory(ServiceDependencies{})
	_, err := NewLotteryCloseWorker(NewMockUnitOfWorkFactory(), services, nil, "every minute")
	assert.ErrorContains(t, err, "invalid close worker schedule")
}

func TestLotteryCloseWorker_Start(t *testing.T) {
	t.Parallel()

	worker, uow, _ := newTestWorker(t, "@every 1h")
	uow.Lottery.On("ListExpiredOpen", mock.Anything, workerNow).Return([]*entities.Lottery{}, nil)
	uow.Tokens.On("PurgeExpired", mock.Anything, workerNow).Return(int64(0), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := worker.Start(ctx)
	assert.Eventually(t, func() bool {
		_, committed, _ := uow.Counts()
		return committed == 2
	}, 2*time.Second, 10*time.Millisecond, "start runs an immediate sweep")

	stop()
	stop()
}
