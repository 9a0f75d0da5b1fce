package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultCloseSchedule runs the sweep once a minute
const DefaultCloseSchedule = "@every 1m"

// MetricsRecorder receives domain counters
type MetricsRecorder interface {
	RecordLotteriesClosed(count int)
	RecordDrawFinalized(drawType string, distributed float64)
	RecordEntryRegistered()
	RecordNotification(channel string, err error)
}

// SweepResult summarizes one run of the close worker
type SweepResult struct {
	Closed int
	Purged int64
}

// LotteryCloseWorker moves expired lotteries to EN_VALIDATION and purges the token block list
type LotteryCloseWorker struct {
	uowFactory UnitOfWorkFactory
	services   *ServiceFactory
	metrics    MetricsRecorder
	schedule   cron.Schedule
	spec       string

	mu      sync.Mutex // one sweep at a time
	running bool
}

// NewLotteryCloseWorker creates a worker for the given cron spec
func NewLotteryCloseWorker(uowFactory UnitOfWorkFactory, services *ServiceFactory, metrics MetricsRecorder, spec string) (*LotteryCloseWorker, error) {
	if spec == "" {
		spec = DefaultCloseSchedule
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid close worker schedule %q: %w", spec, err)
	}
	return &LotteryCloseWorker{
		uowFactory: uowFactory,
		services:   services,
		metrics:    metrics,
		schedule:   schedule,
		spec:       spec,
	}, nil
}

// Start runs a sweep immediately and then on schedule until ctx is done or
// the returned stop function is called
func (w *LotteryCloseWorker) Start(ctx context.Context) func() {
	c := cron.New(cron.WithLocation(w.services.Clock().Now().Location()))
	c.Schedule(w.schedule, cron.FuncJob(func() {
		w.runLogged(ctx)
	}))

	go w.runLogged(ctx)
	c.Start()
	log.WithField("schedule", w.spec).Info("Lottery close worker started")

	var once sync.Once
	stop := func() {
		once.Do(func() {
			<-c.Stop().Done()
			log.Info("Lottery close worker stopped")
		})
	}

	go func() {
		<-ctx.Done()
		stop()
	}()

	return stop
}

func (w *LotteryCloseWorker) runLogged(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := w.RunOnce(ctx); err != nil {
		log.WithError(err).Error("Lottery close sweep failed")
	}
}

// RunOnce performs a single sweep. Overlapping calls return immediately.
func (w *LotteryCloseWorker) RunOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		log.Debug("Lottery close sweep already running, skipping")
		return result, nil
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	err := RunInUnitOfWork(ctx, w.uowFactory, func(uow UnitOfWork) error {
		closed, err := w.services.LotteryService(uow).CloseExpired(ctx)
		if err != nil {
			return fmt.Errorf("failed to close expired lotteries: %w", err)
		}
		result.Closed = closed
		return nil
	})
	if err != nil {
		return result, err
	}
	if result.Closed > 0 {
		if w.metrics != nil {
			w.metrics.RecordLotteriesClosed(result.Closed)
		}
		log.WithField("closed", result.Closed).Info("Closed expired lotteries")
	}

	// Token purge failures must not undo the status changes above
	err = RunInUnitOfWork(ctx, w.uowFactory, func(uow UnitOfWork) error {
		purged, err := w.services.AuthService(uow).PurgeExpiredTokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to purge expired tokens: %w", err)
		}
		result.Purged = purged
		return nil
	})
	if err != nil {
		return result, err
	}
	if result.Purged > 0 {
		log.WithField("purged", result.Purged).Debug("Purged expired token blocks")
	}

	return result, nil
}
