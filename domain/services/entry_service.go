package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/events"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// entryService implements participant registration
type entryService struct {
	lotteryRepo    interfaces.LotteryRepository
	entryRepo      interfaces.EntryRepository
	eventPublisher interfaces.EventPublisher
	clock          clockwork.Clock
}

// NewEntryService creates a new entry service
func NewEntryService(
	lotteryRepo interfaces.LotteryRepository,
	entryRepo interfaces.EntryRepository,
	eventPublisher interfaces.EventPublisher,
	clock clockwork.Clock,
) interfaces.EntryService {
	return newEntryService(lotteryRepo, entryRepo, eventPublisher, clock)
}

func newEntryService(
	lotteryRepo interfaces.LotteryRepository,
	entryRepo interfaces.EntryRepository,
	eventPublisher interfaces.EventPublisher,
	clock clockwork.Clock,
) *entryService {
	return &entryService{
		lotteryRepo:    lotteryRepo,
		entryRepo:      entryRepo,
		eventPublisher: eventPublisher,
		clock:          clock,
	}
}

// RegisterEntry validates numbers and registers the user in a lottery
func (s *entryService) RegisterEntry(ctx context.Context, userID, lotteryID int64, numbers, lucky entities.NumberSet) (*entities.Entry, error) {
	if err := validateChoice(numbers, lucky); err != nil {
		return nil, err
	}

	// Lock the lottery so concurrent registrations see a consistent participant count
	lottery, err := s.lotteryRepo.GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryNotFound
	}

	now := s.clock.Now().UTC()
	if !lottery.AcceptsEntries(now) {
		if lottery.Status.IsFinished() {
			return nil, ErrLotteryFinished
		}
		return nil, ErrLotteryClosed
	}

	return s.register(ctx, lottery, userID, numbers, lucky)
}

// register creates the entry once the lottery has been checked by the caller
func (s *entryService) register(ctx context.Context, lottery *entities.Lottery, userID int64, numbers, lucky entities.NumberSet) (*entities.Entry, error) {
	existing, err := s.entryRepo.GetByUserAndLottery(ctx, userID, lottery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing entry: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEntry
	}

	count, err := s.entryRepo.CountByLottery(ctx, lottery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	if lottery.IsFull(count) {
		return nil, ErrLotteryFull
	}

	entry := &entities.Entry{
		UserID:       userID,
		LotteryID:    lottery.ID,
		Numbers:      entities.NewNumberSet(numbers...).String(),
		LuckyNumbers: entities.NewNumberSet(lucky...).String(),
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	if err := s.eventPublisher.Publish(events.EntryRegisteredEvent{
		EntryID:   entry.ID,
		LotteryID: lottery.ID,
		UserID:    userID,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish entry registered event")
	}

	log.WithFields(log.Fields{
		"entry_id":   entry.ID,
		"lottery_id": lottery.ID,
		"user_id":    userID,
	}).Info("Registered lottery entry")

	return entry, nil
}

// History returns the user's entries across lotteries
func (s *entryService) History(ctx context.Context, userID int64) ([]*entities.EntryHistoryItem, error) {
	// Expired lotteries are shown as awaiting validation rather than still running
	if _, err := closeExpiredLotteries(ctx, s.lotteryRepo, s.eventPublisher, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	items, err := s.entryRepo.ListHistoryByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry history: %w", err)
	}
	return items, nil
}

// closeExpiredLotteries moves open lotteries past their end date to EN_VALIDATION
func closeExpiredLotteries(ctx context.Context, repo interfaces.LotteryRepository, publisher interfaces.EventPublisher, now time.Time) (int, error) {
	expired, err := repo.ListExpiredOpen(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired lotteries: %w", err)
	}

	closed := 0
	for _, lottery := range expired {
		ok, err := closeEnded(ctx, repo, publisher, lottery)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

// closeEnded moves an open lottery past its end date to EN_VALIDATION.
// It returns false when another transaction changed the status first.
func closeEnded(ctx context.Context, repo interfaces.LotteryRepository, publisher interfaces.EventPublisher, lottery *entities.Lottery) (bool, error) {
	err := transitionLottery(ctx, repo, publisher, lottery, entities.LotteryStatusPendingValidation)
	if errors.Is(err, ErrInvalidTransition) {
		log.WithField("lottery_id", lottery.ID).Debug("Lottery status changed concurrently, skipping close")
		return false, nil
	}
	return err == nil, err
}

// transitionLottery applies and persists a status change, then announces it
func transitionLottery(ctx context.Context, repo interfaces.LotteryRepository, publisher interfaces.EventPublisher, lottery *entities.Lottery, next entities.LotteryStatus) error {
	old := lottery.Status
	if err := lottery.TransitionTo(next); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}
	if err := repo.UpdateStatus(ctx, lottery.ID, old, next); err != nil {
		lottery.Status = old
		if errors.Is(err, entities.ErrInvalidStatusTransition) {
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}
		return fmt.Errorf("failed to update lottery status: %w", err)
	}

	if err := publisher.Publish(events.LotteryStatusChangedEvent{
		LotteryID: lottery.ID,
		OldStatus: old.String(),
		NewStatus: next.String(),
	}); err != nil {
		log.WithError(err).Warn("Failed to publish lottery status event")
	}

	log.WithFields(log.Fields{
		"lottery_id": lottery.ID,
		"old_status": old,
		"new_status": next,
	}).Info("Lottery status changed")
	return nil
}
