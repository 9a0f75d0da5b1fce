package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/ranking"
	"apploto/events"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	maxLotteryNameLength = 100
	podiumSize           = 3
)

// lotteryService implements business logic for lottery operations
type lotteryService struct {
	lotteryRepo    interfaces.LotteryRepository
	entryRepo      interfaces.EntryRepository
	resultRepo     interfaces.LotteryResultRepository
	rankingRepo    interfaces.LotteryRankingRepository
	userRepo       interfaces.UserRepository
	lookup         ranking.ParticipantLookup
	eventPublisher interfaces.EventPublisher
	clock          clockwork.Clock
	entries        *entryService
}

// NewLotteryService creates a new lottery service.
// lookup resolves winner names and defaults to userRepo when nil.
func NewLotteryService(
	lotteryRepo interfaces.LotteryRepository,
	entryRepo interfaces.EntryRepository,
	resultRepo interfaces.LotteryResultRepository,
	rankingRepo interfaces.LotteryRankingRepository,
	userRepo interfaces.UserRepository,
	lookup ranking.ParticipantLookup,
	eventPublisher interfaces.EventPublisher,
	clock clockwork.Clock,
) interfaces.LotteryService {
	if lookup == nil {
		lookup = userRepo
	}
	return &lotteryService{
		lotteryRepo:    lotteryRepo,
		entryRepo:      entryRepo,
		resultRepo:     resultRepo,
		rankingRepo:    rankingRepo,
		userRepo:       userRepo,
		lookup:         lookup,
		eventPublisher: eventPublisher,
		clock:          clock,
		entries:        newEntryService(lotteryRepo, entryRepo, eventPublisher, clock),
	}
}

// CreateLottery opens a new lottery, or a simulation
func (s *lotteryService) CreateLottery(ctx context.Context, input interfaces.CreateLotteryInput) (*entities.Lottery, error) {
	verr := NewValidationError()
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxLotteryNameLength {
		verr.Add("name", fmt.Sprintf("must be between 1 and %d characters", maxLotteryNameLength))
	}
	if input.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	}
	if !input.EndDate.After(input.StartDate) {
		verr.Add("end_date", "must be after the start date")
	}
	if input.RewardPrice <= 0 {
		verr.Add("reward_price", "must be positive")
	}
	if input.MaxParticipants <= 0 {
		verr.Add("max_participants", "must be positive")
	}
	if err := verr.ErrOrNil(); err != nil {
		return nil, err
	}

	status := entities.LotteryStatusOpen
	if input.Simulation {
		status = entities.LotteryStatusSimulation
	} else {
		open, err := s.lotteryRepo.GetOpen(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to check running lottery: %w", err)
		}
		if open != nil {
			return nil, ErrLotteryAlreadyRunning
		}
	}

	lottery := &entities.Lottery{
		Name:            name,
		StartDate:       input.StartDate.UTC(),
		EndDate:         input.EndDate.UTC(),
		Status:          status,
		RewardPrice:     input.RewardPrice,
		MaxParticipants: input.MaxParticipants,
	}
	if err := s.lotteryRepo.Create(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}

	if err := s.eventPublisher.Publish(events.LotteryCreatedEvent{
		LotteryID:       lottery.ID,
		Name:            lottery.Name,
		StartDate:       lottery.StartDate,
		EndDate:         lottery.EndDate,
		RewardPrice:     lottery.RewardPrice,
		MaxParticipants: lottery.MaxParticipants,
		Simulation:      input.Simulation,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish lottery created event")
	}

	log.WithFields(log.Fields{
		"lottery_id": lottery.ID,
		"status":     lottery.Status,
		"reward":     lottery.RewardPrice,
	}).Info("Created lottery")

	return lottery, nil
}

// ListLotteries returns every lottery with its participant count
func (s *lotteryService) ListLotteries(ctx context.Context) ([]*entities.LotterySummary, error) {
	if _, err := closeExpiredLotteries(ctx, s.lotteryRepo, s.eventPublisher, s.clock.Now().UTC()); err != nil {
		return nil, err
	}

	lotteries, err := s.lotteryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lotteries: %w", err)
	}
	return lotteries, nil
}

// GetLottery returns one lottery with its participant count
func (s *lotteryService) GetLottery(ctx context.Context, lotteryID int64) (*entities.LotterySummary, error) {
	summary, err := s.lotteryRepo.GetSummary(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if summary == nil {
		return nil, ErrLotteryNotFound
	}

	if summary.Status == entities.LotteryStatusOpen && summary.HasEnded(s.clock.Now().UTC()) {
		closed, err := closeEnded(ctx, s.lotteryRepo, s.eventPublisher, &summary.Lottery)
		if err != nil {
			return nil, err
		}
		if !closed {
			return s.reloadSummary(ctx, lotteryID)
		}
	}
	return summary, nil
}

func (s *lotteryService) reloadSummary(ctx context.Context, lotteryID int64) (*entities.LotterySummary, error) {
	summary, err := s.lotteryRepo.GetSummary(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if summary == nil {
		return nil, ErrLotteryNotFound
	}
	return summary, nil
}

// CurrentLottery returns the open lottery, or nil
func (s *lotteryService) CurrentLottery(ctx context.Context) (*entities.LotterySummary, error) {
	open, err := s.lotteryRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get running lottery: %w", err)
	}
	if open == nil {
		return nil, nil
	}

	if open.HasEnded(s.clock.Now().UTC()) {
		if _, err := closeEnded(ctx, s.lotteryRepo, s.eventPublisher, open); err != nil {
			return nil, err
		}
		return nil, nil
	}

	summary, err := s.lotteryRepo.GetSummary(ctx, open.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	return summary, nil
}

// ListParticipants returns the participants of a lottery that is not finished
func (s *lotteryService) ListParticipants(ctx context.Context, lotteryID int64) ([]*entities.Participant, error) {
	if _, err := s.getUnfinished(ctx, lotteryID); err != nil {
		return nil, err
	}

	participants, err := s.entryRepo.ListParticipants(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// RemoveParticipant deletes a user's entry from a lottery that is not finished
func (s *lotteryService) RemoveParticipant(ctx context.Context, lotteryID, userID int64) error {
	if _, err := s.getUnfinished(ctx, lotteryID); err != nil {
		return err
	}

	deleted, err := s.entryRepo.Delete(ctx, lotteryID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if !deleted {
		return ErrEntryNotFound
	}

	log.WithFields(log.Fields{
		"lottery_id": lotteryID,
		"user_id":    userID,
	}).Info("Removed lottery participant")
	return nil
}

// AddParticipantByEmail registers an entry on behalf of an existing user
func (s *lotteryService) AddParticipantByEmail(ctx context.Context, lotteryID int64, email string, numbers, lucky entities.NumberSet) (*entities.Entry, error) {
	if err := validateChoice(numbers, lucky); err != nil {
		return nil, err
	}

	lottery, err := s.lotteryRepo.GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryNotFound
	}
	if lottery.Status.IsFinished() {
		return nil, ErrLotteryFinished
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return s.entries.register(ctx, lottery, user.ID, numbers, lucky)
}

// CloseExpired moves open lotteries past their end date to EN_VALIDATION
func (s *lotteryService) CloseExpired(ctx context.Context) (int, error) {
	return closeExpiredLotteries(ctx, s.lotteryRepo, s.eventPublisher, s.clock.Now().UTC())
}

// FinalizeDraw draws or accepts winning numbers, ranks entries and persists winnings.
// The lottery row stays locked for the whole operation.
func (s *lotteryService) FinalizeDraw(ctx context.Context, lotteryID int64, numbers *entities.DrawNumbers) (*interfaces.DrawOutcome, error) {
	lottery, err := s.lotteryRepo.GetByIDForUpdate(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryNotFound
	}

	if lottery.Status == entities.LotteryStatusOpen && lottery.HasEnded(s.clock.Now().UTC()) {
		if err := transitionLottery(ctx, s.lotteryRepo, s.eventPublisher, lottery, entities.LotteryStatusPendingValidation); err != nil {
			return nil, err
		}
	}

	final, err := lottery.Status.FinalStatus()
	if err != nil {
		if lottery.Status.IsFinished() {
			return nil, ErrLotteryFinished
		}
		return nil, fmt.Errorf("%w: lottery %d is %s", ErrInvalidTransition, lottery.ID, lottery.Status)
	}

	existing, err := s.resultRepo.GetByLottery(ctx, lottery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing result: %w", err)
	}
	if existing != nil {
		return nil, ErrLotteryFinished
	}

	draw, err := s.drawNumbers(numbers)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListByLottery(ctx, lottery.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	participants, err := ranking.ParticipantsFromEntries(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}

	result := &entities.LotteryResult{
		LotteryID:           lottery.ID,
		WinningNumbers:      draw.Numbers.String(),
		WinningLuckyNumbers: draw.LuckyNumbers.String(),
	}
	winning, err := ranking.DrawFromResult(result)
	if err != nil {
		return nil, fmt.Errorf("failed to read draw: %w", err)
	}

	outcome, err := ranking.Compute(ctx, participants, winning, lottery.RewardPrice, s.lookup)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ranking: %w", err)
	}

	if err := s.resultRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to save lottery result: %w", err)
	}

	rows := make([]*entities.LotteryRanking, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		rows = append(rows, &entities.LotteryRanking{
			LotteryResultID: result.ID,
			PlayerID:        r.ParticipantID,
			Rank:            r.Rank,
			Score:           r.Score,
			Winnings:        r.Winnings,
		})
	}
	if len(rows) > 0 {
		if err := s.rankingRepo.CreateBatch(ctx, rows); err != nil {
			return nil, fmt.Errorf("failed to save rankings: %w", err)
		}
	}

	if err := transitionLottery(ctx, s.lotteryRepo, s.eventPublisher, lottery, final); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(s.drawFinalizedEvent(lottery, result, outcome, len(entries))); err != nil {
		log.WithError(err).Warn("Failed to publish draw finalized event")
	}

	log.WithFields(log.Fields{
		"lottery_id":   lottery.ID,
		"result_id":    result.ID,
		"participants": len(entries),
		"ranked":       len(outcome.Results),
		"distributed":  outcome.Distributed(),
		"placeholders": outcome.PlaceholderCount(),
	}).Info("Finalized lottery draw")

	return &interfaces.DrawOutcome{
		Lottery:  lottery,
		Result:   result,
		Rankings: rows,
		Outcome:  outcome,
	}, nil
}

// drawNumbers validates supplied winning numbers or generates new ones
func (s *lotteryService) drawNumbers(numbers *entities.DrawNumbers) (entities.DrawNumbers, error) {
	if numbers == nil {
		generated, err := entities.GenerateDrawNumbers()
		if err != nil {
			return entities.DrawNumbers{}, fmt.Errorf("failed to generate winning numbers: %w", err)
		}
		return generated, nil
	}

	if err := validateDrawNumbers(numbers); err != nil {
		return entities.DrawNumbers{}, err
	}
	return entities.DrawNumbers{
		Numbers:      entities.NewNumberSet(numbers.Numbers...),
		LuckyNumbers: entities.NewNumberSet(numbers.LuckyNumbers...),
	}, nil
}

func (s *lotteryService) drawFinalizedEvent(lottery *entities.Lottery, result *entities.LotteryResult, outcome *ranking.Outcome, participantCount int) events.DrawFinalizedEvent {
	podium := make([]events.PodiumEntry, 0, podiumSize)
	for _, r := range outcome.Results {
		if r.Rank > podiumSize {
			break
		}
		podium = append(podium, events.PodiumEntry{
			UserID:   r.ParticipantID,
			Name:     r.Name,
			Rank:     r.Rank,
			Score:    r.Score,
			Winnings: r.Winnings,
		})
	}

	return events.DrawFinalizedEvent{
		LotteryID:           lottery.ID,
		LotteryName:         lottery.Name,
		ResultID:            result.ID,
		WinningNumbers:      result.WinningNumbers,
		WinningLuckyNumbers: result.WinningLuckyNumbers,
		RewardPrice:         lottery.RewardPrice,
		Distributed:         outcome.Distributed(),
		ParticipantCount:    participantCount,
		Simulation:          lottery.Status.IsSimulation(),
		Podium:              podium,
	}
}

// GetRankings returns the persisted ranking and the viewer's own row
func (s *lotteryService) GetRankings(ctx context.Context, lotteryID, viewerID int64) (*interfaces.LotteryRankings, error) {
	result, err := s.GetResult(ctx, lotteryID)
	if err != nil {
		return nil, err
	}

	rows, err := s.rankingRepo.ListByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}

	out := &interfaces.LotteryRankings{
		LotteryID: lotteryID,
		Result:    result,
		Rankings:  rows,
	}
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			row.Name = ranking.UnknownParticipantName
		}
		if row.PlayerID == viewerID {
			out.Viewer = row
		}
	}
	return out, nil
}

// GetResult returns the winning numbers of a drawn lottery
func (s *lotteryService) GetResult(ctx context.Context, lotteryID int64) (*entities.LotteryResult, error) {
	lottery, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryNotFound
	}

	result, err := s.resultRepo.GetByLottery(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery result: %w", err)
	}
	if result == nil {
		return nil, ErrLotteryNotDrawn
	}
	return result, nil
}

func (s *lotteryService) getUnfinished(ctx context.Context, lotteryID int64) (*entities.Lottery, error) {
	lottery, err := s.lotteryRepo.GetByID(ctx, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryNotFound
	}
	if lottery.Status.IsFinished() {
		return nil, ErrLotteryFinished
	}
	return lottery, nil
}

// IsNotFound reports whether err means a requested record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLotteryNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrLotteryNotDrawn)
}
