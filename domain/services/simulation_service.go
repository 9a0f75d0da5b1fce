package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	maxSimulatedParticipants = 1000
	simulationWindow         = time.Hour
)

// simulationService fills a SIMULATION lottery with generated players and finalizes it
type simulationService struct {
	lotteryService interfaces.LotteryService
	entryService   interfaces.EntryService
	userRepo       interfaces.UserRepository
	faker          *gofakeit.Faker
	clock          clockwork.Clock
}

// NewSimulationService creates a new simulation service. A nil faker uses a random seed.
func NewSimulationService(
	lotteryService interfaces.LotteryService,
	entryService interfaces.EntryService,
	userRepo interfaces.UserRepository,
	faker *gofakeit.Faker,
	clock clockwork.Clock,
) interfaces.SimulationService {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	return &simulationService{
		lotteryService: lotteryService,
		entryService:   entryService,
		userRepo:       userRepo,
		faker:          faker,
		clock:          clock,
	}
}

// Simulate creates a simulation lottery with generated players and finalizes it
func (s *simulationService) Simulate(ctx context.Context, input interfaces.SimulationInput) (*interfaces.DrawOutcome, error) {
	if input.Participants <= 0 || input.Participants > maxSimulatedParticipants {
		verr := NewValidationError()
		verr.Add("participants", fmt.Sprintf("must be between 1 and %d", maxSimulatedParticipants))
		return nil, verr
	}

	now := s.clock.Now().UTC()
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = fmt.Sprintf("Simulation %s", now.Format("2006-01-02 15:04"))
	}

	lottery, err := s.lotteryService.CreateLottery(ctx, interfaces.CreateLotteryInput{
		Name:            name,
		StartDate:       now,
		EndDate:         now.Add(simulationWindow),
		RewardPrice:     input.RewardPrice,
		MaxParticipants: input.Participants,
		Simulation:      true,
	})
	if err != nil {
		return nil, err
	}

	for i := 0; i < input.Participants; i++ {
		user := &entities.User{
			FirstName: s.faker.FirstName(),
			LastName:  s.faker.LastName(),
			Email:     fmt.Sprintf("sim%d.%d.%s", lottery.ID, i, strings.ToLower(s.faker.Email())),
			Role:      entities.RoleFake,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create simulated player: %w", err)
		}

		numbers := s.pick(entities.NumbersPerEntry, entities.MinNumber, entities.MaxNumber)
		lucky := s.pick(entities.LuckyNumbersPerEntry, entities.MinLuckyNumber, entities.MaxLuckyNumber)
		if _, err := s.entryService.RegisterEntry(ctx, user.ID, lottery.ID, numbers, lucky); err != nil {
			return nil, fmt.Errorf("failed to register simulated entry: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"lottery_id":   lottery.ID,
		"participants": input.Participants,
	}).Info("Generated simulation entries")

	return s.lotteryService.FinalizeDraw(ctx, lottery.ID, nil)
}

// pick returns k distinct values from [lo, hi]
func (s *simulationService) pick(k, lo, hi int) entities.NumberSet {
	pool := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		pool = append(pool, v)
	}
	s.faker.ShuffleInts(pool)
	return entities.NewNumberSet(pool[:k]...)
}
