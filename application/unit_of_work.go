package application

import (
	"context"
	"fmt"

	"apploto/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	LotteryRepository() interfaces.LotteryRepository
	EntryRepository() interfaces.EntryRepository
	LotteryResultRepository() interfaces.LotteryResultRepository
	LotteryRankingRepository() interfaces.LotteryRankingRepository
	TokenBlockRepository() interfaces.TokenBlockRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// RunInUnitOfWork runs fn inside a new unit of work. The transaction is committed
// when fn succeeds and rolled back otherwise.
func RunInUnitOfWork(ctx context.Context, factory UnitOfWorkFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
