package repository

import (
	"context"
	"errors"
	"fmt"

	"apploto/application"
	"apploto/database"
	"apploto/domain/interfaces"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const notStarted = "unit of work not started - call Begin() first"

// txRepositories are bound to a single pgx transaction
type txRepositories struct {
	users      interfaces.UserRepository
	lotteries  interfaces.LotteryRepository
	entries    interfaces.EntryRepository
	results    interfaces.LotteryResultRepository
	rankings   interfaces.LotteryRankingRepository
	tokenBlock interfaces.TokenBlockRepository
}

func newTxRepositories(tx pgx.Tx) *txRepositories {
	return &txRepositories{
		users:      newUserRepositoryWithTx(tx),
		lotteries:  newLotteryRepositoryWithTx(tx),
		entries:    newEntryRepositoryWithTx(tx),
		results:    newLotteryResultRepositoryWithTx(tx),
		rankings:   newLotteryRankingRepositoryWithTx(tx),
		tokenBlock: newTokenBlockRepositoryWithTx(tx),
	}
}

// unitOfWork runs every repository call in one transaction and holds domain
// events until the transaction commits
type unitOfWork struct {
	db        *database.DB
	tx        pgx.Tx
	ctx       context.Context
	publisher interfaces.TransactionalEventPublisher
	repos     *txRepositories
}

type unitOfWorkFactory struct {
	db *database.DB
}

func NewUnitOfWorkFactory(db *database.DB) *unitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

// CreateWithPublisher creates a UnitOfWork that flushes publisher on commit
func (f *unitOfWorkFactory) CreateWithPublisher(publisher interfaces.TransactionalEventPublisher) application.UnitOfWork {
	return &unitOfWork{db: f.db, publisher: publisher}
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errors.New("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx, u.ctx = tx, ctx
	u.repos = newTxRepositories(tx)
	return nil
}

// Commit commits and then flushes pending events. A flush failure is logged,
// the data is already durable at that point.
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return errors.New("no transaction to commit")
	}
	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.publisher != nil {
		if err := u.publisher.Flush(u.ctx); err != nil {
			log.WithError(err).Error("Failed to flush events after commit")
		}
	}
	return nil
}

// Rollback is a no-op when nothing is in flight
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(u.ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.publisher != nil {
		u.publisher.Discard()
	}
	return nil
}

func (u *unitOfWork) started() *txRepositories {
	if u.repos == nil {
		panic(notStarted)
	}
	return u.repos
}

func (u *unitOfWork) UserRepository() interfaces.UserRepository { return u.started().users }

func (u *unitOfWork) LotteryRepository() interfaces.LotteryRepository {
	return u.started().lotteries
}

func (u *unitOfWork) EntryRepository() interfaces.EntryRepository { return u.started().entries }

func (u *unitOfWork) LotteryResultRepository() interfaces.LotteryResultRepository {
	return u.started().results
}

func (u *unitOfWork) LotteryRankingRepository() interfaces.LotteryRankingRepository {
	return u.started().rankings
}

func (u *unitOfWork) TokenBlockRepository() interfaces.TokenBlockRepository {
	return u.started().tokenBlock
}

// EventBus returns the transactional publisher whose events wait for Commit
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.publisher == nil {
		panic(notStarted)
	}
	return u.publisher
}
