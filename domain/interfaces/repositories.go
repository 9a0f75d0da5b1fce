package interfaces

import (
	"context"
	"time"

	"apploto/domain/entities"
	"apploto/events"
)

// UserRepository defines the interface for account data access
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByEmail retrieves a user by email, compared case-insensitively
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Create inserts a new user and fills in its ID and timestamps
	Create(ctx context.Context, user *entities.User) error

	// Update saves names, email and notification preference
	Update(ctx context.Context, user *entities.User) error

	// UpdatePassword replaces the stored password hash
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// ListNotificationSubscribers returns users that opted in to lottery emails
	ListNotificationSubscribers(ctx context.Context) ([]*entities.User, error)

	// DisplayNames resolves user IDs to "First Last". Unknown IDs are omitted.
	DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

// LotteryRepository defines the interface for lottery data access
type LotteryRepository interface {
	// Create inserts a new lottery and fills in its ID and timestamps
	Create(ctx context.Context, lottery *entities.Lottery) error

	// GetByID retrieves a lottery by its ID
	GetByID(ctx context.Context, id int64) (*entities.Lottery, error)

	// GetByIDForUpdate retrieves a lottery by ID with a row lock
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error)

	// GetSummary retrieves a lottery with its participant count
	GetSummary(ctx context.Context, id int64) (*entities.LotterySummary, error)

	// List returns every lottery with participant counts, newest first
	List(ctx context.Context) ([]*entities.LotterySummary, error)

	// GetOpen returns the lottery currently in EN_COUR, if any
	GetOpen(ctx context.Context) (*entities.Lottery, error)

	// ListExpiredOpen returns EN_COUR lotteries whose end date is at or before now
	ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Lottery, error)

	// UpdateStatus moves a lottery from one status to another. It fails with
	// entities.ErrInvalidStatusTransition when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to entities.LotteryStatus) error
}

// EntryRepository defines the interface for participant entries
type EntryRepository interface {
	// Create inserts a new entry and fills in its ID and creation time
	Create(ctx context.Context, entry *entities.Entry) error

	// GetByUserAndLottery returns the user's entry for a lottery, if any
	GetByUserAndLottery(ctx context.Context, userID, lotteryID int64) (*entities.Entry, error)

	// ListByLottery returns every entry of a lottery in registration order
	ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Entry, error)

	// ListParticipants returns entries joined with user identity
	ListParticipants(ctx context.Context, lotteryID int64) ([]*entities.Participant, error)

	// CountByLottery returns the number of entries for a lottery
	CountByLottery(ctx context.Context, lotteryID int64) (int, error)

	// Delete removes a user's entry. Returns false if there was none.
	Delete(ctx context.Context, lotteryID, userID int64) (bool, error)

	// ListHistoryByUser returns a user's entries with lottery and ranking details
	ListHistoryByUser(ctx context.Context, userID int64) ([]*entities.EntryHistoryItem, error)
}

// LotteryResultRepository defines the interface for drawn numbers
type LotteryResultRepository interface {
	// Create inserts the draw result of a lottery
	Create(ctx context.Context, result *entities.LotteryResult) error

	// GetByLottery returns the draw result of a lottery, if drawn
	GetByLottery(ctx context.Context, lotteryID int64) (*entities.LotteryResult, error)
}

// LotteryRankingRepository defines the interface for persisted winnings
type LotteryRankingRepository interface {
	// CreateBatch inserts all ranking rows of a result
	CreateBatch(ctx context.Context, rankings []*entities.LotteryRanking) error

	// ListByLottery returns ranking rows joined with player names, in rank order
	ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.RankingView, error)
}

// TokenBlockRepository defines the interface for revoked tokens
type TokenBlockRepository interface {
	// Create records a revoked token
	Create(ctx context.Context, block *entities.TokenBlock) error

	// IsRevoked returns true if the token ID has been revoked
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// PurgeExpired deletes blocks whose token has expired and returns how many were removed
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the surrounding transaction commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes buffered events. Called after commit.
	Flush(ctx context.Context) error

	// Discard drops buffered events. Called on rollback.
	Discard()
}
