package testhelpers

import (
	"context"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/events"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) ListNotificationSubscribers(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) DisplayNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}

// MockLotteryRepository is a mock implementation of LotteryRepository
type MockLotteryRepository struct {
	mock.Mock
}

func (m *MockLotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	args := m.Called(ctx, lottery)
	return args.Error(0)
}

func (m *MockLotteryRepository) GetByID(ctx context.Context, id int64) (*entities.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) GetSummary(ctx context.Context, id int64) (*entities.LotterySummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotterySummary), args.Error(1)
}

func (m *MockLotteryRepository) List(ctx context.Context) ([]*entities.LotterySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LotterySummary), args.Error(1)
}

func (m *MockLotteryRepository) GetOpen(ctx context.Context) (*entities.Lottery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Lottery, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lottery), args.Error(1)
}

func (m *MockLotteryRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.LotteryStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// MockEntryRepository is a mock implementation of EntryRepository
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *entities.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) GetByUserAndLottery(ctx context.Context, userID, lotteryID int64) (*entities.Entry, error) {
	args := m.Called(ctx, userID, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Entry, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Entry), args.Error(1)
}

func (m *MockEntryRepository) ListParticipants(ctx context.Context, lotteryID int64) ([]*entities.Participant, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Participant), args.Error(1)
}

func (m *MockEntryRepository) CountByLottery(ctx context.Context, lotteryID int64) (int, error) {
	args := m.Called(ctx, lotteryID)
	return args.Int(0), args.Error(1)
}

func (m *MockEntryRepository) Delete(ctx context.Context, lotteryID, userID int64) (bool, error) {
	args := m.Called(ctx, lotteryID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) ListHistoryByUser(ctx context.Context, userID int64) ([]*entities.EntryHistoryItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EntryHistoryItem), args.Error(1)
}

// MockLotteryResultRepository is a mock implementation of LotteryResultRepository
type MockLotteryResultRepository struct {
	mock.Mock
}

func (m *MockLotteryResultRepository) Create(ctx context.Context, result *entities.LotteryResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockLotteryResultRepository) GetByLottery(ctx context.Context, lotteryID int64) (*entities.LotteryResult, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LotteryResult), args.Error(1)
}

// MockLotteryRankingRepository is a mock implementation of LotteryRankingRepository
type MockLotteryRankingRepository struct {
	mock.Mock
}

func (m *MockLotteryRankingRepository) CreateBatch(ctx context.Context, rankings []*entities.LotteryRanking) error {
	args := m.Called(ctx, rankings)
	return args.Error(0)
}

func (m *MockLotteryRankingRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.RankingView, error) {
	args := m.Called(ctx, lotteryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RankingView), args.Error(1)
}

// MockTokenBlockRepository is a mock implementation of TokenBlockRepository
type MockTokenBlockRepository struct {
	mock.Mock
}

func (m *MockTokenBlockRepository) Create(ctx context.Context, block *entities.TokenBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *MockTokenBlockRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenBlockRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of PasswordHasher
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Compare(hash, password string) error {
	args := m.Called(hash, password)
	return args.Error(0)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(userID int64, role entities.Role, tokenType entities.TokenType) (string, *interfaces.TokenClaims, error) {
	args := m.Called(userID, role, tokenType)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*interfaces.TokenClaims), args.Error(2)
}

func (m *MockTokenIssuer) Parse(token string, tokenType entities.TokenType) (*interfaces.TokenClaims, error) {
	args := m.Called(token, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.TokenClaims), args.Error(1)
}

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg interfaces.MailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
