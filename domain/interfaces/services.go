package interfaces

import (
	"context"
	"time"

	"apploto/domain/entities"
	"apploto/domain/ranking"
)

// CreateLotteryInput holds the administrator's parameters for a new lottery
type CreateLotteryInput struct {
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	RewardPrice     float64
	MaxParticipants int
	Simulation      bool
}

// DrawOutcome is what finalizing a lottery produced
type DrawOutcome struct {
	Lottery  *entities.Lottery
	Result   *entities.LotteryResult
	Rankings []*entities.LotteryRanking
	Outcome  *ranking.Outcome
}

// LotteryRankings is the public ranking of a finished lottery
type LotteryRankings struct {
	LotteryID int64
	Result    *entities.LotteryResult
	Rankings  []*entities.RankingView
	Viewer    *entities.RankingView // nil when the viewer did not place
}

// LotteryService defines the interface for lottery administration and draws
type LotteryService interface {
	// CreateLottery opens a new lottery, or a simulation
	CreateLottery(ctx context.Context, input CreateLotteryInput) (*entities.Lottery, error)

	// ListLotteries returns every lottery with its participant count
	ListLotteries(ctx context.Context) ([]*entities.LotterySummary, error)

	// GetLottery returns one lottery with its participant count
	GetLottery(ctx context.Context, lotteryID int64) (*entities.LotterySummary, error)

	// CurrentLottery returns the open lottery, or nil
	CurrentLottery(ctx context.Context) (*entities.LotterySummary, error)

	// ListParticipants returns the participants of a lottery that is not finished
	ListParticipants(ctx context.Context, lotteryID int64) ([]*entities.Participant, error)

	// RemoveParticipant deletes a user's entry from a lottery that is not finished
	RemoveParticipant(ctx context.Context, lotteryID, userID int64) error

	// AddParticipantByEmail registers an entry on behalf of an existing user
	AddParticipantByEmail(ctx context.Context, lotteryID int64, email string, numbers, lucky entities.NumberSet) (*entities.Entry, error)

	// CloseExpired moves open lotteries past their end date to EN_VALIDATION
	CloseExpired(ctx context.Context) (int, error)

	// FinalizeDraw draws or accepts winning numbers, ranks entries and persists winnings
	FinalizeDraw(ctx context.Context, lotteryID int64, numbers *entities.DrawNumbers) (*DrawOutcome, error)

	// GetRankings returns the persisted ranking and the viewer's own row
	GetRankings(ctx context.Context, lotteryID, viewerID int64) (*LotteryRankings, error)

	// GetResult returns the winning numbers of a drawn lottery
	GetResult(ctx context.Context, lotteryID int64) (*entities.LotteryResult, error)
}

// EntryService defines the interface for participant entries
type EntryService interface {
	// RegisterEntry validates numbers and registers the user in a lottery
	RegisterEntry(ctx context.Context, userID, lotteryID int64, numbers, lucky entities.NumberSet) (*entities.Entry, error)

	// History returns the user's entries across lotteries
	History(ctx context.Context, userID int64) ([]*entities.EntryHistoryItem, error)
}

// SimulationInput holds the parameters of a generated lottery
type SimulationInput struct {
	Name         string
	Participants int
	RewardPrice  float64
}

// SimulationService defines the interface for simulated lotteries
type SimulationService interface {
	// Simulate creates a simulation lottery with generated players and finalizes it
	Simulate(ctx context.Context, input SimulationInput) (*DrawOutcome, error)
}

// RegisterInput holds a new account's details
type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Notification bool
}

// UpdateAccountInput holds editable account details
type UpdateAccountInput struct {
	FirstName    string
	LastName     string
	Email        string
	Notification bool
}

// AccountService defines the interface for account management
type AccountService interface {
	// Register creates a USER account
	Register(ctx context.Context, input RegisterInput) (*entities.User, error)

	// GetAccount returns the account of a user
	GetAccount(ctx context.Context, userID int64) (*entities.User, error)

	// UpdateAccount saves editable account details
	UpdateAccount(ctx context.Context, userID int64, input UpdateAccountInput) (*entities.User, error)

	// UpdatePassword replaces the password after checking the current one
	UpdatePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

// TokenPair is the result of a successful login
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	Role         entities.Role
}

// TokenClaims is the parsed content of a signed token
type TokenClaims struct {
	JTI       string
	UserID    int64
	Role      entities.Role
	Type      entities.TokenType
	ExpiresAt time.Time
}

// AuthService defines the interface for authentication and token revocation
type AuthService interface {
	// Login authenticates a USER or ADMIN
	Login(ctx context.Context, email, password string) (*TokenPair, error)

	// AdminLogin authenticates an ADMIN only
	AdminLogin(ctx context.Context, email, password string) (*TokenPair, error)

	// Refresh issues a new access token from a valid refresh token
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Authenticate parses an access token and rejects revoked ones
	Authenticate(ctx context.Context, accessToken string) (*TokenClaims, error)

	// Revoke adds a token to the block list
	Revoke(ctx context.Context, token string, tokenType entities.TokenType) error

	// Logout revokes both tokens of a session
	Logout(ctx context.Context, accessToken, refreshToken string) error

	// PurgeExpiredTokens removes block list rows that can no longer matter
	PurgeExpiredTokens(ctx context.Context) (int64, error)
}

// ContactService defines the interface for the public contact form
type ContactService interface {
	// ContactUs forwards a visitor message to the administrators
	ContactUs(ctx context.Context, email, message string) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs and parses tokens
type TokenIssuer interface {
	Issue(userID int64, role entities.Role, tokenType entities.TokenType) (string, *TokenClaims, error)
	Parse(token string, tokenType entities.TokenType) (*TokenClaims, error)
}

// MailMessage is an outgoing email
type MailMessage struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
