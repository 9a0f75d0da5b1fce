package repository

import (
	"context"
	"fmt"
	"time"

	"apploto/database"
	"apploto/domain/entities"
	"apploto/domain/services"

	"github.com/jackc/pgx/v5"
)

const lotteryColumns = `l.id, l.name, l.start_date, l.end_date, l.status, l.reward_price, l.max_participants, l.created_at, l.updated_at`

// LotteryRepository implements lottery data access
type LotteryRepository struct {
	q Queryable
}

// NewLotteryRepository creates a new lottery repository
func NewLotteryRepository(db *database.DB) *LotteryRepository {
	return &LotteryRepository{q: db.Pool}
}

// newLotteryRepositoryWithTx creates a lottery repository bound to a transaction
func newLotteryRepositoryWithTx(tx Queryable) *LotteryRepository {
	return &LotteryRepository{q: tx}
}

func lotteryFields(l *entities.Lottery) []any {
	return []any{
		&l.ID,
		&l.Name,
		&l.StartDate,
		&l.EndDate,
		&l.Status,
		&l.RewardPrice,
		&l.MaxParticipants,
		&l.CreatedAt,
		&l.UpdatedAt,
	}
}

func (r *LotteryRepository) getOne(ctx context.Context, query string, args ...any) (*entities.Lottery, error) {
	var lottery entities.Lottery
	err := r.q.QueryRow(ctx, query, args...).Scan(lotteryFields(&lottery)...)
	if err != nil {
		return nil, err
	}
	return &lottery, nil
}

func (r *LotteryRepository) getMany(ctx context.Context, query string, args ...any) ([]*entities.Lottery, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lotteries []*entities.Lottery
	for rows.Next() {
		var lottery entities.Lottery
		if err := rows.Scan(lotteryFields(&lottery)...); err != nil {
			return nil, fmt.Errorf("failed to scan lottery: %w", err)
		}
		lotteries = append(lotteries, &lottery)
	}
	return lotteries, rows.Err()
}

// Create inserts a new lottery and fills in its ID and timestamps
func (r *LotteryRepository) Create(ctx context.Context, lottery *entities.Lottery) error {
	query := `
		INSERT INTO lotteries (name, start_date, end_date, status, reward_price, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		lottery.Name,
		lottery.StartDate,
		lottery.EndDate,
		lottery.Status,
		lottery.RewardPrice,
		lottery.MaxParticipants,
	).Scan(&lottery.ID, &lottery.CreatedAt, &lottery.UpdatedAt)
	if isUniqueViolation(err) {
		return services.ErrLotteryAlreadyRunning
	}
	if err != nil {
		return fmt.Errorf("failed to create lottery: %w", err)
	}
	return nil
}

// GetByID retrieves a lottery by its ID
func (r *LotteryRepository) GetByID(ctx context.Context, id int64) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries l WHERE l.id = $1`

	lottery, err := r.getOne(ctx, query, id)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery by ID %d: %w", id, err)
	}
	return lottery, nil
}

// GetByIDForUpdate retrieves a lottery by ID with row lock for update
func (r *LotteryRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries l WHERE l.id = $1 FOR UPDATE`

	lottery, err := r.getOne(ctx, query, id)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery for update by ID %d: %w", id, err)
	}
	return lottery, nil
}

// GetSummary retrieves a lottery with its participant count
func (r *LotteryRepository) GetSummary(ctx context.Context, id int64) (*entities.LotterySummary, error) {
	query := `
		SELECT ` + lotteryColumns + `,
		       (SELECT COUNT(*) FROM entries e WHERE e.lottery_id = l.id) AS participant_count
		FROM lotteries l
		WHERE l.id = $1
	`

	var summary entities.LotterySummary
	fields := append(lotteryFields(&summary.Lottery), &summary.ParticipantCount)
	err := r.q.QueryRow(ctx, query, id).Scan(fields...)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery summary %d: %w", id, err)
	}
	return &summary, nil
}

// List returns every lottery with participant counts, newest first
func (r *LotteryRepository) List(ctx context.Context) ([]*entities.LotterySummary, error) {
	query := `
		SELECT ` + lotteryColumns + `, COUNT(e.id) AS participant_count
		FROM lotteries l
		LEFT JOIN entries e ON e.lottery_id = l.id
		GROUP BY l.id
		ORDER BY l.start_date DESC, l.id DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list lotteries: %w", err)
	}
	defer rows.Close()

	var summaries []*entities.LotterySummary
	for rows.Next() {
		var summary entities.LotterySummary
		fields := append(lotteryFields(&summary.Lottery), &summary.ParticipantCount)
		if err := rows.Scan(fields...); err != nil {
			return nil, fmt.Errorf("failed to scan lottery summary: %w", err)
		}
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lotteries: %w", err)
	}
	return summaries, nil
}

// GetOpen returns the lottery currently in EN_COUR, if any
func (r *LotteryRepository) GetOpen(ctx context.Context) (*entities.Lottery, error) {
	query := `SELECT ` + lotteryColumns + ` FROM lotteries l WHERE l.status = $1 ORDER BY l.start_date DESC LIMIT 1`

	lottery, err := r.getOne(ctx, query, entities.LotteryStatusOpen)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open lottery: %w", err)
	}
	return lottery, nil
}

// ListExpiredOpen returns EN_COUR lotteries whose end date is at or before now
func (r *LotteryRepository) ListExpiredOpen(ctx context.Context, now time.Time) ([]*entities.Lottery, error) {
	query := `
		SELECT ` + lotteryColumns + `
		FROM lotteries l
		WHERE l.status = $1 AND l.end_date <= $2
		ORDER BY l.end_date
		FOR UPDATE SKIP LOCKED
	`

	lotteries, err := r.getMany(ctx, query, entities.LotteryStatusOpen, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired lotteries: %w", err)
	}
	return lotteries, nil
}

// UpdateStatus moves a lottery from one status to another. The write only
// applies while the row still holds from, so a stale read cannot undo a
// transition committed by another transaction.
func (r *LotteryRepository) UpdateStatus(ctx context.Context, id int64, from, to entities.LotteryStatus) error {
	query := `UPDATE lotteries SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	result, err := r.q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update lottery status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: lottery %d is not %s", entities.ErrInvalidStatusTransition, id, from)
	}
	return nil
}
