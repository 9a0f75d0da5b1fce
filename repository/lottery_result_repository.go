package repository

import (
	"context"
	"fmt"

	"apploto/database"
	"apploto/domain/entities"
	"apploto/domain/services"

	"github.com/jackc/pgx/v5"
)

// LotteryResultRepository implements draw result data access
type LotteryResultRepository struct {
	q Queryable
}

// NewLotteryResultRepository creates a new lottery result repository
func NewLotteryResultRepository(db *database.DB) *LotteryResultRepository {
	return &LotteryResultRepository{q: db.Pool}
}

func newLotteryResultRepositoryWithTx(tx Queryable) *LotteryResultRepository {
	return &LotteryResultRepository{q: tx}
}

// Create inserts the draw result of a lottery
func (r *LotteryResultRepository) Create(ctx context.Context, result *entities.LotteryResult) error {
	query := `
		INSERT INTO lottery_results (lottery_id, winning_numbers, winning_lucky_numbers)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		result.LotteryID,
		result.WinningNumbers,
		result.WinningLuckyNumbers,
	).Scan(&result.ID, &result.CreatedAt)
	if isUniqueViolation(err) {
		return services.ErrLotteryFinished
	}
	if err != nil {
		return fmt.Errorf("failed to create lottery result: %w", err)
	}
	return nil
}

// GetByLottery returns the draw result of a lottery, if drawn
func (r *LotteryResultRepository) GetByLottery(ctx context.Context, lotteryID int64) (*entities.LotteryResult, error) {
	query := `
		SELECT id, lottery_id, winning_numbers, winning_lucky_numbers, created_at
		FROM lottery_results
		WHERE lottery_id = $1
	`

	var result entities.LotteryResult
	err := r.q.QueryRow(ctx, query, lotteryID).Scan(
		&result.ID,
		&result.LotteryID,
		&result.WinningNumbers,
		&result.WinningLuckyNumbers,
		&result.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery result: %w", err)
	}
	return &result, nil
}
