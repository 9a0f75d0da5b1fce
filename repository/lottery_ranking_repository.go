package repository

import (
	"context"
	"fmt"

	"apploto/database"
	"apploto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// LotteryRankingRepository implements persisted winnings data access
type LotteryRankingRepository struct {
	q Queryable
}

// NewLotteryRankingRepository creates a new lottery ranking repository
func NewLotteryRankingRepository(db *database.DB) *LotteryRankingRepository {
	return &LotteryRankingRepository{q: db.Pool}
}

func newLotteryRankingRepositoryWithTx(tx Queryable) *LotteryRankingRepository {
	return &LotteryRankingRepository{q: tx}
}

// CreateBatch inserts all ranking rows of a result in one round trip
func (r *LotteryRankingRepository) CreateBatch(ctx context.Context, rankings []*entities.LotteryRanking) error {
	if len(rankings) == 0 {
		return nil
	}

	query := `
		INSERT INTO lottery_rankings (lottery_result_id, player_id, rank, score, winnings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, ranking := range rankings {
		batch.Queue(query, ranking.LotteryResultID, ranking.PlayerID, ranking.Rank, ranking.Score, ranking.Winnings)
	}

	results := r.q.SendBatch(ctx, batch)
	for _, ranking := range rankings {
		if err := results.QueryRow().Scan(&ranking.ID, &ranking.CreatedAt); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to create ranking for player %d: %w", ranking.PlayerID, err)
		}
	}

	// Close reports errors the per-row scans do not surface
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close ranking batch: %w", err)
	}
	return nil
}

// ListByLottery returns ranking rows joined with player names, in rank order.
// Rows whose player no longer resolves come back with an empty name.
func (r *LotteryRankingRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.RankingView, error) {
	query := `
		SELECT lr.player_id,
		       COALESCE(TRIM(u.first_name || ' ' || u.last_name), ''),
		       lr.rank, lr.score, lr.winnings
		FROM lottery_rankings lr
		JOIN lottery_results res ON res.id = lr.lottery_result_id
		LEFT JOIN users u ON u.id = lr.player_id
		WHERE res.lottery_id = $1
		ORDER BY lr.rank, lr.player_id
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rankings: %w", err)
	}
	defer rows.Close()

	var views []*entities.RankingView
	for rows.Next() {
		var v entities.RankingView
		if err := rows.Scan(&v.PlayerID, &v.Name, &v.Rank, &v.Score, &v.Winnings); err != nil {
			return nil, fmt.Errorf("failed to scan ranking: %w", err)
		}
		views = append(views, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rankings: %w", err)
	}
	return views, nil
}
