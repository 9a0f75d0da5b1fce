package repository

import (
	"context"
	"fmt"

	"apploto/database"
	"apploto/domain/entities"
	"apploto/domain/services"

	"github.com/jackc/pgx/v5"
)

// EntryRepository implements participant entry data access
type EntryRepository struct {
	q Queryable
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *database.DB) *EntryRepository {
	return &EntryRepository{q: db.Pool}
}

// newEntryRepositoryWithTx creates an entry repository bound to a transaction
func newEntryRepositoryWithTx(tx Queryable) *EntryRepository {
	return &EntryRepository{q: tx}
}

// Create inserts a new entry and fills in its ID and creation time
func (r *EntryRepository) Create(ctx context.Context, entry *entities.Entry) error {
	query := `
		INSERT INTO entries (user_id, lottery_id, numbers, lucky_numbers)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.LotteryID,
		entry.Numbers,
		entry.LuckyNumbers,
	).Scan(&entry.ID, &entry.CreatedAt)
	if isUniqueViolation(err) {
		return services.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetByUserAndLottery returns the user's entry for a lottery, if any
func (r *EntryRepository) GetByUserAndLottery(ctx context.Context, userID, lotteryID int64) (*entities.Entry, error) {
	query := `
		SELECT id, user_id, lottery_id, numbers, lucky_numbers, created_at
		FROM entries
		WHERE user_id = $1 AND lottery_id = $2
	`

	var entry entities.Entry
	err := r.q.QueryRow(ctx, query, userID, lotteryID).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.LotteryID,
		&entry.Numbers,
		&entry.LuckyNumbers,
		&entry.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return &entry, nil
}

// ListByLottery returns every entry of a lottery in registration order
func (r *EntryRepository) ListByLottery(ctx context.Context, lotteryID int64) ([]*entities.Entry, error) {
	query := `
		SELECT id, user_id, lottery_id, numbers, lucky_numbers, created_at
		FROM entries
		WHERE lottery_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entities.Entry
	for rows.Next() {
		var entry entities.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.LotteryID,
			&entry.Numbers,
			&entry.LuckyNumbers,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}
	return entries, nil
}

// ListParticipants returns entries joined with user identity
func (r *EntryRepository) ListParticipants(ctx context.Context, lotteryID int64) ([]*entities.Participant, error) {
	query := `
		SELECT e.id, e.user_id, u.first_name, u.last_name, u.email, e.numbers, e.lucky_numbers, e.created_at
		FROM entries e
		JOIN users u ON u.id = e.user_id
		WHERE e.lottery_id = $1
		ORDER BY e.id
	`

	rows, err := r.q.Query(ctx, query, lotteryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*entities.Participant
	for rows.Next() {
		var p entities.Participant
		err := rows.Scan(
			&p.EntryID,
			&p.UserID,
			&p.FirstName,
			&p.LastName,
			&p.Email,
			&p.Numbers,
			&p.LuckyNumbers,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

// CountByLottery returns the number of entries for a lottery
func (r *EntryRepository) CountByLottery(ctx context.Context, lotteryID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM entries WHERE lottery_id = $1`, lotteryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return count, nil
}

// Delete removes a user's entry. Returns false if there was none.
func (r *EntryRepository) Delete(ctx context.Context, lotteryID, userID int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM entries WHERE lottery_id = $1 AND user_id = $2`, lotteryID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete entry: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListHistoryByUser returns a user's entries with lottery and ranking details, newest lottery first
func (r *EntryRepository) ListHistoryByUser(ctx context.Context, userID int64) ([]*entities.EntryHistoryItem, error) {
	query := `
		SELECT e.id, l.id, l.name, l.status, l.end_date, e.numbers, e.lucky_numbers,
		       lr.rank, lr.score, lr.winnings, e.created_at
		FROM entries e
		JOIN lotteries l ON l.id = e.lottery_id
		LEFT JOIN lottery_results res ON res.lottery_id = l.id
		LEFT JOIN lottery_rankings lr ON lr.lottery_result_id = res.id AND lr.player_id = e.user_id
		WHERE e.user_id = $1
		ORDER BY l.end_date DESC, e.id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entry history: %w", err)
	}
	defer rows.Close()

	var items []*entities.EntryHistoryItem
	for rows.Next() {
		var item entities.EntryHistoryItem
		err := rows.Scan(
			&item.EntryID,
			&item.LotteryID,
			&item.LotteryName,
			&item.Status,
			&item.EndDate,
			&item.Numbers,
			&item.LuckyNumbers,
			&item.Rank,
			&item.Score,
			&item.Winnings,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry history: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry history: %w", err)
	}
	return items, nil
}
