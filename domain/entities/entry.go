package entities

import (
	"time"
)

// Entry represents one participant's number choices for a lottery
type Entry struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	LotteryID    int64     `db:"lottery_id"`
	Numbers      string    `db:"numbers"`       // 5 distinct values in 1-49, comma-separated
	LuckyNumbers string    `db:"lucky_numbers"` // 2 distinct values in 1-9, comma-separated
	CreatedAt    time.Time `db:"created_at"`
}

// NumberSet parses the chosen numbers
func (e *Entry) NumberSet() (NumberSet, error) {
	return ParseNumberSet(e.Numbers)
}

// LuckySet parses the chosen lucky numbers
func (e *Entry) LuckySet() (NumberSet, error) {
	return ParseNumberSet(e.LuckyNumbers)
}

// EntryHistoryItem is an entry seen from the participant's history page
type EntryHistoryItem struct {
	EntryID      int64         `db:"entry_id"`
	LotteryID    int64         `db:"lottery_id"`
	LotteryName  string        `db:"lottery_name"`
	Status       LotteryStatus `db:"status"`
	EndDate      time.Time     `db:"end_date"`
	Numbers      string        `db:"numbers"`
	LuckyNumbers string        `db:"lucky_numbers"`
	Rank         *int          `db:"rank"`     // NULL until the draw is validated and the entry placed
	Score        *int          `db:"score"`    // NULL until the draw is validated and the entry placed
	Winnings     *float64      `db:"winnings"` // NULL until the draw is validated and the entry placed
	CreatedAt    time.Time     `db:"created_at"`
}

// IsRanked returns true if the entry placed in the final ranking
func (h *EntryHistoryItem) IsRanked() bool {
	return h.Rank != nil
}
