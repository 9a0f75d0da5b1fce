package entities

import "time"

// LotteryRanking is a persisted winnings record for one participant of a validated lottery
type LotteryRanking struct {
	ID              int64     `db:"id"`
	LotteryResultID int64     `db:"lottery_result_id"`
	PlayerID        int64     `db:"player_id"`
	Rank            int       `db:"rank"`
	Score           int       `db:"score"`
	Winnings        float64   `db:"winnings"`
	CreatedAt       time.Time `db:"created_at"`
}

// RankingView is a ranking row joined with the player's display name
type RankingView struct {
	PlayerID int64   `db:"player_id"`
	Name     string  `db:"name"`
	Rank     int     `db:"rank"`
	Score    int     `db:"score"`
	Winnings float64 `db:"winnings"`
}
