package api

import (
	"strconv"
	"time"

	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/gin-gonic/gin"
)

type accountResponse struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Notification bool   `json:"notification"`
}

func newAccountResponse(u *entities.User) accountResponse {
	return accountResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Role:         u.Role.String(),
		Notification: u.Notification,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Role         string `json:"role,omitempty"`
}

func newTokenResponse(pair *interfaces.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Role:         pair.Role.String(),
	}
}

type lotteryResponse struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Status           string    `json:"status"`
	RewardPrice      float64   `json:"reward_price"`
	MaxParticipants  int       `json:"max_participants"`
	ParticipantCount int       `json:"participant_count"`
}

func newLotteryResponse(l *entities.Lottery, participants int) lotteryResponse {
	return lotteryResponse{
		ID:               l.ID,
		Name:             l.Name,
		StartDate:        l.StartDate,
		EndDate:          l.EndDate,
		Status:           l.Status.String(),
		RewardPrice:      l.RewardPrice,
		MaxParticipants:  l.MaxParticipants,
		ParticipantCount: participants,
	}
}

func newSummaryResponse(s *entities.LotterySummary) lotteryResponse {
	return newLotteryResponse(&s.Lottery, s.ParticipantCount)
}

type entryResponse struct {
	ID           int64     `json:"id"`
	LotteryID    int64     `json:"lottery_id"`
	UserID       int64     `json:"user_id"`
	Numbers      string    `json:"numbers"`
	LuckyNumbers string    `json:"lucky_numbers"`
	CreatedAt    time.Time `json:"created_at"`
}

func newEntryResponse(e *entities.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		LotteryID:    e.LotteryID,
		UserID:       e.UserID,
		Numbers:      e.Numbers,
		LuckyNumbers: e.LuckyNumbers,
		CreatedAt:    e.CreatedAt,
	}
}

type participantResponse struct {
	EntryID      int64     `json:"entry_id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Numbers      string    `json:"numbers"`
	LuckyNumbers string    `json:"lucky_numbers"`
	CreatedAt    time.Time `json:"created_at"`
}

type historyResponse struct {
	LotteryID    int64     `json:"lottery_id"`
	LotteryName  string    `json:"lottery_name"`
	Status       string    `json:"status"`
	EndDate      time.Time `json:"end_date"`
	Numbers      string    `json:"numbers"`
	LuckyNumbers string    `json:"lucky_numbers"`
	Rank         *int      `json:"rank"`
	Score        *int      `json:"score"`
	Winnings     *float64  `json:"winnings"`
}

type resultResponse struct {
	LotteryID           int64     `json:"lottery_id"`
	WinningNumbers      string    `json:"winning_numbers"`
	WinningLuckyNumbers string    `json:"winning_lucky_numbers"`
	DrawnAt             time.Time `json:"drawn_at"`
}

func newResultResponse(r *entities.LotteryResult) resultResponse {
	return resultResponse{
		LotteryID:           r.LotteryID,
		WinningNumbers:      r.WinningNumbers,
		WinningLuckyNumbers: r.WinningLuckyNumbers,
		DrawnAt:             r.CreatedAt,
	}
}

type rankingRow struct {
	PlayerID int64   `json:"player_id"`
	Rank     int     `json:"rank"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	Winnings float64 `json:"winnings"`
}

func newRankingRow(v *entities.RankingView) rankingRow {
	return rankingRow{PlayerID: v.PlayerID, Rank: v.Rank, Name: v.Name, Score: v.Score, Winnings: v.Winnings}
}

type rankingsResponse struct {
	Result   resultResponse `json:"result"`
	Rankings []rankingRow   `json:"rankings"`
	Me       *rankingRow    `json:"me,omitempty"`
}

func newRankingsResponse(r *interfaces.LotteryRankings) rankingsResponse {
	out := rankingsResponse{
		Result:   newResultResponse(r.Result),
		Rankings: make([]rankingRow, 0, len(r.Rankings)),
	}
	for _, row := range r.Rankings {
		out.Rankings = append(out.Rankings, newRankingRow(row))
	}
	if r.Viewer != nil {
		me := newRankingRow(r.Viewer)
		out.Me = &me
	}
	return out
}

type drawResponse struct {
	Lottery     lotteryResponse `json:"lottery"`
	Result      resultResponse  `json:"result"`
	Rankings    []rankingRow    `json:"rankings"`
	Distributed float64         `json:"distributed"`
}

func newDrawResponse(outcome *interfaces.DrawOutcome, participants int) drawResponse {
	out := drawResponse{
		Lottery:  newLotteryResponse(outcome.Lottery, participants),
		Result:   newResultResponse(outcome.Result),
		Rankings: make([]rankingRow, 0),
	}
	if outcome.Outcome != nil {
		for _, r := range outcome.Outcome.Results {
			out.Rankings = append(out.Rankings, rankingRow{
				PlayerID: r.ParticipantID,
				Rank:     r.Rank,
				Name:     r.Name,
				Score:    r.Score,
				Winnings: r.Winnings,
			})
		}
		out.Distributed = outcome.Outcome.Distributed()
	}
	return out
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
