package api

import (
	"context"
	"net/http"

	"apploto/application"
	"apploto/domain/entities"
	"apploto/domain/interfaces"
	"apploto/domain/services"
	"apploto/infrastructure"

	"github.com/gin-gonic/gin"
)

type updateAccountRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Notification bool   `json:"notification"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type entryRequest struct {
	LotteryID    int64 `json:"lottery_id"`
	Numbers      []int `json:"numbers"`
	LuckyNumbers []int `json:"lucky_numbers"`
}

func (s *Server) getAccount(c *gin.Context) {
	claims := currentClaims(c)

	var user *entities.User
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		user, err = s.services.AccountService(uow).GetAccount(ctx, claims.UserID)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAccountResponse(user))
}

func (s *Server) updateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	claims := currentClaims(c)

	var user *entities.User
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		user, err = s.services.AccountService(uow).UpdateAccount(ctx, claims.UserID, interfaces.UpdateAccountInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Notification: req.Notification,
		})
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	// rankings show display names, drop the stale one
	if s.nameCache != nil {
		s.nameCache.Invalidate(user.ID)
	}
	c.JSON(http.StatusOK, newAccountResponse(user))
}

func (s *Server) updatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	claims := currentClaims(c)

	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		return s.services.AccountService(uow).UpdatePassword(ctx, claims.UserID, req.OldPassword, req.NewPassword)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (s *Server) registerEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	claims := currentClaims(c)

	var entry *entities.Entry
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		entry, err = s.services.EntryService(uow).RegisterEntry(ctx, claims.UserID, req.LotteryID,
			entities.NumberSet(req.Numbers), entities.NumberSet(req.LuckyNumbers))
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEntryResponse(entry))
}

func (s *Server) history(c *gin.Context) {
	claims := currentClaims(c)

	var items []*entities.EntryHistoryItem
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		items, err = s.services.EntryService(uow).History(ctx, claims.UserID)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]historyResponse, 0, len(items))
	for _, item := range items {
		out = append(out, historyResponse{
			LotteryID:    item.LotteryID,
			LotteryName:  item.LotteryName,
			Status:       item.Status.String(),
			EndDate:      item.EndDate,
			Numbers:      item.Numbers,
			LuckyNumbers: item.LuckyNumbers,
			Rank:         item.Rank,
			Score:        item.Score,
			Winnings:     item.Winnings,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) currentLottery(c *gin.Context) {
	var summary *entities.LotterySummary
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		summary, err = s.services.LotteryService(uow).CurrentLottery(ctx)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	if summary == nil {
		abortWithError(c, services.ErrLotteryNotFound)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) getLottery(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var summary *entities.LotterySummary
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		summary, err = s.services.LotteryService(uow).GetLottery(ctx, id)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) getResult(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var result *entities.LotteryResult
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		result, err = s.services.LotteryService(uow).GetResult(ctx, id)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newResultResponse(result))
}

func (s *Server) getRankings(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	claims := currentClaims(c)

	var rankings *interfaces.LotteryRankings
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		rankings, err = s.services.LotteryService(uow).GetRankings(ctx, id, claims.UserID)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newRankingsResponse(rankings))
}

// receipt renders the caller's reward receipt for a drawn lottery
func (s *Server) receipt(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	claims := currentClaims(c)

	var (
		summary  *entities.LotterySummary
		rankings *interfaces.LotteryRankings
	)
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		lotteries := s.services.LotteryService(uow)
		var err error
		if summary, err = lotteries.GetLottery(ctx, id); err != nil {
			return err
		}
		rankings, err = lotteries.GetRankings(ctx, id, claims.UserID)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rankings.Viewer == nil {
		abortWithError(c, services.ErrEntryNotFound)
		return
	}

	png, err := s.receipts.Render(infrastructure.Receipt{
		LotteryID:           id,
		LotteryName:         summary.Name,
		PlayerName:          rankings.Viewer.Name,
		Rank:                rankings.Viewer.Rank,
		Score:               rankings.Viewer.Score,
		Winnings:            rankings.Viewer.Winnings,
		WinningNumbers:      rankings.Result.WinningNumbers,
		WinningLuckyNumbers: rankings.Result.WinningLuckyNumbers,
		DrawnAt:             rankings.Result.CreatedAt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
