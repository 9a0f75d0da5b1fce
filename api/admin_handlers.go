package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"apploto/application"
	"apploto/domain/entities"
	"apploto/domain/interfaces"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createLotteryRequest struct {
	Name            string    `json:"name"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	RewardPrice     float64   `json:"reward_price"`
	MaxParticipants int       `json:"max_participants"`
}

type addParticipantRequest struct {
	Email        string `json:"email"`
	Numbers      []int  `json:"numbers"`
	LuckyNumbers []int  `json:"lucky_numbers"`
}

// finalizeRequest carries optional winning numbers. Omitted numbers are drawn at random.
type finalizeRequest struct {
	Numbers      []int `json:"numbers"`
	LuckyNumbers []int `json:"lucky_numbers"`
}

type simulationRequest struct {
	Name         string  `json:"name"`
	Participants int     `json:"participants"`
	RewardPrice  float64 `json:"reward_price"`
}

func (s *Server) createLottery(c *gin.Context) {
	var req createLotteryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var lottery *entities.Lottery
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		lottery, err = s.services.LotteryService(uow).CreateLottery(ctx, interfaces.CreateLotteryInput{
			Name:            req.Name,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			RewardPrice:     req.RewardPrice,
			MaxParticipants: req.MaxParticipants,
		})
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newLotteryResponse(lottery, 0))
}

func (s *Server) listLotteries(c *gin.Context) {
	var summaries []*entities.LotterySummary
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		summaries, err = s.services.LotteryService(uow).ListLotteries(ctx)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]lotteryResponse, 0, len(summaries))
	for _, summary := range summaries {
		out = append(out, newSummaryResponse(summary))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listParticipants(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	var participants []*entities.Participant
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		participants, err = s.services.LotteryService(uow).ListParticipants(ctx, id)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, participantResponse{
			EntryID:      p.EntryID,
			UserID:       p.UserID,
			Name:         p.FullName(),
			Email:        p.Email,
			Numbers:      p.Numbers,
			LuckyNumbers: p.LuckyNumbers,
			CreatedAt:    p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addParticipant(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var entry *entities.Entry
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		entry, err = s.services.LotteryService(uow).AddParticipantByEmail(ctx, id, req.Email,
			entities.NumberSet(req.Numbers), entities.NumberSet(req.LuckyNumbers))
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newEntryResponse(entry))
}

func (s *Server) removeParticipant(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	userID, err := pathID(c, "userId")
	if err != nil {
		abortWithError(c, err)
		return
	}

	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		return s.services.LotteryService(uow).RemoveParticipant(ctx, id, userID)
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) finalize(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}
	var req finalizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	var numbers *entities.DrawNumbers
	if len(req.Numbers) > 0 || len(req.LuckyNumbers) > 0 {
		numbers = &entities.DrawNumbers{
			Numbers:      entities.NumberSet(req.Numbers),
			LuckyNumbers: entities.NumberSet(req.LuckyNumbers),
		}
	}

	var (
		outcome *interfaces.DrawOutcome
		summary *entities.LotterySummary
	)
	err = s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		lotteries := s.services.LotteryService(uow)
		var err error
		if outcome, err = lotteries.FinalizeDraw(ctx, id, numbers); err != nil {
			return err
		}
		summary, err = lotteries.GetLottery(ctx, id)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newDrawResponse(outcome, summary.ParticipantCount))
}

// rankingsWorkbook exports a drawn lottery's ranking as an xlsx file
func (s *Server) rankingsWorkbook(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	summary, rankings, ok := s.loadDrawnLottery(c, id)
	if !ok {
		return
	}

	data, err := s.workbook.Render(&summary.Lottery, rankings.Result, rankings.Rankings)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lottery-%d-rankings.xlsx"`, id))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (s *Server) rankingsChart(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		abortWithError(c, err)
		return
	}

	summary, rankings, ok := s.loadDrawnLottery(c, id)
	if !ok {
		return
	}

	png, err := s.chart.Render(summary.Name, rankings.Rankings)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) loadDrawnLottery(c *gin.Context, id int64) (*entities.LotterySummary, *interfaces.LotteryRankings, bool) {
	var (
		summary  *entities.LotterySummary
		rankings *interfaces.LotteryRankings
	)
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		lotteries := s.services.LotteryService(uow)
		var err error
		if summary, err = lotteries.GetLottery(ctx, id); err != nil {
			return err
		}
		rankings, err = lotteries.GetRankings(ctx, id, 0)
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return nil, nil, false
	}
	return summary, rankings, true
}

func (s *Server) simulate(c *gin.Context) {
	var req simulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var outcome *interfaces.DrawOutcome
	err := s.inUnitOfWork(c, func(ctx context.Context, uow application.UnitOfWork) error {
		var err error
		outcome, err = s.services.SimulationService(uow).Simulate(ctx, interfaces.SimulationInput{
			Name:         req.Name,
			Participants: req.Participants,
			RewardPrice:  req.RewardPrice,
		})
		return err
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"lottery_id":   outcome.Lottery.ID,
		"participants": req.Participants,
	}).Info("Simulation completed")
	c.JSON(http.StatusCreated, newDrawResponse(outcome, req.Participants))
}
