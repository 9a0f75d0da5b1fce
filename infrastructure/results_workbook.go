package infrastructure

import (
	"fmt"

	"apploto/domain/entities"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

const (
	rankingsSheet = "Rankings"
	drawSheet     = "Draw"
)

// ResultsWorkbook renders a finished lottery's rankings as an xlsx workbook
type ResultsWorkbook struct{}

// NewResultsWorkbook creates a new workbook renderer
func NewResultsWorkbook() *ResultsWorkbook {
	return &ResultsWorkbook{}
}

// Render builds a workbook with a Rankings sheet and a Draw summary sheet
func (w *ResultsWorkbook) Render(lottery *entities.Lottery, result *entities.LotteryResult, rows []*entities.RankingView) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Warn("Failed to close workbook")
		}
	}()

	if err := f.SetSheetName("Sheet1", rankingsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []any{"Rank", "Player ID", "Name", "Score", "Winnings"}
	if err := f.SetSheetRow(rankingsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(rankingsSheet, "A1", "E1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	var distributed float64
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []any{row.Rank, row.PlayerID, row.Name, row.Score, row.Winnings}
		if err := f.SetSheetRow(rankingsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write ranking row %d: %w", i+1, err)
		}
		distributed += row.Winnings
	}
	if err := f.SetColWidth(rankingsSheet, "C", "C", 30); err != nil {
		return nil, fmt.Errorf("failed to size name column: %w", err)
	}

	if _, err := f.NewSheet(drawSheet); err != nil {
		return nil, fmt.Errorf("failed to add draw sheet: %w", err)
	}
	summary := [][]any{
		{"Lottery", lottery.Name},
		{"Status", string(lottery.Status)},
		{"End date", lottery.EndDate.UTC().Format("2006-01-02 15:04")},
		{"Reward", lottery.RewardPrice},
		{"Distributed", distributed},
		{"Winning numbers", resultNumbers(result)},
		{"Lucky numbers", resultLuckyNumbers(result)},
	}
	for i, line := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(drawSheet, cell, &line); err != nil {
			return nil, fmt.Errorf("failed to write draw summary: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	log.WithFields(log.Fields{
		"lottery_id": lottery.ID,
		"rows":       len(rows),
	}).Debug("Rendered rankings workbook")

	return buf.Bytes(), nil
}

func resultNumbers(r *entities.LotteryResult) string {
	if r == nil {
		return ""
	}
	return r.WinningNumbers
}

func resultLuckyNumbers(r *entities.LotteryResult) string {
	if r == nil {
		return ""
	}
	return r.WinningLuckyNumbers
}
