package infrastructure

import (
	"bytes"
	"fmt"
	"sort"

	"apploto/domain/entities"

	"github.com/fogleman/gg"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/gofont/goregular"
)

// ChartPalette holds the colors of rendered charts
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Text       drawing.Color
}

// DefaultChartPalette returns the palette used by the admin exports
func DefaultChartPalette() ChartPalette {
	return ChartPalette{
		Background: drawing.ColorFromHex("ffffff"),
		Bar:        drawing.ColorFromHex("2f6f4f"),
		Text:       drawing.ColorFromHex("1f1f1f"),
	}
}

// ResultsChart renders the winnings paid at each rank as a PNG bar chart
type ResultsChart struct {
	palette ChartPalette
}

// NewResultsChart creates a chart renderer
func NewResultsChart(palette ChartPalette) *ResultsChart {
	return &ResultsChart{palette: palette}
}

// rankBar is the total paid to one rank tier
type rankBar struct {
	rank    int
	players int
	total   float64
}

// Render draws one bar per rank tier. A lottery without winners gets a placeholder image.
func (c *ResultsChart) Render(lotteryName string, rows []*entities.RankingView) ([]byte, error) {
	bars := groupByRank(rows)
	if len(bars) == 0 {
		return c.renderNoData(lotteryName)
	}

	var maxTotal float64
	values := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		label := fmt.Sprintf("#%d", b.rank)
		if b.players > 1 {
			label = fmt.Sprintf("#%d (x%d)", b.rank, b.players)
		}
		values = append(values, chart.Value{
			Label: label,
			Value: b.total,
			Style: chart.Style{
				FillColor:   c.palette.Bar,
				StrokeColor: c.palette.Bar,
			},
		})
		if b.total > maxTotal {
			maxTotal = b.total
		}
	}

	graph := chart.BarChart{
		Title:    lotteryName,
		Width:    800,
		Height:   400,
		BarWidth: 50,
		Background: chart.Style{
			FillColor: c.palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: c.palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: c.palette.Text,
		},
		XAxis: chart.Style{
			FontColor: c.palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: c.palette.Text,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal * 1.1},
		},
		Bars: values,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render results chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func (c *ResultsChart) renderNoData(lotteryName string) ([]byte, error) {
	face, err := loadFont(goregular.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	dc := gg.NewContext(400, 200)
	dc.SetColor(c.palette.Background)
	dc.Clear()
	dc.SetFontFace(face)
	dc.SetColor(c.palette.Text)
	dc.DrawStringAnchored("No winners for "+truncate(lotteryName, 30), 200, 100, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to render placeholder chart: %w", err)
	}
	return buf.Bytes(), nil
}

func groupByRank(rows []*entities.RankingView) []rankBar {
	byRank := make(map[int]*rankBar)
	for _, row := range rows {
		b, ok := byRank[row.Rank]
		if !ok {
			b = &rankBar{rank: row.Rank}
			byRank[row.Rank] = b
		}
		b.players++
		b.total += row.Winnings
	}

	bars := make([]rankBar, 0, len(byRank))
	for _, b := range byRank {
		bars = append(bars, *b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].rank < bars[j].rank })
	return bars
}
