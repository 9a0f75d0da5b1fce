package infrastructure

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Receipt is the content of a winner's reward receipt
type Receipt struct {
	LotteryID           int64
	LotteryName         string
	PlayerName          string
	Rank                int
	Score               int
	Winnings            float64
	WinningNumbers      string
	WinningLuckyNumbers string
	DrawnAt             time.Time
}

// ReceiptRenderer draws reward receipts as PNG images
type ReceiptRenderer struct {
	siteURL string
	width   int
	height  int
	qrSize  int
}

// NewReceiptRenderer creates a renderer. The QR code links to the lottery page under siteURL.
func NewReceiptRenderer(siteURL string) *ReceiptRenderer {
	return &ReceiptRenderer{
		siteURL: strings.TrimRight(siteURL, "/"),
		width:   600,
		height:  340,
		qrSize:  140,
	}
}

// VerificationURL is the link encoded in the receipt's QR code
func (r *ReceiptRenderer) VerificationURL(lotteryID int64) string {
	return fmt.Sprintf("%s/lotteries/%d/rankings", r.siteURL, lotteryID)
}

// Render draws the receipt
func (r *ReceiptRenderer) Render(receipt Receipt) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("lottery_id", receipt.LotteryID).
			Debug("Receipt image generation completed")
	}()

	titleFace, err := loadFont(gobold.TTF, 22)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	bodyFace, err := loadFont(goregular.TTF, 14)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	amountFace, err := loadFont(gobold.TTF, 30)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	code, err := qrcode.New(r.VerificationURL(receipt.LotteryID), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	dc := gg.NewContext(r.width, r.height)

	// Background and header band
	dc.SetRGB(0.98, 0.97, 0.93)
	dc.Clear()
	dc.SetRGB(0.18, 0.44, 0.31)
	dc.DrawRectangle(0, 0, float64(r.width), 56)
	dc.Fill()

	dc.SetFontFace(titleFace)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(truncate(receipt.LotteryName, 36), 24, 28, 0, 0.35)

	// Details
	dc.SetFontFace(bodyFace)
	dc.SetRGB(0.12, 0.12, 0.12)
	lines := []string{
		"Winner: " + truncate(receipt.PlayerName, 32),
		fmt.Sprintf("Rank: %s", ordinal(receipt.Rank)),
		fmt.Sprintf("Score: %d / 100", receipt.Score),
		"Numbers: " + receipt.WinningNumbers,
		"Lucky numbers: " + receipt.WinningLuckyNumbers,
	}
	if !receipt.DrawnAt.IsZero() {
		lines = append(lines, "Drawn: "+receipt.DrawnAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	y := 90.0
	for _, line := range lines {
		dc.DrawString(line, 24, y)
		y += 24
	}

	dc.SetFontFace(amountFace)
	dc.SetRGB(0.18, 0.44, 0.31)
	dc.DrawString(fmt.Sprintf("%.2f", receipt.Winnings), 24, float64(r.height)-30)

	// QR code, bottom right
	qx := r.width - r.qrSize - 24
	qy := r.height - r.qrSize - 24
	dc.DrawImage(code.Image(r.qrSize), qx, qy)

	dc.SetRGBA(0, 0, 0, 0.25)
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, float64(r.width-2), float64(r.height-2))
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return face, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
