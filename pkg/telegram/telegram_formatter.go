package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-tradebot/internal/engine/dto"
	"golang-tradebot/internal/entity"
)

// FormatRunSummaryMessage formats the outcome of one daily cycle into a
// Markdown string for Telegram.
func FormatRunSummaryMessage(runDate time.Time, actions []dto.TradeAction, snapshot entity.PortfolioSnapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 *Daily Trading Run* — %s\n\n", runDate.Format("2006-01-02")))

	if len(actions) == 0 {
		b.WriteString("💤 No trades today.\n")
	} else {
		b.WriteString("*Actions:*\n")
		for _, a := range actions {
			b.WriteString(formatAction(a))
		}
	}

	b.WriteString("\n*Portfolio:*\n")
	b.WriteString(fmt.Sprintf("💰 Capital: %.2f\n", snapshot.Capital))
	b.WriteString(fmt.Sprintf("💵 Cash: %.2f\n", snapshot.Cash))
	b.WriteString(fmt.Sprintf("📦 Positions Value: %.2f (%d open)\n", snapshot.PositionsValue, snapshot.PositionsCount))
	b.WriteString(fmt.Sprintf("📈 Total Value: %.2f\n", snapshot.TotalValue))

	var returnIcon string
	switch {
	case snapshot.Return > 0:
		returnIcon = "🟢"
	case snapshot.Return < 0:
		returnIcon = "🔴"
	default:
		returnIcon = "⚪"
	}
	b.WriteString(fmt.Sprintf("%s Return: %+.2f%%\n", returnIcon, snapshot.Return*100))

	return b.String()
}

func formatAction(a dto.TradeAction) string {
	if a.IsOpen() {
		return fmt.Sprintf("🟢 *OPEN* %s @ %.2f (size %.0f%%, confidence %.2f)\n",
			a.AssetCode, a.Price, a.Size*100, a.Confidence)
	}

	var icon string
	switch a.Reason {
	case dto.ReasonStopLoss:
		icon = "🛑"
	case dto.ReasonTakeProfit:
		icon = "🎯"
	case dto.ReasonMaxHold:
		icon = "⏳"
	default:
		icon = "🔴"
	}
	return fmt.Sprintf("%s *CLOSE* %s @ %.2f (%s, return %+.2f%%)\n",
		icon, a.AssetCode, a.Price, a.Reason, a.Return*100)
}

// FormatErrorAlertMessage formats a run failure alert for Telegram.
func FormatErrorAlertMessage(runDate time.Time, err error) string {
	return fmt.Sprintf("🚨 *Daily Trading Run Failed* — %s\n\n```\n%s\n```", runDate.Format("2006-01-02"), err.Error())
}
