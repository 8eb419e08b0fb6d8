package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Trade Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Account Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.Summary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Open Trades | %d |\n", r.Summary.OpenTrades))
	sb.WriteString(fmt.Sprintf("| Closed Trades | %d |\n", r.Summary.ClosedTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.4f |\n", r.Summary.WinRate))
	sb.WriteString(fmt.Sprintf("| Realized P&L | %.2f |\n", r.Summary.TotalRealized))
	sb.WriteString(fmt.Sprintf("| Realized P&L (Long) | %.2f |\n", r.Summary.TotalRealizedLong))
	sb.WriteString(fmt.Sprintf("| Realized P&L (Short) | %.2f |\n", r.Summary.TotalRealizedShort))
	sb.WriteString(fmt.Sprintf("| Unrealized P&L | %.2f |\n", r.Summary.TotalUnrealized))
	sb.WriteString(fmt.Sprintf("| Commissions | %.2f |\n", r.Summary.TotalCommissions))
	sb.WriteString(fmt.Sprintf("| Taxes | %.2f |\n", r.Summary.TotalTaxes))
	sb.WriteString(fmt.Sprintf("| Net Result | %.2f |\n", r.Summary.NetResult))
	if !r.Summary.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("| Equity Range | %s to %s |\n",
			r.Summary.DateRangeStart.Format("2006-01-02"),
			r.Summary.DateRangeEnd.Format("2006-01-02")))
		sb.WriteString(fmt.Sprintf("| Equity Start | %.2f |\n", r.Summary.EquityStart))
		sb.WriteString(fmt.Sprintf("| Equity End | %.2f |\n", r.Summary.EquityEnd))
	}
	sb.WriteString("\n")

	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Trade | Name | Status | Opened | Closed | Capital | Realized | Realized% | Unrealized | Total |\n")
		sb.WriteString("|-------|------|--------|--------|--------|---------|----------|-----------|------------|-------|\n")
		for _, t := range r.Trades {
			status := "closed"
			if t.Open {
				status = "open"
			}
			closed := "-"
			if !t.DateClosed.IsZero() {
				closed = t.DateClosed.Format("2006-01-02")
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %.2f | %.2f | %.4f | %.2f | %.2f |\n",
				t.TradeID, t.Name, status,
				t.DateOpened.Format("2006-01-02"), closed,
				t.CapitalTotal, t.ResultDollars, t.ResultPct,
				t.UnrealizedResultDollars, t.TotalResultDollars))
		}
	} else {
		sb.WriteString("No trades recorded.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Data Quality\n\n")
	if len(r.Quality.IncompletePriceData) > 0 {
		sb.WriteString("Trades with incomplete price data (unrealized figures understated):\n\n")
		for _, id := range r.Quality.IncompletePriceData {
			sb.WriteString(fmt.Sprintf("- %s\n", id))
		}
	} else {
		sb.WriteString("All trades priced completely.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
