package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the trade rows as a CSV string.
func RenderCSV(trades []TradeRow) string {
	var sb strings.Builder

	sb.WriteString("trade_id,name,open,date_opened,date_closed,capital_total,")
	sb.WriteString("result_dollars,result_pct,unrealized_result_dollars,commissions,")
	sb.WriteString("total_result_dollars,price_data_incomplete\n")

	for _, t := range trades {
		closed := ""
		if !t.DateClosed.IsZero() {
			closed = t.DateClosed.Format("2006-01-02")
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%t,%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%t\n",
			t.TradeID,
			t.Name,
			t.Open,
			t.DateOpened.Format("2006-01-02"),
			closed,
			t.CapitalTotal,
			t.ResultDollars,
			t.ResultPct,
			t.UnrealizedResultDollars,
			t.Commissions,
			t.TotalResultDollars,
			t.PriceDataIncomplete,
		))
	}

	return sb.String()
}
