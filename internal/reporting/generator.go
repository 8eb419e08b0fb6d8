package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	tradeStore  storage.TradeStore
	equityStore storage.EquitySummaryStore
	now         func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(tradeStore storage.TradeStore, equityStore storage.EquitySummaryStore) *Generator {
	return &Generator{
		tradeStore:  tradeStore,
		equityStore: equityStore,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a complete performance report. It reads the derived
// fields as stored; run a recompute first if the events have changed.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	trades, err := g.tradeStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := g.equityStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]TradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, TradeRow{
			TradeID:                 t.ID,
			Name:                    t.Name,
			Open:                    t.Open,
			DateOpened:              t.DateOpened,
			DateClosed:              t.DateClosed,
			CapitalTotal:            t.CapitalTotal,
			ResultDollars:           t.ResultDollars,
			ResultPct:               t.ResultPct,
			UnrealizedResultDollars: t.UnrealizedResultDollars,
			Commissions:             t.Commissions,
			TotalResultDollars:      t.TotalResultDollars,
			PriceDataIncomplete:     t.PriceDataIncomplete,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].DateOpened.Equal(rows[j].DateOpened) {
			return rows[i].DateOpened.Before(rows[j].DateOpened)
		}
		return rows[i].TradeID < rows[j].TradeID
	})

	return &Report{
		GeneratedAt: g.now(),
		Summary:     g.buildSummary(trades, summaries),
		Trades:      rows,
		Quality:     buildQuality(rows),
	}, nil
}

func (g *Generator) buildSummary(trades []*domain.Trade, summaries []*domain.EquitySummary) AccountSummary {
	s := AccountSummary{TotalTrades: len(trades)}

	for _, t := range trades {
		if t.Open {
			s.OpenTrades++
		} else {
			s.ClosedTrades++
			if t.TotalResultDollars > 0 {
				s.WinningTrades++
			} else if t.TotalResultDollars < 0 {
				s.LosingTrades++
			}
		}

		s.TotalRealized += t.ResultDollars
		s.TotalRealizedLong += t.ResultDollarsLong
		s.TotalRealizedShort += t.ResultDollarsShort
		s.TotalUnrealized += t.UnrealizedResultDollars
		s.TotalCommissions += t.Commissions
		s.TotalTaxes += t.Taxes
		s.NetResult += t.TotalResultDollars
	}

	if s.ClosedTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.ClosedTrades)
	}

	for _, es := range summaries {
		if s.DateRangeStart.IsZero() || es.Date.Before(s.DateRangeStart) {
			s.DateRangeStart = es.Date
			s.EquityStart = es.Total
		}
		if s.DateRangeEnd.IsZero() || es.Date.After(s.DateRangeEnd) {
			s.DateRangeEnd = es.Date
			s.EquityEnd = es.Total
		}
	}

	return s
}

func buildQuality(rows []TradeRow) QualitySection {
	var q QualitySection
	for _, r := range rows {
		if r.PriceDataIncomplete {
			q.IncompletePriceData = append(q.IncompletePriceData, r.TradeID)
		}
	}
	return q
}
