// Package marketdata defines the external market data collaborator and
// client implementations for it. The stats engine only ever needs the most
// recent close per instrument; everything else here exists so callers can
// feed bar stores and reports.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// ErrNoData is returned when a source has no bars for the requested
// instrument and range. Callers treat it as "no price available", not as a
// computation failure.
var ErrNoData = errors.New("no market data available")

// Source provides historical OHLC bars for an instrument. Implementations
// must tolerate gaps: a date without a bar is simply absent from the
// result.
type Source interface {
	GetData(ctx context.Context, instrument *domain.Instrument, start, end time.Time, barSize domain.BarSize) ([]*domain.OHLCBar, error)
}
