package marketdata

import (
	"context"

	"go.uber.org/zap"

	"github.com/mounirlabaied/QPAS/internal/domain"
	"github.com/mounirlabaied/QPAS/internal/observability"
	"github.com/mounirlabaied/QPAS/internal/storage"
)

// Recorder drains streamed bar updates into a bar store so the engine
// can mark open positions against the recorded series.
type Recorder struct {
	bars   storage.BarStore
	logger *zap.Logger
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(bars storage.BarStore, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{bars: bars, logger: logger}
}

// Run consumes updates until the channel closes or the context is
// cancelled. Store failures are logged and the stream keeps going; a
// missed bar surfaces later as incomplete price data, not as a dead feed.
func (r *Recorder) Run(ctx context.Context, updates <-chan BarUpdate) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			observability.RecordBarStreamed()
			err := r.bars.InsertBulk(ctx, u.InstrumentID, []*domain.OHLCBar{&u.Bar})
			if err != nil {
				r.logger.Warn("failed to store streamed bar",
					zap.Int("instrument_id", u.InstrumentID),
					zap.String("symbol", u.Symbol),
					zap.Time("dt", u.Bar.DT),
					zap.Error(err))
				continue
			}
			r.logger.Debug("stored streamed bar",
				zap.Int("instrument_id", u.InstrumentID),
				zap.String("symbol", u.Symbol),
				zap.Float64("close", u.Bar.Close))
		}
	}
}
