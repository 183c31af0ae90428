package sessions

import (
	"context"
	"log/slog"

	"github.com/iammorganparry/pof-dashboard/internal/clock"
)

// Sweeper periodically evicts idle sessions from a Store.
type Sweeper struct {
	store  *Store
	clock  clock.Clock
	logger *slog.Logger
}

func NewSweeper(store *Store, clk clock.Clock, logger *slog.Logger) *Sweeper {
	return &Sweeper{store: store, clock: clk, logger: logger}
}

// Run sweeps every SweepInterval until ctx is done.
func (w *Sweeper) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := w.store.Sweep(); len(removed) > 0 {
				w.logger.Info("expired idle sessions", "count", len(removed), "sessions", removed)
			}
		}
	}
}
