package services

import (
	"context"
	"log"
	"time"
)

// PendingSweeper periodically cancels PENDING tickets whose payment window has passed.
type PendingSweeper struct {
	Booking  BookingService
	Interval time.Duration
}

// Run blocks until ctx is cancelled.
func (w PendingSweeper) Run(ctx context.Context) {
	interval := w.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Booking.ExpirePending(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[SWEEPER] expire pending failed: %v", err)
			}
		}
	}
}
