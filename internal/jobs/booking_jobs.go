package jobs

import (
	"context"

	"rentshare-backend/internal/logger"
)

// ExpireStaleRequests cancels pending booking requests the owner never
// answered before the start date (plus grace) passed.
func (jr *JobRunner) ExpireStaleRequests() {
	jr.runWithRecovery("ExpireStaleRequests", func(ctx context.Context) error {
		count, err := jr.services.Booking.ExpireStaleRequests(ctx, jr.now())
		if err != nil {
			return err
		}
		logger.Info("Expired stale booking requests", "count", count)
		return nil
	})
}
