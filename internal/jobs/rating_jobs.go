package jobs

import (
	"context"

	"rentshare-backend/internal/logger"
)

// RecomputeRatings reconciles every item and user rating aggregate with the
// stored reviews.
func (jr *JobRunner) RecomputeRatings() {
	jr.runWithRecovery("RecomputeRatings", func(ctx context.Context) error {
		count, err := jr.services.Review.RecomputeAllRatings(ctx)
		if err != nil {
			return err
		}
		logger.Info("Recomputed rating aggregates", "count", count)
		return nil
	})
}
