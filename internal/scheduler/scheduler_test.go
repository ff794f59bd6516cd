package scheduler

import (
	"testing"

	"rentshare-backend/internal/config"
	"rentshare-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		ExpireStaleRequests: "0 */15 * * * *",
		RecomputeRatings:    "0 0 3 * * *",
	}}
	s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s.Start()
	s.Stop()
}

func TestNewScheduler_BadSpec(t *testing.T) {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{
		ExpireStaleRequests: "every tuesday",
		RecomputeRatings:    "0 0 3 * * *",
	}}
	_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
	assert.Error(t, err)
}
