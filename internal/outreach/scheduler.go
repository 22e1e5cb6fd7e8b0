package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stagebook/internal/logging"
)

const broadcastTimeout = 10 * time.Minute

// Scheduler runs the broadcast on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the broadcast under spec, evaluated in loc.
func NewScheduler(svc *Service, spec string, loc *time.Location) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()

		report, err := svc.Broadcast(ctx)
		if err != nil {
			logging.WithContext(ctx).Error().Err(err).Msg("scheduled outreach failed")
			return
		}
		logging.WithContext(ctx).Info().Int("sent", report.Sent).Int("failed", report.Failed).Msg("scheduled outreach sent")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid outreach schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
