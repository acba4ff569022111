package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/sail-forecast/internal/weather"
)

// Prober checks upstream availability; *weather.Service implements it.
type Prober interface {
	ProbeUpstreams(ctx context.Context) []weather.ProbeResult
}

// Scheduler periodically probes the upstream providers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	interval  time.Duration
	timeout   time.Duration
	log       *logrus.Entry
}

// New creates a new Scheduler. A non-positive interval disables probing.
func New(prober Prober, interval, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		prober:    prober,
		interval:  interval,
		timeout:   timeout,
		log:       logrus.WithField("component", "scheduler"),
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("health probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	healthy := 0
	results := s.prober.ProbeUpstreams(ctx)
	for _, r := range results {
		if r.OK {
			healthy++
		}
	}
	s.log.WithFields(logrus.Fields{
		"healthy": healthy,
		"total":   len(results),
	}).Info("upstream probe completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
