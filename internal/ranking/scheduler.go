package ranking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes the ranking once on Start and then on a fixed
// interval until Stop.
type Scheduler struct {
	agg      *Aggregator
	cron     *cron.Cron
	interval time.Duration
	timeout  time.Duration
}

func NewScheduler(agg *Aggregator, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		agg: agg,
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		interval: interval,
		timeout:  interval,
	}
}

func (s *Scheduler) Start() error {
	s.RunOnce()

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.RunOnce); err != nil {
		return fmt.Errorf("schedule ranking refresh: %w", err)
	}
	s.cron.Start()
	log.Printf("[ranking] scheduler started, every %s", s.interval)
	return nil
}

// RunOnce performs one refresh. Failures are logged and never propagate.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.agg.Refresh(ctx); err != nil {
		log.Printf("[ranking] refresh failed, keeping previous ranking: %v", err)
	}
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[ranking] scheduler stopped")
}
