package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler runs the pipeline at startup, on every interval tick and on
// demand. Runs never overlap.
type Scheduler struct {
	pipeline PipelineRunner
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	trigger  chan struct{}
}

func NewScheduler(pipeline PipelineRunner, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		pipeline: pipeline,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		trigger:  make(chan struct{}, 1),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		s.run("startup")

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-tick:
				s.run("interval")
			case <-s.trigger:
				s.run("refresh")
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Trigger requests a run without waiting for it. Requests made while a run
// is already pending are merged into it; Trigger then returns false.
func (s *Scheduler) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) run(reason string) {
	if s.ctx.Err() != nil {
		return
	}

	slog.Debug("Starting pipeline run", "reason", reason)

	if _, err := s.pipeline.Run(s.ctx); err != nil {
		slog.Error("Pipeline run failed", "reason", reason, "error", err)
	}
}
