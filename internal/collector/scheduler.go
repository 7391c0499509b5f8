package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/alertcef/internal/metrics"
	"github.com/good-yellow-bee/alertcef/internal/source"
	"github.com/good-yellow-bee/alertcef/internal/storage"
)

// Scheduler drives the pipeline in a fixed-interval loop. The interval
// is re-read from settings at the top of every cycle, so changes take
// effect on the next cycle.
type Scheduler struct {
	store       storage.Storage
	pipeline    *Pipeline
	concurrency int
}

// NewScheduler creates a scheduler. concurrency bounds how many tenants
// are processed at once within a cycle; the default of 1 preserves the
// strictly sequential tenant loop.
func NewScheduler(store storage.Storage, pipeline *Pipeline, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		store:       store,
		pipeline:    pipeline,
		concurrency: concurrency,
	}
}

// Run loops until the context is cancelled. Only a settings read
// failure terminates the loop with an error; everything else is
// tenant-scoped and logged.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		settings, err := s.store.Settings().Get(ctx)
		if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}

		s.RunCycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(settings.PollInterval()):
		}
	}
}

// RunCycle processes every active tenant once. A tenant's failure is
// caught at the loop boundary and never aborts the cycle.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()

	creds, err := s.store.Credentials().ListActive(ctx)
	if err != nil {
		log.Printf("list active credentials: %v", err)
		return
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, cred := range creds {
		// Graceful shutdown: finish in-flight tenants, start no new ones.
		if ctx.Err() != nil {
			break
		}
		cred := cred
		g.Go(func() error {
			persisted, err := s.pipeline.ProcessTenant(ctx, cred)
			if err != nil {
				metrics.TenantErrorsTotal.WithLabelValues(stageOf(err)).Inc()
				log.Printf("tenant %s (%s): %v", cred.CustomerTenantID, cred.CustomerName, err)
				return nil
			}
			if persisted > 0 {
				log.Printf("tenant %s (%s): persisted %d alerts", cred.CustomerTenantID, cred.CustomerName, persisted)
			}
			return nil
		})
	}
	g.Wait()

	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
}

func stageOf(err error) string {
	var authErr *source.AuthError
	if errors.As(err, &authErr) {
		return metrics.StageAuth
	}
	return metrics.StageFetch
}
