// Package scheduler refreshes the store from the upstream listing API on a
// cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/iliyamo/property-listing/internal/remote"
)

// Scheduler runs both sync thunks each time the schedule fires.
type Scheduler struct {
	spec    string
	cron    *cron.Cron
	store   remote.Dispatcher
	fetcher remote.Fetcher
}

// New prepares a scheduler for the cron expression spec.  An empty spec
// disables periodic refresh.
func New(spec string, d remote.Dispatcher, f remote.Fetcher) *Scheduler {
	return &Scheduler{
		spec:    spec,
		cron:    cron.New(),
		store:   d,
		fetcher: f,
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		log.Println("scheduler: no REMOTE_SYNC_CRON configured, periodic refresh disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	log.Printf("scheduler: refreshing listings with cron %q", s.spec)
	s.cron.Start()
	return nil
}

// RunOnce performs one rent and one sale refresh.  Failures are logged;
// they are already recorded in the store error by the thunks.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if n, err := remote.SyncRent(ctx, s.store, s.fetcher); err != nil {
		log.Printf("scheduler: rent refresh failed: %v", err)
	} else {
		log.Printf("scheduler: refreshed %d rental apartments", n)
	}
	if n, err := remote.SyncSale(ctx, s.store, s.fetcher); err != nil {
		log.Printf("scheduler: sale refresh failed: %v", err)
	} else {
		log.Printf("scheduler: refreshed %d sale apartments", n)
	}
}

// Stop halts the cron runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
