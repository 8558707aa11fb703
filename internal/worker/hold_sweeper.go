// Package worker runs the periodic housekeeping jobs of the API process.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// Sweeper is the job the scheduler runs; it returns how many holds it
// expired.
type Sweeper interface {
	Execute(ctx context.Context) (int, error)
}

// HoldSweeper expires lapsed payment holds on a cron schedule. Extra jobs
// registered with Also share the same schedule.
type HoldSweeper struct {
	cron  *cron.Cron
	sweep Sweeper
	log   *zerolog.Logger
	also  []func()
}

// NewHoldSweeper validates spec ("@every 1m", "*/5 * * * *", ...) and
// registers the sweep. Nothing runs until Start.
func NewHoldSweeper(spec string, sweep Sweeper, log *zerolog.Logger) (*HoldSweeper, error) {
	s := &HoldSweeper{
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sweep: sweep,
		log:   log,
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid hold sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Also adds a job run after every sweep.
func (s *HoldSweeper) Also(f func()) {
	s.also = append(s.also, f)
}

// RunOnce performs one sweep synchronously.
func (s *HoldSweeper) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweep.Execute(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("hold sweep failed")
	} else if n > 0 {
		s.log.Debug().Int("expired", n).Msg("hold sweep finished")
	}

	for _, f := range s.also {
		f()
	}
}

func (s *HoldSweeper) Start() {
	s.log.Info().Msg("hold sweeper started")
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *HoldSweeper) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("hold sweeper stopped")
}
