// Package fleet schedules the captain loops: one goroutine each, started
// on a fixed stagger so cycles land on distinct phases of the shared
// read budget, and shut down together with a bounded grace period.
package fleet

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flack-404/SevenSeasProtocol-sub000/internal/runtime"
)

type Fleet struct {
	Captains []*runtime.Captain
	Stagger  time.Duration
	Grace    time.Duration
	Log      zerolog.Logger
}

// Run starts every captain and blocks until ctx is cancelled. After
// cancellation, loops get Grace to finish their current cycle; stragglers
// are abandoned rather than held onto forever.
func (f *Fleet) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, captain := range f.Captains {
		wg.Add(1)
		go func(delay time.Duration, c *runtime.Captain) {
			defer wg.Done()
			if delay > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
			c.Log.Info().Str("captain", c.Persona.Name).Msg("captain setting sail")
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.Log.Error().Err(err).Str("captain", c.Persona.Name).Msg("captain loop ended")
			}
		}(time.Duration(i)*f.Stagger, captain)
	}

	<-ctx.Done()
	f.Log.Info().Msg("shutdown requested, waiting for cycles to finish")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		f.Log.Info().Msg("all captains ashore")
	case <-time.After(f.Grace):
		f.Log.Warn().Dur("grace", f.Grace).Msg("grace period elapsed, abandoning stragglers")
	}
	return nil
}
