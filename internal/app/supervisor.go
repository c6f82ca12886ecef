// Package app wires the emulation core into a running process: ROM
// loading, configuration, save states, and the thread topology that
// keeps emulation, presentation and input independent of one another.
package app

import (
	"context"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"rambo/internal/machine"
)

// ntscFrameRate is the NTSC PPU's vertical refresh rate: the master
// clock produces a frame every 341*262 PPU cycles, which divided into
// the 21.477272MHz/4 dot clock works out to this rate rather than an
// even 60Hz.
const ntscFrameRate = 60.0988

// Supervisor coordinates the three independent threads the core is
// designed around (spec.md §5): emulation, presentation and input each
// run on their own goroutine, touching EmulationState only through its
// lock-free mailboxes, so a slow presenter or a blocked input source
// never stalls the emulation clock.
type Supervisor struct {
	State *machine.EmulationState

	frameInterval time.Duration
}

// NewSupervisor builds a Supervisor around an already-loaded
// EmulationState.
func NewSupervisor(state *machine.EmulationState) *Supervisor {
	return &Supervisor{
		State:         state,
		frameInterval: time.Duration(float64(time.Second) / ntscFrameRate),
	}
}

// RunEmulation paces EmulationState.RunFrame at the NTSC refresh rate
// until ctx is cancelled. It never blocks on presentation or input: a
// missed tick is simply dropped rather than queued, so the emulation
// thread cannot build up latency it then has to catch up on.
func (s *Supervisor) RunEmulation(ctx context.Context) error {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.State.RunFrame()
		}
	}
}

// Run starts emulation, presentation and input as independent threads
// under a shared cancellation context, using an errgroup so that any
// one of them returning an error (including the user closing the
// window) tears down the other two. presentation and input are
// supplied by the caller (cmd/rambo wires ebiten's game loop and input
// polling here) so that internal/app carries no dependency on ebiten
// itself.
func (s *Supervisor) Run(ctx context.Context, presentation, input func(context.Context) error) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := s.RunEmulation(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if input != nil {
		group.Go(func() error {
			err := input(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	group.Go(func() error {
		return presentation(ctx)
	})

	glog.V(1).Info("supervisor: all threads started")
	err := group.Wait()
	glog.V(1).Infof("supervisor: all threads stopped, err=%v", err)
	return err
}
