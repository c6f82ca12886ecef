package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"rambo/internal/cartridge"
	"rambo/internal/machine"
)

func nromCartridge(t *testing.T, reset uint16) *cartridge.Cartridge {
	t.Helper()
	prg := make([]uint8, 0x8000)
	prg[0x7FFC] = uint8(reset)
	prg[0x7FFD] = uint8(reset >> 8)
	cart, err := cartridge.New(cartridge.Image{PRGROM: prg, MapperID: 0, Mirroring: cartridge.MirrorVertical})
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	return cart
}

func TestRunEmulationAdvancesFramesAndStopsOnCancel(t *testing.T) {
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	sup := NewSupervisor(state)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := sup.RunEmulation(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if _, ok := state.LatestFrame(); !ok {
		t.Fatal("expected at least one frame to have been published")
	}
}

func TestRunTearsDownAllThreadsOnPresentationError(t *testing.T) {
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	sup := NewSupervisor(state)

	wantErr := errors.New("presentation closed")
	err := sup.Run(context.Background(),
		func(ctx context.Context) error { return wantErr },
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestRunWorksWithoutAnInputThread(t *testing.T) {
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	sup := NewSupervisor(state)

	ctx, cancel := context.WithCancel(context.Background())
	err := sup.Run(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected nil error on clean shutdown, got %v", err)
	}
}
