// Package clock implements the master timing source for the emulation
// core: a monotonically increasing count of PPU cycles from which every
// other component's notion of "when" is derived.
package clock

import "math/rand"

// MasterClock is the sole source of truth for elapsed time in the core.
// No other component keeps its own canonical cycle counter; the PPU keeps
// a scanline/dot pair as a derived optimization (see internal/ppu), but
// MasterClock.PPUCycles is what reset/snapshot restores.
type MasterClock struct {
	// PPUCycles is the number of PPU cycles elapsed since power-on.
	PPUCycles uint64

	// InitialPhase captures the hardware's random power-on alignment
	// between the CPU and PPU clocks. It is redrawn on power-on and
	// preserved across Reset.
	InitialPhase uint8
}

// New constructs a MasterClock with a freshly drawn power-on phase.
func New() *MasterClock {
	mc := &MasterClock{}
	mc.randomizePhase()
	return mc
}

// randomizePhase draws InitialPhase uniformly from {0,1,2}, mirroring the
// real hardware's undefined CPU/PPU power-on alignment.
func (mc *MasterClock) randomizePhase() {
	mc.InitialPhase = uint8(rand.Intn(3))
}

// PowerOn resets the cycle counter to zero and redraws the phase, as if
// the console were freshly plugged in.
func (mc *MasterClock) PowerOn() {
	mc.PPUCycles = 0
	mc.randomizePhase()
}

// Reset zeroes the cycle counter but preserves InitialPhase, matching the
// console reset button's behaviour (it does not re-seat the crystal).
func (mc *MasterClock) Reset() {
	mc.PPUCycles = 0
}

// Advance moves the clock forward by n PPU cycles. It is the only
// mutator of PPUCycles besides PowerOn/Reset.
func (mc *MasterClock) Advance(n uint64) {
	mc.PPUCycles += n
}

// IsCPUTick reports whether the current PPU cycle is one on which the
// CPU (running at 1/3 the PPU clock) also ticks.
func (mc *MasterClock) IsCPUTick() bool {
	return (mc.PPUCycles+uint64(mc.InitialPhase))%3 == 0
}

// Scanline returns the canonical scanline derived purely from elapsed PPU
// cycles. Logic that does not maintain its own PPU position (e.g. the
// VBlank race-condition check in internal/machine) should use this
// rather than inventing its own counter. The PPU's own scanline/dot pair
// can diverge from this by one dot during the odd-frame skip.
func (mc *MasterClock) Scanline() int16 {
	return int16((mc.PPUCycles / 341) % 262)
}

// Dot returns the canonical dot derived purely from elapsed PPU cycles.
func (mc *MasterClock) Dot() uint16 {
	return uint16(mc.PPUCycles % 341)
}
