package clock

import "testing"

func TestAdvanceMonotonic(t *testing.T) {
	mc := New()
	var prev uint64
	for i := 0; i < 100000; i++ {
		mc.Advance(1)
		if mc.PPUCycles <= prev && i > 0 {
			t.Fatalf("PPUCycles did not strictly increase: prev=%d now=%d", prev, mc.PPUCycles)
		}
		prev = mc.PPUCycles
	}
}

func TestIsCPUTickPeriodThree(t *testing.T) {
	mc := New()
	mc.InitialPhase = 0
	mc.PPUCycles = 0
	ticks := 0
	for i := 0; i < 9; i++ {
		if mc.IsCPUTick() {
			ticks++
		}
		mc.Advance(1)
	}
	if ticks != 3 {
		t.Fatalf("expected 3 CPU ticks in 9 PPU cycles, got %d", ticks)
	}
}

func TestScanlineDotDerivation(t *testing.T) {
	mc := New()
	mc.PPUCycles = 341*5 + 12
	if mc.Scanline() != 5 {
		t.Fatalf("expected scanline 5, got %d", mc.Scanline())
	}
	if mc.Dot() != 12 {
		t.Fatalf("expected dot 12, got %d", mc.Dot())
	}
}

func TestResetPreservesPhaseButZeroesCycles(t *testing.T) {
	mc := New()
	mc.InitialPhase = 2
	mc.Advance(500)
	mc.Reset()
	if mc.PPUCycles != 0 {
		t.Fatalf("expected PPUCycles reset to 0, got %d", mc.PPUCycles)
	}
	if mc.InitialPhase != 2 {
		t.Fatalf("expected InitialPhase preserved across Reset, got %d", mc.InitialPhase)
	}
}
