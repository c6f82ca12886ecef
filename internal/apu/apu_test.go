package apu

import "testing"

func TestFrameCounterFourStepAssertsIRQNearCycle29830(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x00) // 4-step, IRQ enabled
	for i := 0; i < 29828; i++ {
		a.stepFrameCounter()
	}
	if !a.GetFrameIRQ() {
		t.Fatal("expected frame IRQ asserted by cycle 29828 in 4-step mode")
	}
}

func TestFrameCounterFourStepIRQInhibitedByBit6(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x40) // 4-step, IRQ inhibited
	for i := 0; i < 29830; i++ {
		a.stepFrameCounter()
	}
	if a.GetFrameIRQ() {
		t.Fatal("expected frame IRQ suppressed when bit 6 is set")
	}
}

func TestFrameCounterFiveStepNeverAssertsIRQ(t *testing.T) {
	a := New()
	a.writeFrameCounter(0x80) // 5-step
	for i := 0; i < 40000; i++ {
		a.stepFrameCounter()
	}
	if a.GetFrameIRQ() {
		t.Fatal("expected 5-step mode to never assert frame IRQ")
	}
}

func TestReadStatusClearsFrameIRQ(t *testing.T) {
	a := New()
	a.frameIRQFlag = true
	v := a.ReadStatus()
	if v&0x40 == 0 {
		t.Fatal("expected frame IRQ bit set in status")
	}
	if a.GetFrameIRQ() {
		t.Fatal("expected reading $4015 to clear the frame IRQ flag")
	}
}

func TestPulseSweepNegateIsOnesComplementOnPulse1(t *testing.T) {
	a := New()
	a.pulse1.timer = 100
	a.pulse1.sweepEnable = true
	a.pulse1.sweepShift = 1
	a.pulse1.sweepNegate = true
	a.pulse1.sweepCounter = 0
	a.clockPulseSweep(&a.pulse1, true)
	// change = 100>>1 = 50; one's complement: 100 - 50 - 1 = 49
	if a.pulse1.timer != 49 {
		t.Fatalf("expected pulse1 one's-complement sweep result 49, got %d", a.pulse1.timer)
	}
}

func TestPulseSweepNegateIsTwosComplementOnPulse2(t *testing.T) {
	a := New()
	a.pulse2.timer = 100
	a.pulse2.sweepEnable = true
	a.pulse2.sweepShift = 1
	a.pulse2.sweepNegate = true
	a.pulse2.sweepCounter = 0
	a.clockPulseSweep(&a.pulse2, false)
	// change = 100>>1 = 50; two's complement: 100 - 50 = 50
	if a.pulse2.timer != 50 {
		t.Fatalf("expected pulse2 two's-complement sweep result 50, got %d", a.pulse2.timer)
	}
}

func TestChannelEnableClearsLengthCounters(t *testing.T) {
	a := New()
	a.pulse1.lengthCounter = 10
	a.writeChannelEnable(0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Fatal("expected disabling pulse1 to zero its length counter")
	}
}

func TestDMCFetchHandshake(t *testing.T) {
	a := New()
	a.writeDMCSampleAddress(0x00) // sampleAddress = 0xC000
	a.writeDMCSampleLength(0x00)  // sampleLength = 1
	a.writeChannelEnable(0x10)    // enable DMC, starts playback

	addr, ok := a.NeedsDMCFetch()
	if !ok || addr != 0xC000 {
		t.Fatalf("expected a fetch request at 0xC000, got ok=%v addr=%#04x", ok, addr)
	}
	// A second call before completion must not request again.
	if _, ok := a.NeedsDMCFetch(); ok {
		t.Fatal("expected no duplicate fetch request while one is pending")
	}

	a.CompleteDMCFetch(0xAA)
	if a.dmc.sampleBufferEmpty {
		t.Fatal("expected sample buffer to be filled after CompleteDMCFetch")
	}
	if a.dmc.bytesRemaining != 0 {
		t.Fatalf("expected bytesRemaining to reach 0 after the only byte, got %d", a.dmc.bytesRemaining)
	}
}

func TestDMCAddressWrapsFrom0xFFFFTo0x8000(t *testing.T) {
	a := New()
	a.dmc.currentAddress = 0xFFFF
	a.dmc.bytesRemaining = 5
	a.CompleteDMCFetch(0x00)
	if a.dmc.currentAddress != 0x8000 {
		t.Fatalf("expected DMC address to wrap to 0x8000, got %#04x", a.dmc.currentAddress)
	}
}

func TestNoiseLFSRModeZeroProducesNonZeroPeriod(t *testing.T) {
	a := New()
	a.writeNoisePeriod(0x00)
	before := a.noise.shiftRegister
	a.stepNoiseTimer(&a.noise)
	for i := 0; i < int(noisePeriodTable[0]); i++ {
		a.stepNoiseTimer(&a.noise)
	}
	if a.noise.shiftRegister == before {
		t.Fatal("expected LFSR to have shifted after enough timer steps")
	}
}

func TestIRQLevelCombinesFrameAndDMCIRQ(t *testing.T) {
	a := New()
	if a.IRQLevel() {
		t.Fatal("expected no IRQ level at power-on")
	}
	a.dmc.irqFlag = true
	if !a.IRQLevel() {
		t.Fatal("expected IRQLevel true when DMC IRQ flag is set")
	}
}
