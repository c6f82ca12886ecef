package ppu

import "testing"

type fakeCart struct {
	chr    [0x2000]uint8
	mirror Mirror
}

func (c *fakeCart) PPURead(addr uint16) uint8         { return c.chr[addr] }
func (c *fakeCart) PPUWrite(addr uint16, value uint8) { c.chr[addr] = value }
func (c *fakeCart) Mirror() Mirror                    { return c.mirror }

func newWarmedUpPPU() (*PPU, *fakeCart) {
	cart := &fakeCart{mirror: MirrorVertical}
	p := New(cart)
	for i := 0; i < warmupCPUCycles; i++ {
		p.NotifyCPUCycle()
	}
	return p, cart
}

func runDots(p *PPU, n int, masterCycle *uint64) {
	for i := 0; i < n; i++ {
		p.AdvanceCounters()
		p.ApplyVBlankTransition(*masterCycle)
		p.FinalizeCycle()
		*masterCycle++
	}
}

func TestPowerOnStateIsPreRenderScanline(t *testing.T) {
	p, _ := newWarmedUpPPU()
	if p.Scanline != 261 || p.Cycle != 0 {
		t.Fatalf("expected power-on at (261,0), got (%d,%d)", p.Scanline, p.Cycle)
	}
}

func TestOddFrameSkipsDotZeroWhenRenderingEnabled(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.WriteRegister(1, 0x18, 0) // enable background + sprites
	for i := 0; i < 4; i++ {
		p.FinalizeCycle() // push the mask write through the delay buffer
	}
	// Crossing from the pre-render line into scanline 0 toggles OddFrame,
	// so starting from an even frame makes the frame being entered odd.
	p.OddFrame = false

	// Drive to the last dot of the pre-render line, then one more step
	// should land on scanline 0 dot 1 (dot 0 skipped), not dot 0.
	p.Scanline = 261
	p.Cycle = 340
	var mc uint64
	runDots(p, 1, &mc)
	if p.Scanline != 0 || p.Cycle != 1 {
		t.Fatalf("expected odd-frame skip to land on (0,1), got (%d,%d)", p.Scanline, p.Cycle)
	}
}

func TestEvenFrameDoesNotSkipDotZero(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.WriteRegister(1, 0x18, 0)
	for i := 0; i < 4; i++ {
		p.FinalizeCycle()
	}
	// The wrap into scanline 0 toggles OddFrame, so the frame being
	// entered is even.
	p.OddFrame = true
	p.Scanline = 261
	p.Cycle = 340
	var mc uint64
	runDots(p, 1, &mc)
	if p.Scanline != 0 || p.Cycle != 0 {
		t.Fatalf("expected no skip on even frame, got (%d,%d)", p.Scanline, p.Cycle)
	}
}

func TestVBlankFlagSetAtDot241AndClearedAtPreRender(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.Scanline = 241
	p.Cycle = 0
	var mc uint64 = 1000
	runDots(p, 1, &mc) // advances to (241,1), applies the set
	if !p.VBlank.IsFlagVisible() {
		t.Fatal("expected VBlank flag visible after (241,1)")
	}

	p.Scanline = 261
	p.Cycle = 0
	runDots(p, 1, &mc)
	if p.VBlank.IsFlagVisible() {
		t.Fatal("expected VBlank flag cleared after (261,1)")
	}
}

func TestPPUSTATUSReadClearsFlagAndWriteToggle(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.Scanline = 241
	p.Cycle = 0
	var mc uint64 = 2000
	runDots(p, 1, &mc)
	if !p.VBlank.IsFlagVisible() {
		t.Fatal("setup: expected VBlank visible")
	}
	p.W = true
	v := p.ReadRegister(2, mc)
	if v&0x80 == 0 {
		t.Fatal("expected VBlank bit set on read")
	}
	if p.W {
		t.Fatal("expected PPUSTATUS read to clear write latch")
	}
	if p.VBlank.IsFlagVisible() {
		t.Fatal("expected VBlank flag cleared by the read itself")
	}
}

func TestVBlankRaceSuppressesSetWhenReadSameCycle(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.Scanline = 241
	p.Cycle = 0
	var mc uint64 = 5000

	p.AdvanceCounters() // moves to (241,1)
	p.ReadRegister(2, mc) // races the set at the same master cycle
	p.ApplyVBlankTransition(mc)
	p.FinalizeCycle()

	if p.VBlank.IsFlagVisible() {
		t.Fatal("expected VBlank set to be suppressed by the same-cycle race read")
	}
}

func TestPPUDATABufferedReadOutsidePaletteRange(t *testing.T) {
	p, cart := newWarmedUpPPU()
	cart.chr[0x0010] = 0xAB
	p.V = 0x0010
	first := p.ReadRegister(7, 0)
	if first == 0xAB {
		t.Fatal("expected first PPUDATA read to return stale buffer, not fresh data")
	}
	second := p.ReadRegister(7, 0)
	if second != 0xAB {
		t.Fatalf("expected second PPUDATA read to return 0xAB, got %#02x", second)
	}
}

func TestPPUDATAPaletteReadBypassesBuffer(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.V = 0x3F05
	p.Palette[5] = 0x2A
	v := p.ReadRegister(7, 0)
	if v != 0x2A {
		t.Fatalf("expected immediate palette read, got %#02x", v)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.writePalette(0x3F00, 0x10)
	if p.readPalette(0x3F10) != 0x10 {
		t.Fatal("expected $3F10 to mirror $3F00")
	}
}

func TestWarmupGatesPPUCTRLWrite(t *testing.T) {
	cart := &fakeCart{}
	p := New(cart)
	p.WriteRegister(0, 0x80, 0)
	if p.Ctrl != 0 {
		t.Fatal("expected PPUCTRL write to be ignored before warmup completes")
	}
	for i := 0; i < warmupCPUCycles; i++ {
		p.NotifyCPUCycle()
	}
	p.WriteRegister(0, 0x80, 0)
	if p.Ctrl != 0x80 {
		t.Fatal("expected PPUCTRL write to take effect after warmup")
	}
}

func TestOAMDATAWriteIgnoredDuringRendering(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.WriteRegister(1, 0x18, 0)
	for i := 0; i < 4; i++ {
		p.FinalizeCycle()
	}
	p.Scanline = 100
	p.OAMAddr = 5
	p.WriteRegister(4, 0x77, 0)
	if p.OAM[5] == 0x77 {
		t.Fatal("expected OAMDATA write to be ignored while rendering")
	}
}

func TestNametableMirroringVertical(t *testing.T) {
	cart := &fakeCart{mirror: MirrorVertical}
	p := New(cart)
	p.busWrite(0x2000, 0x11)
	if p.busRead(0x2800) != 0x11 {
		t.Fatal("expected vertical mirroring to map $2800 onto $2000's table")
	}
}

func TestScrollAndAddrWriteSequencing(t *testing.T) {
	p, _ := newWarmedUpPPU()
	p.WriteRegister(6, 0x21, 0)
	p.WriteRegister(6, 0x08, 0)
	if p.V != 0x2108 {
		t.Fatalf("expected V=0x2108 after two-byte PPUADDR write, got %#04x", p.V)
	}
	if p.W {
		t.Fatal("expected write latch to reset after second write")
	}
}
