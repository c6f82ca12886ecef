// Package machine implements EmulationState, the coordinator that ties
// the CPU, PPU, APU, DMA engines and cartridge together one master
// cycle at a time, enforcing the seven-step per-cycle ordering that
// makes the $2002-read VBlank race and DMC/OAM DMA time-sharing
// correct (spec.md §4.7), and the outward-facing mailboxes (§6).
package machine

import (
	"sync/atomic"

	"rambo/internal/apu"
	"rambo/internal/bus"
	"rambo/internal/cartridge"
	"rambo/internal/clock"
	"rambo/internal/controller"
	"rambo/internal/cpu"
	"rambo/internal/debug"
	"rambo/internal/ppu"
)

// Frame is one published framebuffer: a fixed 256x240 RGBA8-packed
// (0x00RRGGBB, alpha implied opaque) grid plus its monotonic number.
type Frame struct {
	Pixels      [256 * 240]uint32
	FrameNumber uint64
}

// ButtonState is the single-slot controller mailbox payload (spec.md
// §6.1): one byte per port, bit order A,B,Select,Start,Up,Down,Left,Right.
type ButtonState struct {
	Port1 uint8
	Port2 uint8
}

// audioRingSize is the capacity of the lock-free SPSC sample ring; large
// enough to absorb a full video frame's worth of 44.1kHz audio (~735
// samples) several times over without the consumer needing to keep up
// cycle-for-cycle.
const audioRingSize = 8192

// EmulationState owns the entire emulation core. Every field is touched
// exclusively by the emulation thread except the mailboxes below, which
// use atomics/triple-buffering so the hot path never blocks or locks
// (spec.md §5).
type EmulationState struct {
	Clock       *clock.MasterClock
	CPU         *cpu.CPU
	PPU         *ppu.PPU
	APU         *apu.APU
	Bus         *bus.Bus
	Controllers *controller.Controllers
	Cart        *cartridge.Cartridge

	// dumper is nil unless EnableFrameDump has been called; when set, every
	// published frame is also offered to it for an on-disk text dump, for
	// offline inspection of a specific frame's pixel data.
	dumper *debug.FrameDumper

	// frames is the triple-buffered frame mailbox. writeSlot is the
	// index the emulation thread is currently filling; readySlot is the
	// most recently completed frame, published via an atomic swap with
	// writeSlot once FrameComplete fires so the presentation thread
	// never observes a partially-drawn buffer.
	frames      [3]Frame
	writeSlot   int32
	readySlot   atomic.Int32
	frameNumber uint64

	// audio is a lock-free SPSC ring of signed 16-bit samples, filled
	// from the samples APU.GetSamples returns and emptied by DrainAudio;
	// cmd/rambo does not drain it.
	audio      [audioRingSize]int16
	audioHead  atomic.Uint64 // producer (emulation thread)
	audioTail  atomic.Uint64 // consumer (presentation thread)

	buttons atomic.Pointer[ButtonState]

	// eventLog, when non-nil, records per-instruction trace events for
	// test assertions; production builds leave it nil so tracing costs
	// nothing on the hot path.
	eventLog []TraceEvent
}

// TraceEvent is one instruction-boundary record, recorded only after
// EnableTracing and used by tests rather than by normal play.
type TraceEvent struct {
	MasterCycle uint64
	PC          uint16
	Opcode      uint8
}

// New constructs an EmulationState with all core components wired
// together, powered on but with no cartridge inserted.
func New() *EmulationState {
	p := ppu.New(nil)
	a := apu.New()
	ctrl := controller.New()
	b := bus.New(p, a, ctrl)
	c := cpu.New()

	e := &EmulationState{
		Clock:       clock.New(),
		CPU:         c,
		PPU:         p,
		APU:         a,
		Bus:         b,
		Controllers: ctrl,
	}
	e.readySlot.Store(-1)
	initial := ButtonState{}
	e.buttons.Store(&initial)
	return e
}

// LoadCartridge inserts a cartridge and resets the core to its power-on
// state, as a physical console does when a cartridge is seated and
// powered up.
func (e *EmulationState) LoadCartridge(cart *cartridge.Cartridge) {
	e.Cart = cart
	e.Bus.SetCartridge(cart)
	e.PowerOn()
}

// EnableTracing turns on instruction-boundary event recording, used by
// tests that assert on the exact sequence of executed opcodes rather
// than just final state. Disabled (nil eventLog) costs nothing on the
// hot path since CPU.InstructionBoundaryHook is simply left unset.
func (e *EmulationState) EnableTracing() {
	e.eventLog = make([]TraceEvent, 0, 256)
	e.CPU.InstructionBoundaryHook = func() {
		e.eventLog = append(e.eventLog, TraceEvent{
			MasterCycle: e.Clock.PPUCycles,
			PC:          e.CPU.PC,
			Opcode:      e.CPU.Opcode,
		})
	}
}

// TraceEvents returns the recorded instruction-boundary events since the
// last EnableTracing call. Returns nil if tracing was never enabled.
func (e *EmulationState) TraceEvents() []TraceEvent { return e.eventLog }

// PowerOn re-powers the master clock (drawing a new phase), the CPU (via
// the reset vector) and the cartridge's mapper, and restarts frame
// numbering. The PPU, APU, controllers and DMA engines are not reset here.
func (e *EmulationState) PowerOn() {
	e.Clock.PowerOn()
	e.CPU.Reset(e.Bus)
	e.frameNumber = 0
	if e.Cart != nil {
		e.Cart.Reset()
	}
}

// Reset performs a soft reset (the console's RESET line), distinct from
// PowerOn in that the master clock keeps its phase instead of drawing a
// new one, and frame numbering is not restarted.
func (e *EmulationState) Reset() {
	e.Clock.Reset()
	e.CPU.Reset(e.Bus)
	if e.Cart != nil {
		e.Cart.Reset()
	}
}

// SetButtons updates the controller mailbox; safe to call from the
// input/coordinator thread concurrently with RunFrame.
func (e *EmulationState) SetButtons(s ButtonState) {
	e.buttons.Store(&s)
}

// LatestFrame returns the most recently published complete frame, or
// ok=false if none has been produced yet. Safe to call from the
// presentation thread concurrently with RunFrame.
func (e *EmulationState) LatestFrame() (Frame, bool) {
	idx := e.readySlot.Load()
	if idx < 0 {
		return Frame{}, false
	}
	return e.frames[idx], true
}

// DrainAudio copies up to len(out) samples into out, returning the
// number copied. Safe to call from the presentation thread concurrently
// with RunFrame.
func (e *EmulationState) DrainAudio(out []int16) int {
	head := e.audioHead.Load()
	tail := e.audioTail.Load()
	n := 0
	for n < len(out) && tail != head {
		out[n] = e.audio[tail%audioRingSize]
		tail++
		n++
	}
	e.audioTail.Store(tail)
	return n
}

func (e *EmulationState) pushAudioSample(s float32) {
	head := e.audioHead.Load()
	tail := e.audioTail.Load()
	if head-tail >= audioRingSize {
		// Ring full: the consumer fell behind. Drop the oldest sample
		// rather than block the real-time emulation thread.
		tail++
		e.audioTail.Store(tail)
	}
	clamped := s
	if clamped > 1 {
		clamped = 1
	} else if clamped < -1 {
		clamped = -1
	}
	e.audio[head%audioRingSize] = int16(clamped * 32767)
	e.audioHead.Store(head + 1)
}

// RunFrame advances emulation until one full frame has been produced,
// applying the latched controller mailbox once at the start (spec.md
// §6.1: button updates are eventually consistent, observed at most once
// per frame).
func (e *EmulationState) RunFrame() {
	btn := e.buttons.Load()
	e.Controllers.Port1.SetButtons(btn.Port1)
	e.Controllers.Port2.SetButtons(btn.Port2)

	for {
		e.tick()
		if e.PPU.FrameComplete {
			e.publishFrame()
			return
		}
	}
}

func (e *EmulationState) publishFrame() {
	// Pick a slot that is neither the currently-ready one nor the one
	// about to be ready, so the presenter's in-flight read of the ready
	// slot is never disturbed.
	ready := e.readySlot.Load()
	candidate := int32(0)
	for candidate == ready || candidate == e.writeSlot {
		candidate++
	}
	e.frameNumber++
	frame := &e.frames[e.writeSlot]
	frame.Pixels = e.PPU.FrameBuffer
	frame.FrameNumber = e.frameNumber
	e.readySlot.Store(e.writeSlot)
	e.writeSlot = candidate

	if e.dumper != nil {
		e.dumper.DumpFrameBuffer(frame.Pixels, e.frameNumber)
	}
}

// EnableFrameDump turns on periodic text dumps of published frames under
// dir, every interval-th frame, up to maxDumps files. Intended for offline
// debugging of a specific ROM's rendering, not for normal play.
func (e *EmulationState) EnableFrameDump(dir string, interval, maxDumps int) {
	d := debug.NewFrameDumper(dir)
	d.SetDumpInterval(interval)
	d.SetMaxDumps(maxDumps)
	d.Enable()
	e.dumper = d
}

// tick advances the core by exactly one master clock cycle, in the
// mandatory order from spec.md §4.7.
func (e *EmulationState) tick() {
	// Step 1: advance PPU counters/fetch pipeline without yet applying
	// externally-visible flag changes.
	e.PPU.AdvanceCounters()

	// Step 2: advance the master clock.
	e.Clock.Advance(1)
	
	// Step 3: APU clocks once per CPU cycle (every other master cycle
	// on NTSC), matching the CPU-tick cadence.
	if e.Clock.IsCPUTick() {
		e.APU.Step()
		for _, sample := range e.APU.GetSamples() {
			e.pushAudioSample(sample)
		}
	}

	// Step 4: CPU microstep, unless DMA has the bus.
	if e.Clock.IsCPUTick() {
		e.Bus.NotifyCPUCycle()
		e.serviceDMA()
		if !e.Bus.DMA.CPUHalted() {
			e.Bus.SetCycle(e.Clock.PPUCycles)
			e.CPU.Step(e.Bus)
		}
		if e.Cart != nil {
			e.Cart.TickIRQ()
		}
	}

	// Step 5: apply PPU VBlank timestamp updates.
	e.PPU.ApplyVBlankTransition(e.Clock.PPUCycles)

	// Step 6: sample interrupt lines into the CPU.
	nmiHigh := e.PPU.NMILevel()
	e.CPU.SetNMILine(nmiHigh, e.PPU.VBlank.LastSetCycle, nmiHigh)
	irq := e.APU.IRQLevel()
	if e.Cart != nil {
		irq = irq || e.Cart.IRQPending()
	}
	e.CPU.SetIRQLine(irq)

	// Step 7: finalize remaining PPU state (mask-delay buffer, frame
	// complete, odd-frame skip bookkeeping already folded into step 1).
	e.PPU.FinalizeCycle()
}

// serviceDMA drives the OAM/DMC time-sharing coordinator and starts a
// DMC fetch whenever the APU's sample buffer runs dry.
func (e *EmulationState) serviceDMA() {
	if addr, ok := e.APU.NeedsDMCFetch(); ok {
		e.Bus.DMA.Dmc.Start(addr, e.APU.CompleteDMCFetch)
	}
	e.Bus.DMA.Step(e.Clock.PPUCycles, e.Bus, e.Bus, e.Bus)
}

