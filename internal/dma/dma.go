// Package dma implements the two DMA engines that share the CPU's bus
// when the CPU itself is halted: OAM DMA ($4014) and DMC sample-fetch
// DMA, including their hardware time-sharing behaviour (spec.md §4.7).
package dma

import "rambo/internal/ledger"

// Bus is the narrow CPU-bus surface the DMA engines need. It is
// satisfied by internal/bus.Bus.
type Bus interface {
	Read(addr uint16) uint8
}

// OAMWriter receives the 256 transferred bytes in order; internal/ppu's
// OAM port increments its own address register on each write, so the
// engine does not track a destination address itself.
type OAMWriter interface {
	WriteOAM(value uint8)
}

// OamDMA drives a 256-byte transfer from `sourcePage<<8 | i` into OAM,
// one bus operation per CPU cycle: a 1-cycle alignment (if started on an
// odd CPU cycle), then 256 alternating read/write cycle pairs, then one
// final cycle before the engine goes inactive: 513 cycles in all, 514
// with the alignment cycle.
type OamDMA struct {
	active      bool
	sourcePage  uint8
	index       int
	haveByte    bool
	pendingByte uint8
	alignLeft   int

	// paused is set by the Coordinator while a DMC fetch is time-sharing
	// the bus; the duplication quirk is tracked via lastReadUnwritten.
	paused            bool
	lastReadUnwritten bool
}

// Start begins a transfer. cpuCycleOdd is the parity of the CPU cycle on
// which the $4014 write landed; the NES needs one extra alignment cycle
// when that write falls on an odd cycle.
func (o *OamDMA) Start(sourcePage uint8, cpuCycleOdd bool) {
	o.active = true
	o.sourcePage = sourcePage
	o.index = 0
	o.haveByte = false
	o.paused = false
	o.lastReadUnwritten = false
	if cpuCycleOdd {
		o.alignLeft = 1
	} else {
		o.alignLeft = 0
	}
}

// Active reports whether a transfer is in progress.
func (o *OamDMA) Active() bool { return o.active }

// Pause suspends the transfer until the caller clears the pause (used
// while a DMC fetch owns the bus). Flagging an interrupted read for the
// write-twice duplication quirk is done separately, by
// MarkInterruptedRead.
func (o *OamDMA) Pause() { o.paused = true }

// Step advances the transfer by one CPU cycle. It is a no-op if the
// engine is not active or is paused for this cycle (the caller clears
// the pause before the next call).
func (o *OamDMA) Step(bus Bus, oam OAMWriter) {
	if !o.active || o.paused {
		return
	}
	if o.alignLeft > 0 {
		o.alignLeft--
		return
	}
	if o.index >= 256 {
		// All 256 bytes are written; this final cycle ends the transfer.
		o.active = false
		return
	}
	if !o.haveByte {
		o.pendingByte = bus.Read(uint16(o.sourcePage)<<8 | uint16(o.index))
		o.haveByte = true
		return
	}
	oam.WriteOAM(o.pendingByte)
	o.haveByte = false
	o.index++
	if o.lastReadUnwritten {
		// Duplication quirk: the byte interrupted mid-transfer by a DMC
		// fetch is written a second time before moving on.
		oam.WriteOAM(o.pendingByte)
		o.lastReadUnwritten = false
	}
}

// MarkInterruptedRead records that the byte currently held (read but not
// yet written) was interrupted by a DMC fetch, triggering the
// write-duplication quirk on resume.
func (o *OamDMA) MarkInterruptedRead() {
	if o.haveByte {
		o.lastReadUnwritten = true
	}
}

// DmcSampleReader performs the actual PRG-space sample byte fetch once
// the DMA stall has run its course.
type DmcSampleReader interface {
	ReadSample(addr uint16) uint8
}

// DmcDMA models the 4-cycle CPU stall the DMC channel imposes to fetch
// one sample byte: halt, dummy, [align if sharing with OAM], fetch.
type DmcDMA struct {
	active               bool
	stallCyclesRemaining int
	sampleAddr           uint16
	onComplete           func(value uint8)
}

// Start begins a 4-cycle stall that will fetch addr on its final cycle.
func (d *DmcDMA) Start(addr uint16, onComplete func(value uint8)) {
	d.active = true
	d.stallCyclesRemaining = 4
	d.sampleAddr = addr
	d.onComplete = onComplete
}

// Active reports whether a stall is in progress.
func (d *DmcDMA) Active() bool { return d.active }

// RewireCompletion re-attaches the completion callback after a snapshot
// restore, since onComplete is a closure and cannot be serialised.
// Callers must invoke this whenever Active() is still true post-restore.
func (d *DmcDMA) RewireCompletion(onComplete func(value uint8)) {
	d.onComplete = onComplete
}

// StallCyclesRemaining exposes the countdown for the Coordinator's
// time-sharing decision (spec.md: OAM continues while this is in
// {4,3,2}; OAM pauses and DMC fetches when this reaches 1).
func (d *DmcDMA) StallCyclesRemaining() int { return d.stallCyclesRemaining }

// Step advances the stall by one CPU cycle, performing the sample fetch
// on the final cycle and invoking onComplete with the byte read.
func (d *DmcDMA) Step(bus DmcSampleReader) {
	if !d.active {
		return
	}
	if d.stallCyclesRemaining > 1 {
		d.stallCyclesRemaining--
		return
	}
	value := bus.ReadSample(d.sampleAddr)
	d.active = false
	d.stallCyclesRemaining = 0
	if d.onComplete != nil {
		d.onComplete(value)
	}
}

// Coordinator arbitrates OAM DMA and DMC DMA sharing the halted CPU's
// bus, per spec.md §4.7's "DMC during OAM DMA" time-sharing rules, and
// keeps a ledger.DMAInteraction up to date for observability/snapshots.
type Coordinator struct {
	Oam    OamDMA
	Dmc    DmcDMA
	Ledger ledger.DMAInteraction

	postDmcAlignment bool
}

// CPUHalted reports whether the CPU must not be clocked this cycle.
func (co *Coordinator) CPUHalted() bool {
	return co.Oam.Active() || co.Dmc.Active() || co.postDmcAlignment
}

// Step runs one CPU cycle's worth of DMA arbitration. masterCycle is the
// current master-clock cycle, recorded into the ledger for diagnostics.
func (co *Coordinator) Step(masterCycle uint64, bus Bus, oam OAMWriter, sample DmcSampleReader) {
	dmcWasActive := co.Dmc.Active()

	switch {
	case co.postDmcAlignment:
		co.postDmcAlignment = false
		co.Oam.paused = false
		co.Ledger.OAMResumeCycle = masterCycle

	case co.Dmc.Active() && co.Oam.Active():
		if co.Dmc.StallCyclesRemaining() > 1 {
			// Halt/dummy/align cycles: OAM continues to execute, the two
			// engines share the bus without conflict.
			co.Oam.Step(bus, oam)
		} else {
			// Final DMC cycle: OAM pauses and yields the bus to the fetch.
			if !dmcPausedBefore(co) {
				co.Oam.Pause()
				co.Oam.MarkInterruptedRead()
				co.Ledger.OAMPauseCycle = masterCycle
				co.Ledger.DuplicationPending = true
			}
			co.postDmcAlignment = true
		}
		co.Dmc.Step(sample)

	case co.Dmc.Active():
		co.Dmc.Step(sample)

	case co.Oam.Active():
		co.Oam.Step(bus, oam)
	}

	if dmcWasActive && !co.Dmc.Active() {
		co.Ledger.DMCInactiveCycle = masterCycle
	}
	if !dmcWasActive && co.Dmc.Active() {
		co.Ledger.DMCActiveCycle = masterCycle
	}
}

// dmcPausedBefore reports whether the OAM engine is already paused, to
// avoid re-marking the interrupted-read quirk on every cycle of a
// multi-cycle pause.
func dmcPausedBefore(co *Coordinator) bool { return co.Oam.paused }

// Reset clears both engines and the interaction ledger, as on power-on
// or a hard reset.
func (co *Coordinator) Reset() {
	co.Oam = OamDMA{}
	co.Dmc = DmcDMA{}
	co.Ledger.Reset()
	co.postDmcAlignment = false
}
