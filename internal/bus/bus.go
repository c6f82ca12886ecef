// Package bus implements the CPU-visible address space: a handler table
// mapping addresses to RAM, PPU/APU registers, controllers, OAM DMA, and
// the cartridge, plus the open-bus latch that unmapped/write-only reads
// fall back to (spec.md §4.5).
package bus

import (
	"rambo/internal/apu"
	"rambo/internal/cartridge"
	"rambo/internal/controller"
	"rambo/internal/dma"
	"rambo/internal/ppu"
)

// Cart is the narrow cartridge surface the bus dispatches $4020-$FFFF
// to; satisfied by *cartridge.Cartridge.
type Cart interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
}

// cartMirrorAdapter lets internal/ppu depend on its own Mirror enum
// (avoiding an import of internal/cartridge) while still being driven by
// the real cartridge's mirroring mode; the two enums share the same
// ordering by construction (Horizontal, Vertical, Single0, Single1,
// FourScreen).
type cartMirrorAdapter struct {
	*cartridge.Cartridge
}

func (a cartMirrorAdapter) Mirror() ppu.Mirror { return ppu.Mirror(a.Cartridge.Mirror()) }

// Bus is the CPU's memory handler table. It also implements
// dma.Bus/dma.DmcSampleReader so the DMA coordinator can read through it
// without its own duplicate address-decoding logic.
type Bus struct {
	RAM [0x0800]uint8

	PPU         *ppu.PPU
	APU         *apu.APU
	Controllers *controller.Controllers
	Cart        Cart
	DMA         *dma.Coordinator

	openBus uint8

	// currentCycle is the master cycle of the access in progress, needed
	// by PPU register reads/writes to evaluate the VBlank race window.
	// internal/machine sets this immediately before every CPU bus op.
	currentCycle uint64

	// cpuCycleCount is the count of CPU-clocking master cycles seen so
	// far, used only to determine OAM DMA's even/odd start parity.
	cpuCycleCount uint64
}

// New constructs a bus wired to the given components. Cart may be nil
// until a ROM is loaded; reads/writes to cartridge space return the
// open-bus latch until then.
func New(p *ppu.PPU, a *apu.APU, ctrl *controller.Controllers) *Bus {
	return &Bus{
		PPU:         p,
		APU:         a,
		Controllers: ctrl,
		DMA:         &dma.Coordinator{},
	}
}

// SetCartridge installs (or replaces) the cartridge and wires the PPU's
// nametable mirroring source to it.
func (b *Bus) SetCartridge(cart *cartridge.Cartridge) {
	b.Cart = cart
	b.PPU.Cart = cartMirrorAdapter{cart}
}

// SetCycle records the master cycle of the access about to be made,
// for the PPU's race-condition bookkeeping.
func (b *Bus) SetCycle(cycle uint64) { b.currentCycle = cycle }

// NotifyCPUCycle is called once per CPU-clocking master cycle, before
// any bus access that cycle, so OAM DMA start parity and the PPU's
// warmup gate both see an accurate count.
func (b *Bus) NotifyCPUCycle() {
	b.cpuCycleCount++
	b.PPU.NotifyCPUCycle()
}

// Read services a CPU read.
func (b *Bus) Read(addr uint16) uint8 {
	var value uint8
	switch {
	case addr < 0x2000:
		value = b.RAM[addr&0x07FF]
	case addr < 0x4000:
		value = b.PPU.ReadRegister(addr, b.currentCycle)
	case addr == 0x4015:
		// $4015 read is the one documented exception: it must not
		// disturb the open-bus latch.
		return b.APU.ReadStatus()
	case addr < 0x4014:
		value = b.openBus
	case addr == 0x4014:
		value = b.openBus // OAM DMA trigger register reads as open bus.
	case addr == 0x4016:
		value = b.Controllers.ReadPort1(b.openBus)
	case addr == 0x4017:
		value = b.Controllers.ReadPort2(b.openBus)
	case addr < 0x4020:
		value = b.openBus // test-mode registers, ignored
	default:
		if b.Cart != nil {
			value = b.Cart.CPURead(addr)
		} else {
			value = b.openBus
		}
	}
	b.openBus = value
	return value
}

// Write services a CPU write.
func (b *Bus) Write(addr uint16, value uint8) {
	b.openBus = value
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(addr, value, b.currentCycle)
	case addr == 0x4014:
		b.DMA.Oam.Start(value, b.cpuCycleCount%2 == 1)
	case addr == 0x4015:
		b.APU.WriteRegister(addr, value)
	case addr == 0x4016:
		b.Controllers.WriteStrobe(value)
	case addr == 0x4017:
		b.APU.WriteRegister(addr, value)
	case addr <= 0x4013:
		b.APU.WriteRegister(addr, value)
	case addr < 0x4020:
		// test-mode registers, ignored
	default:
		if b.Cart != nil {
			b.Cart.CPUWrite(addr, value)
		}
	}
}

// Peek is a side-effect-free read for the debugger. Register ranges
// that cannot be read without side effects fall back to the open-bus
// latch rather than perform the read.
func (b *Bus) Peek(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]
	case addr < 0x4020:
		return b.openBus
	default:
		if b.Cart != nil {
			return b.Cart.CPURead(addr)
		}
		return b.openBus
	}
}

// ReadSample implements dma.DmcSampleReader: the DMC channel's PRG
// fetches go through the same dispatch as a CPU read, since they only
// ever target cartridge space and carry no register side effects there.
func (b *Bus) ReadSample(addr uint16) uint8 { return b.Read(addr) }

// WriteOAM implements dma.OAMWriter by forwarding to the PPU's OAM port.
func (b *Bus) WriteOAM(value uint8) { b.PPU.WriteOAM(value) }
