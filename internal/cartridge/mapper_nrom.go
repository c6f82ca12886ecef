package cartridge

import "rambo/internal/snapshot/codec"

// nrom implements mapper 0: fixed PRG (16 KiB mirrored to fill 32 KiB, or
// 32 KiB direct-mapped), fixed CHR ROM/RAM, fixed mirroring from the
// header. No bank-switching registers at all.
type nrom struct {
	cart     *Cartridge
	prgBanks int
	mirror   Mirror
}

func newNROM(cart *Cartridge, mirror Mirror) *nrom {
	return &nrom{
		cart:     cart,
		prgBanks: len(cart.prgROM) / 0x4000,
		mirror:   mirror,
	}
}

func (m *nrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		offset := addr - 0x8000
		if m.prgBanks <= 1 {
			offset &= 0x3FFF
		}
		if int(offset) < len(m.cart.prgROM) {
			return m.cart.prgROM[offset]
		}
	}
	return 0
}

func (m *nrom) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.prgRAM[addr-0x6000] = value
	}
	// Writes into ROM space are ignored (IgnoredHardwareCondition).
}

func (m *nrom) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.cart.chrROM) {
		return m.cart.chrROM[addr]
	}
	return 0
}

func (m *nrom) PPUWrite(addr uint16, value uint8) {
	if m.cart.hasCHRRAM && int(addr) < len(m.cart.chrROM) {
		m.cart.chrROM[addr] = value
	}
}

func (m *nrom) TickIRQ()          {}
func (m *nrom) PPUA12Rising()     {}
func (m *nrom) IRQPending() bool  { return false }
func (m *nrom) AcknowledgeIRQ()   {}
func (m *nrom) Mirror() Mirror    { return m.mirror }
func (m *nrom) Reset()            {}

// Marshal/Unmarshal are no-ops: NROM has no bank-select registers, only
// fields derived from the ROM image at construction time.
func (m *nrom) Marshal(w *codec.Writer)          {}
func (m *nrom) Unmarshal(r *codec.Reader) error  { return r.Err() }
