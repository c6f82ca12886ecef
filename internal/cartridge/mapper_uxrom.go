package cartridge

import "rambo/internal/snapshot/codec"

// uxrom implements mapper 2: a single PRG bank register selects the
// 16 KiB bank visible at $8000; $C000 is permanently wired to the last
// bank. CHR is always RAM (no CHR-bank register exists on real boards).
type uxrom struct {
	cart      *Cartridge
	bank      uint8
	lastBank  int
	mirror    Mirror
}

func newUxROM(cart *Cartridge, mirror Mirror) *uxrom {
	return &uxrom{
		cart:     cart,
		lastBank: len(cart.prgROM)/0x4000 - 1,
		mirror:   mirror,
	}
}

func (m *uxrom) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000 && addr < 0xC000:
		idx := int(m.bank)*0x4000 + int(addr-0x8000)
		if idx < len(m.cart.prgROM) {
			return m.cart.prgROM[idx]
		}
	case addr >= 0xC000:
		idx := m.lastBank*0x4000 + int(addr-0xC000)
		if idx >= 0 && idx < len(m.cart.prgROM) {
			return m.cart.prgROM[idx]
		}
	}
	return 0
}

func (m *uxrom) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.cart.prgRAM[addr-0x6000] = value
	case addr >= 0x8000:
		m.bank = value
	}
}

func (m *uxrom) PPURead(addr uint16) uint8 {
	if int(addr) < len(m.cart.chrROM) {
		return m.cart.chrROM[addr]
	}
	return 0
}

func (m *uxrom) PPUWrite(addr uint16, value uint8) {
	if int(addr) < len(m.cart.chrROM) {
		m.cart.chrROM[addr] = value
	}
}

func (m *uxrom) TickIRQ()         {}
func (m *uxrom) PPUA12Rising()    {}
func (m *uxrom) IRQPending() bool { return false }
func (m *uxrom) AcknowledgeIRQ()  {}
func (m *uxrom) Mirror() Mirror   { return m.mirror }
func (m *uxrom) Reset()           { m.bank = 0 }

func (m *uxrom) Marshal(w *codec.Writer) { w.U8(m.bank) }

func (m *uxrom) Unmarshal(r *codec.Reader) error {
	m.bank = r.U8()
	return r.Err()
}
