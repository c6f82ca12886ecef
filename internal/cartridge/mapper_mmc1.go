package cartridge

import "rambo/internal/snapshot/codec"

// mmc1 implements mapper 1: a 5-bit serial shift register loaded one bit
// per CPU write to $8000-$FFFF; on the fifth write the accumulated value
// commits to one of four internal registers selected by bits 13-14 of
// the written address (control, CHR0, CHR1, PRG).
type mmc1 struct {
	cart *Cartridge

	shift     uint8
	shiftBits uint8

	control uint8 // mirroring(1:0), prgMode(3:2), chrMode(4)
	chr0    uint8
	chr1    uint8
	prg     uint8

	prgBankCount int
	chrBankCount int

	// lastWriteCycle-style coalescing: hardware ignores a second
	// consecutive write in the same CPU instruction (RMW dummy writes
	// would otherwise corrupt the shift register). We approximate this
	// by tracking whether the previous CPUWrite call was also to the
	// $8000-$FFFF range with no intervening read; internal/bus calls
	// CPUWrite once per bus write, including RMW dummy writes. The flag
	// is cleared by any CPU read that reaches the mapper (every
	// instruction's opcode fetch from PRG space is one) or by
	// NotifyInstructionBoundary.
	suppressNext bool
}

func newMMC1(cart *Cartridge, _ Mirror) *mmc1 {
	m := &mmc1{
		cart:         cart,
		prgBankCount: len(cart.prgROM) / 0x4000,
		chrBankCount: len(cart.chrROM) / 0x1000,
	}
	m.resetShift()
	m.prg = 0
	m.control = 0x0C // power-on: PRG mode 3 (fix last bank at $C000)
	return m
}

func (m *mmc1) resetShift() {
	m.shift = 0
	m.shiftBits = 0
}

// NotifyInstructionBoundary lets the CPU microstep engine tell the
// mapper that a new instruction has begun, clearing the consecutive-
// write suppression latched by an RMW's double write-back.
func (m *mmc1) NotifyInstructionBoundary() {
	m.suppressNext = false
}

func (m *mmc1) CPURead(addr uint16) uint8 {
	m.suppressNext = false
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		bank, offset := m.prgMapping(addr)
		idx := bank*0x4000 + offset
		if idx < len(m.cart.prgROM) {
			return m.cart.prgROM[idx]
		}
	}
	return 0
}

func (m *mmc1) prgMapping(addr uint16) (bank, offset int) {
	offset = int(addr - 0x8000)
	prgMode := (m.control >> 2) & 0x3
	bankSel := int(m.prg & 0x0F)
	switch prgMode {
	case 0, 1:
		// 32 KiB mode: ignore low bit of bank select.
		bank = (bankSel &^ 1) + offset/0x4000
		offset = offset % 0x4000
		return bank, offset
	case 2:
		// fix first bank at $8000, switch 16 KiB at $C000
		if addr < 0xC000 {
			return 0, offset
		}
		return bankSel, offset - 0x4000
	default: // 3
		// switch 16 KiB at $8000, fix last bank at $C000
		if addr < 0xC000 {
			return bankSel, offset
		}
		return m.prgBankCount - 1, offset - 0x4000
	}
}

func (m *mmc1) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.cart.prgRAM[addr-0x6000] = value
		return
	}
	if addr < 0x8000 {
		return
	}
	if m.suppressNext {
		return
	}
	m.suppressNext = true

	if value&0x80 != 0 {
		m.resetShift()
		m.control |= 0x0C
		return
	}

	m.shift |= (value & 1) << m.shiftBits
	m.shiftBits++
	if m.shiftBits < 5 {
		return
	}

	committed := m.shift
	m.resetShift()

	switch {
	case addr < 0xA000:
		m.control = committed
	case addr < 0xC000:
		m.chr0 = committed
	case addr < 0xE000:
		m.chr1 = committed
	default:
		m.prg = committed
	}
}

func (m *mmc1) chrMapping(addr uint16) int {
	chrMode := (m.control >> 4) & 1
	if chrMode == 0 {
		// 8 KiB mode: low bit of chr0 ignored.
		bank := int(m.chr0 &^ 1)
		return bank*0x1000 + int(addr)
	}
	// 4 KiB mode: independent 4 KiB banks.
	if addr < 0x1000 {
		return int(m.chr0)*0x1000 + int(addr)
	}
	return int(m.chr1)*0x1000 + int(addr-0x1000)
}

func (m *mmc1) PPURead(addr uint16) uint8 {
	idx := m.chrMapping(addr)
	if idx >= 0 && idx < len(m.cart.chrROM) {
		return m.cart.chrROM[idx]
	}
	return 0
}

func (m *mmc1) PPUWrite(addr uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	idx := m.chrMapping(addr)
	if idx >= 0 && idx < len(m.cart.chrROM) {
		m.cart.chrROM[idx] = value
	}
}

func (m *mmc1) TickIRQ()         {}
func (m *mmc1) PPUA12Rising()    {}
func (m *mmc1) IRQPending() bool { return false }
func (m *mmc1) AcknowledgeIRQ()  {}

func (m *mmc1) Mirror() Mirror {
	switch m.control & 0x3 {
	case 0:
		return MirrorSingle0
	case 1:
		return MirrorSingle1
	case 2:
		return MirrorVertical
	default:
		return MirrorHorizontal
	}
}

func (m *mmc1) Reset() {
	m.resetShift()
	m.control |= 0x0C
}

func (m *mmc1) Marshal(w *codec.Writer) {
	w.U8(m.shift)
	w.U8(m.shiftBits)
	w.U8(m.control)
	w.U8(m.chr0)
	w.U8(m.chr1)
	w.U8(m.prg)
	w.Bool(m.suppressNext)
}

func (m *mmc1) Unmarshal(r *codec.Reader) error {
	m.shift = r.U8()
	m.shiftBits = r.U8()
	m.control = r.U8()
	m.chr0 = r.U8()
	m.chr1 = r.U8()
	m.prg = r.U8()
	m.suppressNext = r.Bool()
	return r.Err()
}
