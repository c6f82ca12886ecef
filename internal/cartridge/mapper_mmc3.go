package cartridge

import "rambo/internal/snapshot/codec"

// mmc3A12FilterCycles names the MMC3 A12 edge filter threshold left as
// an open question by the hardware documentation (spec.md §9): rising
// edges within this many CPU cycles (counted by TickIRQ) of a prior edge
// are coalesced into one, since the PPU's own fetch pattern produces
// spurious edges the real IRQ counter does not count.
const mmc3A12FilterCycles = 10

// mmc3 implements mapper 4: independent PRG/CHR bank-select-and-data
// register pairs, two PRG modes, two CHR modes, and a scanline IRQ
// counter clocked by rising edges of PPU address line A12.
type mmc3 struct {
	cart *Cartridge

	bankSelect uint8
	bankRegs   [8]uint8
	mirror     uint8 // 0 = vertical, 1 = horizontal (MMC3 register encoding)
	ramProtect uint8

	irqLatch      uint8
	irqCounter    uint8
	irqReloadFlag bool
	irqEnabled    bool
	irqPending    bool

	prgBankCount int
	chrBankCount int

	a12Low        bool
	a12LowStreak  int
}

func newMMC3(cart *Cartridge, _ Mirror) *mmc3 {
	return &mmc3{
		cart:         cart,
		prgBankCount: len(cart.prgROM) / 0x2000,
		chrBankCount: len(cart.chrROM) / 0x400,
		a12Low:       true,
	}
}

func (m *mmc3) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.cart.prgRAM[addr-0x6000]
	case addr >= 0x8000:
		bank := m.prgBank(addr)
		offset := bank*0x2000 + int(addr&0x1FFF)
		if offset >= 0 && offset < len(m.cart.prgROM) {
			return m.cart.prgROM[offset]
		}
	}
	return 0
}

func (m *mmc3) prgBank(addr uint16) int {
	prgMode := (m.bankSelect >> 6) & 1
	last := m.prgBankCount - 1
	secondLast := m.prgBankCount - 2
	switch {
	case addr < 0xA000:
		if prgMode == 0 {
			return int(m.bankRegs[6]) % m.prgBankCount
		}
		return secondLast
	case addr < 0xC000:
		return int(m.bankRegs[7]) % m.prgBankCount
	case addr < 0xE000:
		if prgMode == 0 {
			return secondLast
		}
		return int(m.bankRegs[6]) % m.prgBankCount
	default:
		return last
	}
}

func (m *mmc3) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if m.ramProtect&0x40 == 0 {
			m.cart.prgRAM[addr-0x6000] = value
		}
		return
	case addr < 0x8000:
		return
	}

	switch addr & 0xE001 {
	case 0x8000:
		m.bankSelect = value
	case 0x8001:
		reg := m.bankSelect & 0x07
		m.bankRegs[reg] = value
	case 0xA000:
		m.mirror = value & 1
	case 0xA001:
		m.ramProtect = value
	case 0xC000:
		m.irqLatch = value
	case 0xC001:
		m.irqCounter = 0
		m.irqReloadFlag = true
	case 0xE000:
		m.irqEnabled = false
		m.irqPending = false
	case 0xE001:
		m.irqEnabled = true
	}
}

func (m *mmc3) chrBank(addr uint16) int {
	chrMode := (m.bankSelect >> 7) & 1
	// mode 0: $0000-$07FF=R0(2K) $0800-$0FFF=R1(2K) $1000-$13FF=R2 ... $1C00-$1FFF=R5
	// mode 1: the two halves are swapped.
	a := addr
	if chrMode == 1 {
		a ^= 0x1000
	}
	switch {
	case a < 0x0800:
		return int(m.bankRegs[0]&^1) + int(a/0x400)
	case a < 0x1000:
		return int(m.bankRegs[1]&^1) + int((a-0x0800)/0x400)
	default:
		reg := 2 + int((a-0x1000)/0x400)
		return int(m.bankRegs[reg])
	}
}

func (m *mmc3) PPURead(addr uint16) uint8 {
	m.observeA12(addr)
	if addr >= 0x2000 {
		return 0
	}
	bank := m.chrBank(addr)
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	offset := bank*0x400 + int(addr&0x3FF)
	if offset >= 0 && offset < len(m.cart.chrROM) {
		return m.cart.chrROM[offset]
	}
	return 0
}

func (m *mmc3) PPUWrite(addr uint16, value uint8) {
	m.observeA12(addr)
	if addr >= 0x2000 || !m.cart.hasCHRRAM {
		return
	}
	bank := m.chrBank(addr)
	if m.chrBankCount > 0 {
		bank %= m.chrBankCount
	}
	offset := bank*0x400 + int(addr&0x3FF)
	if offset >= 0 && offset < len(m.cart.chrROM) {
		m.cart.chrROM[offset] = value
	}
}

// observeA12 is the CHR-address-driven edge source most emulators use in
// lieu of wiring a true A12 line: every PPU pattern-table access implies
// the address line's momentary value, and rising low->high transitions
// separated by enough CPU cycles are what clocks the IRQ counter. This
// method detects the low->high transition itself and hands it to
// PPUA12Rising, which applies the filter using the CPU-cycle count
// TickIRQ has accumulated since the previous edge.
func (m *mmc3) observeA12(addr uint16) {
	high := addr&0x1000 != 0
	if high && m.a12Low {
		m.PPUA12Rising()
		m.a12LowStreak = 0
	}
	m.a12Low = !high
}

func (m *mmc3) TickIRQ() {
	m.a12LowStreak++
}

func (m *mmc3) PPUA12Rising() {
	if m.a12LowStreak < mmc3A12FilterCycles && m.a12LowStreak != 0 {
		return
	}
	if m.irqReloadFlag || m.irqCounter == 0 {
		m.irqCounter = m.irqLatch
		m.irqReloadFlag = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *mmc3) IRQPending() bool { return m.irqPending }
func (m *mmc3) AcknowledgeIRQ()  { m.irqPending = false }

func (m *mmc3) Mirror() Mirror {
	if m.mirror == 0 {
		return MirrorVertical
	}
	return MirrorHorizontal
}

func (m *mmc3) Reset() {
	m.bankSelect = 0
	m.irqCounter = 0
	m.irqEnabled = false
	m.irqPending = false
	m.irqReloadFlag = false
	m.a12Low = true
	m.a12LowStreak = 0
}

func (m *mmc3) Marshal(w *codec.Writer) {
	w.U8(m.bankSelect)
	w.Raw(m.bankRegs[:])
	w.U8(m.mirror)
	w.U8(m.ramProtect)

	w.U8(m.irqLatch)
	w.U8(m.irqCounter)
	w.Bool(m.irqReloadFlag)
	w.Bool(m.irqEnabled)
	w.Bool(m.irqPending)

	w.Bool(m.a12Low)
	w.I32(int32(m.a12LowStreak))
}

func (m *mmc3) Unmarshal(r *codec.Reader) error {
	m.bankSelect = r.U8()
	copy(m.bankRegs[:], r.Raw(len(m.bankRegs)))
	m.mirror = r.U8()
	m.ramProtect = r.U8()

	m.irqLatch = r.U8()
	m.irqCounter = r.U8()
	m.irqReloadFlag = r.Bool()
	m.irqEnabled = r.Bool()
	m.irqPending = r.Bool()

	m.a12Low = r.Bool()
	m.a12LowStreak = int(r.I32())

	return r.Err()
}
