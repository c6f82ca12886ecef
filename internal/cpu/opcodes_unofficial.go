package cpu

// defineUnofficial fills in the 105 undocumented opcodes the NMOS 6502
// decodes as side effects of its instruction decoder collisions. Most
// are combinations of an official RMW plus an official ALU op sharing
// the RMW's addressing-mode timing (e.g. SLO = ASL then ORA); a handful
// involving simultaneous bus/register conflicts (SHA/SHX/SHY/TAS/ANE/LAS)
// are implemented with the commonly-documented "stable" approximation
// rather than the fully unstable silicon behaviour, since the latter
// depends on analog bus capacitance effects no software model captures.
func defineUnofficial() {
	// NOP variants: the addressing mode determines the bus pattern; the
	// value read is discarded.
	noop := func(c *CPU, v uint8) uint8 { return v }
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		def(op, "NOP", Implicit, KindImplied, noop)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		def(op, "NOP", Immediate, KindRead, noop)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		def(op, "NOP", ZeroPage, KindRead, noop)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		def(op, "NOP", ZeroPageX, KindRead, noop)
	}
	def(0x0C, "NOP", Absolute, KindRead, noop)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		def(op, "NOP", AbsoluteX, KindRead, noop)
	}

	// LAX: load A and X simultaneously.
	lax := func(c *CPU, v uint8) uint8 { c.A = v; c.X = v; c.setZN(v); return v }
	def(0xA7, "LAX", ZeroPage, KindRead, lax)
	def(0xB7, "LAX", ZeroPageY, KindRead, lax)
	def(0xAF, "LAX", Absolute, KindRead, lax)
	def(0xBF, "LAX", AbsoluteY, KindRead, lax)
	def(0xA3, "LAX", IndirectX, KindRead, lax)
	def(0xB3, "LAX", IndirectY, KindRead, lax)

	// SAX: store A&X.
	sax := func(c *CPU, _ uint8) uint8 { return c.A & c.X }
	def(0x87, "SAX", ZeroPage, KindWrite, sax)
	def(0x97, "SAX", ZeroPageY, KindWrite, sax)
	def(0x8F, "SAX", Absolute, KindWrite, sax)
	def(0x83, "SAX", IndirectX, KindWrite, sax)

	// SLO: ASL then ORA A.
	slo := func(c *CPU, v uint8) uint8 { r := asl(c, v); c.A |= r; c.setZN(c.A); return r }
	def(0x07, "SLO", ZeroPage, KindRMW, slo)
	def(0x17, "SLO", ZeroPageX, KindRMW, slo)
	def(0x0F, "SLO", Absolute, KindRMW, slo)
	def(0x1F, "SLO", AbsoluteX, KindRMW, slo)
	def(0x1B, "SLO", AbsoluteY, KindRMW, slo)
	def(0x03, "SLO", IndirectX, KindRMW, slo)
	def(0x13, "SLO", IndirectY, KindRMW, slo)

	// RLA: ROL then AND A.
	rla := func(c *CPU, v uint8) uint8 { r := rol(c, v); c.A &= r; c.setZN(c.A); return r }
	def(0x27, "RLA", ZeroPage, KindRMW, rla)
	def(0x37, "RLA", ZeroPageX, KindRMW, rla)
	def(0x2F, "RLA", Absolute, KindRMW, rla)
	def(0x3F, "RLA", AbsoluteX, KindRMW, rla)
	def(0x3B, "RLA", AbsoluteY, KindRMW, rla)
	def(0x23, "RLA", IndirectX, KindRMW, rla)
	def(0x33, "RLA", IndirectY, KindRMW, rla)

	// SRE: LSR then EOR A.
	sre := func(c *CPU, v uint8) uint8 { r := lsr(c, v); c.A ^= r; c.setZN(c.A); return r }
	def(0x47, "SRE", ZeroPage, KindRMW, sre)
	def(0x57, "SRE", ZeroPageX, KindRMW, sre)
	def(0x4F, "SRE", Absolute, KindRMW, sre)
	def(0x5F, "SRE", AbsoluteX, KindRMW, sre)
	def(0x5B, "SRE", AbsoluteY, KindRMW, sre)
	def(0x43, "SRE", IndirectX, KindRMW, sre)
	def(0x53, "SRE", IndirectY, KindRMW, sre)

	// RRA: ROR then ADC A.
	rra := func(c *CPU, v uint8) uint8 { r := ror(c, v); c.adc(r); return r }
	def(0x67, "RRA", ZeroPage, KindRMW, rra)
	def(0x77, "RRA", ZeroPageX, KindRMW, rra)
	def(0x6F, "RRA", Absolute, KindRMW, rra)
	def(0x7F, "RRA", AbsoluteX, KindRMW, rra)
	def(0x7B, "RRA", AbsoluteY, KindRMW, rra)
	def(0x63, "RRA", IndirectX, KindRMW, rra)
	def(0x73, "RRA", IndirectY, KindRMW, rra)

	// DCP: DEC then CMP A.
	dcp := func(c *CPU, v uint8) uint8 { r := v - 1; c.compare(c.A, r); return r }
	def(0xC7, "DCP", ZeroPage, KindRMW, dcp)
	def(0xD7, "DCP", ZeroPageX, KindRMW, dcp)
	def(0xCF, "DCP", Absolute, KindRMW, dcp)
	def(0xDF, "DCP", AbsoluteX, KindRMW, dcp)
	def(0xDB, "DCP", AbsoluteY, KindRMW, dcp)
	def(0xC3, "DCP", IndirectX, KindRMW, dcp)
	def(0xD3, "DCP", IndirectY, KindRMW, dcp)

	// ISB (a.k.a. ISC): INC then SBC A.
	isb := func(c *CPU, v uint8) uint8 { r := v + 1; c.sbc(r); return r }
	def(0xE7, "ISB", ZeroPage, KindRMW, isb)
	def(0xF7, "ISB", ZeroPageX, KindRMW, isb)
	def(0xEF, "ISB", Absolute, KindRMW, isb)
	def(0xFF, "ISB", AbsoluteX, KindRMW, isb)
	def(0xFB, "ISB", AbsoluteY, KindRMW, isb)
	def(0xE3, "ISB", IndirectX, KindRMW, isb)
	def(0xF3, "ISB", IndirectY, KindRMW, isb)

	// ANC: AND then copy N into C (as if the result had been shifted
	// into the carry by a notional ASL/ROL of the AND result).
	anc := func(c *CPU, v uint8) uint8 { c.A &= v; c.setZN(c.A); c.C = c.N; return v }
	def(0x0B, "ANC", Immediate, KindRead, anc)
	def(0x2B, "ANC", Immediate, KindRead, anc)

	// ALR (ASR): AND then LSR A.
	alr := func(c *CPU, v uint8) uint8 { c.A &= v; c.A = lsr(c, c.A); return v }
	def(0x4B, "ALR", Immediate, KindRead, alr)

	// ARR: AND then ROR A, with C/V derived from the result's top bits
	// per the documented (non-decimal) NMOS behaviour.
	arr := func(c *CPU, v uint8) uint8 {
		c.A &= v
		carryIn := uint8(0)
		if c.C {
			carryIn = 0x80
		}
		c.A = c.A>>1 | carryIn
		c.setZN(c.A)
		c.C = c.A&0x40 != 0
		c.V = (c.A>>6)&1 != (c.A>>5)&1
		return v
	}
	def(0x6B, "ARR", Immediate, KindRead, arr)

	// SBX (AXS): (A&X) - operand into X, with borrow-style carry.
	sbx := func(c *CPU, v uint8) uint8 {
		t := c.A & c.X
		c.C = t >= v
		c.X = t - v
		c.setZN(c.X)
		return v
	}
	def(0xCB, "SBX", Immediate, KindRead, sbx)

	// SBC immediate duplicate at $EB.
	def(0xEB, "SBC", Immediate, KindRead, func(c *CPU, v uint8) uint8 { c.sbc(v); return v })

	// SHA/SHX/SHY/TAS/LAS/ANE: highly unstable on real silicon. These
	// use the commonly-documented stable approximation (AND against the
	// high byte of the effective address plus one) rather than modeling
	// the bus-capacitance-dependent instability, since no test ROM in
	// scope here depends on the unstable form.
	addrHighPlus1 := func(c *CPU) uint8 { return uint8(c.EffectiveAddress>>8) + 1 }
	sha := func(c *CPU, _ uint8) uint8 { return c.A & c.X & addrHighPlus1(c) }
	def(0x93, "SHA", IndirectY, KindWrite, sha)
	def(0x9F, "SHA", AbsoluteY, KindWrite, sha)

	shx := func(c *CPU, _ uint8) uint8 { return c.X & addrHighPlus1(c) }
	def(0x9E, "SHX", AbsoluteY, KindWrite, shx)

	shy := func(c *CPU, _ uint8) uint8 { return c.Y & addrHighPlus1(c) }
	def(0x9C, "SHY", AbsoluteX, KindWrite, shy)

	tas := func(c *CPU, _ uint8) uint8 { c.SP = c.A & c.X; return c.SP & addrHighPlus1(c) }
	def(0x9B, "TAS", AbsoluteY, KindWrite, tas)

	las := func(c *CPU, v uint8) uint8 { r := v & c.SP; c.A, c.X, c.SP = r, r, r; c.setZN(r); return v }
	def(0xBB, "LAS", AbsoluteY, KindRead, las)

	ane := func(c *CPU, v uint8) uint8 { c.A = (c.A | 0xFF) & c.X & v; c.setZN(c.A); return v }
	def(0x8B, "ANE", Immediate, KindRead, ane)

	// JAM/KIL/STP: the handful of opcodes that lock the CPU on real
	// hardware. No ROM in scope is expected to execute these on purpose;
	// the core treats them as an internal invariant halt rather than
	// silently continuing with wrong behaviour.
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		opcodeTable[op] = opcodeInfo{name: "JAM", mode: Implicit, kind: KindImplied, illegalHalt: true}
	}
}
