package cpu

// stepGenericAddressing drives the shared bus-cycle pattern for every
// opcode whose effect is "read one byte and combine it with a register"
// (KindRead), "write one register's value to memory" (KindWrite), or
// "read, write back unchanged, write back modified" (KindRMW), across
// every non-implied addressing mode. This is the bulk of the 6502's
// opcode space; opcodes with genuinely unique bus patterns (branches,
// JSR/RTS/RTI, stack ops, JMP) are handled by their own step functions.
//
// Every case below performs exactly one bus operation per call, so that
// dummy reads and RMW write-backs are independently observable the way
// real hardware's sub-instruction bus traffic is.
func (c *CPU) stepGenericAddressing(bus Bus) {
	switch c.mode {
	case Immediate:
		c.stepImmediate(bus)
	case ZeroPage:
		c.stepZeroPage(bus)
	case ZeroPageX:
		c.stepZeroPageIndexed(bus, c.X)
	case ZeroPageY:
		c.stepZeroPageIndexed(bus, c.Y)
	case Absolute:
		c.stepAbsolute(bus)
	case AbsoluteX:
		c.stepAbsoluteIndexed(bus, c.X)
	case AbsoluteY:
		c.stepAbsoluteIndexed(bus, c.Y)
	case IndirectX:
		c.stepIndirectX(bus)
	case IndirectY:
		c.stepIndirectY(bus)
	}
}

// cycle returns the index of the bus operation about to be performed,
// where 1 is the first cycle after the opcode fetch that StepExecute
// was entered with.
func (c *CPU) cycle() int { return c.InstructionCycle }

func (c *CPU) advance() { c.InstructionCycle++ }

// --- Immediate: 2 cycles total (opcode, operand-as-value). Only
// KindRead opcodes use Immediate addressing on a real 6502.

func (c *CPU) stepImmediate(bus Bus) {
	v := bus.Read(c.PC)
	c.PC++
	c.info.exec(c, v)
	c.finishInstruction()
}

// --- Zero page, non-indexed: Read/Write=3 cycles, RMW=5. ---

func (c *CPU) stepZeroPage(bus Bus) {
	switch c.cycle() {
	case 1:
		c.OperandLow = bus.Read(c.PC)
		c.PC++
		c.EffectiveAddress = uint16(c.OperandLow)
		c.advance()
	case 2:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 3:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 4:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// --- Zero page,X / Zero page,Y: always wraps within page 0. Read/Write
// = 4 cycles, RMW = 6.

func (c *CPU) stepZeroPageIndexed(bus Bus, index uint8) {
	switch c.cycle() {
	case 1:
		c.OperandLow = bus.Read(c.PC)
		c.PC++
		c.advance()
	case 2:
		bus.Read(uint16(c.OperandLow)) // dummy read at unindexed address
		c.EffectiveAddress = uint16(c.OperandLow + index)
		c.advance()
	case 3:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 4:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 5:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// --- Absolute: Read/Write = 4 cycles, RMW = 6. ---

func (c *CPU) stepAbsolute(bus Bus) {
	switch c.cycle() {
	case 1:
		c.OperandLow = bus.Read(c.PC)
		c.PC++
		c.advance()
	case 2:
		c.OperandHigh = bus.Read(c.PC)
		c.PC++
		c.EffectiveAddress = uint16(c.OperandHigh)<<8 | uint16(c.OperandLow)
		c.advance()
	case 3:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 4:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 5:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// --- Absolute,X / Absolute,Y. Reads take the hardware-correct 4 cycles
// when the index does not cross a page, 5 when it does (Open Question
// #2 in DESIGN.md); writes and RMWs always pay the extra cycle since the
// corrected address must be known before the access can have any effect.

func (c *CPU) stepAbsoluteIndexed(bus Bus, index uint8) {
	switch c.cycle() {
	case 1:
		c.OperandLow = bus.Read(c.PC)
		c.PC++
		c.advance()
	case 2:
		c.OperandHigh = bus.Read(c.PC)
		c.PC++
		sum := uint16(c.OperandLow) + uint16(index)
		c.pageCross = sum > 0xFF
		c.EffectiveAddress = uint16(c.OperandHigh)<<8 | uint16(uint8(sum))
		c.advance()
	case 3:
		v := bus.Read(c.EffectiveAddress) // dummy if page crossed or non-Read kind
		if c.kind == KindRead && !c.pageCross {
			c.info.exec(c, v)
			c.finishInstruction()
			return
		}
		if c.pageCross {
			c.EffectiveAddress += 0x0100
		}
		c.advance()
	case 4:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 5:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 6:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// --- (Indirect,X): zero-page pointer indexed by X before the two-byte
// pointer fetch; the index addition wraps within page 0. Read/Write = 6
// cycles, RMW = 8.

func (c *CPU) stepIndirectX(bus Bus) {
	switch c.cycle() {
	case 1:
		c.ptrLow = bus.Read(c.PC)
		c.PC++
		c.advance()
	case 2:
		bus.Read(uint16(c.ptrLow)) // dummy read at unindexed pointer
		c.ptrLow += c.X
		c.advance()
	case 3:
		c.OperandLow = bus.Read(uint16(c.ptrLow))
		c.advance()
	case 4:
		c.OperandHigh = bus.Read(uint16(c.ptrLow + 1))
		c.EffectiveAddress = uint16(c.OperandHigh)<<8 | uint16(c.OperandLow)
		c.advance()
	case 5:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 6:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 7:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// --- (Indirect),Y: zero-page pointer fetched first, then indexed by Y;
// the page-cross dummy-read rule applies to the *indexed* access, same
// as Absolute,Y. Read = 5/6 cycles, Write = 6, RMW = 8.

func (c *CPU) stepIndirectY(bus Bus) {
	switch c.cycle() {
	case 1:
		c.ptrLow = bus.Read(c.PC)
		c.PC++
		c.advance()
	case 2:
		c.OperandLow = bus.Read(uint16(c.ptrLow))
		c.advance()
	case 3:
		c.OperandHigh = bus.Read(uint16(c.ptrLow + 1))
		sum := uint16(c.OperandLow) + uint16(c.Y)
		c.pageCross = sum > 0xFF
		c.EffectiveAddress = uint16(c.OperandHigh)<<8 | uint16(uint8(sum))
		c.advance()
	case 4:
		v := bus.Read(c.EffectiveAddress)
		if c.kind == KindRead && !c.pageCross {
			c.info.exec(c, v)
			c.finishInstruction()
			return
		}
		if c.pageCross {
			c.EffectiveAddress += 0x0100
		}
		c.advance()
	case 5:
		switch c.kind {
		case KindRead:
			v := bus.Read(c.EffectiveAddress)
			c.info.exec(c, v)
			c.finishInstruction()
		case KindWrite:
			c.writeBack(bus, c.EffectiveAddress)
			c.finishInstruction()
		case KindRMW:
			c.rmwOrig = bus.Read(c.EffectiveAddress)
			c.advance()
		}
	case 6:
		bus.Write(c.EffectiveAddress, c.rmwOrig)
		c.advance()
	case 7:
		modified := c.info.exec(c, c.rmwOrig)
		bus.Write(c.EffectiveAddress, modified)
		c.finishInstruction()
	}
}

// writeBack invokes a KindWrite opcode's exec to obtain the byte to
// store (e.g. STA returns A, SAX returns A&X) and writes it.
func (c *CPU) writeBack(bus Bus, addr uint16) {
	v := c.info.exec(c, 0)
	bus.Write(addr, v)
}
