package cpu

import "rambo/internal/snapshot/codec"

// Marshal serialises the register file and microstep progress (spec.md
// §6.3's CpuState minus derived caches: opcodeInfo is recomputed from
// Opcode on Unmarshal rather than stored, since it is a pure function of
// the opcode byte). InstructionBoundaryHook is a closure set up by the
// caller (internal/machine's tracing support) and is not serialised.
func (c *CPU) Marshal(w *codec.Writer) {
	w.U8(c.A)
	w.U8(c.X)
	w.U8(c.Y)
	w.U8(c.SP)
	w.U16(c.PC)

	w.Bool(c.N)
	w.Bool(c.V)
	w.Bool(c.D)
	w.Bool(c.I)
	w.Bool(c.Z)
	w.Bool(c.C)

	w.U8(c.Opcode)
	w.U8(c.OperandLow)
	w.U8(c.OperandHigh)
	w.U16(c.EffectiveAddress)
	w.I32(int32(c.InstructionCycle))
	w.I32(int32(c.AddressingMode))
	w.I32(int32(c.State))

	w.Bool(c.NMILine)
	w.Bool(c.IRQLine)
	w.Bool(c.NMIEdgeDetected)
	w.Bool(c.nmiLinePrev)
	w.U64(c.NMIVblankSetCycle)

	w.Bool(c.nmiPending)
	w.Bool(c.irqPending)

	w.I32(int32(c.mode))
	w.I32(int32(c.kind))
	w.U8(c.ptrLow)
	w.U8(c.ptrHigh)
	w.U8(c.baseLow)
	w.Bool(c.pageCross)
	w.U8(c.rmwOrig)
	w.I8(c.branchOff)
	w.Bool(c.branchPage)

	w.I32(int32(c.interruptKind))
	w.Bool(c.halted)
}

func (c *CPU) Unmarshal(r *codec.Reader) error {
	c.A = r.U8()
	c.X = r.U8()
	c.Y = r.U8()
	c.SP = r.U8()
	c.PC = r.U16()

	c.N = r.Bool()
	c.V = r.Bool()
	c.D = r.Bool()
	c.I = r.Bool()
	c.Z = r.Bool()
	c.C = r.Bool()

	c.Opcode = r.U8()
	c.OperandLow = r.U8()
	c.OperandHigh = r.U8()
	c.EffectiveAddress = r.U16()
	c.InstructionCycle = int(r.I32())
	c.AddressingMode = AddrMode(r.I32())
	c.State = State(r.I32())

	c.NMILine = r.Bool()
	c.IRQLine = r.Bool()
	c.NMIEdgeDetected = r.Bool()
	c.nmiLinePrev = r.Bool()
	c.NMIVblankSetCycle = r.U64()

	c.nmiPending = r.Bool()
	c.irqPending = r.Bool()

	c.mode = AddrMode(r.I32())
	c.kind = Kind(r.I32())
	c.ptrLow = r.U8()
	c.ptrHigh = r.U8()
	c.baseLow = r.U8()
	c.pageCross = r.Bool()
	c.rmwOrig = r.U8()
	c.branchOff = r.I8()
	c.branchPage = r.Bool()

	c.interruptKind = interruptKind(r.I32())
	c.halted = r.Bool()

	if err := r.Err(); err != nil {
		return err
	}
	c.info = opcodeTable[c.Opcode]
	return nil
}
