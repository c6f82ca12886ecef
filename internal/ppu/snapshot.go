package ppu

import "rambo/internal/snapshot/codec"

// Marshal serialises every piece of PPU state spec.md §6.3 calls for
// (OAM, VRAM, palette, shift registers, internal v/t/x/w) except
// FrameBuffer, which the spec explicitly excludes from snapshots, and
// Cart, which is a live cartridge pointer the caller re-wires after
// Unmarshal.
func (p *PPU) Marshal(w *codec.Writer) {
	w.U8(p.Ctrl)
	w.U8(p.Mask)
	w.U8(p.Status)
	w.U8(p.OAMAddr)

	w.U16(p.V)
	w.U16(p.T)
	w.U8(p.FineX)
	w.Bool(p.W)

	w.Raw(p.OAM[:])
	w.Raw(p.secondaryOAM[:])
	w.Raw(p.VRAM[:])
	w.Raw(p.Palette[:])

	w.U16(p.bgPatternLow)
	w.U16(p.bgPatternHigh)
	w.U16(p.bgAttrLow)
	w.U16(p.bgAttrHigh)
	w.U8(p.ntLatch)
	w.U8(p.atLatch)
	w.U8(p.ptLowLatch)
	w.U8(p.ptHighLatch)

	w.I32(int32(p.spriteCount))
	w.Raw(p.spritePatternLow[:])
	w.Raw(p.spritePatternHigh[:])
	w.Raw(p.spriteAttr[:])
	w.Raw(p.spriteX[:])
	for _, v := range p.spriteIsZero {
		w.Bool(v)
	}
	w.I32(int32(p.oamEvalIndex))
	w.Bool(p.oamEvalDone)
	w.Bool(p.sprite0OnNextLine)
	w.Bool(p.sprite0OnThisLine)

	w.I32(int32(p.Scanline))
	w.U16(p.Cycle)
	w.Bool(p.OddFrame)

	w.Bool(p.FrameComplete)

	w.U8(p.OpenBus)
	w.U8(p.DataBuffer)

	w.U32(p.cpuCycleCount)
	w.Bool(p.WarmupComplete)

	w.Raw(p.maskHistory[:])
	w.I32(int32(p.maskHistoryPos))

	p.VBlank.Marshal(w)
}

func (p *PPU) Unmarshal(r *codec.Reader) error {
	p.Ctrl = r.U8()
	p.Mask = r.U8()
	p.Status = r.U8()
	p.OAMAddr = r.U8()

	p.V = r.U16()
	p.T = r.U16()
	p.FineX = r.U8()
	p.W = r.Bool()

	copy(p.OAM[:], r.Raw(len(p.OAM)))
	copy(p.secondaryOAM[:], r.Raw(len(p.secondaryOAM)))
	copy(p.VRAM[:], r.Raw(len(p.VRAM)))
	copy(p.Palette[:], r.Raw(len(p.Palette)))

	p.bgPatternLow = r.U16()
	p.bgPatternHigh = r.U16()
	p.bgAttrLow = r.U16()
	p.bgAttrHigh = r.U16()
	p.ntLatch = r.U8()
	p.atLatch = r.U8()
	p.ptLowLatch = r.U8()
	p.ptHighLatch = r.U8()

	p.spriteCount = int(r.I32())
	copy(p.spritePatternLow[:], r.Raw(len(p.spritePatternLow)))
	copy(p.spritePatternHigh[:], r.Raw(len(p.spritePatternHigh)))
	copy(p.spriteAttr[:], r.Raw(len(p.spriteAttr)))
	copy(p.spriteX[:], r.Raw(len(p.spriteX)))
	for i := range p.spriteIsZero {
		p.spriteIsZero[i] = r.Bool()
	}
	p.oamEvalIndex = int(r.I32())
	p.oamEvalDone = r.Bool()
	p.sprite0OnNextLine = r.Bool()
	p.sprite0OnThisLine = r.Bool()

	p.Scanline = int16(r.I32())
	p.Cycle = r.U16()
	p.OddFrame = r.Bool()

	p.FrameComplete = r.Bool()

	p.OpenBus = r.U8()
	p.DataBuffer = r.U8()

	p.cpuCycleCount = r.U32()
	p.WarmupComplete = r.Bool()

	copy(p.maskHistory[:], r.Raw(len(p.maskHistory)))
	p.maskHistoryPos = int(r.I32())

	if err := p.VBlank.Unmarshal(r); err != nil {
		return err
	}
	return r.Err()
}
