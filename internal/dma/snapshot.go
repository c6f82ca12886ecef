package dma

import "rambo/internal/snapshot/codec"

func (o *OamDMA) Marshal(w *codec.Writer) {
	w.Bool(o.active)
	w.U8(o.sourcePage)
	w.I32(int32(o.index))
	w.Bool(o.haveByte)
	w.U8(o.pendingByte)
	w.I32(int32(o.alignLeft))
	w.Bool(o.paused)
	w.Bool(o.lastReadUnwritten)
}

func (o *OamDMA) Unmarshal(r *codec.Reader) error {
	o.active = r.Bool()
	o.sourcePage = r.U8()
	o.index = int(r.I32())
	o.haveByte = r.Bool()
	o.pendingByte = r.U8()
	o.alignLeft = int(r.I32())
	o.paused = r.Bool()
	o.lastReadUnwritten = r.Bool()
	return r.Err()
}

// Marshal serialises the stall countdown and pending sample address.
// onComplete is a closure into internal/machine and is not serialised;
// the caller re-wires it after Unmarshal if Active() is still true.
func (d *DmcDMA) Marshal(w *codec.Writer) {
	w.Bool(d.active)
	w.I32(int32(d.stallCyclesRemaining))
	w.U16(d.sampleAddr)
}

func (d *DmcDMA) Unmarshal(r *codec.Reader) error {
	d.active = r.Bool()
	d.stallCyclesRemaining = int(r.I32())
	d.sampleAddr = r.U16()
	d.onComplete = nil
	return r.Err()
}

// Marshal serialises both DMA engines, the time-sharing ledger, and the
// one-cycle post-DMC alignment flag (spec.md §6.3: OamDma, DmcDma and
// DmaInteractionLedger are all listed snapshot components).
func (co *Coordinator) Marshal(w *codec.Writer) {
	co.Oam.Marshal(w)
	co.Dmc.Marshal(w)
	co.Ledger.Marshal(w)
	w.Bool(co.postDmcAlignment)
}

func (co *Coordinator) Unmarshal(r *codec.Reader) error {
	if err := co.Oam.Unmarshal(r); err != nil {
		return err
	}
	if err := co.Dmc.Unmarshal(r); err != nil {
		return err
	}
	if err := co.Ledger.Unmarshal(r); err != nil {
		return err
	}
	co.postDmcAlignment = r.Bool()
	return r.Err()
}
