package ledger

import "rambo/internal/snapshot/codec"

// Marshal serialises a VBlank ledger's timestamps and has-happened
// flags.
func (v *VBlank) Marshal(w *codec.Writer) {
	w.U64(v.LastSetCycle)
	w.U64(v.LastClearCycle)
	w.U64(v.LastReadCycle)
	w.U64(v.PreventVBLSetCycle)
	w.Bool(v.HasSet)
	w.Bool(v.HasCleared)
	w.Bool(v.HasRead)
	w.Bool(v.HasPrevent)
}

func (v *VBlank) Unmarshal(r *codec.Reader) error {
	v.LastSetCycle = r.U64()
	v.LastClearCycle = r.U64()
	v.LastReadCycle = r.U64()
	v.PreventVBLSetCycle = r.U64()
	v.HasSet = r.Bool()
	v.HasCleared = r.Bool()
	v.HasRead = r.Bool()
	v.HasPrevent = r.Bool()
	return r.Err()
}

// Marshal serialises a DMAInteraction ledger.
func (d *DMAInteraction) Marshal(w *codec.Writer) {
	w.U64(d.DMCActiveCycle)
	w.U64(d.DMCInactiveCycle)
	w.U64(d.OAMPauseCycle)
	w.U64(d.OAMResumeCycle)
	w.I32(int32(d.InterruptedState))
	w.Bool(d.DuplicationPending)
}

func (d *DMAInteraction) Unmarshal(r *codec.Reader) error {
	d.DMCActiveCycle = r.U64()
	d.DMCInactiveCycle = r.U64()
	d.OAMPauseCycle = r.U64()
	d.OAMResumeCycle = r.U64()
	d.InterruptedState = int(r.I32())
	d.DuplicationPending = r.Bool()
	return r.Err()
}
