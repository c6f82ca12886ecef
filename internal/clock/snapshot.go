package clock

import "rambo/internal/snapshot/codec"

// Marshal serialises the clock's entire state: the elapsed cycle count
// and the power-on phase draw (spec.md §6.3 lists MasterClock as a
// snapshot component in full).
func (mc *MasterClock) Marshal(w *codec.Writer) {
	w.U64(mc.PPUCycles)
	w.U8(mc.InitialPhase)
}

// Unmarshal restores state written by Marshal.
func (mc *MasterClock) Unmarshal(r *codec.Reader) error {
	mc.PPUCycles = r.U64()
	mc.InitialPhase = r.U8()
	return r.Err()
}
