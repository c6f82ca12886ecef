package bus

import "rambo/internal/snapshot/codec"

// Marshal serialises the bus's own state (spec.md §6.3's "BusState: open
// bus, controller shift registers" plus the work RAM backing it). PPU,
// APU, Controllers, Cart and DMA are owned elsewhere and serialised by
// their own Marshal methods; internal/snapshot orchestrates all of them
// together.
func (b *Bus) Marshal(w *codec.Writer) {
	w.Raw(b.RAM[:])
	w.U8(b.openBus)
	w.U64(b.cpuCycleCount)
}

func (b *Bus) Unmarshal(r *codec.Reader) error {
	copy(b.RAM[:], r.Raw(len(b.RAM)))
	b.openBus = r.U8()
	b.cpuCycleCount = r.U64()
	return r.Err()
}
