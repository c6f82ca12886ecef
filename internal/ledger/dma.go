package ledger

// DMAInteraction records the pure timestamps that describe how a DMC DMA
// request interleaves with an in-progress OAM DMA transfer (spec.md
// §4.7's time-sharing rules). Like VBlank, it has no business logic of
// its own: internal/dma decides what happened and when, this just
// remembers it.
type DMAInteraction struct {
	DMCActiveCycle   uint64
	DMCInactiveCycle uint64
	OAMPauseCycle    uint64
	OAMResumeCycle   uint64

	// InterruptedState is kept and serialised with the ledger, but
	// internal/dma neither sets nor reads it; the OAM engine tracks the
	// interrupted byte itself.
	InterruptedState int

	// DuplicationPending is set when a DMC fetch pauses an OAM transfer;
	// the OAM engine writes the held byte twice only if the pause caught
	// a read that had not yet been written. It stays set until Reset.
	DuplicationPending bool
}

// Reset returns the ledger to its power-on state.
func (d *DMAInteraction) Reset() {
	*d = DMAInteraction{}
}
