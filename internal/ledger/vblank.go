// Package ledger implements the "ledger" pattern called for by the core's
// design notes: entities that record only timestamps and flags, expose
// only predicate readers and a reset method, and are mutated exclusively
// by their owning coordinator writing fields directly, never by their
// own methods. Keeping the state machine out of the data structure is
// what lets the VBlank race condition be expressed as a handful of
// comparisons instead of hidden control flow.
package ledger

// VBlank is the single source of truth for the readable PPUSTATUS VBlank
// flag. It stores only the timestamps and occurrence flags that
// determine visibility; internal/ppu's per-dot and register logic
// writes these fields directly as it observes set/clear/read/prevent
// events, since it alone knows the current master cycle.
type VBlank struct {
	LastSetCycle       uint64
	LastClearCycle     uint64
	LastReadCycle      uint64
	PreventVBLSetCycle uint64

	// HasSet/HasCleared/HasRead/HasPrevent distinguish "never happened"
	// from "happened at cycle 0", since 0 is a valid cycle count.
	HasSet      bool
	HasCleared  bool
	HasRead     bool
	HasPrevent  bool
}

// Reset returns the ledger to its power-on state: nothing has been set,
// cleared, read, or prevented yet.
func (v *VBlank) Reset() {
	*v = VBlank{}
}

// IsFlagVisible reports whether the VBlank flag reads as set "now",
// per the invariant in spec.md §3.2: the span must be active (a set has
// happened since the last clear), no read has intervened since the set,
// and the set was not suppressed by the race condition.
func (v *VBlank) IsFlagVisible() bool {
	if !v.HasSet {
		return false
	}
	spanActive := !v.HasCleared || v.LastSetCycle > v.LastClearCycle
	if !spanActive {
		return false
	}
	if v.HasRead && v.LastReadCycle >= v.LastSetCycle {
		return false
	}
	if v.HasPrevent && v.PreventVBLSetCycle == v.LastSetCycle {
		return false
	}
	return true
}
