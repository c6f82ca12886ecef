// Package snapshot serialises an entire EmulationState to a byte slice
// and restores one from it (spec.md §6.3). The format is a fixed header
// followed by one length-prefixed, checksummed component per subsystem,
// in a deterministic order rather than a map, so that the testable
// property "serialise -> deserialise -> serialise produces identical
// bytes" holds: Go map iteration order is randomised and would break
// that property even though the component set never changes.
package snapshot

import (
	"encoding/binary"
	"hash/crc32"

	"rambo/internal/machine"
	"rambo/internal/rnes"
	"rambo/internal/snapshot/codec"
)

// magic identifies a snapshot file; version guards against format
// changes across releases of this core.
const (
	magic   = "RMBOSNAP"
	version = 1
)

// componentTag identifies each subsystem's payload within the TLV body.
// Order here is the serialisation order and must never depend on map
// iteration.
type componentTag uint8

const (
	tagClock componentTag = iota
	tagCPU
	tagPPU
	tagAPU
	tagBus
	tagControllers
	tagDMA
	tagCartridge
)

var allTags = []componentTag{
	tagClock, tagCPU, tagPPU, tagAPU, tagBus, tagControllers, tagDMA, tagCartridge,
}

// Save serialises e into a self-describing, checksummed byte slice.
// FrameBuffer and audio sample buffers are never part of the payload:
// each component's own Marshal method already omits them.
func Save(e *machine.EmulationState) ([]byte, error) {
	out := make([]byte, 0, 64*1024)
	out = append(out, magic...)
	out = appendU32(out, version)

	for _, tag := range allTags {
		w := codec.NewWriter()
		marshalComponent(e, tag, w)
		payload := w.Bytes()

		out = append(out, byte(tag))
		out = appendU32(out, uint32(len(payload)))
		out = append(out, payload...)
		out = appendU32(out, crc32.ChecksumIEEE(payload))
	}

	return out, nil
}

// Load restores e from data written by Save. It fully replaces e's core
// state; e must already have the same cartridge loaded (Save does not
// persist PRG/CHR ROM contents, only RAM and mapper substate), since a
// snapshot is only meaningful alongside the ROM it was taken against.
func Load(data []byte, e *machine.EmulationState) error {
	if len(data) < len(magic)+4 {
		return rnes.ErrSnapshotTruncated
	}
	if string(data[:len(magic)]) != magic {
		return rnes.ErrSnapshotVersion
	}
	data = data[len(magic):]
	gotVersion := binary.LittleEndian.Uint32(data)
	if gotVersion != version {
		return rnes.ErrSnapshotVersion
	}
	data = data[4:]

	for _, wantTag := range allTags {
		if len(data) < 1+4 {
			return rnes.ErrSnapshotTruncated
		}
		tag := componentTag(data[0])
		data = data[1:]
		length := binary.LittleEndian.Uint32(data)
		data = data[4:]
		if tag != wantTag || uint64(len(data)) < uint64(length)+4 {
			return rnes.ErrSnapshotTruncated
		}

		payload := data[:length]
		data = data[length:]
		wantSum := binary.LittleEndian.Uint32(data)
		data = data[4:]
		if crc32.ChecksumIEEE(payload) != wantSum {
			return rnes.ErrSnapshotChecksum
		}

		if err := unmarshalComponent(e, tag, codec.NewReader(payload)); err != nil {
			return err
		}
	}

	rewireAfterLoad(e)
	return nil
}

func marshalComponent(e *machine.EmulationState, tag componentTag, w *codec.Writer) {
	switch tag {
	case tagClock:
		e.Clock.Marshal(w)
	case tagCPU:
		e.CPU.Marshal(w)
	case tagPPU:
		e.PPU.Marshal(w)
	case tagAPU:
		e.APU.Marshal(w)
	case tagBus:
		e.Bus.Marshal(w)
	case tagControllers:
		e.Controllers.Marshal(w)
	case tagDMA:
		e.Bus.DMA.Marshal(w)
	case tagCartridge:
		if e.Cart != nil {
			e.Cart.Marshal(w)
		}
	}
}

func unmarshalComponent(e *machine.EmulationState, tag componentTag, r *codec.Reader) error {
	switch tag {
	case tagClock:
		return e.Clock.Unmarshal(r)
	case tagCPU:
		return e.CPU.Unmarshal(r)
	case tagPPU:
		return e.PPU.Unmarshal(r)
	case tagAPU:
		return e.APU.Unmarshal(r)
	case tagBus:
		return e.Bus.Unmarshal(r)
	case tagControllers:
		return e.Controllers.Unmarshal(r)
	case tagDMA:
		return e.Bus.DMA.Unmarshal(r)
	case tagCartridge:
		if e.Cart != nil {
			return e.Cart.Unmarshal(r)
		}
		return r.Err()
	}
	return nil
}

// rewireAfterLoad restores the handful of pieces of state that cannot be
// serialised because they are live pointers or closures rather than
// data: the PPU's cartridge-mirroring adapter and, if a DMC fetch was
// in flight at snapshot time, the DMA engine's completion callback into
// the APU.
func rewireAfterLoad(e *machine.EmulationState) {
	if e.Cart != nil {
		e.Bus.SetCartridge(e.Cart)
	}
	if e.Bus.DMA.Dmc.Active() {
		e.Bus.DMA.Dmc.RewireCompletion(e.APU.CompleteDMCFetch)
	}
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}
