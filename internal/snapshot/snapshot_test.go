package snapshot

import (
	"bytes"
	"testing"

	"rambo/internal/cartridge"
	"rambo/internal/machine"
)

func nromCartridge(t *testing.T, reset uint16) *cartridge.Cartridge {
	t.Helper()
	prg := make([]uint8, 0x8000)
	prg[0x7FFC] = uint8(reset)
	prg[0x7FFD] = uint8(reset >> 8)
	cart, err := cartridge.New(cartridge.Image{PRGROM: prg, MapperID: 0, Mirroring: cartridge.MirrorVertical})
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	return cart
}

func TestSaveLoadRoundTripIsByteIdentical(t *testing.T) {
	e := machine.New()
	e.LoadCartridge(nromCartridge(t, 0x8000))
	for i := 0; i < 3; i++ {
		e.RunFrame()
	}

	first, err := Save(e)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := machine.New()
	restored.LoadCartridge(nromCartridge(t, 0x8000))
	if err := Load(first, restored); err != nil {
		t.Fatalf("Load: %v", err)
	}

	second, err := Save(restored)
	if err != nil {
		t.Fatalf("Save after Load: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatal("serialise -> deserialise -> serialise did not produce identical bytes")
	}
}

func TestLoadRestoresCPURegisters(t *testing.T) {
	e := machine.New()
	e.LoadCartridge(nromCartridge(t, 0x8000))
	e.RunFrame()

	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := machine.New()
	restored.LoadCartridge(nromCartridge(t, 0x8000))
	if err := Load(data, restored); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if restored.CPU.PC != e.CPU.PC || restored.CPU.A != e.CPU.A || restored.CPU.SP != e.CPU.SP {
		t.Fatalf("CPU registers did not survive round trip: got PC=%#x A=%#x SP=%#x, want PC=%#x A=%#x SP=%#x",
			restored.CPU.PC, restored.CPU.A, restored.CPU.SP, e.CPU.PC, e.CPU.A, e.CPU.SP)
	}
}

func TestLoadRejectsTruncatedData(t *testing.T) {
	e := machine.New()
	e.LoadCartridge(nromCartridge(t, 0x8000))

	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := Load(data[:len(data)/2], e); err == nil {
		t.Fatal("expected an error loading truncated snapshot data")
	}
}

func TestLoadRejectsCorruptedChecksum(t *testing.T) {
	e := machine.New()
	e.LoadCartridge(nromCartridge(t, 0x8000))

	data, err := Save(e)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data[len(data)-1] ^= 0xFF

	if err := Load(data, e); err == nil {
		t.Fatal("expected an error loading a snapshot with a corrupted checksum")
	}
}
