package app

import (
	"path/filepath"
	"testing"

	"rambo/internal/machine"
)

func TestSaveStateThenLoadStateRestoresCPU(t *testing.T) {
	dir := t.TempDir()
	sm := NewStateManager(dir)
	romPath := "test.nes"

	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	state.RunFrame()
	state.RunFrame()

	if err := sm.SaveState(state, 0, romPath); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if !sm.HasSaveState(0, romPath) {
		t.Fatal("expected slot 0 to report as used after SaveState")
	}

	wantPC, wantA, wantSP := state.CPU.PC, state.CPU.A, state.CPU.SP

	restored := machine.New()
	restored.LoadCartridge(nromCartridge(t, 0x8000))
	if err := sm.LoadState(restored, 0, romPath); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if restored.CPU.PC != wantPC || restored.CPU.A != wantA || restored.CPU.SP != wantSP {
		t.Fatalf("CPU state did not survive save/load round trip: got PC=%#x A=%#x SP=%#x, want PC=%#x A=%#x SP=%#x",
			restored.CPU.PC, restored.CPU.A, restored.CPU.SP, wantPC, wantA, wantSP)
	}
}

func TestLoadStateRejectsMismatchedROM(t *testing.T) {
	dir := t.TempDir()
	sm := NewStateManager(dir)

	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	if err := sm.SaveState(state, 1, "a.nes"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	if err := sm.LoadState(state, 1, "b.nes"); err == nil {
		t.Fatal("expected an error loading a state saved under a different ROM path")
	}
}

func TestLoadStateRejectsEmptySlot(t *testing.T) {
	sm := NewStateManager(t.TempDir())
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))

	if err := sm.LoadState(state, 5, "missing.nes"); err == nil {
		t.Fatal("expected an error loading from an empty slot")
	}
}

func TestDeleteStateRemovesSlot(t *testing.T) {
	dir := t.TempDir()
	sm := NewStateManager(dir)
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	romPath := "test.nes"

	if err := sm.SaveState(state, 2, romPath); err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if err := sm.DeleteState(2, romPath); err != nil {
		t.Fatalf("DeleteState: %v", err)
	}
	if sm.HasSaveState(2, romPath) {
		t.Fatal("expected slot 2 to be empty after DeleteState")
	}
}

func TestExportImportStateRoundTrips(t *testing.T) {
	dir := t.TempDir()
	sm := NewStateManager(dir)
	state := machine.New()
	state.LoadCartridge(nromCartridge(t, 0x8000))
	state.RunFrame()

	exportPath := filepath.Join(dir, "exported.save")
	if err := sm.ExportState(state, exportPath, "test.nes"); err != nil {
		t.Fatalf("ExportState: %v", err)
	}

	restored := machine.New()
	restored.LoadCartridge(nromCartridge(t, 0x8000))
	if err := sm.ImportState(restored, exportPath, "test.nes"); err != nil {
		t.Fatalf("ImportState: %v", err)
	}
	if restored.CPU.PC != state.CPU.PC {
		t.Fatalf("expected imported PC %#x, got %#x", state.CPU.PC, restored.CPU.PC)
	}
}
