package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rambo/internal/machine"
	"rambo/internal/snapshot"
)

// StateManager owns a directory of numbered save-state slots for a
// running EmulationState. The actual core state is stored as a binary
// snapshot.Save payload; StateManager itself only handles slot
// bookkeeping and the small JSON metadata sidecar describing it.
type StateManager struct {
	saveDirectory string
	maxSlots      int
	initialized   bool
}

// stateFile is the on-disk layout of one save-state slot: metadata the
// slot browser can read without decoding the snapshot payload, plus the
// payload itself.
type stateFile struct {
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	ROMPath     string    `json:"rom_path"`
	SlotNumber  int       `json:"slot_number"`
	Description string    `json:"description"`
	Snapshot    []byte    `json:"snapshot"`
}

// StateSlotInfo describes a save slot for a UI to list without loading
// the full snapshot payload.
type StateSlotInfo struct {
	SlotNumber  int       `json:"slot_number"`
	Used        bool      `json:"used"`
	Timestamp   time.Time `json:"timestamp"`
	ROMPath     string    `json:"rom_path"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	FileSize    int64     `json:"file_size"`
}

// NewStateManager creates a state manager rooted at saveDirectory,
// creating it if necessary.
func NewStateManager(saveDirectory string) *StateManager {
	sm := &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
	}
	if err := sm.initialize(); err != nil {
		fmt.Printf("Warning: state manager initialization failed: %v\n", err)
	}
	return sm
}

func (sm *StateManager) initialize() error {
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %v", err)
	}
	sm.initialized = true
	return nil
}

// SaveState snapshots e's entire core state into the given slot.
func (sm *StateManager) SaveState(e *machine.EmulationState, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	if e == nil {
		return fmt.Errorf("emulation state cannot be nil")
	}

	payload, err := snapshot.Save(e)
	if err != nil {
		return fmt.Errorf("failed to serialise snapshot: %v", err)
	}

	sf := &stateFile{
		Version:     "1",
		Timestamp:   time.Now(),
		ROMPath:     romPath,
		SlotNumber:  slot,
		Description: fmt.Sprintf("Save %s", time.Now().Format("2006-01-02 15:04:05")),
		Snapshot:    payload,
	}

	return sm.saveToFile(sf, sm.getSlotFilePath(slot, romPath))
}

// LoadState restores e's entire core state from the given slot. e must
// already have the same cartridge loaded the snapshot was taken
// against; snapshot.Load re-wires PPU/DMA cross-references but does not
// re-parse or re-insert a cartridge.
func (sm *StateManager) LoadState(e *machine.EmulationState, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d (must be 0-%d)", slot, sm.maxSlots-1)
	}
	if e == nil {
		return fmt.Errorf("emulation state cannot be nil")
	}

	filePath := sm.getSlotFilePath(slot, romPath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}

	sf, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to load state: %v", err)
	}
	if err := sm.validateStateFile(sf, romPath); err != nil {
		return fmt.Errorf("invalid save state: %v", err)
	}

	if err := snapshot.Load(sf.Snapshot, e); err != nil {
		return fmt.Errorf("failed to restore state: %v", err)
	}
	return nil
}

func (sm *StateManager) saveToFile(sf *stateFile, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %v", err)
	}
	data, err := json.Marshal(sf)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %v", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %v", err)
	}
	return nil
}

func (sm *StateManager) loadFromFile(filePath string) (*stateFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	var sf stateFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %v", err)
	}
	return &sf, nil
}

func (sm *StateManager) validateStateFile(sf *stateFile, currentROMPath string) error {
	if sf.Version == "" {
		return fmt.Errorf("missing version information")
	}
	if sf.ROMPath != currentROMPath {
		return fmt.Errorf("save state is for a different ROM")
	}
	return nil
}

func (sm *StateManager) getSlotFilePath(slot int, romPath string) string {
	romName := filepath.Base(romPath)
	romNameWithoutExt := romName[:len(romName)-len(filepath.Ext(romName))]
	fileName := fmt.Sprintf("%s_slot_%d.save", romNameWithoutExt, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// GetSlotInfo returns metadata for every slot, used or not.
func (sm *StateManager) GetSlotInfo(romPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)
	for i := 0; i < sm.maxSlots; i++ {
		slotInfo := StateSlotInfo{SlotNumber: i}
		filePath := sm.getSlotFilePath(i, romPath)
		if stat, err := os.Stat(filePath); err == nil {
			slotInfo.Used = true
			slotInfo.FilePath = filePath
			slotInfo.FileSize = stat.Size()
			slotInfo.Timestamp = stat.ModTime()
			if sf, err := sm.loadFromFile(filePath); err == nil {
				slotInfo.ROMPath = sf.ROMPath
				slotInfo.Description = sf.Description
				slotInfo.Timestamp = sf.Timestamp
			}
		}
		slots[i] = slotInfo
	}
	return slots
}

// DeleteState removes a save slot's file.
func (sm *StateManager) DeleteState(slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d", slot)
	}
	filePath := sm.getSlotFilePath(slot, romPath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}
	return os.Remove(filePath)
}

// HasSaveState reports whether a slot is occupied.
func (sm *StateManager) HasSaveState(slot int, romPath string) bool {
	if slot < 0 || slot >= sm.maxSlots {
		return false
	}
	_, err := os.Stat(sm.getSlotFilePath(slot, romPath))
	return err == nil
}

func (sm *StateManager) GetMaxSlots() int { return sm.maxSlots }

func (sm *StateManager) SetMaxSlots(slots int) {
	if slots > 0 {
		sm.maxSlots = slots
	}
}

func (sm *StateManager) GetSaveDirectory() string { return sm.saveDirectory }

func (sm *StateManager) SetSaveDirectory(directory string) error {
	sm.saveDirectory = directory
	return sm.initialize()
}

// ExportState writes a snapshot to an arbitrary file outside the slot
// scheme, for sharing or backup.
func (sm *StateManager) ExportState(e *machine.EmulationState, filePath string, romPath string) error {
	payload, err := snapshot.Save(e)
	if err != nil {
		return fmt.Errorf("failed to serialise snapshot: %v", err)
	}
	sf := &stateFile{
		Version:     "1",
		Timestamp:   time.Now(),
		ROMPath:     romPath,
		SlotNumber:  -1,
		Description: fmt.Sprintf("Export %s", time.Now().Format("2006-01-02 15:04:05")),
		Snapshot:    payload,
	}
	return sm.saveToFile(sf, filePath)
}

// ImportState restores e from an arbitrary snapshot file.
func (sm *StateManager) ImportState(e *machine.EmulationState, filePath string, romPath string) error {
	sf, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to import state: %v", err)
	}
	if err := sm.validateStateFile(sf, romPath); err != nil {
		return fmt.Errorf("invalid imported state: %v", err)
	}
	return snapshot.Load(sf.Snapshot, e)
}

// Cleanup releases the state manager; present for symmetry with the
// rest of the core's component lifecycle.
func (sm *StateManager) Cleanup() error {
	sm.initialized = false
	return nil
}

// StateManagerStats summarises slot usage for a status display.
type StateManagerStats struct {
	MaxSlots      int    `json:"max_slots"`
	UsedSlots     int    `json:"used_slots"`
	FreeSlots     int    `json:"free_slots"`
	TotalSize     int64  `json:"total_size"`
	SaveDirectory string `json:"save_directory"`
	Initialized   bool   `json:"initialized"`
}

func (sm *StateManager) GetStateManagerStats(romPath string) StateManagerStats {
	slots := sm.GetSlotInfo(romPath)
	var usedSlots int
	var totalSize int64
	for _, slot := range slots {
		if slot.Used {
			usedSlots++
			totalSize += slot.FileSize
		}
	}
	return StateManagerStats{
		MaxSlots:      sm.maxSlots,
		UsedSlots:     usedSlots,
		FreeSlots:     sm.maxSlots - usedSlots,
		TotalSize:     totalSize,
		SaveDirectory: sm.saveDirectory,
		Initialized:   sm.initialized,
	}
}
