// Package cartridge implements cartridge loading and the closed set of
// mapper variants the core supports: NROM, MMC1, UxROM, CNROM, MMC3.
package cartridge

import (
	"rambo/internal/rnes"
	"rambo/internal/snapshot/codec"
)

// Mirror is the nametable mirroring mode a cartridge selects for the
// PPU's 2 KiB of internal VRAM (or, for FourScreen, supplies its own).
type Mirror uint8

const (
	MirrorHorizontal Mirror = iota
	MirrorVertical
	MirrorSingle0
	MirrorSingle1
	MirrorFourScreen
)

// Image is the pre-parsed ROM data the core consumes. iNES header
// parsing itself is out of the core's scope (spec.md §6.1); a loader
// external to this package (internal/app) produces an Image and hands
// it to New.
type Image struct {
	PRGROM     []uint8
	CHRROM     []uint8 // empty means CHR RAM
	MapperID   uint8
	Mirroring  Mirror
	HasPRGRAM  bool
	HasBattery bool
	FourScreen bool
}

// Mapper is the interface every bank-switching variant implements.
// Mapper selection is a closed, small set dispatched once at load time
// (spec.md §9's "tagged variant over vtable" note applies at the level
// of *which* mapper gets constructed; after that, ordinary Go interface
// dispatch is fine since there is exactly one call site per access, not
// a hot per-pixel loop).
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, value uint8)
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)

	// TickIRQ advances mapper-internal IRQ logic that is clocked by CPU
	// cycles rather than PPU address edges. Only MMC3-like mappers with
	// a cycle-driven component would use this; most are no-ops.
	TickIRQ()

	// PPUA12Rising notifies the mapper of a rising edge on PPU address
	// line A12, the clock source for the MMC3 scanline counter.
	PPUA12Rising()

	// IRQPending reports whether the mapper is asserting its IRQ line.
	IRQPending() bool

	// AcknowledgeIRQ clears the mapper's IRQ line (MMC3: write to $E000).
	AcknowledgeIRQ()

	// Mirror returns the mapper's current nametable mirroring mode
	// (some mappers, like MMC1, can change it at runtime).
	Mirror() Mirror

	Reset()

	// Marshal/Unmarshal serialise the mapper's bank-select registers and
	// any other mutable state. Fields derived purely from the ROM image
	// (bank counts, fixed mirroring) are not serialised since the
	// cartridge the mapper is attached to is already reconstructed from
	// the same ROM before a snapshot is loaded.
	Marshal(w *codec.Writer)
	Unmarshal(r *codec.Reader) error
}

// Cartridge owns the ROM images, any PRG RAM, and the selected mapper.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8 // ROM or RAM depending on hasCHRRAM
	prgRAM [0x2000]uint8

	hasCHRRAM  bool
	hasBattery bool
	mapperID   uint8

	mapper Mapper
}

// New constructs a Cartridge from a pre-parsed ROM image and selects the
// matching mapper. It returns rnes.ErrUnsupportedMapper for any mapper ID
// outside the closed set this core supports.
func New(img Image) (*Cartridge, error) {
	if len(img.PRGROM) == 0 {
		return nil, rnes.ErrEmptyPRG
	}
	c := &Cartridge{
		prgROM:     img.PRGROM,
		hasBattery: img.HasBattery,
		mapperID:   img.MapperID,
	}
	if len(img.CHRROM) == 0 {
		c.chrROM = make([]uint8, 0x2000)
		c.hasCHRRAM = true
	} else {
		c.chrROM = img.CHRROM
	}

	mapper, err := newMapper(img.MapperID, c, img.Mirroring)
	if err != nil {
		return nil, err
	}
	c.mapper = mapper
	return c, nil
}

func newMapper(id uint8, c *Cartridge, mirror Mirror) (Mapper, error) {
	switch id {
	case 0:
		return newNROM(c, mirror), nil
	case 1:
		return newMMC1(c, mirror), nil
	case 2:
		return newUxROM(c, mirror), nil
	case 3:
		return newCNROM(c, mirror), nil
	case 4:
		return newMMC3(c, mirror), nil
	default:
		return nil, rnes.ErrUnsupportedMapper
	}
}

func (c *Cartridge) CPURead(addr uint16) uint8  { return c.mapper.CPURead(addr) }
func (c *Cartridge) CPUWrite(addr uint16, v uint8) { c.mapper.CPUWrite(addr, v) }
func (c *Cartridge) PPURead(addr uint16) uint8  { return c.mapper.PPURead(addr) }
func (c *Cartridge) PPUWrite(addr uint16, v uint8) { c.mapper.PPUWrite(addr, v) }
func (c *Cartridge) TickIRQ()                   { c.mapper.TickIRQ() }
func (c *Cartridge) PPUA12Rising()              { c.mapper.PPUA12Rising() }
func (c *Cartridge) IRQPending() bool           { return c.mapper.IRQPending() }
func (c *Cartridge) AcknowledgeIRQ()            { c.mapper.AcknowledgeIRQ() }
func (c *Cartridge) Mirror() Mirror             { return c.mapper.Mirror() }
func (c *Cartridge) Reset()                     { c.mapper.Reset() }

// Marshal serialises PRG RAM, CHR RAM (only when the cartridge has no
// CHR ROM of its own, since ROM CHR is already present in the loaded
// Image and never mutates), and the mapper's bank-select substate
// (spec.md §6.3's "cartridge's mapper substate and PRG RAM").
func (c *Cartridge) Marshal(w *codec.Writer) {
	w.Raw(c.prgRAM[:])
	if c.hasCHRRAM {
		w.Raw(c.chrROM)
	}
	c.mapper.Marshal(w)
}

func (c *Cartridge) Unmarshal(r *codec.Reader) error {
	copy(c.prgRAM[:], r.Raw(len(c.prgRAM)))
	if c.hasCHRRAM {
		copy(c.chrROM, r.Raw(len(c.chrROM)))
	}
	if err := c.mapper.Unmarshal(r); err != nil {
		return err
	}
	return r.Err()
}

// BatteryRAM exposes the PRG RAM slice for persistence when the
// cartridge declares a battery, so cmd/rambo can load/save it alongside
// the ROM. Returns nil when the cartridge has no battery.
func (c *Cartridge) BatteryRAM() []uint8 {
	if !c.hasBattery {
		return nil
	}
	return c.prgRAM[:]
}
