package app

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"rambo/internal/cartridge"
)

// iNESHeader is the 16-byte header every iNES ROM image starts with.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16 KiB units
	CHRROMSize uint8 // in 8 KiB units, 0 means CHR RAM
	Flags6     uint8
	Flags7     uint8
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

// LoadROMFile reads an iNES ROM from disk and parses it into a
// cartridge.Image. iNES parsing is explicitly the core's responsibility
// boundary (spec.md §6.1 says the core consumes a pre-parsed image); this
// is the loader glue that produces one.
func LoadROMFile(path string) (cartridge.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return cartridge.Image{}, err
	}
	defer f.Close()
	return ParseINES(f)
}

// ParseINES decodes an iNES-formatted ROM image from r.
func ParseINES(r io.Reader) (cartridge.Image, error) {
	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return cartridge.Image{}, fmt.Errorf("reading iNES header: %w", err)
	}
	if string(header.Magic[:]) != "NES\x1A" {
		return cartridge.Image{}, errors.New("not an iNES file: bad magic number")
	}
	if header.PRGROMSize == 0 {
		return cartridge.Image{}, errors.New("invalid ROM: PRG ROM size cannot be zero")
	}

	img := cartridge.Image{
		MapperID:   (header.Flags6 >> 4) | (header.Flags7 & 0xF0),
		HasPRGRAM:  true,
		HasBattery: header.Flags6&0x02 != 0,
		FourScreen: header.Flags6&0x08 != 0,
	}
	switch {
	case img.FourScreen:
		img.Mirroring = cartridge.MirrorFourScreen
	case header.Flags6&0x01 != 0:
		img.Mirroring = cartridge.MirrorVertical
	default:
		img.Mirroring = cartridge.MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		// Trainer present: 512 bytes between the header and PRG ROM,
		// unused by this core.
		if _, err := io.CopyN(io.Discard, r, 512); err != nil {
			return cartridge.Image{}, fmt.Errorf("skipping trainer: %w", err)
		}
	}

	img.PRGROM = make([]uint8, int(header.PRGROMSize)*16384)
	if _, err := io.ReadFull(r, img.PRGROM); err != nil {
		return cartridge.Image{}, fmt.Errorf("reading PRG ROM: %w", err)
	}

	if header.CHRROMSize > 0 {
		img.CHRROM = make([]uint8, int(header.CHRROMSize)*8192)
		if _, err := io.ReadFull(r, img.CHRROM); err != nil {
			return cartridge.Image{}, fmt.Errorf("reading CHR ROM: %w", err)
		}
	}
	// img.CHRROM left empty signals CHR RAM to cartridge.New.

	return img, nil
}
