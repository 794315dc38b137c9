package nes

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	chrROMSizeUnit      int  = 0x2000 // 8KB
	prgROMSizeUnit      int  = 0x4000 // 16KB
	inesHeaderSizeBytes int  = 16     // The valid INES header has 16 bytes
	trainerSizeBytes    int  = 512
	msDOSEOF            byte = 0x1A
)

// MirrorMode maps the four logical nametables onto physical VRAM.
type MirrorMode int

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingle0
	MirrorSingle1
	MirrorFour
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingle0:
		return "single-screen 0"
	case MirrorSingle1:
		return "single-screen 1"
	case MirrorFour:
		return "four-screen"
	}
	return "unknown"
}

// Cartridge holds the program and character data of an iNES image.
// https://www.nesdev.org/wiki/INES
type Cartridge struct {
	prgROM []byte
	chrROM []byte
	// chrRAM is set when the image carries no CHR banks and the board provides 8KB of RAM instead.
	chrRAM bool
	mapper byte
	mirror MirrorMode
	flags6 byte // https://www.nesdev.org/wiki/INES#Flags_6
	flags7 byte // https://www.nesdev.org/wiki/INES#Flags_7
}

// isValid checks whether the data starts with the INES magic.
func isValid(data []byte) bool {
	return len(data) >= inesHeaderSizeBytes &&
		data[0] == byte('N') &&
		data[1] == byte('E') &&
		data[2] == byte('S') &&
		data[3] == msDOSEOF
}

// NewCartridge parses an iNES image.
func NewCartridge(data []byte) (*Cartridge, error) {
	if !isValid(data) {
		return nil, errors.Wrap(ErrMalformedROM, "the buffer is not a valid NES format")
	}
	prgBanks := int(data[4])
	chrBanks := int(data[5])
	if prgBanks == 0 {
		return nil, errors.Wrap(ErrMalformedROM, "no PRG-ROM banks")
	}
	c := &Cartridge{flags6: data[6], flags7: data[7]}
	offset := inesHeaderSizeBytes
	if c.flags6&0x04 != 0 {
		offset += trainerSizeBytes
	}
	prgEnd := offset + prgBanks*prgROMSizeUnit
	chrEnd := prgEnd + chrBanks*chrROMSizeUnit
	if len(data) < chrEnd {
		return nil, errors.Wrapf(ErrMalformedROM, "header claims %d PRG and %d CHR banks (%d bytes), got %d bytes",
			prgBanks, chrBanks, chrEnd, len(data))
	}
	c.prgROM = make([]byte, prgEnd-offset)
	copy(c.prgROM, data[offset:prgEnd])
	if chrBanks == 0 {
		c.chrROM = make([]byte, chrROMSizeUnit)
		c.chrRAM = true
	} else {
		c.chrROM = make([]byte, chrEnd-prgEnd)
		copy(c.chrROM, data[prgEnd:chrEnd])
	}
	c.mapper = c.flags7&0xF0 | c.flags6>>4
	switch {
	case c.flags6&0x08 != 0:
		c.mirror = MirrorFour
	case c.flags6&0x01 != 0:
		c.mirror = MirrorVertical
	default:
		c.mirror = MirrorHorizontal
	}
	if glog.V(2) {
		glog.Infof("Cartridge: PRG-ROM=%dx16KB, CHR=%dx8KB (RAM=%t), mapper=%d, mirroring=%s",
			prgBanks, chrBanks, c.chrRAM, c.mapper, c.mirror)
	}
	return c, nil
}

// Mirror returns the nametable mirroring the board is wired for.
func (c *Cartridge) Mirror() MirrorMode {
	return c.mirror
}

// MapperNumber returns the iNES mapper number.
func (c *Cartridge) MapperNumber() byte {
	return c.mapper
}

// PRGBanks returns the number of 16KB program banks.
func (c *Cartridge) PRGBanks() int {
	return len(c.prgROM) / prgROMSizeUnit
}
