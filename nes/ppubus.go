package nes

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// PPUBus decodes the PPU address space and owns nametable and palette RAM.
type PPUBus struct {
	// vram holds the 2KB of internal nametable RAM; the upper 2KB is only
	// reachable in four-screen mode, where the board supplies it.
	vram    *RAM
	palette [32]byte
	mapper  Mapper
	mirror  MirrorMode
}

// NewPPUBus creates a new Bus for PPU
func NewPPUBus(vram *RAM, mapper Mapper, mirror MirrorMode) *PPUBus {
	return &PPUBus{vram: vram, mapper: mapper, mirror: mirror}
}

// mirrorLookup is indexed by mirror mode and logical nametable.
var mirrorLookup = [...][4]uint16{
	MirrorHorizontal: {0, 0, 1, 1},
	MirrorVertical:   {0, 1, 0, 1},
	MirrorSingle0:    {0, 0, 0, 0},
	MirrorSingle1:    {1, 1, 1, 1},
	MirrorFour:       {0, 1, 2, 3},
}

// mirrorAddress translates $2000-$3EFF into an offset of vram.
func (b *PPUBus) mirrorAddress(address uint16) uint16 {
	address = (address - 0x2000) % 0x1000
	table := address / 0x0400
	offset := address % 0x0400
	return mirrorLookup[b.mirror][table]*0x0400 + offset
}

// paletteAddress folds the sprite backdrop entries onto the background ones.
func paletteAddress(address uint16) uint16 {
	address %= 32
	if address >= 16 && address%4 == 0 {
		address -= 16
	}
	return address
}

// read reads data.
// Address        Size	  Description
// -------------------------------------
// $0000-$0FFF	  $1000	  Pattern table 0
// $1000-$1FFF	  $1000	  Pattern table 1
// $2000-$23FF	  $0400	  Nametable 0
// $2400-$27FF	  $0400	  Nametable 1
// $2800-$2BFF	  $0400	  Nametable 2
// $2C00-$2FFF	  $0400	  Nametable 3
// $3000-$3EFF	  $0F00	  Mirrors of $2000-$2EFF
// $3F00-$3F1F	  $0020	  Palette RAM indexes
// $3F20-$3FFF	  $00E0	  Mirrors of $3F00-$3F1F
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) read(address uint16) (byte, error) {
	address %= 0x4000
	switch {
	case address < 0x2000:
		return b.mapper.Read(address)
	case address < 0x3F00:
		return b.vram.read(b.mirrorAddress(address)), nil
	default:
		return b.readPalette(address), nil
	}
}

// write writes data.
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
func (b *PPUBus) write(address uint16, data byte) error {
	address %= 0x4000
	switch {
	case address < 0x2000:
		if err := b.mapper.Write(address, data); err != nil {
			if errors.Cause(err) != ErrUnsupportedOperation {
				return err
			}
			glog.Warningf("PPU bus write ignored: %v", err)
		}
	case address < 0x3F00:
		b.vram.write(b.mirrorAddress(address), data)
	default:
		b.writePalette(address, data)
	}
	return nil
}

func (b *PPUBus) readPalette(address uint16) byte {
	return b.palette[paletteAddress(address)]
}

func (b *PPUBus) writePalette(address uint16, data byte) {
	b.palette[paletteAddress(address)] = data
}
