package nes

import (
	"image"
	"image/color"

	"github.com/golang/glog"
)

// NES PPU generates 256x240 pixels.
const (
	width  = 256
	height = 240
)

// Scanline and dot layout of an NTSC frame.
const (
	dotsPerLine      = 341
	visibleLines     = 240
	vblankLine       = 241
	preRenderLine    = 261
	dmaStallCycles   = 513
	spritesPerLine   = 8
	oamSprites       = 64
	oamSize          = 256
	lastDotOfLine    = dotsPerLine - 1
	patternTableSize = 0x1000
)

// Palatte colors borrowed from "RGB".
// Reference: https://emulation.gametechwiki.com/index.php/Famicom_color_palette
var colors = [64]color.RGBA{
	{0x6D, 0x6D, 0x6D, 255}, {0x00, 0x24, 0x92, 255}, {0x00, 0x00, 0xDB, 255}, {0x6D, 0x49, 0xDB, 255},
	{0x92, 0x00, 0x6D, 255}, {0xB6, 0x00, 0x6D, 255}, {0xB6, 0x24, 0x00, 255}, {0x92, 0x49, 0x00, 255},
	{0x6D, 0x49, 0x00, 255}, {0x24, 0x49, 0x00, 255}, {0x00, 0x6D, 0x24, 255}, {0x00, 0x92, 0x00, 255},
	{0x00, 0x49, 0x49, 255}, {0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x00, 255},
	{0xB6, 0xB6, 0xB6, 255}, {0x00, 0x6D, 0xDB, 255}, {0x00, 0x49, 0xFF, 255}, {0x92, 0x00, 0xFF, 255},
	{0xB6, 0x00, 0xFF, 255}, {0xFF, 0x00, 0x92, 255}, {0xFF, 0x00, 0x00, 255}, {0xDB, 0x6D, 0x00, 255},
	{0x92, 0x6D, 0x00, 255}, {0x24, 0x92, 0x00, 255}, {0x00, 0x92, 0x00, 255}, {0x00, 0xB6, 0x6D, 255},
	{0x00, 0x92, 0x92, 255}, {0x24, 0x24, 0x24, 255}, {0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x00, 255},
	{0xFF, 0xFF, 0xFF, 255}, {0x6D, 0xB6, 0xFF, 255}, {0x92, 0x92, 0xFF, 255}, {0xDB, 0x6D, 0xFF, 255},
	{0xFF, 0x00, 0xFF, 255}, {0xFF, 0x6D, 0xFF, 255}, {0xFF, 0x92, 0x00, 255}, {0xFF, 0xB6, 0x00, 255},
	{0xDB, 0xDB, 0x00, 255}, {0x6D, 0xDB, 0x00, 255}, {0x00, 0xFF, 0x00, 255}, {0x49, 0xFF, 0xDB, 255},
	{0x00, 0xFF, 0xFF, 255}, {0x49, 0x49, 0x49, 255}, {0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x00, 255},
	{0xFF, 0xFF, 0xFF, 255}, {0xB6, 0xDB, 0xFF, 255}, {0xDB, 0xB6, 0xFF, 255}, {0xFF, 0xB6, 0xFF, 255},
	{0xFF, 0x92, 0xFF, 255}, {0xFF, 0xB6, 0xB6, 255}, {0xFF, 0xDB, 0x92, 255}, {0xFF, 0xFF, 0x49, 255},
	{0xFF, 0xFF, 0x6D, 255}, {0xB6, 0xFF, 0x49, 255}, {0x92, 0xFF, 0x6D, 255}, {0x49, 0xFF, 0xDB, 255},
	{0x92, 0xDB, 0xFF, 255}, {0x92, 0x92, 0x92, 255}, {0x00, 0x00, 0x00, 255}, {0x00, 0x00, 0x00, 255},
}

// PPU stands for Picture Processing Unit, renders 256px x 240px image for a screen.
// PPU is 3x faster than CPU and rendering 1 frame requires 341x262=89342 cycles (Each cycles writes a dot).
//
// This PPU implementation includes PPU regsters as well.
// References:
//   https://www.nesdev.org/wiki/PPU
//   https://www.nesdev.org/wiki/PPU_rendering
//   https://www.nesdev.org/wiki/File:Ntsc_timing.png
//   https://pgate1.at-ninja.jp/NES_on_FPGA/nes_ppu.htm (In Japanese)
type PPU struct {
	bus *PPUBus
	cpu *CPU

	// frames are swapped at VBlank by toggling front, the other one is being drawn.
	frames [2]*image.RGBA
	front  int

	// cycle, scanline indicates which pixel is processing.
	cycle    int
	scanline int
	frame    uint64

	// Registers for PPU.
	// Reference:
	//   https://www.nesdev.org/wiki/PPU_registers
	//   https://www.nesdev.org/wiki/PPU_scrolling
	v uint16 // Current VRAM address (15bit)
	t uint16 // Temporary VRAM address (15bit)
	x byte   // Fine X scroll (3bit)
	w bool   // First or second write toggle
	f byte   // Even/odd frame flag

	// register keeps the last written value, its low 5 bits read back from PPUSTATUS.
	register byte

	nmiOccurred    bool
	nmiOutput      bool
	nmiPrevious    bool
	nmiDelay       int
	nmiDelayConfig int

	// Background fetch latches and the shift buffer, 4 bits per pixel.
	nameTableByte      byte
	attributeTableByte byte
	lowTileByte        byte
	highTileByte       byte
	tileData           uint64

	// Sprites of the current scanline.
	spriteCount      int
	spritePatterns   [spritesPerLine]uint32
	spritePositions  [spritesPerLine]byte
	spritePriorities [spritesPerLine]byte
	spriteIndexes    [spritesPerLine]byte

	// $2000 PPUCTRL
	flagNameTable       byte // 0: $2000; 1: $2400; 2: $2800; 3: $2C00
	flagIncrement       byte // 0: add 1; 1: add 32
	flagSpriteTable     byte // 0: $0000; 1: $1000; ignored in 8x16 mode
	flagBackgroundTable byte // 0: $0000; 1: $1000
	flagSpriteSize      byte // 0: 8x8; 1: 8x16
	flagMasterSlave     byte // 0: read EXT; 1: write EXT

	// $2001 PPUMASK
	flagGrayscale          bool
	flagShowLeftBackground bool
	flagShowLeftSprites    bool
	flagShowBackground     bool
	flagShowSprites        bool
	flagRedTint            bool
	flagGreenTint          bool
	flagBlueTint           bool

	// $2002 PPUSTATUS
	flagSpriteZeroHit  byte
	flagSpriteOverflow byte

	// $2003 OAMADDR, $2004 OAMDATA
	oamAddress byte
	oamData    [oamSize]byte

	// buffer for PPUDATA $2007
	bufferedData byte
}

// NewPPU creates a PPU. nmiDelay is the number of dots between the NMI
// line rising and the CPU being interrupted.
func NewPPU(bus *PPUBus, nmiDelay int) *PPU {
	if nmiDelay < 1 {
		nmiDelay = 1
	}
	p := &PPU{
		bus:            bus,
		nmiDelayConfig: nmiDelay,
	}
	for i := range p.frames {
		p.frames[i] = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	p.Reset()
	return p
}

// Reset starts the PPU at the end of the post-render line.
func (p *PPU) Reset() {
	p.cycle = lastDotOfLine
	p.scanline = visibleLines
	p.frame = 0
	p.f = 0
	p.w = false
	p.nmiOccurred = false
	p.nmiPrevious = false
	p.nmiDelay = 0
	p.writePPUCTRL(0)
	p.writePPUMASK(0)
	p.writeOAMADDR(0)
}

// Frame returns the last completed frame. It is stable until the next VBlank.
func (p *PPU) Frame() *image.RGBA {
	return p.frames[p.front]
}

func (p *PPU) back() *image.RGBA {
	return p.frames[p.front^1]
}

// FrameCount returns the number of frames started since reset.
func (p *PPU) FrameCount() uint64 {
	return p.frame
}

// Position returns the current scanline and dot.
func (p *PPU) Position() (scanline, dot int) {
	return p.scanline, p.cycle
}

func (p *PPU) renderingEnabled() bool {
	return p.flagShowBackground || p.flagShowSprites
}

// tick advances the dot, scanline and frame counters and delivers a pending NMI.
func (p *PPU) tick() {
	if p.nmiDelay > 0 {
		p.nmiDelay--
		if p.nmiDelay == 0 && p.nmiOutput && p.nmiOccurred {
			p.cpu.TriggerNMI()
		}
	}
	// Odd frames skip the last dot of the pre-render line while rendering.
	if p.renderingEnabled() && p.f == 1 && p.scanline == preRenderLine && p.cycle == lastDotOfLine-1 {
		p.cycle = 0
		p.scanline = 0
		p.frame++
		p.f ^= 1
		return
	}
	p.cycle++
	if p.cycle > lastDotOfLine {
		p.cycle = 0
		p.scanline++
		if p.scanline > preRenderLine {
			p.scanline = 0
			p.frame++
			p.f ^= 1
		}
	}
}

// Step emulates a dot. It reports true when a frame was completed and swapped to the front.
func (p *PPU) Step() (bool, error) {
	p.tick()

	preLine := p.scanline == preRenderLine
	visibleLine := p.scanline < visibleLines
	renderLine := preLine || visibleLine
	preFetchCycle := p.cycle >= 321 && p.cycle <= 336
	visibleCycle := p.cycle >= 1 && p.cycle <= 256
	fetchCycle := preFetchCycle || visibleCycle

	if p.renderingEnabled() {
		if visibleLine && visibleCycle {
			p.renderPixel()
		}
		if renderLine && fetchCycle {
			p.tileData <<= 4
			var err error
			switch p.cycle % 8 {
			case 1:
				err = p.fetchNameTableByte()
			case 3:
				err = p.fetchAttributeTableByte()
			case 5:
				err = p.fetchLowTileByte()
			case 7:
				err = p.fetchHighTileByte()
			case 0:
				p.storeTileData()
			}
			if err != nil {
				return false, err
			}
		}
		if preLine && p.cycle >= 280 && p.cycle <= 304 {
			p.copyY()
		}
		if renderLine {
			if fetchCycle && p.cycle%8 == 0 {
				p.incrementX()
			}
			if p.cycle == 256 {
				p.incrementY()
			}
			if p.cycle == 257 {
				p.copyX()
			}
		}
		if p.cycle == 257 {
			if visibleLine {
				if err := p.evaluateSprites(); err != nil {
					return false, err
				}
			} else {
				p.spriteCount = 0
			}
		}
	}

	completed := false
	if p.scanline == vblankLine && p.cycle == 1 {
		p.setVerticalBlank()
		completed = true
	}
	if preLine && p.cycle == 1 {
		p.clearVerticalBlank()
		p.flagSpriteZeroHit = 0
		p.flagSpriteOverflow = 0
	}
	return completed, nil
}

func (p *PPU) setVerticalBlank() {
	p.front ^= 1
	p.nmiOccurred = true
	p.nmiChange()
	if glog.V(2) {
		glog.Infof("PPU frame %d completed", p.frame)
	}
}

func (p *PPU) clearVerticalBlank() {
	p.nmiOccurred = false
	p.nmiChange()
}

// nmiChange arms the delayed NMI on a rising edge of (NMI enable AND VBlank).
func (p *PPU) nmiChange() {
	nmi := p.nmiOutput && p.nmiOccurred
	if nmi && !p.nmiPrevious {
		p.nmiDelay = p.nmiDelayConfig
	}
	p.nmiPrevious = nmi
}

func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline
	background := p.backgroundPixel()
	i, sprite := p.spritePixel()
	if x < 8 && !p.flagShowLeftBackground {
		background = 0
	}
	if x < 8 && !p.flagShowLeftSprites {
		sprite = 0
	}
	b := background%4 != 0
	s := sprite%4 != 0
	var c byte
	switch {
	case !b && !s:
		c = 0
	case !b && s:
		c = sprite | 0x10
	case b && !s:
		c = background
	default:
		if p.spriteIndexes[i] == 0 && x < 255 {
			p.flagSpriteZeroHit = 1
		}
		if p.spritePriorities[i] == 0 {
			c = sprite | 0x10
		} else {
			c = background
		}
	}
	index := p.bus.readPalette(uint16(c)) % 64
	if p.flagGrayscale {
		index &= 0x30
	}
	p.back().SetRGBA(x, y, colors[index])
}

func (p *PPU) backgroundPixel() byte {
	if !p.flagShowBackground {
		return 0
	}
	// The upper 32 bits hold the tile being drawn.
	data := uint32(p.tileData>>32) >> ((7 - p.x) * 4)
	return byte(data & 0x0F)
}

func (p *PPU) spritePixel() (byte, byte) {
	if !p.flagShowSprites {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		offset := (p.cycle - 1) - int(p.spritePositions[i])
		if offset < 0 || offset > 7 {
			continue
		}
		offset = 7 - offset
		c := byte((p.spritePatterns[i] >> byte(offset*4)) & 0x0F)
		if c%4 == 0 {
			continue
		}
		return byte(i), c
	}
	return 0, 0
}

func (p *PPU) fetchNameTableByte() error {
	data, err := p.bus.read(0x2000 | (p.v & 0x0FFF))
	if err != nil {
		return err
	}
	p.nameTableByte = data
	return nil
}

func (p *PPU) fetchAttributeTableByte() error {
	v := p.v
	address := 0x23C0 | (v & 0x0C00) | ((v >> 4) & 0x38) | ((v >> 2) & 0x07)
	shift := ((v >> 4) & 4) | (v & 2)
	data, err := p.bus.read(address)
	if err != nil {
		return err
	}
	p.attributeTableByte = ((data >> shift) & 3) << 2
	return nil
}

func (p *PPU) tileAddress() uint16 {
	fineY := (p.v >> 12) & 7
	return patternTableSize*uint16(p.flagBackgroundTable) + uint16(p.nameTableByte)*16 + fineY
}

func (p *PPU) fetchLowTileByte() error {
	data, err := p.bus.read(p.tileAddress())
	if err != nil {
		return err
	}
	p.lowTileByte = data
	return nil
}

func (p *PPU) fetchHighTileByte() error {
	data, err := p.bus.read(p.tileAddress() + 8)
	if err != nil {
		return err
	}
	p.highTileByte = data
	return nil
}

// storeTileData packs the 8 pixels of the fetched tile row into the low half of tileData.
func (p *PPU) storeTileData() {
	var data uint32
	for i := 0; i < 8; i++ {
		a := p.attributeTableByte
		p1 := (p.lowTileByte & 0x80) >> 7
		p2 := (p.highTileByte & 0x80) >> 6
		p.lowTileByte <<= 1
		p.highTileByte <<= 1
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	p.tileData |= uint64(data)
}

// copyX copies the horizontal bits of t into v.
func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

// copyY copies the vertical bits of t into v.
func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// incrementX increments coarse X, wrapping into the next horizontal nametable.
func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &= 0xFFE0
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY increments fine Y, then coarse Y. Row 29 wraps into the next
// vertical nametable, rows 30 and 31 (attribute memory) wrap without switching.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &= 0x8FFF
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v & 0xFC1F) | (y << 5)
}

// evaluateSprites selects up to 8 sprites on the current scanline.
func (p *PPU) evaluateSprites() error {
	h := 8
	if p.flagSpriteSize == 1 {
		h = 16
	}
	count := 0
	for i := 0; i < oamSprites; i++ {
		y := p.oamData[i*4+0]
		a := p.oamData[i*4+2]
		x := p.oamData[i*4+3]
		row := p.scanline - int(y)
		if row < 0 || row >= h {
			continue
		}
		if count < spritesPerLine {
			pattern, err := p.fetchSpritePattern(i, row)
			if err != nil {
				return err
			}
			p.spritePatterns[count] = pattern
			p.spritePositions[count] = x
			p.spritePriorities[count] = (a >> 5) & 1
			p.spriteIndexes[count] = byte(i)
		}
		count++
	}
	if count > spritesPerLine {
		count = spritesPerLine
		p.flagSpriteOverflow = 1
	}
	p.spriteCount = count
	return nil
}

// fetchSpritePattern returns the 8 pixels of the row of sprite i, 4 bits each.
func (p *PPU) fetchSpritePattern(i, row int) (uint32, error) {
	tile := p.oamData[i*4+1]
	attributes := p.oamData[i*4+2]
	var address uint16
	if p.flagSpriteSize == 0 {
		if attributes&0x80 == 0x80 {
			row = 7 - row
		}
		address = patternTableSize*uint16(p.flagSpriteTable) + uint16(tile)*16 + uint16(row)
	} else {
		if attributes&0x80 == 0x80 {
			row = 15 - row
		}
		// 8x16 sprites select the pattern table by tile parity.
		table := tile & 1
		tile &= 0xFE
		if row > 7 {
			tile++
			row -= 8
		}
		address = patternTableSize*uint16(table) + uint16(tile)*16 + uint16(row)
	}
	lowTileByte, err := p.bus.read(address)
	if err != nil {
		return 0, err
	}
	highTileByte, err := p.bus.read(address + 8)
	if err != nil {
		return 0, err
	}
	a := (attributes & 3) << 2
	var data uint32
	for j := 0; j < 8; j++ {
		var p1, p2 byte
		if attributes&0x40 == 0x40 {
			p1 = (lowTileByte & 1) << 0
			p2 = (highTileByte & 1) << 1
			lowTileByte >>= 1
			highTileByte >>= 1
		} else {
			p1 = (lowTileByte & 0x80) >> 7
			p2 = (highTileByte & 0x80) >> 6
			lowTileByte <<= 1
			highTileByte <<= 1
		}
		data <<= 4
		data |= uint32(a | p1 | p2)
	}
	return data, nil
}

// readRegister reads a CPU visible register. Write-only registers read as 0.
func (p *PPU) readRegister(address uint16) (byte, error) {
	switch address {
	case 0x2002:
		return p.readPPUSTATUS(), nil
	case 0x2004:
		return p.readOAMDATA(), nil
	case 0x2007:
		return p.readPPUDATA()
	}
	return 0, nil
}

// writeRegister writes a CPU visible register.
func (p *PPU) writeRegister(address uint16, data byte) error {
	p.register = data
	switch address {
	case 0x2000:
		p.writePPUCTRL(data)
	case 0x2001:
		p.writePPUMASK(data)
	case 0x2003:
		p.writeOAMADDR(data)
	case 0x2004:
		p.writeOAMDATA(data)
	case 0x2005:
		p.writePPUSCROLL(data)
	case 0x2006:
		p.writePPUADDR(data)
	case 0x2007:
		return p.writePPUDATA(data)
	case 0x4014:
		return p.writeOAMDMA(data)
	}
	return nil
}

// writePPUCTRL writes PPUCTRL ($2000).
func (p *PPU) writePPUCTRL(data byte) {
	p.flagNameTable = data & 3
	p.flagIncrement = (data >> 2) & 1
	p.flagSpriteTable = (data >> 3) & 1
	p.flagBackgroundTable = (data >> 4) & 1
	p.flagSpriteSize = (data >> 5) & 1
	p.flagMasterSlave = (data >> 6) & 1
	p.nmiOutput = (data>>7)&1 == 1
	p.nmiChange()
	// t: ....BA.. ........ = d: ......BA
	p.t = (p.t & 0xF3FF) | (uint16(data)&0x03)<<10
}

// writePPUMASK writes PPUMASK ($2001).
func (p *PPU) writePPUMASK(data byte) {
	p.flagGrayscale = data&0x01 != 0
	p.flagShowLeftBackground = data&0x02 != 0
	p.flagShowLeftSprites = data&0x04 != 0
	p.flagShowBackground = data&0x08 != 0
	p.flagShowSprites = data&0x10 != 0
	p.flagRedTint = data&0x20 != 0
	p.flagGreenTint = data&0x40 != 0
	p.flagBlueTint = data&0x80 != 0
}

// readPPUSTATUS reads PPUSTATUS ($2002), clearing VBlank and the write toggle.
func (p *PPU) readPPUSTATUS() byte {
	result := p.register & 0x1F
	result |= p.flagSpriteOverflow << 5
	result |= p.flagSpriteZeroHit << 6
	if p.nmiOccurred {
		result |= 1 << 7
	}
	p.nmiOccurred = false
	p.nmiChange()
	p.w = false
	return result
}

// writeOAMADDR writes OAMADDR ($2003).
func (p *PPU) writeOAMADDR(data byte) {
	p.oamAddress = data
}

// readOAMDATA reads OAMDATA ($2004).
func (p *PPU) readOAMDATA() byte {
	return p.oamData[p.oamAddress]
}

// writeOAMDATA writes OAMDATA ($2004).
func (p *PPU) writeOAMDATA(data byte) {
	p.oamData[p.oamAddress] = data
	p.oamAddress++
}

// writePPUSCROLL writes PPUSCROLL ($2005).
func (p *PPU) writePPUSCROLL(data byte) {
	if !p.w {
		// t: ....... ...HGFED = d: HGFED...
		// x:              CBA = d: .....CBA
		p.t = (p.t & 0xFFE0) | uint16(data)>>3
		p.x = data & 0x07
		p.w = true
	} else {
		// t: CBA..HG FED..... = d: HGFEDCBA
		p.t = (p.t & 0x8FFF) | (uint16(data)&0x07)<<12
		p.t = (p.t & 0xFC1F) | (uint16(data)&0xF8)<<2
		p.w = false
	}
}

// writePPUADDR writes PPUADDR ($2006).
func (p *PPU) writePPUADDR(data byte) {
	if !p.w { // high
		p.t = (p.t & 0x80FF) | (uint16(data)&0x3F)<<8
		p.w = true
	} else { // low
		p.t = (p.t & 0xFF00) | uint16(data)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) incrementAddress() {
	if p.flagIncrement == 0 {
		p.v++
	} else {
		p.v += 32
	}
	p.v &= 0x7FFF
}

// readPPUDATA reads PPUDATA ($2007).
func (p *PPU) readPPUDATA() (byte, error) {
	data, err := p.bus.read(p.v)
	if err != nil {
		return 0, err
	}
	// Here buffers if the address is not paletteRAM.
	if p.v%0x4000 < 0x3F00 {
		buffered := p.bufferedData
		p.bufferedData = data
		data = buffered
	} else {
		// Palette reads fill the buffer with the nametable byte underneath.
		underneath, err := p.bus.read(p.v - 0x1000)
		if err != nil {
			return 0, err
		}
		p.bufferedData = underneath
	}
	p.incrementAddress()
	return data, nil
}

// writePPUDATA writes PPUDATA ($2007).
func (p *PPU) writePPUDATA(data byte) error {
	if err := p.bus.write(p.v, data); err != nil {
		return err
	}
	p.incrementAddress()
	return nil
}

// writeOAMDMA copies a CPU page into OAM ($4014) and stalls the CPU. The
// extra cycle on odd CPU cycles aligns the transfer to a read cycle.
func (p *PPU) writeOAMDMA(page byte) error {
	address := uint16(page) << 8
	for i := 0; i < oamSize; i++ {
		data, err := p.cpu.bus.read(address)
		if err != nil {
			return err
		}
		p.oamData[p.oamAddress] = data
		p.oamAddress++
		address++
	}
	stall := dmaStallCycles
	if p.cpu.Cycles()%2 == 1 {
		stall++
	}
	p.cpu.addStall(stall)
	return nil
}
