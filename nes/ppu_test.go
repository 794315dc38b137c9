package nes

import "testing"

func TestPPUFrameWrap(t *testing.T) {
	tests := []struct {
		name      string
		rendering bool
		f         byte
		wantDot   int
		wantLine  int
		wantFrame uint64
	}{
		{name: "odd frame with rendering skips a dot", rendering: true, f: 1, wantDot: 0, wantLine: 0, wantFrame: 1},
		{name: "even frame with rendering", rendering: true, f: 0, wantDot: 340, wantLine: 261, wantFrame: 0},
		{name: "odd frame without rendering", rendering: false, f: 1, wantDot: 340, wantLine: 261, wantFrame: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			console := newTestConsole(t, nil)
			ppu := console.ppu
			ppu.flagShowBackground = test.rendering
			ppu.f = test.f
			ppu.scanline = preRenderLine
			ppu.cycle = 339
			ppu.tick()
			if line, dot := ppu.Position(); line != test.wantLine || dot != test.wantDot {
				t.Errorf("Position()=(%d, %d), want=(%d, %d)", line, dot, test.wantLine, test.wantDot)
			}
			if got := ppu.FrameCount(); got != test.wantFrame {
				t.Errorf("FrameCount()=%d, want=%d", got, test.wantFrame)
			}
		})
	}
}

func TestPPUDotsPerFrame(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.scanline, ppu.cycle = 0, 0
	dots := 0
	for {
		ppu.tick()
		dots++
		if line, dot := ppu.Position(); line == 0 && dot == 0 {
			break
		}
	}
	if dots != dotsPerLine*(preRenderLine+1) {
		t.Errorf("dots=%d, want=%d", dots, dotsPerLine*(preRenderLine+1))
	}
}

func TestVerticalBlankAndNMIDelay(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	cpu := console.cpu
	ppu.writePPUCTRL(0x80)
	ppu.scanline, ppu.cycle = vblankLine, 0
	front := ppu.Frame()
	completed, err := ppu.Step()
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if !completed {
		t.Fatal("Step() did not report a completed frame at the start of VBlank")
	}
	if ppu.Frame() == front {
		t.Error("front buffer was not swapped")
	}
	for i := 1; i < defaultNMIDelay; i++ {
		if _, err := ppu.Step(); err != nil {
			t.Fatal(err)
		}
		if cpu.interrupt != interruptNone {
			t.Fatalf("NMI delivered after %d dots, want %d", i, defaultNMIDelay)
		}
	}
	if _, err := ppu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.interrupt != interruptNMI {
		t.Errorf("NMI not delivered after %d dots", defaultNMIDelay)
	}
	if got := ppu.readPPUSTATUS(); got&0x80 == 0 {
		t.Errorf("PPUSTATUS=0x%02x, want VBlank set", got)
	}
	if got := ppu.readPPUSTATUS(); got&0x80 != 0 {
		t.Errorf("second PPUSTATUS=0x%02x, want VBlank cleared", got)
	}
}

func TestNMIDisabled(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.scanline, ppu.cycle = vblankLine, 0
	for i := 0; i < 100; i++ {
		if _, err := ppu.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if console.cpu.interrupt != interruptNone {
		t.Error("NMI delivered with PPUCTRL bit 7 clear")
	}
}

func TestPPUSTATUSResetsToggle(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.writePPUADDR(0x21)
	if !ppu.w {
		t.Fatal("first PPUADDR write did not set w")
	}
	ppu.readPPUSTATUS()
	if ppu.w {
		t.Error("PPUSTATUS read did not clear w")
	}
	ppu.register = 0x1F
	ppu.flagSpriteZeroHit = 1
	if got := ppu.readPPUSTATUS(); got != 0x5F {
		t.Errorf("PPUSTATUS=0x%02x, want=0x5f", got)
	}
}

func TestScrollAndAddressRegisters(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.writePPUCTRL(0x00)
	ppu.readPPUSTATUS()
	ppu.writePPUSCROLL(0x7D)
	if ppu.t != 0x000F || ppu.x != 0x05 || !ppu.w {
		t.Errorf("first PPUSCROLL: t=0x%04x x=%d w=%t", ppu.t, ppu.x, ppu.w)
	}
	ppu.writePPUSCROLL(0x5E)
	if ppu.t != 0x616F || ppu.w {
		t.Errorf("second PPUSCROLL: t=0x%04x w=%t, want t=0x616f", ppu.t, ppu.w)
	}
	ppu.writePPUADDR(0x3D)
	if ppu.t != 0x3D6F {
		t.Errorf("first PPUADDR: t=0x%04x, want=0x3d6f", ppu.t)
	}
	ppu.writePPUADDR(0xF0)
	if ppu.t != 0x3DF0 || ppu.v != 0x3DF0 {
		t.Errorf("second PPUADDR: t=0x%04x v=0x%04x, want=0x3df0", ppu.t, ppu.v)
	}
	ppu.writePPUCTRL(0x03)
	if ppu.t&0x0C00 != 0x0C00 {
		t.Errorf("PPUCTRL nametable bits: t=0x%04x", ppu.t)
	}
}

func setAddress(p *PPU, address uint16) {
	p.writePPUADDR(byte(address >> 8))
	p.writePPUADDR(byte(address))
}

func TestPPUDATA(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	setAddress(ppu, 0x2000)
	if err := ppu.writePPUDATA(0xAB); err != nil {
		t.Fatal(err)
	}
	if err := ppu.writePPUDATA(0xCD); err != nil {
		t.Fatal(err)
	}
	setAddress(ppu, 0x2000)
	// The first read returns the stale buffer.
	if _, err := ppu.readPPUDATA(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []byte{0xAB, 0xCD} {
		got, err := ppu.readPPUDATA()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("readPPUDATA()=0x%02x, want=0x%02x", got, want)
		}
	}

	setAddress(ppu, 0x3F01)
	if err := ppu.writePPUDATA(0x12); err != nil {
		t.Fatal(err)
	}
	setAddress(ppu, 0x3F01)
	got, err := ppu.readPPUDATA()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x12 {
		t.Errorf("palette read=0x%02x, want=0x12 without buffering", got)
	}

	ppu.writePPUCTRL(0x04)
	setAddress(ppu, 0x2000)
	if err := ppu.writePPUDATA(0x00); err != nil {
		t.Fatal(err)
	}
	if ppu.v != 0x2020 {
		t.Errorf("v=0x%04x after a write with increment 32, want=0x2020", ppu.v)
	}
}

func TestIncrementX(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.v = 0x001F
	ppu.incrementX()
	if ppu.v != 0x0400 {
		t.Errorf("v=0x%04x, want=0x0400", ppu.v)
	}
	ppu.incrementX()
	if ppu.v != 0x0401 {
		t.Errorf("v=0x%04x, want=0x0401", ppu.v)
	}
}

func TestIncrementY(t *testing.T) {
	tests := []struct {
		name string
		v    uint16
		want uint16
	}{
		{name: "fine y", v: 0x0000, want: 0x1000},
		{name: "coarse y", v: 0x7000, want: 0x0020},
		{name: "row 29 switches nametable", v: 0x7000 | 29<<5, want: 0x0800},
		{name: "row 31 wraps in place", v: 0x7000 | 31<<5, want: 0x0000},
	}
	console := newTestConsole(t, nil)
	ppu := console.ppu
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ppu.v = test.v
			ppu.incrementY()
			if ppu.v != test.want {
				t.Errorf("v=0x%04x, want=0x%04x", ppu.v, test.want)
			}
		})
	}
}

func TestSpriteEvaluation(t *testing.T) {
	console := newTestConsole(t, func(prg, chr []byte) {
		chr[1*16+2] = 0x80 // tile 1, row 2, leftmost pixel
	})
	ppu := console.ppu
	for i := 0; i < 9; i++ {
		ppu.oamData[i*4+0] = 10
		ppu.oamData[i*4+1] = 1
		ppu.oamData[i*4+3] = byte(i * 8)
	}
	ppu.oamData[1*4+2] = 0x40 // horizontal flip
	ppu.scanline = 12
	if err := ppu.evaluateSprites(); err != nil {
		t.Fatal(err)
	}
	if ppu.spriteCount != spritesPerLine {
		t.Errorf("spriteCount=%d, want=%d", ppu.spriteCount, spritesPerLine)
	}
	if ppu.flagSpriteOverflow != 1 {
		t.Error("sprite overflow is not set")
	}
	if got := ppu.spritePatterns[0] >> 28; got != 1 {
		t.Errorf("leftmost pixel=%d, want=1", got)
	}
	if got := ppu.spritePatterns[1] & 0x0F; got != 1 {
		t.Errorf("flipped rightmost pixel=%d, want=1", got)
	}

	ppu.scanline = 30
	if err := ppu.evaluateSprites(); err != nil {
		t.Fatal(err)
	}
	if ppu.spriteCount != 0 {
		t.Errorf("spriteCount=%d on an empty line, want=0", ppu.spriteCount)
	}
}

func TestTallSpritePattern(t *testing.T) {
	console := newTestConsole(t, func(prg, chr []byte) {
		chr[patternTableSize+3*16+1] = 0xFF // table 1, tile 3, row 1
	})
	ppu := console.ppu
	ppu.writePPUCTRL(0x20)
	ppu.oamData[0] = 0
	ppu.oamData[1] = 0x03 // odd tile selects table 1, rows 8-15 come from tile 3
	got, err := ppu.fetchSpritePattern(0, 9)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x11111111 {
		t.Errorf("fetchSpritePattern()=0x%08x, want=0x11111111", got)
	}
}

func TestOAMDMA(t *testing.T) {
	tests := []struct {
		name      string
		cycles    uint64
		wantStall int
	}{
		{name: "even cycle", cycles: 100, wantStall: 513},
		{name: "odd cycle", cycles: 101, wantStall: 514},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			console := newTestConsole(t, nil)
			for i := 0; i < oamSize; i++ {
				poke(console, 0x0300+uint16(i), byte(i))
			}
			console.ppu.writeOAMADDR(0x10)
			console.cpu.cycles = test.cycles
			if err := console.cpuBus.write(0x4014, 0x03); err != nil {
				t.Fatal(err)
			}
			if console.cpu.stall != test.wantStall {
				t.Errorf("stall=%d, want=%d", console.cpu.stall, test.wantStall)
			}
			if got := console.ppu.oamData[0x10]; got != 0x00 {
				t.Errorf("oam[0x10]=0x%02x, want=0x00", got)
			}
			if got := console.ppu.oamData[0x0F]; got != 0xFF {
				t.Errorf("oam[0x0f]=0x%02x, want=0xff", got)
			}
			stalled := 0
			for console.cpu.stall > 0 {
				n, err := console.cpu.Step()
				if err != nil {
					t.Fatal(err)
				}
				if n != 1 {
					t.Fatalf("stalled Step() returned %d cycles, want=1", n)
				}
				stalled++
			}
			if stalled != test.wantStall {
				t.Errorf("stalled steps=%d, want=%d", stalled, test.wantStall)
			}
		})
	}
}

func TestRenderBackdrop(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.bus.writePalette(0, 0x16)
	ppu.writePPUMASK(0x0A)
	ppu.scanline, ppu.cycle = 0, 0
	for i := 0; i < 10; i++ {
		if _, err := ppu.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if got := ppu.back().RGBAAt(5, 0); got != colors[0x16] {
		t.Errorf("pixel=%v, want=%v", got, colors[0x16])
	}
	ppu.writePPUMASK(0x0B)
	ppu.bus.writePalette(0, 0x16)
	ppu.cycle = 20
	if _, err := ppu.Step(); err != nil {
		t.Fatal(err)
	}
	if got := ppu.back().RGBAAt(20, 0); got != colors[0x10] {
		t.Errorf("grayscale pixel=%v, want=%v", got, colors[0x10])
	}
}

func TestPreRenderLineClearsStatus(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.nmiOccurred = true
	ppu.flagSpriteZeroHit = 1
	ppu.flagSpriteOverflow = 1
	ppu.scanline, ppu.cycle = preRenderLine, 0
	if _, err := ppu.Step(); err != nil {
		t.Fatal(err)
	}
	if got := ppu.readPPUSTATUS(); got&0xE0 != 0 {
		t.Errorf("PPUSTATUS=0x%02x at pre-render dot 1, want VBlank, sprite 0 hit and overflow cleared", got)
	}
}

func TestScrollCopies(t *testing.T) {
	tests := []struct {
		name     string
		mask     byte
		scanline int
		cycle    int
		t        uint16
		v        uint16
		want     uint16
	}{
		{name: "horizontal copy at dot 257", mask: 0x08, scanline: 0, cycle: 256, t: 0x0415, v: 0x7000, want: 0x7415},
		{name: "vertical copy on pre-render line", mask: 0x08, scanline: preRenderLine, cycle: 279, t: 0x7BE0, v: 0x001F, want: 0x7BFF},
		{name: "no vertical copy on a visible line", mask: 0x08, scanline: 0, cycle: 279, t: 0x7BE0, v: 0x001F, want: 0x001F},
		{name: "no copy without rendering", mask: 0x00, scanline: preRenderLine, cycle: 279, t: 0x7BE0, v: 0x001F, want: 0x001F},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			console := newTestConsole(t, nil)
			ppu := console.ppu
			ppu.writePPUMASK(test.mask)
			ppu.scanline, ppu.cycle = test.scanline, test.cycle
			ppu.t, ppu.v = test.t, test.v
			if _, err := ppu.Step(); err != nil {
				t.Fatal(err)
			}
			if ppu.v != test.want {
				t.Errorf("v=0x%04x, want=0x%04x", ppu.v, test.want)
			}
		})
	}
}

func TestRenderPixelComposition(t *testing.T) {
	const (
		backdrop   = 0x0F
		background = 0x16
		sprite     = 0x2A
	)
	tests := []struct {
		name        string
		mask        byte
		x           int
		spriteX     byte
		priority    byte
		spriteIndex byte
		want        byte
		wantHit     bool
	}{
		{name: "sprite in front", mask: 0x1E, x: 10, spriteX: 10, want: sprite, wantHit: true},
		{name: "sprite behind", mask: 0x1E, x: 10, spriteX: 10, priority: 1, want: background, wantHit: true},
		{name: "background only", mask: 0x1E, x: 10, spriteX: 100, want: background},
		{name: "no hit at x=255", mask: 0x1E, x: 255, spriteX: 250, want: sprite},
		{name: "no hit for other sprites", mask: 0x1E, x: 10, spriteX: 10, spriteIndex: 5, want: sprite},
		{name: "left 8 clipped", mask: 0x18, x: 3, spriteX: 0, want: backdrop},
		{name: "left 8 background clipped", mask: 0x1C, x: 3, spriteX: 0, want: sprite},
		{name: "left 8 sprites clipped", mask: 0x1A, x: 3, spriteX: 0, want: background},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			console := newTestConsole(t, nil)
			ppu := console.ppu
			ppu.bus.writePalette(0x00, backdrop)
			ppu.bus.writePalette(0x01, background)
			ppu.bus.writePalette(0x11, sprite)
			ppu.writePPUMASK(test.mask)
			// Every background and sprite pixel has colour 1.
			ppu.tileData = 0x1111111111111111
			ppu.spriteCount = 1
			ppu.spritePatterns[0] = 0x11111111
			ppu.spritePositions[0] = test.spriteX
			ppu.spritePriorities[0] = test.priority
			ppu.spriteIndexes[0] = test.spriteIndex
			ppu.scanline, ppu.cycle = 5, test.x+1
			ppu.renderPixel()
			if got := ppu.back().RGBAAt(test.x, 5); got != colors[test.want] {
				t.Errorf("pixel=%v, want=%v", got, colors[test.want])
			}
			if hit := ppu.flagSpriteZeroHit == 1; hit != test.wantHit {
				t.Errorf("sprite 0 hit=%t, want=%t", hit, test.wantHit)
			}
		})
	}
}

func TestResetDropsPendingNMI(t *testing.T) {
	console := newTestConsole(t, nil)
	ppu := console.ppu
	ppu.writePPUCTRL(0x80)
	ppu.writePPUADDR(0x21)
	ppu.f = 1
	ppu.scanline, ppu.cycle = vblankLine, 0
	if _, err := ppu.Step(); err != nil {
		t.Fatal(err)
	}
	if ppu.nmiDelay == 0 {
		t.Fatal("NMI was not armed at VBlank")
	}
	if err := console.Reset(); err != nil {
		t.Fatal(err)
	}
	if ppu.nmiDelay != 0 || ppu.w || ppu.f != 0 {
		t.Errorf("after Reset nmiDelay=%d w=%t f=%d, want 0, false, 0", ppu.nmiDelay, ppu.w, ppu.f)
	}
	// VBlank from before the reset must not produce an NMI edge.
	ppu.writePPUCTRL(0x80)
	if ppu.nmiDelay != 0 {
		t.Errorf("enabling NMI after Reset armed nmiDelay=%d, want 0", ppu.nmiDelay)
	}
	if got := ppu.readPPUSTATUS(); got&0x80 != 0 {
		t.Errorf("PPUSTATUS=0x%02x after Reset, want VBlank clear", got)
	}
}
