package nes

import "testing"

// testROM assembles an iNES image filled with NOPs. Vectors: NMI=$9000,
// RESET=$8000, IRQ=$A000. patch may edit PRG and CHR before the image is returned.
func testROM(prgBanks, chrBanks int, flags6 byte, patch func(prg, chr []byte)) []byte {
	prgSize := prgBanks * prgROMSizeUnit
	data := make([]byte, inesHeaderSizeBytes+prgSize+chrBanks*chrROMSizeUnit)
	copy(data, []byte{'N', 'E', 'S', msDOSEOF, byte(prgBanks), byte(chrBanks), flags6})
	prg := data[inesHeaderSizeBytes : inesHeaderSizeBytes+prgSize]
	chr := data[inesHeaderSizeBytes+prgSize:]
	for i := range prg {
		prg[i] = 0xEA
	}
	end := len(prg)
	prg[end-6], prg[end-5] = 0x00, 0x90
	prg[end-4], prg[end-3] = 0x00, 0x80
	prg[end-2], prg[end-1] = 0x00, 0xA0
	if patch != nil {
		patch(prg, chr)
	}
	return data
}

func newTestConsole(t *testing.T, patch func(prg, chr []byte)) *NesConsole {
	t.Helper()
	c, err := NewConsole(testROM(1, 1, 0, patch), DefaultConfig())
	if err != nil {
		t.Fatalf("NewConsole() failed: %v", err)
	}
	return c
}

// load writes a program into work RAM and points PC at it.
func load(c *NesConsole, address uint16, program ...byte) {
	for i, b := range program {
		c.cpu.bus.wram.write(address+uint16(i), b)
	}
	c.cpu.pc = address
}

func poke(c *NesConsole, address uint16, data ...byte) {
	for i, b := range data {
		c.cpu.bus.wram.write(address+uint16(i), b)
	}
}

func peek(c *NesConsole, address uint16) byte {
	return c.cpu.bus.wram.read(address)
}
