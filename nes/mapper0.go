package nes

import "github.com/pkg/errors"

// Mapper0: https://www.nesdev.org/wiki/NROM
type mapper0 struct {
	prgROM []byte
	chrROM []byte
	chrRAM bool
}

func newMapper0(c *Cartridge) *mapper0 {
	return &mapper0{prgROM: c.prgROM, chrROM: c.chrROM, chrRAM: c.chrRAM}
}

func (m *mapper0) Read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		return m.chrROM[address], nil
	case 0x8000 <= address:
		// CPU $C000-$FFFF: Last 16 KB of ROM (NROM-256) or mirror of $8000-$BFFF (NROM-128).
		return m.prgROM[int(address-0x8000)%len(m.prgROM)], nil
	}
	return 0, errors.Wrapf(ErrOutOfRangeAddress, "mapper0 read: address=0x%04x", address)
}

func (m *mapper0) Write(address uint16, data byte) error {
	switch {
	case address < 0x2000:
		if m.chrRAM {
			m.chrROM[address] = data
			return nil
		}
		return errors.Wrapf(ErrUnsupportedOperation, "writing data to CHR-ROM not allowed: address=0x%04x, data=0x%02x", address, data)
	case 0x8000 <= address:
		return errors.Wrapf(ErrUnsupportedOperation, "writing data to PRG-ROM not allowed: address=0x%04x, data=0x%02x", address, data)
	}
	// CPU $6000-$7FFF: Family Basic only PRG RAM, not wired on this board.
	return errors.Wrapf(ErrUnsupportedOperation, "mapper0 write: address=0x%04x, data=0x%02x", address, data)
}
