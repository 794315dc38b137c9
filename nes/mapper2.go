package nes

import "github.com/pkg/errors"

// Mapper2: https://www.nesdev.org/wiki/UxROM
type mapper2 struct {
	banks       int
	currentBank int
	prgROM      []byte
	chrROM      []byte
	chrRAM      bool
}

func newMapper2(c *Cartridge) *mapper2 {
	return &mapper2{banks: len(c.prgROM) / prgROMSizeUnit, prgROM: c.prgROM, chrROM: c.chrROM, chrRAM: c.chrRAM}
}

func (m *mapper2) Read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		return m.chrROM[address], nil
	case 0xC000 <= address:
		// CPU $C000-$FFFF: 16 KB PRG ROM bank, fixed to the last bank
		return m.prgROM[(m.banks-1)*prgROMSizeUnit+int(address-0xC000)], nil
	case 0x8000 <= address:
		// CPU $8000-$BFFF: 16 KB switchable PRG ROM bank
		return m.prgROM[m.currentBank*prgROMSizeUnit+int(address-0x8000)], nil
	}
	return 0, errors.Wrapf(ErrOutOfRangeAddress, "mapper2 read: address=0x%04x", address)
}

func (m *mapper2) Write(address uint16, data byte) error {
	switch {
	case address < 0x2000:
		if m.chrRAM {
			m.chrROM[address] = data
			return nil
		}
		return errors.Wrapf(ErrUnsupportedOperation, "writing data to CHR-ROM not allowed: address=0x%04x, data=0x%02x", address, data)
	case 0x8000 <= address:
		m.currentBank = int(data) % m.banks
		return nil
	}
	return errors.Wrapf(ErrUnsupportedOperation, "mapper2 write: address=0x%04x, data=0x%02x", address, data)
}
