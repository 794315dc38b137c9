package nes

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// CPUBus decodes the CPU address space.
type CPUBus struct {
	wram   *RAM
	ppu    *PPU
	mapper Mapper
	ports  [2]IOPort
}

// NewCPUBus creates a new Bus for CPU.
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x401F	I/O Port
// 0x4020 - 0x5FFF	Extended RAM
// 0x6000 - 0x7FFF	Battery Backup RAM
// 0x8000 - 0xBFFF	ProgramROM Low
// 0xC000 - 0xFFFF	ProgramROM High
func NewCPUBus(wram *RAM, ppu *PPU, mapper Mapper) *CPUBus {
	return &CPUBus{wram: wram, ppu: ppu, mapper: mapper, ports: [2]IOPort{openPort{}, openPort{}}}
}

// connect attaches a device to controller port 0 or 1.
func (b *CPUBus) connect(i int, p IOPort) {
	if p == nil {
		p = openPort{}
	}
	b.ports[i] = p
}

// read reads a byte.
func (b *CPUBus) read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		return b.wram.read(address % 0x0800), nil
	case address < 0x4000:
		return b.ppu.readRegister(0x2000 + address%8)
	case address == 0x4014:
		return b.ppu.readRegister(address)
	case address == 0x4016:
		return b.ports[0].Read(), nil
	case address == 0x4017:
		return b.ports[1].Read(), nil
	case address < 0x6000:
		// APU status ($4015) and the expansion area have no device in the core.
		return 0, nil
	default:
		return b.mapper.Read(address)
	}
}

// read16 reads 2 bytes.
func (b *CPUBus) read16(address uint16) (uint16, error) {
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// read16Wrap reads 2 bytes without carrying into the high byte of the
// address, reproducing the 6502 page wrap bug.
func (b *CPUBus) read16Wrap(address uint16) (uint16, error) {
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read(address&0xFF00 | uint16(byte(address)+1))
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// write writes a byte.
func (b *CPUBus) write(address uint16, data byte) error {
	switch {
	case address < 0x2000:
		b.wram.write(address%0x0800, data)
	case address < 0x4000:
		return b.ppu.writeRegister(0x2000+address%8, data)
	case address == 0x4014:
		return b.ppu.writeRegister(address, data)
	case address == 0x4016:
		// The strobe line is shared by both ports.
		b.ports[0].Write(data)
		b.ports[1].Write(data)
	case address < 0x6000:
		// APU and frame counter registers are serviced outside the core.
	default:
		if err := b.mapper.Write(address, data); err != nil {
			if errors.Cause(err) != ErrUnsupportedOperation {
				return err
			}
			glog.Warningf("CPU bus write ignored: %v", err)
		}
	}
	return nil
}
