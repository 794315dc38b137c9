package nes

import (
	"fmt"
	"image"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Console is what a host drives: it steps the machine and collects frames.
type Console interface {
	Step() (int, error)
	Reset() error
	Frame() (*image.RGBA, bool)
	ConnectPort(i int, p IOPort)
}

// NesConsole wires the CPU, the PPU and the cartridge together and keeps the
// two units at the 1:3 clock ratio.
type NesConsole struct {
	cpu          *CPU
	ppu          *PPU
	cpuBus       *CPUBus
	cartridge    *Cartridge
	currentFrame uint64
	lastFrame    uint64
}

// NewConsole creates a console from an iNES image and resets it.
func NewConsole(buf []byte, config Config) (*NesConsole, error) {
	cartridge, err := NewCartridge(buf)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(cartridge)
	if err != nil {
		return nil, err
	}
	ppuBus := NewPPUBus(NewRAM(0x1000), mapper, cartridge.Mirror())
	ppu := NewPPU(ppuBus, config.NMIDelay)
	cpuBus := NewCPUBus(NewRAM(0x0800), ppu, mapper)
	cpu := NewCPU(cpuBus)
	cpu.trace = config.Trace
	ppu.cpu = cpu
	c := &NesConsole{cpu: cpu, ppu: ppu, cpuBus: cpuBus, cartridge: cartridge}
	if err := c.Reset(); err != nil {
		return nil, errors.Wrap(err, "failed to reset")
	}
	return c, nil
}

// Reset resets both units. The CPU reads its entry point from the reset vector.
func (c *NesConsole) Reset() error {
	c.currentFrame = 0
	c.lastFrame = 0
	c.ppu.Reset()
	if err := c.cpu.Reset(); err != nil {
		return err
	}
	glog.V(2).Infof("Reset: PC=0x%04x", c.cpu.pc)
	return nil
}

// Step executes one CPU step and then 3 PPU dots per consumed CPU cycle.
func (c *NesConsole) Step() (int, error) {
	cycles, err := c.cpu.Step()
	if err != nil {
		return cycles, err
	}
	for i := 0; i < cycles*3; i++ {
		completed, err := c.ppu.Step()
		if err != nil {
			return cycles, err
		}
		if completed {
			c.currentFrame++
		}
	}
	return cycles, nil
}

// StepFrame steps until the PPU completes a frame.
func (c *NesConsole) StepFrame() error {
	frame := c.currentFrame
	for frame == c.currentFrame {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// StepSeconds runs the machine for the given emulated time.
func (c *NesConsole) StepSeconds(seconds float64) error {
	cycles := int(CPUFrequency * seconds)
	for cycles > 0 {
		n, err := c.Step()
		if err != nil {
			return err
		}
		cycles -= n
	}
	return nil
}

// Frame returns the front buffer and whether it is new since the last call.
func (c *NesConsole) Frame() (*image.RGBA, bool) {
	if c.lastFrame < c.currentFrame {
		c.lastFrame = c.currentFrame
		return c.ppu.Frame(), true
	}
	return c.ppu.Frame(), false
}

// Buffer returns the front buffer.
func (c *NesConsole) Buffer() *image.RGBA {
	return c.ppu.Frame()
}

// ConnectPort attaches a device to controller port 0 ($4016) or 1 ($4017).
func (c *NesConsole) ConnectPort(i int, p IOPort) {
	c.cpuBus.connect(i, p)
}

// TriggerIRQ raises the maskable interrupt line on behalf of a board or audio device.
func (c *NesConsole) TriggerIRQ() {
	c.cpu.TriggerIRQ()
}

// Frames returns the number of frames completed since reset.
func (c *NesConsole) Frames() uint64 {
	return c.currentFrame
}

// State formats the registers of both units.
func (c *NesConsole) State() string {
	return fmt.Sprintf("CPU: PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, P=0x%02x, CYC=%d\nPPU: cycle=%d, scanline=%d, frame=%d, v=0x%04x",
		c.cpu.pc, c.cpu.a, c.cpu.x, c.cpu.y, c.cpu.s, c.cpu.p.encode(), c.cpu.cycles,
		c.ppu.cycle, c.ppu.scanline, c.ppu.frame, c.ppu.v)
}

// LastExecution returns the trace line of the last instruction when tracing is on.
func (c *NesConsole) LastExecution() string {
	return c.cpu.lastExecution
}

// ReadMemory reads the CPU address space. Reads of PPU registers have the
// same side effects as a CPU read.
func (c *NesConsole) ReadMemory(address uint16) (byte, error) {
	return c.cpuBus.read(address)
}
