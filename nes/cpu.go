package nes

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// CPU emulates NES CPU - is custom 6502 made by RICOH.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html
//   http://hp.vector.co.jp/authors/VA042397/nes/6502.html (In Japanese)

const CPUFrequency = 1789773

// Interrupt vectors.
const (
	nmiVector   uint16 = 0xFFFA
	resetVector uint16 = 0xFFFC
	irqVector   uint16 = 0xFFFE
)

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

type interrupt int

const (
	interruptNone interrupt = iota
	interruptNMI
	interruptIRQ
)

type status struct {
	c bool // carry
	z bool // zero
	i bool // IRQ
	d bool // decimal - unused on NES
	b bool // break
	v bool // overflow
	n bool // negative
}

// encode encodes the status to a byte, bit 5 always reads as 1.
func (s *status) encode() byte {
	res := byte(1 << 5)
	if s.c {
		res |= 1 << 0
	}
	if s.z {
		res |= 1 << 1
	}
	if s.i {
		res |= 1 << 2
	}
	if s.d {
		res |= 1 << 3
	}
	if s.b {
		res |= 1 << 4
	}
	if s.v {
		res |= 1 << 6
	}
	if s.n {
		res |= 1 << 7
	}
	return res
}

// decodeFrom decodes a byte to the status.
func (s *status) decodeFrom(data byte) {
	s.c = (data>>0)&1 == 1
	s.z = (data>>1)&1 == 1
	s.i = (data>>2)&1 == 1
	s.d = (data>>3)&1 == 1
	s.b = (data>>4)&1 == 1
	s.v = (data>>6)&1 == 1
	s.n = (data>>7)&1 == 1
}

// stepInfo is resolved once per step and handed to exactly one instruction.
type stepInfo struct {
	address uint16         // effective address of the operand
	pc      uint16         // PC after the instruction bytes were consumed
	mode    addressingMode // addressing mode of the opcode
}

type instruction struct {
	mnemonic   string
	mode       addressingMode
	size       uint16
	cycles     int
	pageCycles int
	execute    func(*CPU, *stepInfo) error
}

type CPU struct {
	p             status // Processor status flag bits
	a             byte   // Accumulator register
	x             byte   // Index register
	y             byte   // Index register
	pc            uint16 // Program counter
	s             byte   // Stack pointer
	cycles        uint64 // Total cycles executed
	stall         int    // Stall cycles
	interrupt     interrupt
	bus           *CPUBus
	trace         bool
	lastExecution string // For debug
}

// NewCPU creates a new NES CPU.
func NewCPU(bus *CPUBus) *CPU {
	return &CPU{bus: bus}
}

// Reset does Reset.
func (c *CPU) Reset() error {
	data, err := c.bus.read16(resetVector)
	if err != nil {
		return err
	}
	c.pc = data
	c.s = 0xFD
	c.p.decodeFrom(0x24)
	c.interrupt = interruptNone
	c.stall = 0
	return nil
}

// TriggerNMI arms a non-maskable interrupt for the next step.
func (c *CPU) TriggerNMI() {
	c.interrupt = interruptNMI
}

// TriggerIRQ arms a maskable interrupt unless interrupts are disabled or an
// NMI is already pending.
func (c *CPU) TriggerIRQ() {
	if !c.p.i && c.interrupt != interruptNMI {
		c.interrupt = interruptIRQ
	}
}

// Cycles returns the total number of cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// PC returns the program counter.
func (c *CPU) PC() uint16 {
	return c.pc
}

// addStall makes the CPU idle for the given number of cycles.
func (c *CPU) addStall(cycles int) {
	c.stall += cycles
}

// setN sets whether the x is negative or positive.
func (c *CPU) setN(x byte) {
	c.p.n = x&0x80 != 0
}

// setZ sets whether the x is 0 or not.
func (c *CPU) setZ(x byte) {
	c.p.z = x == 0
}

func (c *CPU) setZN(x byte) {
	c.setZ(x)
	c.setN(x)
}

// push pushes data to stack.
// "With the 6502, the stack is always on page one ($100-$1FF) and works top down."
func (c *CPU) push(x byte) error {
	if err := c.bus.write(0x100|uint16(c.s), x); err != nil {
		return err
	}
	c.s--
	return nil
}

// push16 pushes the high byte first.
func (c *CPU) push16(x uint16) error {
	if err := c.push(byte(x >> 8)); err != nil {
		return err
	}
	return c.push(byte(x))
}

// pop pops data from stack.
func (c *CPU) pop() (byte, error) {
	c.s++
	return c.bus.read(0x100 | uint16(c.s))
}

func (c *CPU) pop16() (uint16, error) {
	l, err := c.pop()
	if err != nil {
		return 0, err
	}
	h, err := c.pop()
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// pageDiff reports whether two addresses are on different pages.
func pageDiff(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// addBranchCycles charges a taken branch, plus one more when it crosses a page.
func (c *CPU) addBranchCycles(info *stepInfo) {
	c.cycles++
	if pageDiff(info.pc, info.address) {
		c.cycles++
	}
}

// serviceInterrupt pushes PC and status and jumps through the vector.
// The pushed status has the break bit clear.
func (c *CPU) serviceInterrupt(vector uint16) error {
	if err := c.push16(c.pc); err != nil {
		return err
	}
	if err := c.push(c.p.encode() &^ 0x10); err != nil {
		return err
	}
	c.p.i = true
	data, err := c.bus.read16(vector)
	if err != nil {
		return err
	}
	c.pc = data
	c.cycles += 7
	return nil
}

// resolve computes the effective address of the operand of the instruction at PC.
func (c *CPU) resolve(mode addressingMode) (address uint16, pageCrossed bool, err error) {
	switch mode {
	case implied, accumulator:
		return 0, false, nil
	case immediate:
		return c.pc + 1, false, nil
	case zeropage:
		data, err := c.bus.read(c.pc + 1)
		return uint16(data), false, err
	case zeropageX:
		data, err := c.bus.read(c.pc + 1)
		// If the address exceeds 0xFF (page crossed), back to 0x00
		return uint16(data + c.x), false, err
	case zeropageY:
		data, err := c.bus.read(c.pc + 1)
		return uint16(data + c.y), false, err
	case relative:
		offset, err := c.bus.read(c.pc + 1)
		// Relative will look up a signed value, 2 is the size of a branch.
		return c.pc + 2 + uint16(int8(offset)), false, err
	case absolute:
		data, err := c.bus.read16(c.pc + 1)
		return data, false, err
	case absoluteX:
		data, err := c.bus.read16(c.pc + 1)
		address = data + uint16(c.x)
		return address, pageDiff(data, address), err
	case absoluteY:
		data, err := c.bus.read16(c.pc + 1)
		address = data + uint16(c.y)
		return address, pageDiff(data, address), err
	case indirect:
		p, err := c.bus.read16(c.pc + 1)
		if err != nil {
			return 0, false, err
		}
		data, err := c.bus.read16Wrap(p)
		return data, false, err
	case indirectX:
		p, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, false, err
		}
		data, err := c.bus.read16Wrap(uint16(p + c.x))
		return data, false, err
	case indirectY:
		p, err := c.bus.read(c.pc + 1)
		if err != nil {
			return 0, false, err
		}
		data, err := c.bus.read16Wrap(uint16(p))
		address = data + uint16(c.y)
		return address, pageDiff(data, address), err
	}
	return 0, false, errors.Errorf("unknown addressing mode %d", mode)
}

// traceLine formats the state before an instruction like a nestest log line.
func (c *CPU) traceLine(opcode byte, mnemonic string) string {
	return fmt.Sprintf("%04X  %02X %s  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		c.pc, opcode, mnemonic, c.a, c.x, c.y, c.p.encode(), c.s, c.cycles)
}

// Step performs the instruction cycle - fetch, decode, execute and returns
// the number of cycles consumed.
func (c *CPU) Step() (int, error) {
	start := c.cycles
	switch c.interrupt {
	case interruptNMI:
		c.interrupt = interruptNone
		if err := c.serviceInterrupt(nmiVector); err != nil {
			return 0, err
		}
		c.lastExecution = fmt.Sprintf("NMI, PC=0x%04x", c.pc)
		return int(c.cycles - start), nil
	case interruptIRQ:
		c.interrupt = interruptNone
		if err := c.serviceInterrupt(irqVector); err != nil {
			return 0, err
		}
		c.lastExecution = fmt.Sprintf("IRQ, PC=0x%04x", c.pc)
		return int(c.cycles - start), nil
	}
	// Running stall cycles.
	if 0 < c.stall {
		c.stall--
		c.cycles++
		return 1, nil
	}
	opcode, err := c.bus.read(c.pc)
	if err != nil {
		return 0, err
	}
	inst := &instructions[opcode]
	if verbose := bool(glog.V(3)); c.trace || verbose {
		c.lastExecution = c.traceLine(opcode, inst.mnemonic)
		if verbose {
			glog.Info(c.lastExecution)
		}
	}
	address, pageCrossed, err := c.resolve(inst.mode)
	if err != nil {
		return 0, err
	}
	c.pc += inst.size
	c.cycles += uint64(inst.cycles)
	if pageCrossed {
		c.cycles += uint64(inst.pageCycles)
	}
	info := stepInfo{address: address, pc: c.pc, mode: inst.mode}
	if err := inst.execute(c, &info); err != nil {
		return int(c.cycles - start), errors.Wrapf(err, "opcode=0x%02x (%s)", opcode, inst.mnemonic)
	}
	return int(c.cycles - start), nil
}
