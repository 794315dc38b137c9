package nes

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrDebuggerQuit is returned by DebugConsole.Step after the quit command.
var ErrDebuggerQuit = errors.New("debugger quit")

var countRe = regexp.MustCompile("^([0-9]+)([sd]?)$")

// DebugConsole a NES console for debugging, you can execute some commands through stdio.
// commands:
//   s [n|ns|nd]:
//     execute step(s), "s" suffix runs n emulated seconds, "d" prints after each step.
//   p [cpu|ppu|stack]:
//     print.
//   br 0xADDR:
//     set a break point.
//   q:
//     quit.
//   r:
//     reset.
type DebugConsole struct {
	*NesConsole
	in          *bufio.Scanner
	out         io.Writer
	cycles      uint64
	breakpoints []uint16
}

// NewDebugConsole wraps a console with a command reader.
func NewDebugConsole(c *NesConsole, in io.Reader, out io.Writer) *DebugConsole {
	c.cpu.trace = true
	return &DebugConsole{NesConsole: c, in: bufio.NewScanner(in), out: out}
}

func (c *DebugConsole) step() (int, error) {
	cycles, err := c.NesConsole.Step()
	c.cycles += uint64(cycles)
	return cycles, err
}

func (c *DebugConsole) printStack() {
	for i := 0; i < 256; i++ {
		fmt.Fprintf(c.out, "0x%04x: 0x%02x, ", 0x100|i, c.cpu.bus.wram.read(uint16(0x100|i)))
		if i%8 == 7 {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Executed cycles: %d\n", c.cycles)
	fmt.Fprintf(c.out, "Rendered frame: %d\n", c.currentFrame)
	fmt.Fprintln(c.out, "Last: "+c.cpu.lastExecution)
	fmt.Fprintln(c.out, c.State())
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Fprintf(c.out, "PC=0x%04x A=0x%02x X=0x%02x Y=0x%02x S=0x%02x P=0x%02x\n",
			c.cpu.pc, c.cpu.a, c.cpu.x, c.cpu.y, c.cpu.s, c.cpu.p.encode())
	case "p", "ppu":
		fmt.Fprintf(c.out, "scanline=%d cycle=%d v=0x%04x t=0x%04x x=%d w=%t ctrl.nt=%d mask.bg=%t mask.sp=%t\n",
			c.ppu.scanline, c.ppu.cycle, c.ppu.v, c.ppu.t, c.ppu.x, c.ppu.w,
			c.ppu.flagNameTable, c.ppu.flagShowBackground, c.ppu.flagShowSprites)
	case "s", "stack":
		c.printStack()
	default:
		fmt.Fprintf(c.out, "Unknown print target %s\n", args[1])
	}
}

func (c *DebugConsole) checkBreak() bool {
	for _, b := range c.breakpoints {
		if b == c.cpu.pc {
			fmt.Fprintf(c.out, "Break at: 0x%04x\n", b)
			return true
		}
	}
	return false
}

func (c *DebugConsole) stepCommand(args []string) (int, error) {
	if len(args) < 2 {
		return c.step()
	}
	m := countRe.FindStringSubmatch(args[1])
	if m == nil {
		return 0, errors.Errorf("invalid step count %q", args[1])
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.Wrapf(err, "invalid step count %q", args[1])
	}
	seconds := m[2] == "s"
	done := func(i, cycles int) bool {
		if seconds {
			// s means seconds of emulated time, not wall time.
			return cycles >= CPUFrequency*num
		}
		return i >= num
	}
	cycles := 0
	for i := 0; !done(i, cycles); i++ {
		v, err := c.step()
		cycles += v
		if m[2] == "d" {
			c.basePrint()
		}
		if err != nil {
			return cycles, err
		}
		if c.checkBreak() {
			break
		}
	}
	return cycles, nil
}

func (c *DebugConsole) breakPointCommand(args []string) error {
	if len(args) < 2 {
		return errors.New("breakpoint needs an address")
	}
	address, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 16)
	if err != nil {
		return errors.Wrapf(err, "invalid breakpoint %q", args[1])
	}
	c.breakpoints = append(c.breakpoints, uint16(address))
	return nil
}

// Step reads one command and executes it, returning the CPU cycles it ran.
func (c *DebugConsole) Step() (int, error) {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return 0, err
		}
		return 0, ErrDebuggerQuit
	}
	line := c.in.Text()
	args := strings.Fields(line)
	if len(args) == 0 {
		return 0, nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		cycles, err := c.stepCommand(args)
		c.basePrint() // Print data before it die.
		if err != nil {
			return cycles, err
		}
		fmt.Fprintf(c.out, "Executed %d CPU cycles, %d PPU cycles.\n", cycles, 3*cycles)
		return cycles, nil
	case "br", "breakpoint":
		if err := c.breakPointCommand(args); err != nil {
			fmt.Fprintln(c.out, err)
		}
	case "r", "reset":
		c.cycles = 0
		return 0, c.Reset()
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return 0, ErrDebuggerQuit
	default:
		fmt.Fprintf(c.out, "Unknown command %s\n", line)
	}
	// step command was not executed.
	return 0, nil
}
