package nes

import (
	"bytes"
	"strings"
	"testing"
)

func newTestDebugConsole(t *testing.T, commands string) (*DebugConsole, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	return NewDebugConsole(newTestConsole(t, nil), strings.NewReader(commands), out), out
}

func TestDebugConsoleBreakpoint(t *testing.T) {
	c, out := newTestDebugConsole(t, "br 0x8002\ns 10\np cpu\nq\n")
	for i := 0; i < 3; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("command %d failed: %v", i, err)
		}
	}
	if c.cpu.pc != 0x8002 {
		t.Errorf("pc=0x%04x, want=0x8002", c.cpu.pc)
	}
	for _, want := range []string{"Break at: 0x8002", "PC=0x8002", "Last: 8001  EA NOP"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
	if _, err := c.Step(); err != ErrDebuggerQuit {
		t.Errorf("quit: error=%v, want %v", err, ErrDebuggerQuit)
	}
	if _, err := c.Step(); err != ErrDebuggerQuit {
		t.Errorf("EOF: error=%v, want %v", err, ErrDebuggerQuit)
	}
}

func TestDebugConsoleStep(t *testing.T) {
	c, out := newTestDebugConsole(t, "s\ns 3d\ns x\n")
	cycles, err := c.Step()
	if err != nil || cycles != 2 {
		t.Fatalf("s: cycles=%d err=%v, want 2 cycles", cycles, err)
	}
	cycles, err = c.Step()
	if err != nil || cycles != 6 {
		t.Fatalf("s 3d: cycles=%d err=%v, want 6 cycles", cycles, err)
	}
	// One print per step plus the summary.
	if got := strings.Count(out.String(), "Executed cycles:"); got != 5 {
		t.Errorf("printed state %d times, want=5", got)
	}
	if _, err := c.Step(); err == nil {
		t.Error("s x succeeded")
	}
	if c.cpu.pc != 0x8004 {
		t.Errorf("pc=0x%04x, want=0x8004", c.cpu.pc)
	}
}

func TestDebugConsoleReset(t *testing.T) {
	c, out := newTestDebugConsole(t, "s 5\nr\np\nbr zz\nfoo\n")
	for i := 0; i < 5; i++ {
		if _, err := c.Step(); err != nil {
			t.Fatalf("command %d failed: %v", i, err)
		}
	}
	if c.cpu.pc != 0x8000 {
		t.Errorf("pc=0x%04x after reset, want=0x8000", c.cpu.pc)
	}
	for _, want := range []string{"invalid breakpoint", "Unknown command foo"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}

func TestDebugConsoleStepCountOutOfRange(t *testing.T) {
	c, _ := newTestDebugConsole(t, "s 99999999999999999999\n")
	if _, err := c.Step(); err == nil {
		t.Error("step count out of range succeeded")
	}
	if c.cpu.pc != 0x8000 {
		t.Errorf("pc=0x%04x, want=0x8000", c.cpu.pc)
	}
}
