package nes

import (
	"testing"

	"github.com/pkg/errors"
)

type recordingPort struct {
	value   byte
	written []byte
}

func (p *recordingPort) Read() byte      { return p.value }
func (p *recordingPort) Write(data byte) { p.written = append(p.written, data) }

func TestCPUBusWRAMMirror(t *testing.T) {
	console := newTestConsole(t, nil)
	bus := console.cpuBus
	if err := bus.write(0x0001, 0x5A); err != nil {
		t.Fatal(err)
	}
	for _, address := range []uint16{0x0001, 0x0801, 0x1001, 0x1801} {
		got, err := bus.read(address)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0x5A {
			t.Errorf("read(0x%04x)=0x%02x, want=0x5a", address, got)
		}
	}
}

func TestCPUBusPPURegisterMirror(t *testing.T) {
	console := newTestConsole(t, nil)
	bus := console.cpuBus
	// $3FFE mirrors PPUADDR.
	if err := bus.write(0x3FFE, 0x23); err != nil {
		t.Fatal(err)
	}
	if err := bus.write(0x3FFE, 0x45); err != nil {
		t.Fatal(err)
	}
	if console.ppu.v != 0x2345 {
		t.Errorf("v=0x%04x, want=0x2345", console.ppu.v)
	}
	got, err := bus.read(0x2000)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("PPUCTRL read=0x%02x, want=0", got)
	}
}

func TestCPUBusPorts(t *testing.T) {
	console := newTestConsole(t, nil)
	bus := console.cpuBus
	for _, address := range []uint16{0x4015, 0x4016, 0x4017, 0x5000} {
		got, err := bus.read(address)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Errorf("read(0x%04x)=0x%02x with nothing connected, want=0", address, got)
		}
	}
	p0 := &recordingPort{value: 0x41}
	p1 := &recordingPort{value: 0x40}
	console.ConnectPort(0, p0)
	console.ConnectPort(1, p1)
	if got, _ := bus.read(0x4016); got != 0x41 {
		t.Errorf("read(0x4016)=0x%02x, want=0x41", got)
	}
	if got, _ := bus.read(0x4017); got != 0x40 {
		t.Errorf("read(0x4017)=0x%02x, want=0x40", got)
	}
	if err := bus.write(0x4016, 0x01); err != nil {
		t.Fatal(err)
	}
	if len(p0.written) != 1 || len(p1.written) != 1 {
		t.Errorf("strobe reached ports %v and %v, want one write each", p0.written, p1.written)
	}
	if err := bus.write(0x4017, 0x40); err != nil {
		t.Fatal(err)
	}
	if len(p1.written) != 1 {
		t.Errorf("$4017 write reached port 1: %v", p1.written)
	}
}

func TestCPUBusCartridge(t *testing.T) {
	console := newTestConsole(t, func(prg, chr []byte) {
		prg[0] = 0x99
	})
	bus := console.cpuBus
	for _, address := range []uint16{0x8000, 0xC000} {
		got, err := bus.read(address)
		if err != nil {
			t.Fatal(err)
		}
		if got != 0x99 {
			t.Errorf("read(0x%04x)=0x%02x, want=0x99", address, got)
		}
	}
	// Writes to ROM are dropped.
	if err := bus.write(0x8000, 0x00); err != nil {
		t.Errorf("write(0x8000) failed: %v", err)
	}
	if got, _ := bus.read(0x8000); got != 0x99 {
		t.Errorf("ROM changed to 0x%02x", got)
	}
	if _, err := bus.read(0x6000); errors.Cause(err) != ErrOutOfRangeAddress {
		t.Errorf("read(0x6000) error=%v, want %v", err, ErrOutOfRangeAddress)
	}
}

func TestRead16Wrap(t *testing.T) {
	console := newTestConsole(t, nil)
	poke(console, 0x00FF, 0x34)
	poke(console, 0x0000, 0x12)
	poke(console, 0x0100, 0x56)
	got, err := console.cpuBus.read16Wrap(0x00FF)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1234 {
		t.Errorf("read16Wrap(0x00ff)=0x%04x, want=0x1234", got)
	}
	got, err = console.cpuBus.read16(0x00FF)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x5634 {
		t.Errorf("read16(0x00ff)=0x%04x, want=0x5634", got)
	}
}
