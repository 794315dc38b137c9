package nes

// IOPort is a device on the $4016/$4017 controller ports. Its semantics are
// owned by the host; the core only routes accesses.
type IOPort interface {
	Read() byte
	Write(data byte)
}

// openPort is attached until the host connects a device.
type openPort struct{}

func (openPort) Read() byte      { return 0 }
func (openPort) Write(data byte) {}
