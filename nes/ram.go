package nes

// RAM is a plain byte array owned by one of the buses.
type RAM struct {
	data []byte
}

// NewRAM creates a RAM of the given size in bytes.
func NewRAM(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// read reads data
func (r *RAM) read(address uint16) byte {
	return r.data[int(address)%len(r.data)]
}

// write writes data
func (r *RAM) write(address uint16, x byte) {
	r.data[int(address)%len(r.data)] = x
}
