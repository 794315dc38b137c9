package nes

// defaultNMIDelay is the number of PPU dots between the NMI line rising and
// the CPU latch being armed. Tuned against test ROMs, not derived.
const defaultNMIDelay = 15

// Config holds tunables of the core.
type Config struct {
	// NMIDelay is the number of dots between VBlank (with NMI enabled) and NMI delivery.
	NMIDelay int
	// Trace keeps a formatted line of the last executed instruction.
	Trace bool
}

// DefaultConfig returns the configuration used by the host binary unless overridden.
func DefaultConfig() Config {
	return Config{NMIDelay: defaultNMIDelay}
}
