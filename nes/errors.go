package nes

import "github.com/pkg/errors"

// Error taxonomy of the core. Call sites wrap these with context, use
// errors.Cause to classify.
var (
	// ErrMalformedROM is returned when an iNES image is inconsistent with its header.
	ErrMalformedROM = errors.New("malformed ROM")
	// ErrUnsupportedOperation is returned by a mapper for a write it cannot serve.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrIllegalOpcode is returned when the CPU fetches a jam (KIL) opcode.
	ErrIllegalOpcode = errors.New("illegal opcode")
	// ErrOutOfRangeAddress is returned for an access outside of a mapped window.
	ErrOutOfRangeAddress = errors.New("out of range address")
)
