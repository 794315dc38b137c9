package nes

import "github.com/pkg/errors"

// Mapper is the cartridge board seen from both buses. Addresses below $2000
// select the character data, addresses from $8000 select the program data.
type Mapper interface {
	Read(address uint16) (byte, error)
	Write(address uint16, data byte) error
}

// NewMapper creates the board logic for the cartridge.
func NewMapper(c *Cartridge) (Mapper, error) {
	switch c.mapper {
	case 0:
		return newMapper0(c), nil
	case 2:
		return newMapper2(c), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedOperation, "mapper %d is not supported", c.mapper)
}
