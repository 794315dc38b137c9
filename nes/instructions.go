package nes

import "github.com/pkg/errors"

// instructions is indexed by opcode. Sizes, base cycles and page-cross
// penalties follow the NMOS 6502 timing tables.
var instructions = [256]instruction{
	{"BRK", implied, 1, 7, 0, (*CPU).brk},     // 0x00
	{"ORA", indirectX, 2, 6, 0, (*CPU).ora},   // 0x01
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x02
	{"SLO", indirectX, 2, 8, 0, (*CPU).slo},   // 0x03
	{"NOP", zeropage, 2, 3, 0, (*CPU).nop},    // 0x04
	{"ORA", zeropage, 2, 3, 0, (*CPU).ora},    // 0x05
	{"ASL", zeropage, 2, 5, 0, (*CPU).asl},    // 0x06
	{"SLO", zeropage, 2, 5, 0, (*CPU).slo},    // 0x07
	{"PHP", implied, 1, 3, 0, (*CPU).php},     // 0x08
	{"ORA", immediate, 2, 2, 0, (*CPU).ora},   // 0x09
	{"ASL", accumulator, 1, 2, 0, (*CPU).asl}, // 0x0A
	{"ANC", immediate, 2, 2, 0, (*CPU).anc},   // 0x0B
	{"NOP", absolute, 3, 4, 0, (*CPU).nop},    // 0x0C
	{"ORA", absolute, 3, 4, 0, (*CPU).ora},    // 0x0D
	{"ASL", absolute, 3, 6, 0, (*CPU).asl},    // 0x0E
	{"SLO", absolute, 3, 6, 0, (*CPU).slo},    // 0x0F
	{"BPL", relative, 2, 2, 1, (*CPU).bpl},    // 0x10
	{"ORA", indirectY, 2, 5, 1, (*CPU).ora},   // 0x11
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x12
	{"SLO", indirectY, 2, 8, 0, (*CPU).slo},   // 0x13
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0x14
	{"ORA", zeropageX, 2, 4, 0, (*CPU).ora},   // 0x15
	{"ASL", zeropageX, 2, 6, 0, (*CPU).asl},   // 0x16
	{"SLO", zeropageX, 2, 6, 0, (*CPU).slo},   // 0x17
	{"CLC", implied, 1, 2, 0, (*CPU).clc},     // 0x18
	{"ORA", absoluteY, 3, 4, 1, (*CPU).ora},   // 0x19
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0x1A
	{"SLO", absoluteY, 3, 7, 0, (*CPU).slo},   // 0x1B
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0x1C
	{"ORA", absoluteX, 3, 4, 1, (*CPU).ora},   // 0x1D
	{"ASL", absoluteX, 3, 7, 0, (*CPU).asl},   // 0x1E
	{"SLO", absoluteX, 3, 7, 0, (*CPU).slo},   // 0x1F
	{"JSR", absolute, 3, 6, 0, (*CPU).jsr},    // 0x20
	{"AND", indirectX, 2, 6, 0, (*CPU).and},   // 0x21
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x22
	{"RLA", indirectX, 2, 8, 0, (*CPU).rla},   // 0x23
	{"BIT", zeropage, 2, 3, 0, (*CPU).bit},    // 0x24
	{"AND", zeropage, 2, 3, 0, (*CPU).and},    // 0x25
	{"ROL", zeropage, 2, 5, 0, (*CPU).rol},    // 0x26
	{"RLA", zeropage, 2, 5, 0, (*CPU).rla},    // 0x27
	{"PLP", implied, 1, 4, 0, (*CPU).plp},     // 0x28
	{"AND", immediate, 2, 2, 0, (*CPU).and},   // 0x29
	{"ROL", accumulator, 1, 2, 0, (*CPU).rol}, // 0x2A
	{"ANC", immediate, 2, 2, 0, (*CPU).anc},   // 0x2B
	{"BIT", absolute, 3, 4, 0, (*CPU).bit},    // 0x2C
	{"AND", absolute, 3, 4, 0, (*CPU).and},    // 0x2D
	{"ROL", absolute, 3, 6, 0, (*CPU).rol},    // 0x2E
	{"RLA", absolute, 3, 6, 0, (*CPU).rla},    // 0x2F
	{"BMI", relative, 2, 2, 1, (*CPU).bmi},    // 0x30
	{"AND", indirectY, 2, 5, 1, (*CPU).and},   // 0x31
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x32
	{"RLA", indirectY, 2, 8, 0, (*CPU).rla},   // 0x33
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0x34
	{"AND", zeropageX, 2, 4, 0, (*CPU).and},   // 0x35
	{"ROL", zeropageX, 2, 6, 0, (*CPU).rol},   // 0x36
	{"RLA", zeropageX, 2, 6, 0, (*CPU).rla},   // 0x37
	{"SEC", implied, 1, 2, 0, (*CPU).sec},     // 0x38
	{"AND", absoluteY, 3, 4, 1, (*CPU).and},   // 0x39
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0x3A
	{"RLA", absoluteY, 3, 7, 0, (*CPU).rla},   // 0x3B
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0x3C
	{"AND", absoluteX, 3, 4, 1, (*CPU).and},   // 0x3D
	{"ROL", absoluteX, 3, 7, 0, (*CPU).rol},   // 0x3E
	{"RLA", absoluteX, 3, 7, 0, (*CPU).rla},   // 0x3F
	{"RTI", implied, 1, 6, 0, (*CPU).rti},     // 0x40
	{"EOR", indirectX, 2, 6, 0, (*CPU).eor},   // 0x41
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x42
	{"SRE", indirectX, 2, 8, 0, (*CPU).sre},   // 0x43
	{"NOP", zeropage, 2, 3, 0, (*CPU).nop},    // 0x44
	{"EOR", zeropage, 2, 3, 0, (*CPU).eor},    // 0x45
	{"LSR", zeropage, 2, 5, 0, (*CPU).lsr},    // 0x46
	{"SRE", zeropage, 2, 5, 0, (*CPU).sre},    // 0x47
	{"PHA", implied, 1, 3, 0, (*CPU).pha},     // 0x48
	{"EOR", immediate, 2, 2, 0, (*CPU).eor},   // 0x49
	{"LSR", accumulator, 1, 2, 0, (*CPU).lsr}, // 0x4A
	{"ALR", immediate, 2, 2, 0, (*CPU).alr},   // 0x4B
	{"JMP", absolute, 3, 3, 0, (*CPU).jmp},    // 0x4C
	{"EOR", absolute, 3, 4, 0, (*CPU).eor},    // 0x4D
	{"LSR", absolute, 3, 6, 0, (*CPU).lsr},    // 0x4E
	{"SRE", absolute, 3, 6, 0, (*CPU).sre},    // 0x4F
	{"BVC", relative, 2, 2, 1, (*CPU).bvc},    // 0x50
	{"EOR", indirectY, 2, 5, 1, (*CPU).eor},   // 0x51
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x52
	{"SRE", indirectY, 2, 8, 0, (*CPU).sre},   // 0x53
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0x54
	{"EOR", zeropageX, 2, 4, 0, (*CPU).eor},   // 0x55
	{"LSR", zeropageX, 2, 6, 0, (*CPU).lsr},   // 0x56
	{"SRE", zeropageX, 2, 6, 0, (*CPU).sre},   // 0x57
	{"CLI", implied, 1, 2, 0, (*CPU).cli},     // 0x58
	{"EOR", absoluteY, 3, 4, 1, (*CPU).eor},   // 0x59
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0x5A
	{"SRE", absoluteY, 3, 7, 0, (*CPU).sre},   // 0x5B
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0x5C
	{"EOR", absoluteX, 3, 4, 1, (*CPU).eor},   // 0x5D
	{"LSR", absoluteX, 3, 7, 0, (*CPU).lsr},   // 0x5E
	{"SRE", absoluteX, 3, 7, 0, (*CPU).sre},   // 0x5F
	{"RTS", implied, 1, 6, 0, (*CPU).rts},     // 0x60
	{"ADC", indirectX, 2, 6, 0, (*CPU).adc},   // 0x61
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x62
	{"RRA", indirectX, 2, 8, 0, (*CPU).rra},   // 0x63
	{"NOP", zeropage, 2, 3, 0, (*CPU).nop},    // 0x64
	{"ADC", zeropage, 2, 3, 0, (*CPU).adc},    // 0x65
	{"ROR", zeropage, 2, 5, 0, (*CPU).ror},    // 0x66
	{"RRA", zeropage, 2, 5, 0, (*CPU).rra},    // 0x67
	{"PLA", implied, 1, 4, 0, (*CPU).pla},     // 0x68
	{"ADC", immediate, 2, 2, 0, (*CPU).adc},   // 0x69
	{"ROR", accumulator, 1, 2, 0, (*CPU).ror}, // 0x6A
	{"ARR", immediate, 2, 2, 0, (*CPU).arr},   // 0x6B
	{"JMP", indirect, 3, 5, 0, (*CPU).jmp},    // 0x6C
	{"ADC", absolute, 3, 4, 0, (*CPU).adc},    // 0x6D
	{"ROR", absolute, 3, 6, 0, (*CPU).ror},    // 0x6E
	{"RRA", absolute, 3, 6, 0, (*CPU).rra},    // 0x6F
	{"BVS", relative, 2, 2, 1, (*CPU).bvs},    // 0x70
	{"ADC", indirectY, 2, 5, 1, (*CPU).adc},   // 0x71
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x72
	{"RRA", indirectY, 2, 8, 0, (*CPU).rra},   // 0x73
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0x74
	{"ADC", zeropageX, 2, 4, 0, (*CPU).adc},   // 0x75
	{"ROR", zeropageX, 2, 6, 0, (*CPU).ror},   // 0x76
	{"RRA", zeropageX, 2, 6, 0, (*CPU).rra},   // 0x77
	{"SEI", implied, 1, 2, 0, (*CPU).sei},     // 0x78
	{"ADC", absoluteY, 3, 4, 1, (*CPU).adc},   // 0x79
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0x7A
	{"RRA", absoluteY, 3, 7, 0, (*CPU).rra},   // 0x7B
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0x7C
	{"ADC", absoluteX, 3, 4, 1, (*CPU).adc},   // 0x7D
	{"ROR", absoluteX, 3, 7, 0, (*CPU).ror},   // 0x7E
	{"RRA", absoluteX, 3, 7, 0, (*CPU).rra},   // 0x7F
	{"NOP", immediate, 2, 2, 0, (*CPU).nop},   // 0x80
	{"STA", indirectX, 2, 6, 0, (*CPU).sta},   // 0x81
	{"NOP", immediate, 2, 2, 0, (*CPU).nop},   // 0x82
	{"SAX", indirectX, 2, 6, 0, (*CPU).sax},   // 0x83
	{"STY", zeropage, 2, 3, 0, (*CPU).sty},    // 0x84
	{"STA", zeropage, 2, 3, 0, (*CPU).sta},    // 0x85
	{"STX", zeropage, 2, 3, 0, (*CPU).stx},    // 0x86
	{"SAX", zeropage, 2, 3, 0, (*CPU).sax},    // 0x87
	{"DEY", implied, 1, 2, 0, (*CPU).dey},     // 0x88
	{"NOP", immediate, 2, 2, 0, (*CPU).nop},   // 0x89
	{"TXA", implied, 1, 2, 0, (*CPU).txa},     // 0x8A
	{"XAA", immediate, 2, 2, 0, (*CPU).xaa},   // 0x8B
	{"STY", absolute, 3, 4, 0, (*CPU).sty},    // 0x8C
	{"STA", absolute, 3, 4, 0, (*CPU).sta},    // 0x8D
	{"STX", absolute, 3, 4, 0, (*CPU).stx},    // 0x8E
	{"SAX", absolute, 3, 4, 0, (*CPU).sax},    // 0x8F
	{"BCC", relative, 2, 2, 1, (*CPU).bcc},    // 0x90
	{"STA", indirectY, 2, 6, 0, (*CPU).sta},   // 0x91
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0x92
	{"AHX", indirectY, 2, 6, 0, (*CPU).ahx},   // 0x93
	{"STY", zeropageX, 2, 4, 0, (*CPU).sty},   // 0x94
	{"STA", zeropageX, 2, 4, 0, (*CPU).sta},   // 0x95
	{"STX", zeropageY, 2, 4, 0, (*CPU).stx},   // 0x96
	{"SAX", zeropageY, 2, 4, 0, (*CPU).sax},   // 0x97
	{"TYA", implied, 1, 2, 0, (*CPU).tya},     // 0x98
	{"STA", absoluteY, 3, 5, 0, (*CPU).sta},   // 0x99
	{"TXS", implied, 1, 2, 0, (*CPU).txs},     // 0x9A
	{"TAS", absoluteY, 3, 5, 0, (*CPU).tas},   // 0x9B
	{"SHY", absoluteX, 3, 5, 0, (*CPU).shy},   // 0x9C
	{"STA", absoluteX, 3, 5, 0, (*CPU).sta},   // 0x9D
	{"SHX", absoluteY, 3, 5, 0, (*CPU).shx},   // 0x9E
	{"AHX", absoluteY, 3, 5, 0, (*CPU).ahx},   // 0x9F
	{"LDY", immediate, 2, 2, 0, (*CPU).ldy},   // 0xA0
	{"LDA", indirectX, 2, 6, 0, (*CPU).lda},   // 0xA1
	{"LDX", immediate, 2, 2, 0, (*CPU).ldx},   // 0xA2
	{"LAX", indirectX, 2, 6, 0, (*CPU).lax},   // 0xA3
	{"LDY", zeropage, 2, 3, 0, (*CPU).ldy},    // 0xA4
	{"LDA", zeropage, 2, 3, 0, (*CPU).lda},    // 0xA5
	{"LDX", zeropage, 2, 3, 0, (*CPU).ldx},    // 0xA6
	{"LAX", zeropage, 2, 3, 0, (*CPU).lax},    // 0xA7
	{"TAY", implied, 1, 2, 0, (*CPU).tay},     // 0xA8
	{"LDA", immediate, 2, 2, 0, (*CPU).lda},   // 0xA9
	{"TAX", implied, 1, 2, 0, (*CPU).tax},     // 0xAA
	{"LAX", immediate, 2, 2, 0, (*CPU).lax},   // 0xAB
	{"LDY", absolute, 3, 4, 0, (*CPU).ldy},    // 0xAC
	{"LDA", absolute, 3, 4, 0, (*CPU).lda},    // 0xAD
	{"LDX", absolute, 3, 4, 0, (*CPU).ldx},    // 0xAE
	{"LAX", absolute, 3, 4, 0, (*CPU).lax},    // 0xAF
	{"BCS", relative, 2, 2, 1, (*CPU).bcs},    // 0xB0
	{"LDA", indirectY, 2, 5, 1, (*CPU).lda},   // 0xB1
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0xB2
	{"LAX", indirectY, 2, 5, 1, (*CPU).lax},   // 0xB3
	{"LDY", zeropageX, 2, 4, 0, (*CPU).ldy},   // 0xB4
	{"LDA", zeropageX, 2, 4, 0, (*CPU).lda},   // 0xB5
	{"LDX", zeropageY, 2, 4, 0, (*CPU).ldx},   // 0xB6
	{"LAX", zeropageY, 2, 4, 0, (*CPU).lax},   // 0xB7
	{"CLV", implied, 1, 2, 0, (*CPU).clv},     // 0xB8
	{"LDA", absoluteY, 3, 4, 1, (*CPU).lda},   // 0xB9
	{"TSX", implied, 1, 2, 0, (*CPU).tsx},     // 0xBA
	{"LAS", absoluteY, 3, 4, 1, (*CPU).las},   // 0xBB
	{"LDY", absoluteX, 3, 4, 1, (*CPU).ldy},   // 0xBC
	{"LDA", absoluteX, 3, 4, 1, (*CPU).lda},   // 0xBD
	{"LDX", absoluteY, 3, 4, 1, (*CPU).ldx},   // 0xBE
	{"LAX", absoluteY, 3, 4, 1, (*CPU).lax},   // 0xBF
	{"CPY", immediate, 2, 2, 0, (*CPU).cpy},   // 0xC0
	{"CMP", indirectX, 2, 6, 0, (*CPU).cmp},   // 0xC1
	{"NOP", immediate, 2, 2, 0, (*CPU).nop},   // 0xC2
	{"DCP", indirectX, 2, 8, 0, (*CPU).dcp},   // 0xC3
	{"CPY", zeropage, 2, 3, 0, (*CPU).cpy},    // 0xC4
	{"CMP", zeropage, 2, 3, 0, (*CPU).cmp},    // 0xC5
	{"DEC", zeropage, 2, 5, 0, (*CPU).dec},    // 0xC6
	{"DCP", zeropage, 2, 5, 0, (*CPU).dcp},    // 0xC7
	{"INY", implied, 1, 2, 0, (*CPU).iny},     // 0xC8
	{"CMP", immediate, 2, 2, 0, (*CPU).cmp},   // 0xC9
	{"DEX", implied, 1, 2, 0, (*CPU).dex},     // 0xCA
	{"AXS", immediate, 2, 2, 0, (*CPU).axs},   // 0xCB
	{"CPY", absolute, 3, 4, 0, (*CPU).cpy},    // 0xCC
	{"CMP", absolute, 3, 4, 0, (*CPU).cmp},    // 0xCD
	{"DEC", absolute, 3, 6, 0, (*CPU).dec},    // 0xCE
	{"DCP", absolute, 3, 6, 0, (*CPU).dcp},    // 0xCF
	{"BNE", relative, 2, 2, 1, (*CPU).bne},    // 0xD0
	{"CMP", indirectY, 2, 5, 1, (*CPU).cmp},   // 0xD1
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0xD2
	{"DCP", indirectY, 2, 8, 0, (*CPU).dcp},   // 0xD3
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0xD4
	{"CMP", zeropageX, 2, 4, 0, (*CPU).cmp},   // 0xD5
	{"DEC", zeropageX, 2, 6, 0, (*CPU).dec},   // 0xD6
	{"DCP", zeropageX, 2, 6, 0, (*CPU).dcp},   // 0xD7
	{"CLD", implied, 1, 2, 0, (*CPU).cld},     // 0xD8
	{"CMP", absoluteY, 3, 4, 1, (*CPU).cmp},   // 0xD9
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0xDA
	{"DCP", absoluteY, 3, 7, 0, (*CPU).dcp},   // 0xDB
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0xDC
	{"CMP", absoluteX, 3, 4, 1, (*CPU).cmp},   // 0xDD
	{"DEC", absoluteX, 3, 7, 0, (*CPU).dec},   // 0xDE
	{"DCP", absoluteX, 3, 7, 0, (*CPU).dcp},   // 0xDF
	{"CPX", immediate, 2, 2, 0, (*CPU).cpx},   // 0xE0
	{"SBC", indirectX, 2, 6, 0, (*CPU).sbc},   // 0xE1
	{"NOP", immediate, 2, 2, 0, (*CPU).nop},   // 0xE2
	{"ISC", indirectX, 2, 8, 0, (*CPU).isc},   // 0xE3
	{"CPX", zeropage, 2, 3, 0, (*CPU).cpx},    // 0xE4
	{"SBC", zeropage, 2, 3, 0, (*CPU).sbc},    // 0xE5
	{"INC", zeropage, 2, 5, 0, (*CPU).inc},    // 0xE6
	{"ISC", zeropage, 2, 5, 0, (*CPU).isc},    // 0xE7
	{"INX", implied, 1, 2, 0, (*CPU).inx},     // 0xE8
	{"SBC", immediate, 2, 2, 0, (*CPU).sbc},   // 0xE9
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0xEA
	{"SBC", immediate, 2, 2, 0, (*CPU).sbc},   // 0xEB
	{"CPX", absolute, 3, 4, 0, (*CPU).cpx},    // 0xEC
	{"SBC", absolute, 3, 4, 0, (*CPU).sbc},    // 0xED
	{"INC", absolute, 3, 6, 0, (*CPU).inc},    // 0xEE
	{"ISC", absolute, 3, 6, 0, (*CPU).isc},    // 0xEF
	{"BEQ", relative, 2, 2, 1, (*CPU).beq},    // 0xF0
	{"SBC", indirectY, 2, 5, 1, (*CPU).sbc},   // 0xF1
	{"KIL", implied, 1, 2, 0, (*CPU).kil},     // 0xF2
	{"ISC", indirectY, 2, 8, 0, (*CPU).isc},   // 0xF3
	{"NOP", zeropageX, 2, 4, 0, (*CPU).nop},   // 0xF4
	{"SBC", zeropageX, 2, 4, 0, (*CPU).sbc},   // 0xF5
	{"INC", zeropageX, 2, 6, 0, (*CPU).inc},   // 0xF6
	{"ISC", zeropageX, 2, 6, 0, (*CPU).isc},   // 0xF7
	{"SED", implied, 1, 2, 0, (*CPU).sed},     // 0xF8
	{"SBC", absoluteY, 3, 4, 1, (*CPU).sbc},   // 0xF9
	{"NOP", implied, 1, 2, 0, (*CPU).nop},     // 0xFA
	{"ISC", absoluteY, 3, 7, 0, (*CPU).isc},   // 0xFB
	{"NOP", absoluteX, 3, 4, 1, (*CPU).nop},   // 0xFC
	{"SBC", absoluteX, 3, 4, 1, (*CPU).sbc},   // 0xFD
	{"INC", absoluteX, 3, 7, 0, (*CPU).inc},   // 0xFE
	{"ISC", absoluteX, 3, 7, 0, (*CPU).isc},   // 0xFF
}

// readModifyWrite applies f to the operand, which is the accumulator in
// accumulator mode, and stores the result back.
func (c *CPU) readModifyWrite(info *stepInfo, f func(byte) byte) (byte, error) {
	if info.mode == accumulator {
		c.a = f(c.a)
		return c.a, nil
	}
	x, err := c.bus.read(info.address)
	if err != nil {
		return 0, err
	}
	x = f(x)
	if err := c.bus.write(info.address, x); err != nil {
		return 0, err
	}
	return x, nil
}

func (c *CPU) shl(x byte) byte {
	c.p.c = x&0x80 != 0
	return x << 1
}

func (c *CPU) shr(x byte) byte {
	c.p.c = x&1 == 1
	return x >> 1
}

func (c *CPU) rotl(x byte) byte {
	carry := c.p.c
	c.p.c = x&0x80 != 0
	x <<= 1
	if carry {
		x |= 1
	}
	return x
}

func (c *CPU) rotr(x byte) byte {
	carry := c.p.c
	c.p.c = x&1 == 1
	x >>= 1
	if carry {
		x |= 0x80
	}
	return x
}

func increment(x byte) byte { return x + 1 }
func decrement(x byte) byte { return x - 1 }

// add adds b and the carry to the accumulator. Subtraction adds the complement.
func (c *CPU) add(b byte) {
	a := c.a
	sum := uint16(a) + uint16(b)
	if c.p.c {
		sum++
	}
	c.a = byte(sum)
	c.setZN(c.a)
	c.p.c = sum > 0xFF
	// overflown when both inputs share a sign the result does not.
	c.p.v = (a^b)&0x80 == 0 && (a^c.a)&0x80 != 0
}

func (c *CPU) compare(r, data byte) {
	c.setZN(r - data)
	c.p.c = r >= data
}

func (c *CPU) branch(cond bool, info *stepInfo) error {
	if cond {
		c.pc = info.address
		c.addBranchCycles(info)
	}
	return nil
}

// ADC - Add with Carry.
func (c *CPU) adc(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.add(data)
	return nil
}

// AND - And.
func (c *CPU) and(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a &= data
	c.setZN(c.a)
	return nil
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.shl)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(info *stepInfo) error { return c.branch(!c.p.c, info) }

// BCS - Branch on Carry Set.
func (c *CPU) bcs(info *stepInfo) error { return c.branch(c.p.c, info) }

// BEQ - Branch on Equal.
func (c *CPU) beq(info *stepInfo) error { return c.branch(c.p.z, info) }

// BIT - test BITS.
func (c *CPU) bit(info *stepInfo) error {
	x, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.setN(x)
	c.setZ(c.a & x)
	c.p.v = (x>>6)&1 == 1
	return nil
}

// BMI - Branch on Minus.
func (c *CPU) bmi(info *stepInfo) error { return c.branch(c.p.n, info) }

// BNE - Branch on Not Equal.
func (c *CPU) bne(info *stepInfo) error { return c.branch(!c.p.z, info) }

// BPL - Branch on Plus.
func (c *CPU) bpl(info *stepInfo) error { return c.branch(!c.p.n, info) }

// BRK - Break Interrupt.
func (c *CPU) brk(info *stepInfo) error {
	if err := c.push16(c.pc); err != nil {
		return err
	}
	if err := c.push(c.p.encode() | 0x10); err != nil {
		return err
	}
	c.p.i = true
	data, err := c.bus.read16(irqVector)
	if err != nil {
		return err
	}
	c.pc = data
	return nil
}

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(info *stepInfo) error { return c.branch(!c.p.v, info) }

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(info *stepInfo) error { return c.branch(c.p.v, info) }

// CLC - Clear Carry.
func (c *CPU) clc(info *stepInfo) error {
	c.p.c = false
	return nil
}

// CLD - Clear Decimal.
func (c *CPU) cld(info *stepInfo) error {
	c.p.d = false
	return nil
}

// CLI - Clear Interrupt.
func (c *CPU) cli(info *stepInfo) error {
	c.p.i = false
	return nil
}

// CLV - Clear Overflow.
func (c *CPU) clv(info *stepInfo) error {
	c.p.v = false
	return nil
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.compare(c.a, data)
	return nil
}

// CPX - Compare X register.
func (c *CPU) cpx(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.compare(c.x, data)
	return nil
}

// CPY - Compare Y register.
func (c *CPU) cpy(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.compare(c.y, data)
	return nil
}

// DEC - Decrement Memory.
func (c *CPU) dec(info *stepInfo) error {
	x, err := c.readModifyWrite(info, decrement)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// DEX - Decrement X Register.
func (c *CPU) dex(info *stepInfo) error {
	c.x--
	c.setZN(c.x)
	return nil
}

// DEY - Decrement Y Register.
func (c *CPU) dey(info *stepInfo) error {
	c.y--
	c.setZN(c.y)
	return nil
}

// EOR - Bitwise Exclusive OR.
func (c *CPU) eor(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a ^= data
	c.setZN(c.a)
	return nil
}

// INC - Increment Memory.
func (c *CPU) inc(info *stepInfo) error {
	x, err := c.readModifyWrite(info, increment)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// INX - Increment X Register.
func (c *CPU) inx(info *stepInfo) error {
	c.x++
	c.setZN(c.x)
	return nil
}

// INY - Increment Y Register.
func (c *CPU) iny(info *stepInfo) error {
	c.y++
	c.setZN(c.y)
	return nil
}

// JMP - Jump.
func (c *CPU) jmp(info *stepInfo) error {
	c.pc = info.address
	return nil
}

// JSR - Jump to Subroutine.
func (c *CPU) jsr(info *stepInfo) error {
	if err := c.push16(c.pc - 1); err != nil {
		return err
	}
	c.pc = info.address
	return nil
}

// LDA - Load Accumulator.
func (c *CPU) lda(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a = data
	c.setZN(c.a)
	return nil
}

// LDX - Load X Register.
func (c *CPU) ldx(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.x = data
	c.setZN(c.x)
	return nil
}

// LDY - Load Y Register.
func (c *CPU) ldy(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.y = data
	c.setZN(c.y)
	return nil
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.shr)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// NOP - No Operation. Unofficial variants skip their operand bytes without reading.
func (c *CPU) nop(info *stepInfo) error {
	return nil
}

// ORA - Bitwise OR with Accumulator.
func (c *CPU) ora(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a |= data
	c.setZN(c.a)
	return nil
}

// PHA - Push Accumulator.
func (c *CPU) pha(info *stepInfo) error {
	return c.push(c.a)
}

// PHP - Push Processor Status, the pushed copy has the break bit set.
func (c *CPU) php(info *stepInfo) error {
	return c.push(c.p.encode() | 0x10)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(info *stepInfo) error {
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.a = data
	c.setZN(c.a)
	return nil
}

// PLP - Pull Processor Status.
func (c *CPU) plp(info *stepInfo) error {
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.p.decodeFrom(data &^ 0x10)
	return nil
}

// ROL - Rotate Left.
func (c *CPU) rol(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.rotl)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// ROR - Rotate Right.
func (c *CPU) ror(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.rotr)
	if err != nil {
		return err
	}
	c.setZN(x)
	return nil
}

// RTI - Return from Interrupt.
func (c *CPU) rti(info *stepInfo) error {
	p, err := c.pop()
	if err != nil {
		return err
	}
	c.p.decodeFrom(p &^ 0x10)
	pc, err := c.pop16()
	if err != nil {
		return err
	}
	c.pc = pc
	return nil
}

// RTS - Return from Subroutine.
func (c *CPU) rts(info *stepInfo) error {
	pc, err := c.pop16()
	if err != nil {
		return err
	}
	c.pc = pc + 1
	return nil
}

// SBC - Subtract with carry.
func (c *CPU) sbc(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.add(^data)
	return nil
}

// SEC - Set Carry.
func (c *CPU) sec(info *stepInfo) error {
	c.p.c = true
	return nil
}

// SED - Set Decimal. The flag is kept but the NES ALU ignores it.
func (c *CPU) sed(info *stepInfo) error {
	c.p.d = true
	return nil
}

// SEI - Set Interrupt.
func (c *CPU) sei(info *stepInfo) error {
	c.p.i = true
	return nil
}

// STA - Store A Register.
func (c *CPU) sta(info *stepInfo) error {
	return c.bus.write(info.address, c.a)
}

// STX - Store X Register.
func (c *CPU) stx(info *stepInfo) error {
	return c.bus.write(info.address, c.x)
}

// STY - Store Y Register.
func (c *CPU) sty(info *stepInfo) error {
	return c.bus.write(info.address, c.y)
}

// TAX - Transfer A to X.
func (c *CPU) tax(info *stepInfo) error {
	c.x = c.a
	c.setZN(c.x)
	return nil
}

// TAY - Transfer A to Y.
func (c *CPU) tay(info *stepInfo) error {
	c.y = c.a
	c.setZN(c.y)
	return nil
}

// TSX - Transfer S to X.
func (c *CPU) tsx(info *stepInfo) error {
	c.x = c.s
	c.setZN(c.x)
	return nil
}

// TXA - Transfer X to A.
func (c *CPU) txa(info *stepInfo) error {
	c.a = c.x
	c.setZN(c.a)
	return nil
}

// TXS - Transfer X to S.
func (c *CPU) txs(info *stepInfo) error {
	c.s = c.x
	return nil
}

// TYA - Transfer Y to A.
func (c *CPU) tya(info *stepInfo) error {
	c.a = c.y
	c.setZN(c.a)
	return nil
}

// Unofficial opcodes.
// Reference: https://www.nesdev.org/wiki/CPU_unofficial_opcodes

// KIL - halts the CPU. The PC stays on the opcode.
func (c *CPU) kil(info *stepInfo) error {
	c.pc = info.pc - 1
	return errors.Wrapf(ErrIllegalOpcode, "CPU jammed at 0x%04x", c.pc)
}

// SLO - ASL then ORA.
func (c *CPU) slo(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.shl)
	if err != nil {
		return err
	}
	c.a |= x
	c.setZN(c.a)
	return nil
}

// RLA - ROL then AND.
func (c *CPU) rla(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.rotl)
	if err != nil {
		return err
	}
	c.a &= x
	c.setZN(c.a)
	return nil
}

// SRE - LSR then EOR.
func (c *CPU) sre(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.shr)
	if err != nil {
		return err
	}
	c.a ^= x
	c.setZN(c.a)
	return nil
}

// RRA - ROR then ADC.
func (c *CPU) rra(info *stepInfo) error {
	x, err := c.readModifyWrite(info, c.rotr)
	if err != nil {
		return err
	}
	c.add(x)
	return nil
}

// SAX - Store A AND X.
func (c *CPU) sax(info *stepInfo) error {
	return c.bus.write(info.address, c.a&c.x)
}

// LAX - LDA then TAX.
func (c *CPU) lax(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a = data
	c.x = data
	c.setZN(data)
	return nil
}

// DCP - DEC then CMP.
func (c *CPU) dcp(info *stepInfo) error {
	x, err := c.readModifyWrite(info, decrement)
	if err != nil {
		return err
	}
	c.compare(c.a, x)
	return nil
}

// ISC - INC then SBC.
func (c *CPU) isc(info *stepInfo) error {
	x, err := c.readModifyWrite(info, increment)
	if err != nil {
		return err
	}
	c.add(^x)
	return nil
}

// ANC - AND, carry takes bit 7 of the result.
func (c *CPU) anc(info *stepInfo) error {
	if err := c.and(info); err != nil {
		return err
	}
	c.p.c = c.p.n
	return nil
}

// ALR - AND then LSR A.
func (c *CPU) alr(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a = c.shr(c.a & data)
	c.setZN(c.a)
	return nil
}

// ARR - AND then ROR A, carry and overflow come from bits 6 and 5.
func (c *CPU) arr(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a &= data
	c.a >>= 1
	if c.p.c {
		c.a |= 0x80
	}
	c.setZN(c.a)
	c.p.c = c.a&0x40 != 0
	c.p.v = (c.a>>6^c.a>>5)&1 == 1
	return nil
}

// AXS - X = (A AND X) - operand, without borrow.
func (c *CPU) axs(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	t := c.a & c.x
	c.p.c = t >= data
	c.x = t - data
	c.setZN(c.x)
	return nil
}

// LAS - A, X and S take memory AND S.
func (c *CPU) las(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.s &= data
	c.a = c.s
	c.x = c.s
	c.setZN(c.s)
	return nil
}

// XAA - unstable on hardware, modeled with a magic constant of 0xFF: A = X AND operand.
func (c *CPU) xaa(info *stepInfo) error {
	data, err := c.bus.read(info.address)
	if err != nil {
		return err
	}
	c.a = c.x & data
	c.setZN(c.a)
	return nil
}

// highPlusOne returns the high byte of the unindexed address plus one,
// which the SH* family ANDs into the stored value.
func highPlusOne(address uint16, index byte) byte {
	return byte((address-uint16(index))>>8) + 1
}

// AHX - store A AND X AND (H+1).
func (c *CPU) ahx(info *stepInfo) error {
	return c.bus.write(info.address, c.a&c.x&highPlusOne(info.address, c.y))
}

// SHX - store X AND (H+1).
func (c *CPU) shx(info *stepInfo) error {
	return c.bus.write(info.address, c.x&highPlusOne(info.address, c.y))
}

// SHY - store Y AND (H+1).
func (c *CPU) shy(info *stepInfo) error {
	return c.bus.write(info.address, c.y&highPlusOne(info.address, c.x))
}

// TAS - S = A AND X, then store S AND (H+1).
func (c *CPU) tas(info *stepInfo) error {
	c.s = c.a & c.x
	return c.bus.write(info.address, c.s&highPlusOne(info.address, c.y))
}
