package hw

import "sixtyfour/emu/log"

type opdef struct {
	name   string
	mode   addrMode
	cycles uint8
	page   bool // +1 cycle when the indexed address crosses a page
	exec   func(c *CPU, addr uint16)
}

// ops is the instruction table, indexed by opcode. Entries left empty here are
// undecoded opcodes, they're filled at init.
var ops = [256]opdef{
	// ADC
	0x69: {"ADC", imm, 2, false, adc},
	0x65: {"ADC", zpg, 3, false, adc},
	0x75: {"ADC", zpx, 4, false, adc},
	0x6D: {"ADC", abs, 4, false, adc},
	0x7D: {"ADC", abx, 4, true, adc},
	0x79: {"ADC", aby, 4, true, adc},
	0x61: {"ADC", izx, 6, false, adc},
	0x71: {"ADC", izy, 5, true, adc},

	// AND
	0x29: {"AND", imm, 2, false, and},
	0x25: {"AND", zpg, 3, false, and},
	0x35: {"AND", zpx, 4, false, and},
	0x2D: {"AND", abs, 4, false, and},
	0x3D: {"AND", abx, 4, true, and},
	0x39: {"AND", aby, 4, true, and},
	0x21: {"AND", izx, 6, false, and},
	0x31: {"AND", izy, 5, true, and},

	// ASL
	0x0A: {"ASL", acc, 2, false, aslA},
	0x06: {"ASL", zpg, 5, false, asl},
	0x16: {"ASL", zpx, 6, false, asl},
	0x0E: {"ASL", abs, 6, false, asl},
	0x1E: {"ASL", abx, 7, false, asl},

	// Branches
	0x90: {"BCC", rel, 2, false, bcc},
	0xB0: {"BCS", rel, 2, false, bcs},
	0xF0: {"BEQ", rel, 2, false, beq},
	0x30: {"BMI", rel, 2, false, bmi},
	0xD0: {"BNE", rel, 2, false, bne},
	0x10: {"BPL", rel, 2, false, bpl},
	0x50: {"BVC", rel, 2, false, bvc},
	0x70: {"BVS", rel, 2, false, bvs},

	// BIT
	0x24: {"BIT", zpg, 3, false, bit},
	0x2C: {"BIT", abs, 4, false, bit},

	0x00: {"BRK", imp, 7, false, brk},

	// Flags
	0x18: {"CLC", imp, 2, false, clc},
	0xD8: {"CLD", imp, 2, false, cld},
	0x58: {"CLI", imp, 2, false, cli},
	0xB8: {"CLV", imp, 2, false, clv},
	0x38: {"SEC", imp, 2, false, sec},
	0xF8: {"SED", imp, 2, false, sed},
	0x78: {"SEI", imp, 2, false, sei},

	// CMP
	0xC9: {"CMP", imm, 2, false, cmpA},
	0xC5: {"CMP", zpg, 3, false, cmpA},
	0xD5: {"CMP", zpx, 4, false, cmpA},
	0xCD: {"CMP", abs, 4, false, cmpA},
	0xDD: {"CMP", abx, 4, true, cmpA},
	0xD9: {"CMP", aby, 4, true, cmpA},
	0xC1: {"CMP", izx, 6, false, cmpA},
	0xD1: {"CMP", izy, 5, true, cmpA},

	// CPX, CPY
	0xE0: {"CPX", imm, 2, false, cpx},
	0xE4: {"CPX", zpg, 3, false, cpx},
	0xEC: {"CPX", abs, 4, false, cpx},
	0xC0: {"CPY", imm, 2, false, cpy},
	0xC4: {"CPY", zpg, 3, false, cpy},
	0xCC: {"CPY", abs, 4, false, cpy},

	// DEC
	0xC6: {"DEC", zpg, 5, false, dec},
	0xD6: {"DEC", zpx, 6, false, dec},
	0xCE: {"DEC", abs, 6, false, dec},
	0xDE: {"DEC", abx, 7, false, dec},
	0xCA: {"DEX", imp, 2, false, dex},
	0x88: {"DEY", imp, 2, false, dey},

	// EOR
	0x49: {"EOR", imm, 2, false, eor},
	0x45: {"EOR", zpg, 3, false, eor},
	0x55: {"EOR", zpx, 4, false, eor},
	0x4D: {"EOR", abs, 4, false, eor},
	0x5D: {"EOR", abx, 4, true, eor},
	0x59: {"EOR", aby, 4, true, eor},
	0x41: {"EOR", izx, 6, false, eor},
	0x51: {"EOR", izy, 5, true, eor},

	// INC
	0xE6: {"INC", zpg, 5, false, inc},
	0xF6: {"INC", zpx, 6, false, inc},
	0xEE: {"INC", abs, 6, false, inc},
	0xFE: {"INC", abx, 7, false, inc},
	0xE8: {"INX", imp, 2, false, inx},
	0xC8: {"INY", imp, 2, false, iny},

	// Jumps
	0x4C: {"JMP", abs, 3, false, jmp},
	0x6C: {"JMP", ind, 5, false, jmp},
	0x20: {"JSR", abs, 6, false, jsr},
	0x60: {"RTS", imp, 6, false, rts},
	0x40: {"RTI", imp, 6, false, rti},

	// LDA
	0xA9: {"LDA", imm, 2, false, lda},
	0xA5: {"LDA", zpg, 3, false, lda},
	0xB5: {"LDA", zpx, 4, false, lda},
	0xAD: {"LDA", abs, 4, false, lda},
	0xBD: {"LDA", abx, 4, true, lda},
	0xB9: {"LDA", aby, 4, true, lda},
	0xA1: {"LDA", izx, 6, false, lda},
	0xB1: {"LDA", izy, 5, true, lda},

	// LDX
	0xA2: {"LDX", imm, 2, false, ldx},
	0xA6: {"LDX", zpg, 3, false, ldx},
	0xB6: {"LDX", zpy, 4, false, ldx},
	0xAE: {"LDX", abs, 4, false, ldx},
	0xBE: {"LDX", aby, 4, true, ldx},

	// LDY
	0xA0: {"LDY", imm, 2, false, ldy},
	0xA4: {"LDY", zpg, 3, false, ldy},
	0xB4: {"LDY", zpx, 4, false, ldy},
	0xAC: {"LDY", abs, 4, false, ldy},
	0xBC: {"LDY", abx, 4, true, ldy},

	// LSR
	0x4A: {"LSR", acc, 2, false, lsrA},
	0x46: {"LSR", zpg, 5, false, lsr},
	0x56: {"LSR", zpx, 6, false, lsr},
	0x4E: {"LSR", abs, 6, false, lsr},
	0x5E: {"LSR", abx, 7, false, lsr},

	0xEA: {"NOP", imp, 2, false, nop},

	// ORA
	0x09: {"ORA", imm, 2, false, ora},
	0x05: {"ORA", zpg, 3, false, ora},
	0x15: {"ORA", zpx, 4, false, ora},
	0x0D: {"ORA", abs, 4, false, ora},
	0x1D: {"ORA", abx, 4, true, ora},
	0x19: {"ORA", aby, 4, true, ora},
	0x01: {"ORA", izx, 6, false, ora},
	0x11: {"ORA", izy, 5, true, ora},

	// Stack
	0x48: {"PHA", imp, 3, false, pha},
	0x08: {"PHP", imp, 3, false, php},
	0x68: {"PLA", imp, 4, false, pla},
	0x28: {"PLP", imp, 4, false, plp},

	// ROL
	0x2A: {"ROL", acc, 2, false, rolA},
	0x26: {"ROL", zpg, 5, false, rol},
	0x36: {"ROL", zpx, 6, false, rol},
	0x2E: {"ROL", abs, 6, false, rol},
	0x3E: {"ROL", abx, 7, false, rol},

	// ROR
	0x6A: {"ROR", acc, 2, false, rorA},
	0x66: {"ROR", zpg, 5, false, ror},
	0x76: {"ROR", zpx, 6, false, ror},
	0x6E: {"ROR", abs, 6, false, ror},
	0x7E: {"ROR", abx, 7, false, ror},

	// SBC
	0xE9: {"SBC", imm, 2, false, sbc},
	0xE5: {"SBC", zpg, 3, false, sbc},
	0xF5: {"SBC", zpx, 4, false, sbc},
	0xED: {"SBC", abs, 4, false, sbc},
	0xFD: {"SBC", abx, 4, true, sbc},
	0xF9: {"SBC", aby, 4, true, sbc},
	0xE1: {"SBC", izx, 6, false, sbc},
	0xF1: {"SBC", izy, 5, true, sbc},

	// STA
	0x85: {"STA", zpg, 3, false, sta},
	0x95: {"STA", zpx, 4, false, sta},
	0x8D: {"STA", abs, 4, false, sta},
	0x9D: {"STA", abx, 5, false, sta},
	0x99: {"STA", aby, 5, false, sta},
	0x81: {"STA", izx, 6, false, sta},
	0x91: {"STA", izy, 6, false, sta},

	// STX, STY
	0x86: {"STX", zpg, 3, false, stx},
	0x96: {"STX", zpy, 4, false, stx},
	0x8E: {"STX", abs, 4, false, stx},
	0x84: {"STY", zpg, 3, false, sty},
	0x94: {"STY", zpx, 4, false, sty},
	0x8C: {"STY", abs, 4, false, sty},

	// Transfers
	0xAA: {"TAX", imp, 2, false, tax},
	0xA8: {"TAY", imp, 2, false, tay},
	0xBA: {"TSX", imp, 2, false, tsx},
	0x8A: {"TXA", imp, 2, false, txa},
	0x9A: {"TXS", imp, 2, false, txs},
	0x98: {"TYA", imp, 2, false, tya},

	/* unofficial opcodes */

	// SLO
	0x07: {"SLO", zpg, 5, false, slo},
	0x17: {"SLO", zpx, 6, false, slo},
	0x0F: {"SLO", abs, 6, false, slo},
	0x1F: {"SLO", abx, 7, false, slo},
	0x1B: {"SLO", aby, 7, false, slo},
	0x03: {"SLO", izx, 8, false, slo},
	0x13: {"SLO", izy, 8, false, slo},

	// RLA
	0x27: {"RLA", zpg, 5, false, rla},
	0x37: {"RLA", zpx, 6, false, rla},
	0x2F: {"RLA", abs, 6, false, rla},
	0x3F: {"RLA", abx, 7, false, rla},
	0x3B: {"RLA", aby, 7, false, rla},
	0x23: {"RLA", izx, 8, false, rla},
	0x33: {"RLA", izy, 8, false, rla},

	// SRE
	0x47: {"SRE", zpg, 5, false, sre},
	0x57: {"SRE", zpx, 6, false, sre},
	0x4F: {"SRE", abs, 6, false, sre},
	0x5F: {"SRE", abx, 7, false, sre},
	0x5B: {"SRE", aby, 7, false, sre},
	0x43: {"SRE", izx, 8, false, sre},
	0x53: {"SRE", izy, 8, false, sre},

	// RRA
	0x67: {"RRA", zpg, 5, false, rra},
	0x77: {"RRA", zpx, 6, false, rra},
	0x6F: {"RRA", abs, 6, false, rra},
	0x7F: {"RRA", abx, 7, false, rra},
	0x7B: {"RRA", aby, 7, false, rra},
	0x63: {"RRA", izx, 8, false, rra},
	0x73: {"RRA", izy, 8, false, rra},

	// SAX
	0x87: {"SAX", zpg, 3, false, sax},
	0x97: {"SAX", zpy, 4, false, sax},
	0x8F: {"SAX", abs, 4, false, sax},
	0x83: {"SAX", izx, 6, false, sax},

	// LAX
	0xA7: {"LAX", zpg, 3, false, lax},
	0xB7: {"LAX", zpy, 4, false, lax},
	0xAF: {"LAX", abs, 4, false, lax},
	0xBF: {"LAX", aby, 4, true, lax},
	0xA3: {"LAX", izx, 6, false, lax},
	0xB3: {"LAX", izy, 5, true, lax},

	// DCP
	0xC7: {"DCP", zpg, 5, false, dcp},
	0xD7: {"DCP", zpx, 6, false, dcp},
	0xCF: {"DCP", abs, 6, false, dcp},
	0xDF: {"DCP", abx, 7, false, dcp},
	0xDB: {"DCP", aby, 7, false, dcp},
	0xC3: {"DCP", izx, 8, false, dcp},
	0xD3: {"DCP", izy, 8, false, dcp},

	// ISC
	0xE7: {"ISC", zpg, 5, false, isc},
	0xF7: {"ISC", zpx, 6, false, isc},
	0xEF: {"ISC", abs, 6, false, isc},
	0xFF: {"ISC", abx, 7, false, isc},
	0xFB: {"ISC", aby, 7, false, isc},
	0xE3: {"ISC", izx, 8, false, isc},
	0xF3: {"ISC", izy, 8, false, isc},

	// Immediate-only
	0x0B: {"ANC", imm, 2, false, anc},
	0x2B: {"ANC", imm, 2, false, anc},
	0x4B: {"ALR", imm, 2, false, alr},
	0x6B: {"ARR", imm, 2, false, arr},
	0xCB: {"SBX", imm, 2, false, sbx},
	0xEB: {"SBC", imm, 2, false, sbc},

	// NOPs
	0x1A: {"NOP", imp, 2, false, nop},
	0x3A: {"NOP", imp, 2, false, nop},
	0x5A: {"NOP", imp, 2, false, nop},
	0x7A: {"NOP", imp, 2, false, nop},
	0xDA: {"NOP", imp, 2, false, nop},
	0xFA: {"NOP", imp, 2, false, nop},
	0x80: {"NOP", imm, 2, false, nop},
	0x82: {"NOP", imm, 2, false, nop},
	0x89: {"NOP", imm, 2, false, nop},
	0xC2: {"NOP", imm, 2, false, nop},
	0xE2: {"NOP", imm, 2, false, nop},
	0x04: {"NOP", zpg, 3, false, nop},
	0x44: {"NOP", zpg, 3, false, nop},
	0x64: {"NOP", zpg, 3, false, nop},
	0x14: {"NOP", zpx, 4, false, nop},
	0x34: {"NOP", zpx, 4, false, nop},
	0x54: {"NOP", zpx, 4, false, nop},
	0x74: {"NOP", zpx, 4, false, nop},
	0xD4: {"NOP", zpx, 4, false, nop},
	0xF4: {"NOP", zpx, 4, false, nop},
	0x0C: {"NOP", abs, 4, false, nop},
	0x1C: {"NOP", abx, 4, true, nop},
	0x3C: {"NOP", abx, 4, true, nop},
	0x5C: {"NOP", abx, 4, true, nop},
	0x7C: {"NOP", abx, 4, true, nop},
	0xDC: {"NOP", abx, 4, true, nop},
	0xFC: {"NOP", abx, 4, true, nop},

	// JAM
	0x02: {"JAM", imp, 0, false, jam},
	0x12: {"JAM", imp, 0, false, jam},
	0x22: {"JAM", imp, 0, false, jam},
	0x32: {"JAM", imp, 0, false, jam},
	0x42: {"JAM", imp, 0, false, jam},
	0x52: {"JAM", imp, 0, false, jam},
	0x62: {"JAM", imp, 0, false, jam},
	0x72: {"JAM", imp, 0, false, jam},
	0x92: {"JAM", imp, 0, false, jam},
	0xB2: {"JAM", imp, 0, false, jam},
	0xD2: {"JAM", imp, 0, false, jam},
	0xF2: {"JAM", imp, 0, false, jam},
}

func init() {
	for i := range ops {
		if ops[i].exec == nil {
			ops[i] = opdef{"???", imp, 2, false, undecoded}
		}
	}
}

/* loads, stores and transfers */

func lda(c *CPU, addr uint16) {
	c.A = c.Bus.Read8(addr)
	c.P.checkNZ(c.A)
}

func ldx(c *CPU, addr uint16) {
	c.X = c.Bus.Read8(addr)
	c.P.checkNZ(c.X)
}

func ldy(c *CPU, addr uint16) {
	c.Y = c.Bus.Read8(addr)
	c.P.checkNZ(c.Y)
}

func sta(c *CPU, addr uint16) { c.Bus.Write8(addr, c.A) }
func stx(c *CPU, addr uint16) { c.Bus.Write8(addr, c.X) }
func sty(c *CPU, addr uint16) { c.Bus.Write8(addr, c.Y) }

func tax(c *CPU, _ uint16) { c.X = c.A; c.P.checkNZ(c.X) }
func tay(c *CPU, _ uint16) { c.Y = c.A; c.P.checkNZ(c.Y) }
func tsx(c *CPU, _ uint16) { c.X = c.SP; c.P.checkNZ(c.X) }
func txa(c *CPU, _ uint16) { c.A = c.X; c.P.checkNZ(c.A) }
func txs(c *CPU, _ uint16) { c.SP = c.X }
func tya(c *CPU, _ uint16) { c.A = c.Y; c.P.checkNZ(c.A) }

/* stack */

func pha(c *CPU, _ uint16) { c.push8(c.A) }
func php(c *CPU, _ uint16) { c.push8(c.P.pushed(true)) }
func plp(c *CPU, _ uint16) { c.P = pulled(c.pull8()) }

func pla(c *CPU, _ uint16) {
	c.A = c.pull8()
	c.P.checkNZ(c.A)
}

/* logic */

func and(c *CPU, addr uint16) {
	c.A &= c.Bus.Read8(addr)
	c.P.checkNZ(c.A)
}

func ora(c *CPU, addr uint16) {
	c.A |= c.Bus.Read8(addr)
	c.P.checkNZ(c.A)
}

func eor(c *CPU, addr uint16) {
	c.A ^= c.Bus.Read8(addr)
	c.P.checkNZ(c.A)
}

func bit(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr)
	c.P.checkZ(c.A & val)
	c.P = c.P.SetN(val&0x80 != 0)
	c.P = c.P.SetV(val&0x40 != 0)
}

/* arithmetic */

func adc(c *CPU, addr uint16) { c.add(c.Bus.Read8(addr)) }
func sbc(c *CPU, addr uint16) { c.sub(c.Bus.Read8(addr)) }

func (c *CPU) carry() uint8 {
	return uint8(c.P & Carry)
}

func (c *CPU) add(val uint8) {
	if !c.P.Decimal() {
		sum := uint16(c.A) + uint16(val) + uint16(c.carry())
		c.P.checkCV(c.A, val, sum)
		c.A = uint8(sum)
		c.P.checkNZ(c.A)
		return
	}

	// Decimal mode: flags come from the binary-equivalent value, before the
	// decimal adjustment.
	lo := int(c.A&0x0F) + int(val&0x0F) + int(c.carry())
	halfCarry := lo > 0x09
	hi := int(c.A&0xF0) + int(val&0xF0)
	if halfCarry {
		hi += 0x10
	}
	carry := hi > 0x9F

	binary := uint8(lo&0x0F + hi&0xF0)
	c.P.checkNZ(binary)
	c.P = c.P.SetV((c.A^binary)&(val^binary)&0x80 != 0)
	c.P = c.P.SetC(carry)

	if halfCarry {
		lo += 0x06
	}
	if carry {
		hi += 0x60
	}
	c.A = uint8(lo&0x0F + hi&0xF0)
}

func (c *CPU) sub(val uint8) {
	if !c.P.Decimal() {
		c.add(^val)
		return
	}

	lo := 0x0F + int(c.A&0x0F) - int(val&0x0F) + int(c.carry())
	halfCarry := lo > 0x0F
	hi := 0xF0 + int(c.A&0xF0) - int(val&0xF0)
	if halfCarry {
		hi += 0x10
	}
	carry := hi > 0xFF

	binary := uint8(lo&0x0F + hi&0xF0)
	c.P.checkNZ(binary)
	c.P = c.P.SetV((c.A^binary)&(^val^binary)&0x80 != 0)
	c.P = c.P.SetC(carry)

	if !halfCarry {
		lo -= 0x06
	}
	if !carry {
		hi -= 0x60
	}
	c.A = uint8(lo&0x0F + hi&0xF0)
}

func (c *CPU) compare(reg, val uint8) {
	c.P = c.P.SetC(reg >= val)
	c.P.checkNZ(reg - val)
}

func cmpA(c *CPU, addr uint16) { c.compare(c.A, c.Bus.Read8(addr)) }
func cpx(c *CPU, addr uint16)  { c.compare(c.X, c.Bus.Read8(addr)) }
func cpy(c *CPU, addr uint16)  { c.compare(c.Y, c.Bus.Read8(addr)) }

/* increments and decrements */

func inc(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr) + 1
	c.Bus.Write8(addr, val)
	c.P.checkNZ(val)
}

func dec(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr) - 1
	c.Bus.Write8(addr, val)
	c.P.checkNZ(val)
}

func inx(c *CPU, _ uint16) { c.X++; c.P.checkNZ(c.X) }
func iny(c *CPU, _ uint16) { c.Y++; c.P.checkNZ(c.Y) }
func dex(c *CPU, _ uint16) { c.X--; c.P.checkNZ(c.X) }
func dey(c *CPU, _ uint16) { c.Y--; c.P.checkNZ(c.Y) }

/* shifts and rotations */

func (c *CPU) shl(val uint8) uint8 {
	c.P = c.P.SetC(val&0x80 != 0)
	val <<= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) shr(val uint8) uint8 {
	c.P = c.P.SetC(val&0x01 != 0)
	val >>= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotl(val uint8) uint8 {
	carry := c.carry()
	c.P = c.P.SetC(val&0x80 != 0)
	val = val<<1 | carry
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotr(val uint8) uint8 {
	carry := c.carry()
	c.P = c.P.SetC(val&0x01 != 0)
	val = val>>1 | carry<<7
	c.P.checkNZ(val)
	return val
}

// rmw performs a read-modify-write on memory and returns the written value.
func (c *CPU) rmw(addr uint16, f func(uint8) uint8) uint8 {
	val := f(c.Bus.Read8(addr))
	c.Bus.Write8(addr, val)
	return val
}

func asl(c *CPU, addr uint16) { c.rmw(addr, c.shl) }
func lsr(c *CPU, addr uint16) { c.rmw(addr, c.shr) }
func rol(c *CPU, addr uint16) { c.rmw(addr, c.rotl) }
func ror(c *CPU, addr uint16) { c.rmw(addr, c.rotr) }

func aslA(c *CPU, _ uint16) { c.A = c.shl(c.A) }
func lsrA(c *CPU, _ uint16) { c.A = c.shr(c.A) }
func rolA(c *CPU, _ uint16) { c.A = c.rotl(c.A) }
func rorA(c *CPU, _ uint16) { c.A = c.rotr(c.A) }

/* jumps and branches */

func jmp(c *CPU, addr uint16) { c.PC = addr }

func jsr(c *CPU, addr uint16) {
	c.push16(c.PC - 1)
	c.PC = addr
}

func rts(c *CPU, _ uint16) { c.PC = c.pull16() + 1 }

func rti(c *CPU, _ uint16) {
	c.P = pulled(c.pull8())
	c.PC = c.pull16()
}

func brk(c *CPU, _ uint16) {
	c.push16(c.PC + 1)
	c.push8(c.P.pushed(true))
	c.P = c.P.SetIntDisable(true)
	c.PC = c.read16(IRQVector)
}

func (c *CPU) branch(cond bool, target uint16) {
	if !cond {
		return
	}
	c.Cycles++
	if pageCrossed(c.PC, target) {
		c.Cycles++
	}
	c.PC = target
}

func bcc(c *CPU, addr uint16) { c.branch(!c.P.Carry(), addr) }
func bcs(c *CPU, addr uint16) { c.branch(c.P.Carry(), addr) }
func beq(c *CPU, addr uint16) { c.branch(c.P.Zero(), addr) }
func bne(c *CPU, addr uint16) { c.branch(!c.P.Zero(), addr) }
func bmi(c *CPU, addr uint16) { c.branch(c.P.Negative(), addr) }
func bpl(c *CPU, addr uint16) { c.branch(!c.P.Negative(), addr) }
func bvc(c *CPU, addr uint16) { c.branch(!c.P.Overflow(), addr) }
func bvs(c *CPU, addr uint16) { c.branch(c.P.Overflow(), addr) }

/* flags */

func clc(c *CPU, _ uint16) { c.P = c.P.SetC(false) }
func cld(c *CPU, _ uint16) { c.P = c.P.SetD(false) }
func cli(c *CPU, _ uint16) { c.P = c.P.SetIntDisable(false) }
func clv(c *CPU, _ uint16) { c.P = c.P.SetV(false) }
func sec(c *CPU, _ uint16) { c.P = c.P.SetC(true) }
func sed(c *CPU, _ uint16) { c.P = c.P.SetD(true) }
func sei(c *CPU, _ uint16) { c.P = c.P.SetIntDisable(true) }

func nop(c *CPU, _ uint16) {}

/* unofficial opcodes */

func slo(c *CPU, addr uint16) {
	c.A |= c.rmw(addr, c.shl)
	c.P.checkNZ(c.A)
}

func rla(c *CPU, addr uint16) {
	c.A &= c.rmw(addr, c.rotl)
	c.P.checkNZ(c.A)
}

func sre(c *CPU, addr uint16) {
	c.A ^= c.rmw(addr, c.shr)
	c.P.checkNZ(c.A)
}

func rra(c *CPU, addr uint16) {
	c.add(c.rmw(addr, c.rotr))
}

func sax(c *CPU, addr uint16) { c.Bus.Write8(addr, c.A&c.X) }

func lax(c *CPU, addr uint16) {
	c.A = c.Bus.Read8(addr)
	c.X = c.A
	c.P.checkNZ(c.A)
}

func dcp(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr) - 1
	c.Bus.Write8(addr, val)
	c.compare(c.A, val)
}

func isc(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr) + 1
	c.Bus.Write8(addr, val)
	c.sub(val)
}

func anc(c *CPU, addr uint16) {
	and(c, addr)
	c.P = c.P.SetC(c.P.Negative())
}

func alr(c *CPU, addr uint16) {
	c.A = c.shr(c.A & c.Bus.Read8(addr))
}

func arr(c *CPU, addr uint16) {
	t := c.A & c.Bus.Read8(addr)
	carry := c.carry()
	c.A = t>>1 | carry<<7

	if !c.P.Decimal() {
		c.P.checkNZ(c.A)
		c.P = c.P.SetC(c.A&0x40 != 0)
		c.P = c.P.SetV((c.A>>6^c.A>>5)&1 != 0)
		return
	}

	c.P = c.P.SetN(carry != 0)
	c.P.checkZ(c.A)
	c.P = c.P.SetV((t^c.A)&0x40 != 0)
	if t&0x0F+t&0x01 > 0x05 {
		c.A = c.A&0xF0 | (c.A+0x06)&0x0F
	}
	if uint16(t&0xF0)+uint16(t&0x10) > 0x50 {
		c.P = c.P.SetC(true)
		c.A += 0x60
	} else {
		c.P = c.P.SetC(false)
	}
}

func sbx(c *CPU, addr uint16) {
	val := c.Bus.Read8(addr)
	ax := c.A & c.X
	c.P = c.P.SetC(ax >= val)
	c.X = ax - val
	c.P.checkNZ(c.X)
}

func jam(c *CPU, _ uint16) {
	// Stay on the opcode.
	c.PC--
	c.jammed = true
}

func undecoded(c *CPU, _ uint16) {
	pc := c.PC - 1
	log.ModCPU.WarnZ("illegal opcode").
		Hex16("PC", pc).
		Hex8("opcode", c.peek(pc)).
		End()
}
