package hw

type addrMode uint8

const (
	imp addrMode = iota // implied
	acc                 // accumulator
	imm                 // immediate
	zpg                 // zero page
	zpx                 // zero page,X
	zpy                 // zero page,Y
	abs                 // absolute
	abx                 // absolute,X
	aby                 // absolute,Y
	ind                 // (indirect)
	izx                 // (indirect,X)
	izy                 // (indirect),Y
	rel                 // relative
)

// instruction length in bytes, per addressing mode.
var modeSize = [...]uint16{
	imp: 1, acc: 1, imm: 2,
	zpg: 2, zpx: 2, zpy: 2,
	abs: 3, abx: 3, aby: 3,
	ind: 3, izx: 2, izy: 2,
	rel: 2,
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// operand computes the effective address of op, moves PC past the instruction
// and charges the page crossing penalty when it applies.
func (c *CPU) operand(op *opdef) uint16 {
	pc := c.PC
	c.PC += modeSize[op.mode]

	var addr uint16
	switch op.mode {
	case imp, acc:
	case imm:
		addr = pc + 1
	case zpg:
		addr = uint16(c.Bus.Read8(pc + 1))
	case zpx:
		addr = uint16(c.Bus.Read8(pc+1) + c.X)
	case zpy:
		addr = uint16(c.Bus.Read8(pc+1) + c.Y)
	case abs:
		addr = c.read16(pc + 1)
	case abx:
		base := c.read16(pc + 1)
		addr = base + uint16(c.X)
		if op.page && pageCrossed(base, addr) {
			c.Cycles++
		}
	case aby:
		base := c.read16(pc + 1)
		addr = base + uint16(c.Y)
		if op.page && pageCrossed(base, addr) {
			c.Cycles++
		}
	case ind:
		// The vector high byte is fetched without carry into the page.
		ptr := c.read16(pc + 1)
		lo := c.Bus.Read8(ptr)
		hi := c.Bus.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
		addr = uint16(hi)<<8 | uint16(lo)
	case izx:
		addr = c.read16zp(c.Bus.Read8(pc+1) + c.X)
	case izy:
		base := c.read16zp(c.Bus.Read8(pc + 1))
		addr = base + uint16(c.Y)
		if op.page && pageCrossed(base, addr) {
			c.Cycles++
		}
	case rel:
		off := int8(c.Bus.Read8(pc + 1))
		addr = c.PC + uint16(off)
	}
	return addr
}
