package hw

import (
	"fmt"
	"io"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	return string(d.Bytes())
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 48
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	off += copy(buf[off:], d.Opcode)
	buf[off] = ' '
	off++

	buf = append(buf[:off], d.Oper...)
	off += len(d.Oper)
	if len(buf) > totalLen {
		buf = append(buf, ' ')
	} else {
		buf = buf[:totalLen]
		for i := off; i < totalLen; i++ {
			buf[i] = ' '
		}
	}

	return buf
}

// Disasm disassembles the instruction at pc, without side effects on the bus.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	opcode := c.peek(pc)
	op := &ops[opcode]

	n := modeSize[op.mode]
	d := DisasmOp{
		Opcode: op.name,
		Buf:    make([]byte, n),
		PC:     pc,
	}
	for i := range n {
		d.Buf[i] = c.peek(pc + i)
	}

	var (
		b = uint16(d.Buf[min(1, n-1)])
		w = b | uint16(d.Buf[min(2, n-1)])<<8
	)
	switch op.mode {
	case imp:
	case acc:
		d.Oper = "A"
	case imm:
		d.Oper = fmt.Sprintf("#$%02X", b)
	case zpg:
		d.Oper = fmt.Sprintf("$%02X", b)
	case zpx:
		d.Oper = fmt.Sprintf("$%02X,X", b)
	case zpy:
		d.Oper = fmt.Sprintf("$%02X,Y", b)
	case abs:
		d.Oper = formatAddr(w)
	case abx:
		d.Oper = formatAddr(w) + ",X"
	case aby:
		d.Oper = formatAddr(w) + ",Y"
	case ind:
		d.Oper = fmt.Sprintf("($%04X)", w)
	case izx:
		d.Oper = fmt.Sprintf("($%02X,X)", b)
	case izy:
		d.Oper = fmt.Sprintf("($%02X),Y", b)
	case rel:
		d.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(b)))
	}
	return d
}

// Disassemble writes the disassembly of n instructions starting at pc to w.
// It returns the address following the last instruction.
func (c *CPU) Disassemble(w io.Writer, pc uint16, n int) uint16 {
	for range n {
		d := c.Disasm(pc)
		fmt.Fprintln(w, d.String())
		pc += uint16(len(d.Buf))
	}
	return pc
}

var addressLabels = map[uint16]string{
	0xD011: "VicCtrl1_D011",
	0xD012: "Raster_D012",
	0xD015: "SprEnable_D015",
	0xD016: "VicCtrl2_D016",
	0xD018: "MemSetup_D018",
	0xD019: "IrqFlags_D019",
	0xD01A: "IrqMask_D01A",
	0xD020: "Border_D020",
	0xD021: "Bg0_D021",
	0xD400: "V1FreqLo_D400",
	0xD401: "V1FreqHi_D401",
	0xD404: "V1Ctrl_D404",
	0xD405: "V1AD_D405",
	0xD406: "V1SR_D406",
	0xD40B: "V2Ctrl_D40B",
	0xD412: "V3Ctrl_D412",
	0xD416: "FcHi_D416",
	0xD417: "ResFilt_D417",
	0xD418: "SidVolume_D418",
	0xDC00: "PortA_DC00",
	0xDC01: "PortB_DC01",
	0xDC04: "TimerALo_DC04",
	0xDC05: "TimerAHi_DC05",
	0xDC0D: "CiaIcr_DC0D",
	0xDC0E: "CiaCra_DC0E",
	0xDD00: "VicBank_DD00",
	0xFFA8: "CIOUT",
	0xFFBD: "SETNAM",
	0xFFC3: "CLOSE",
	0xFFC6: "CHKIN",
	0xFFC9: "CHKOUT",
	0xFFCF: "CHRIN",
	0xFFD2: "CHROUT",
}

func formatAddr(addr uint16) string {
	if label, ok := addressLabels[addr]; ok {
		return label
	}
	return fmt.Sprintf("$%04X", addr)
}
