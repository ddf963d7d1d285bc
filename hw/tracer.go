package hw

import (
	"io"
	"strconv"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	A, X, Y uint8
	P       P
	SP      uint8
	PC      uint16

	Clock int64
	Line  int
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d disasmer
	w io.Writer

	line func() int
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendReg(buf []byte, name byte, v uint8) []byte {
	buf = append(buf, name, ':', 0, 0, ' ')
	hexEncode(buf[len(buf)-3:], v)
	return buf
}

// write the execution trace for current instruction.
func (t *tracer) write(state cpuState) {
	const regsCol = 49
	buf := make([]byte, 0, 96)

	dis := t.d.Disasm(state.PC)
	buf = append(buf, dis.Bytes()...)
	for len(buf) < regsCol {
		buf = append(buf, ' ')
	}

	buf = appendReg(buf, 'A', state.A)
	buf = appendReg(buf, 'X', state.X)
	buf = appendReg(buf, 'Y', state.Y)
	buf = appendReg(buf, 'P', uint8(state.P))
	buf = appendReg(buf, 'S', state.SP)

	buf = append(buf, "L:"...)
	buf = strconv.AppendInt(buf, int64(state.Line), 10)
	buf = append(buf, " CYC:"...)
	buf = strconv.AppendInt(buf, state.Clock, 10)
	buf = append(buf, '\n')
	t.w.Write(buf)
}
