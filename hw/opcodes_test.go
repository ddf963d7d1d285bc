package hw

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAllOpcodesAreImplemented(t *testing.T) {
	undecoded := map[uint8]bool{
		0x8B: true, 0xAB: true, 0x93: true, 0x9F: true,
		0x9B: true, 0x9C: true, 0x9E: true, 0xBB: true,
	}
	for opcode, op := range ops {
		if op.exec == nil {
			t.Errorf("opcode %02x not implemented", opcode)
			continue
		}
		if undecoded[uint8(opcode)] != (op.name == "???") {
			t.Errorf("opcode %02x: got name %q", opcode, op.name)
		}
		if op.name != "JAM" && op.cycles < 2 {
			t.Errorf("opcode %02x (%s): got %d cycles", opcode, op.name, op.cycles)
		}
	}
}

// Base cycle counts of the NMOS 6510, indexed by opcode. JAM opcodes have 0
// cycles, undecoded ones are 2-cycle NOPs.
var refCycles = [256]uint8{
	//  0  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	7, 6, 0, 8, 3, 3, 5, 5, 3, 2, 2, 2, 4, 4, 6, 6, // 0x
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 1x
	6, 6, 0, 8, 3, 3, 5, 5, 4, 2, 2, 2, 4, 4, 6, 6, // 2x
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 3x
	6, 6, 0, 8, 3, 3, 5, 5, 3, 2, 2, 2, 3, 4, 6, 6, // 4x
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 5x
	6, 6, 0, 8, 3, 3, 5, 5, 4, 2, 2, 2, 5, 4, 6, 6, // 6x
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // 7x
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 2, 4, 4, 4, 4, // 8x
	2, 6, 0, 2, 4, 4, 4, 4, 2, 5, 2, 2, 2, 5, 2, 2, // 9x
	2, 6, 2, 6, 3, 3, 3, 3, 2, 2, 2, 2, 4, 4, 4, 4, // Ax
	2, 5, 0, 5, 4, 4, 4, 4, 2, 4, 2, 2, 4, 4, 4, 4, // Bx
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // Cx
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // Dx
	2, 6, 2, 8, 3, 3, 5, 5, 2, 2, 2, 2, 4, 4, 6, 6, // Ex
	2, 5, 0, 8, 4, 4, 6, 6, 2, 4, 2, 7, 4, 4, 7, 7, // Fx
}

// Opcodes taking an extra cycle when the indexed address crosses a page:
// (zp),Y abs,Y and abs,X reads, including LAX and the abs,X NOPs.
var refPagePenalty = []uint8{
	0x11, 0x19, 0x1C, 0x1D,
	0x31, 0x39, 0x3C, 0x3D,
	0x51, 0x59, 0x5C, 0x5D,
	0x71, 0x79, 0x7C, 0x7D,
	0xB1, 0xB3, 0xB9, 0xBC, 0xBD, 0xBE, 0xBF,
	0xD1, 0xD9, 0xDC, 0xDD,
	0xF1, 0xF9, 0xFC, 0xFD,
}

type opTiming struct {
	Cycles uint8
	Page   bool
}

func TestOpcodeCycles(t *testing.T) {
	var want, got [256]opTiming
	for i := range want {
		want[i].Cycles = refCycles[i]
	}
	for _, opcode := range refPagePenalty {
		want[opcode].Page = true
	}
	for i, op := range ops {
		got[i] = opTiming{Cycles: op.cycles, Page: op.page}
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("opcode timing mismatch (-want +got):\n%s", diff)
	}
}

func TestPageCrossPenalty(t *testing.T) {
	tests := []struct {
		name   string
		dump   string
		x, y   uint8
		cycles int64
	}{
		{"LDA abs,X", `0600: bd 00 20`, 0x10, 0, 4},
		{"LDA abs,X cross", `0600: bd f0 20`, 0x20, 0, 5},
		{"LDA abs,Y cross", `0600: b9 ff 20`, 0, 0x01, 5},
		{"LDA (zp),Y", "0010: ff 20\n0600: b1 10", 0, 0x00, 5},
		{"LDA (zp),Y cross", "0010: ff 20\n0600: b1 10", 0, 0x01, 6},
		{"STA abs,X cross", `0600: 9d f0 20`, 0x20, 0, 5},
		{"INC abs,X cross", `0600: fe f0 20`, 0x20, 0, 7},
		{"NOP abs,X cross", `0600: 1c f0 20`, 0x20, 0, 5},
		{"LDA zp,X wraps", `0600: b5 f0`, 0x20, 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := loadCPUWith(t, tt.dump)
			cpu.Cycles = 0
			cpu.PC = 0x0600
			cpu.X = tt.x
			cpu.Y = tt.y
			cpu.Step()
			if cpu.Cycles != tt.cycles {
				t.Errorf("got %d cycles, want %d", cpu.Cycles, tt.cycles)
			}
		})
	}
}

func TestBranches(t *testing.T) {
	tests := []struct {
		name   string
		pc     uint16
		dump   string
		p      P
		wantPC uint16
		cycles int64
	}{
		{"not taken", 0x0600, `0600: d0 05`, Reserved | Zero, 0x0602, 2},
		{"taken", 0x0600, `0600: d0 05`, Reserved, 0x0607, 3},
		{"taken cross", 0x06F0, `06F0: d0 20`, Reserved, 0x0712, 4},
		{"backward cross", 0x0600, `0600: d0 f0`, Reserved, 0x05F2, 4},
		{"backward", 0x0610, `0610: 10 fe`, Reserved, 0x0610, 3},
		{"BCS taken", 0x0600, `0600: b0 10`, Reserved | Carry, 0x0612, 3},
		{"BVC not taken", 0x0600, `0600: 50 10`, Reserved | Overflow, 0x0602, 2},
		{"BMI taken", 0x0600, `0600: 30 10`, Reserved | Negative, 0x0612, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := loadCPUWith(t, tt.dump)
			cpu.Cycles = 0
			cpu.PC = tt.pc
			cpu.P = tt.p
			cpu.Step()
			if cpu.PC != tt.wantPC || cpu.Cycles != tt.cycles {
				t.Errorf("PC=%04X cycles=%d, want PC=%04X cycles=%d", cpu.PC, cpu.Cycles, tt.wantPC, tt.cycles)
			}
		})
	}
}

type arithResult struct {
	A          uint8
	N, V, Z, C bool
}

func TestADC_SBC(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint8
		a, m    uint8
		carry   bool
		decimal bool
		want    arithResult
	}{
		{"adc bcd 79+00+1", 0x69, 0x79, 0x00, true, true, arithResult{A: 0x80, N: true, V: true}},
		{"adc bcd 12+34", 0x69, 0x12, 0x34, false, true, arithResult{A: 0x46}},
		{"adc bcd 99+01", 0x69, 0x99, 0x01, false, true, arithResult{A: 0x00, N: true, C: true}},
		{"adc 50+50", 0x69, 0x50, 0x50, false, false, arithResult{A: 0xA0, N: true, V: true}},
		{"adc ff+01", 0x69, 0xFF, 0x01, false, false, arithResult{A: 0x00, Z: true, C: true}},
		{"sbc bcd 46-12", 0xE9, 0x46, 0x12, true, true, arithResult{A: 0x34, C: true}},
		{"sbc bcd 40-13", 0xE9, 0x40, 0x13, true, true, arithResult{A: 0x27, C: true}},
		{"sbc bcd 00-01", 0xE9, 0x00, 0x01, true, true, arithResult{A: 0x99, N: true}},
		{"sbc 50-f0", 0xE9, 0x50, 0xF0, true, false, arithResult{A: 0x60}},
		{"sbc 50-b0", 0xE9, 0x50, 0xB0, true, false, arithResult{A: 0xA0, N: true, V: true}},
		{"sbc eb 05-03", 0xEB, 0x05, 0x03, true, false, arithResult{A: 0x02, C: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := loadCPUWith(t, fmt.Sprintf("0600: %02x %02x", tt.opcode, tt.m))
			cpu.Cycles = 0
			cpu.PC = 0x0600
			cpu.A = tt.a
			cpu.P = P(Reserved).SetC(tt.carry).SetD(tt.decimal)
			cpu.Step()

			got := arithResult{
				A: cpu.A,
				N: cpu.P.Negative(),
				V: cpu.P.Overflow(),
				Z: cpu.P.Zero(),
				C: cpu.P.Carry(),
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
			if cpu.Cycles != 2 {
				t.Errorf("got %d cycles, want 2", cpu.Cycles)
			}
		})
	}
}

func TestUnofficialOpcodes(t *testing.T) {
	type regs struct {
		A, X uint8
		P    uint8
		Mem  uint8 // value at $10
	}
	tests := []struct {
		name string
		code string
		in   regs
		want regs
	}{
		{"LAX zp", "a7 10", regs{Mem: 0x85, P: 0x20}, regs{A: 0x85, X: 0x85, P: 0xA0, Mem: 0x85}},
		{"SAX zp", "87 10", regs{A: 0xF0, X: 0x3C, P: 0x20}, regs{A: 0xF0, X: 0x3C, P: 0x20, Mem: 0x30}},
		{"DCP zp", "c7 10", regs{A: 0x40, Mem: 0x41, P: 0x20}, regs{A: 0x40, P: 0x23, Mem: 0x40}},
		{"ISC zp", "e7 10", regs{A: 0x20, Mem: 0x0F, P: 0x21}, regs{A: 0x10, P: 0x21, Mem: 0x10}},
		{"SLO zp", "07 10", regs{A: 0x02, Mem: 0x81, P: 0x20}, regs{A: 0x02, P: 0x21, Mem: 0x02}},
		{"RLA zp", "27 10", regs{A: 0xFF, Mem: 0x40, P: 0x21}, regs{A: 0x81, P: 0xA0, Mem: 0x81}},
		{"SRE zp", "47 10", regs{A: 0x10, Mem: 0x03, P: 0x20}, regs{A: 0x11, P: 0x21, Mem: 0x01}},
		{"RRA zp", "67 10", regs{A: 0x10, Mem: 0x02, P: 0x20}, regs{A: 0x11, P: 0x20, Mem: 0x01}},
		{"ANC imm", "0b 80", regs{A: 0xFF, P: 0x20}, regs{A: 0x80, P: 0xA1}},
		{"ALR imm", "4b 03", regs{A: 0x07, P: 0x20}, regs{A: 0x01, P: 0x21}},
		{"SBX imm", "cb 02", regs{A: 0x0F, X: 0x05, P: 0x20}, regs{A: 0x0F, X: 0x03, P: 0x21}},
		{"ARR imm", "6b ff", regs{A: 0xC0, P: 0x21}, regs{A: 0xE0, P: 0xA1}},
		{"NOP zp,X", "14 10", regs{A: 0x01, Mem: 0x33, P: 0x20}, regs{A: 0x01, Mem: 0x33, P: 0x20}},
		{"undecoded", "8b 10", regs{A: 0x01, P: 0x20}, regs{A: 0x01, P: 0x20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := loadCPUWith(t, "0600: "+tt.code)
			cpu.Cycles = 0
			cpu.PC = 0x0600
			cpu.A, cpu.X, cpu.P = tt.in.A, tt.in.X, P(tt.in.P)
			mem[0x10] = tt.in.Mem
			cpu.Step()

			got := regs{A: cpu.A, X: cpu.X, P: uint8(cpu.P), Mem: mem[0x10]}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUndecodedIsOneByteNOP(t *testing.T) {
	cpu, _ := loadCPUWith(t, `0600: 9e ea`)
	cpu.Cycles = 0
	cpu.PC = 0x0600
	cpu.Step()
	if cpu.PC != 0x0601 || cpu.Cycles != 2 {
		t.Errorf("PC=%04X cycles=%d, want PC=0601 cycles=2", cpu.PC, cpu.Cycles)
	}
}
