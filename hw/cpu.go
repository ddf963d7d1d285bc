package hw

import (
	"io"

	"sixtyfour/emu/log"
	"sixtyfour/hw/hwio"
)

// Locations reserved for vector pointers.
const (
	NMIVector   = uint16(0xFFFA) // Non-Maskable Interrupt
	ResetVector = uint16(0xFFFC) // Reset
	IRQVector   = uint16(0xFFFE) // Interrupt Request
)

// TrapStart is the first address of the Kernal trap window. When the program
// counter enters it, the trap callback runs in place of the ROM routine.
const TrapStart = 0xFF00

const (
	resetCycles = 7
	nmiCycles   = 7

	// The IRQ sequence isn't charged any cycle, in-game raster splits rely
	// on the handler starting on the line the interrupt is raised.
	irqCycles = 0
)

// TrapFunc is called with the program counter when execution reaches the
// trap window. After it returns, the CPU executes an RTS.
type TrapFunc func(pc uint16)

type CPU struct {
	Bus  hwio.BankIO8
	trap TrapFunc

	// Non-nil when execution tracing is enabled.
	tracer *tracer

	Cycles int64 // CPU cycles

	// cpu registers
	A, X, Y, SP uint8
	PC          uint16
	P           P

	// pending interrupts
	reset, nmi, irq bool

	jammed bool
}

// NewCPU creates a new CPU, a reset is pending. trap may be nil.
func NewCPU(bus hwio.BankIO8, trap TrapFunc) *CPU {
	return &CPU{
		Bus:   bus,
		trap:  trap,
		P:     Reserved,
		reset: true,
	}
}

// Reset requests a reset, performed at the next Step.
func (c *CPU) Reset() { c.reset = true }

// SetNMI requests a non-maskable interrupt.
func (c *CPU) SetNMI() { c.nmi = true }

// SetIRQ drives the maskable interrupt line.
func (c *CPU) SetIRQ(active bool) { c.irq = active }

// Jammed reports whether the CPU executed a JAM opcode. Only a reset gets it
// out of that state.
func (c *CPU) Jammed() bool { return c.jammed }

// Step executes a single instruction, or an interrupt sequence.
func (c *CPU) Step() {
	switch {
	case c.reset:
		c.doReset()
		return
	case c.jammed:
		c.nmi = false
		c.irq = false
		return
	case c.nmi:
		c.interrupt(NMIVector)
		c.Cycles += nmiCycles
		c.nmi = false
		c.irq = false
		return
	case c.irq && !c.P.IntDisable():
		c.interrupt(IRQVector)
		c.Cycles += irqCycles
		c.irq = false
		return
	}

	pc := c.PC
	opcode := c.Bus.Read8(pc)
	if c.tracer != nil {
		c.traceOp()
	}
	if pc >= TrapStart && c.trap != nil {
		c.trap(pc)
		opcode = 0x60 // RTS
	}

	op := &ops[opcode]
	addr := c.operand(op)
	c.Cycles += int64(op.cycles)
	op.exec(c, addr)

	if c.jammed {
		log.ModCPU.WarnZ("CPU jammed").
			Hex16("PC", pc).
			Hex8("opcode", opcode).
			End()
	}
}

// Run executes instructions until the cycle counter reaches until, or the CPU
// jams.
func (c *CPU) Run(until int64) {
	for c.Cycles < until && !c.jammed {
		c.Step()
	}
}

func (c *CPU) doReset() {
	// Writes are ignored during reset, the stack pointer moves anyway.
	c.SP -= 3
	c.P = c.P.SetIntDisable(true) | Reserved
	c.PC = hwio.Read16(c.Bus, ResetVector)
	c.Cycles = resetCycles
	c.reset = false
	c.jammed = false
	c.nmi = false
	c.irq = false
}

func (c *CPU) interrupt(vector uint16) {
	c.push16(c.PC)
	c.push8(c.P.pushed(false))
	c.P = c.P.SetIntDisable(true)
	c.PC = hwio.Read16(c.Bus, vector)
}

// peek reads a byte without side effects when the bus supports it.
func (c *CPU) peek(addr uint16) uint8 {
	if p, ok := c.Bus.(interface{ Peek8(uint16) uint8 }); ok {
		return p.Peek8(addr)
	}
	return c.Bus.Read8(addr)
}

func (c *CPU) read16(addr uint16) uint16 {
	return hwio.Read16(c.Bus, addr)
}

// read16zp reads a pointer from the zero page, the high byte wraps within it.
func (c *CPU) read16zp(zp uint8) uint16 {
	lo := c.Bus.Read8(uint16(zp))
	hi := c.Bus.Read8(uint16(zp + 1))
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	top := uint16(c.SP) + 0x0100
	c.Bus.Write8(top, val)
	c.SP -= 1
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xff))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	top := uint16(c.SP) + 0x0100
	return c.Bus.Read8(top)
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* tracing */

// SetTraceOutput enables the execution trace, one line per instruction is
// written to w. A nil writer disables it.
func (c *CPU) SetTraceOutput(w io.Writer) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = &tracer{w: w, d: c}
}

// SetTraceLine sets the function providing the current raster line for the
// execution trace.
func (c *CPU) SetTraceLine(line func() int) {
	if c.tracer != nil {
		c.tracer.line = line
	}
}

func (c *CPU) traceOp() {
	state := cpuState{
		A:     c.A,
		X:     c.X,
		Y:     c.Y,
		P:     c.P,
		SP:    c.SP,
		Clock: c.Cycles,
		PC:    c.PC,
	}
	if c.tracer.line != nil {
		state.Line = c.tracer.line()
	}
	c.tracer.write(state)
}
