package hw

import (
	"sixtyfour/emu/log"
	"sixtyfour/hw/hwio"
)

var modCIA = log.NewModule("cia")

// CIA #1 registers.
const (
	CIAPortA   = 0xDC00 // keyboard column select, joystick 2
	CIAPortB   = 0xDC01 // keyboard rows
	CIATimerLo = 0xDC04
	CIATimerHi = 0xDC05
	CIAICR     = 0xDC0D
	CIACRA     = 0xDC0E
)

const (
	icrTimerA = 1 << 0
	icrSet    = 1 << 7 // set or clear the bits written as 1
	icrIRQ    = 1 << 7

	craStart = 1 << 0
	craLoad  = 1 << 4
)

// InputDevice provides the state of the keyboard and of the joystick. Bits
// are active low.
type InputDevice interface {
	// Joystick returns the joystick bits: up 1, down 2, left 4, right 8 and
	// fire $10.
	Joystick() uint8
	KeyMatrix() [8]uint8
}

type noInput struct{}

func (noInput) Joystick() uint8     { return 0xff }
func (noInput) KeyMatrix() [8]uint8 { return [8]uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff} }

// CIA models the keyboard and joystick ports and the timer A interrupt of the
// first CIA. The timer counts down once per raster line.
type CIA struct {
	bus   *hwio.Bus
	input InputDevice

	timer      int
	irqEnabled bool
	irqFlag    bool
}

func newCIA(bus *hwio.Bus, input InputDevice) *CIA {
	if input == nil {
		input = noInput{}
	}
	return &CIA{bus: bus, input: input}
}

// IRQ reports whether the timer interrupt is pending.
func (c *CIA) IRQ() bool { return c.irqFlag }

// Timer returns the current timer value, in cycles.
func (c *CIA) Timer() int { return c.timer }

// tickLine counts down the timer by one raster line worth of cycles.
func (c *CIA) tickLine() {
	if c.timer <= 0 || c.bus.ReadIO(CIACRA, false)&craStart == 0 {
		return
	}
	c.timer -= CyclesPerLine
	if c.timer > 0 {
		return
	}
	c.timer = 0
	if c.irqEnabled {
		c.irqFlag = true
		modCIA.DebugZ("timer IRQ").End()
	}
}

func (c *CIA) writeICR(val uint8) {
	switch val & (icrSet | icrTimerA) {
	case icrSet | icrTimerA:
		c.irqEnabled = true
	case icrTimerA:
		c.irqEnabled = false
	}
}

func (c *CIA) writeCRA(val uint8) {
	if val&craLoad == 0 {
		return
	}
	c.timer = int(c.bus.ReadIO(CIATimerLo, false)) | int(c.bus.ReadIO(CIATimerHi, false))<<8
	modCIA.DebugZ("timer loaded").Int("timer", c.timer).End()
}

// readICR acknowledges the pending interrupt.
func (c *CIA) readICR() uint8 {
	var val uint8
	if c.irqEnabled {
		val |= icrTimerA
	}
	if c.irqFlag {
		c.irqFlag = false
		val |= icrIRQ
	}
	return val
}

func (c *CIA) readPortA() uint8 {
	return c.input.Joystick()
}

// readPortB returns the keyboard rows of the columns selected with port A.
func (c *CIA) readPortB() uint8 {
	sel := c.bus.ReadIO(CIAPortA, false)
	matrix := c.input.KeyMatrix()
	val := uint8(0xff)
	for i := range uint(8) {
		if !hwio.GetBit8(sel, i) {
			val &= matrix[i]
		}
	}
	return val
}
