package hw

// P is the processor status register.
type P uint8

const (
	Carry = 1 << iota
	Zero
	Interrupt
	Decimal
	Break
	Reserved
	Overflow
	Negative
)

func (p P) Carry() bool      { return p&Carry != 0 }
func (p P) Zero() bool       { return p&Zero != 0 }
func (p P) IntDisable() bool { return p&Interrupt != 0 }
func (p P) Decimal() bool    { return p&Decimal != 0 }
func (p P) Break() bool      { return p&Break != 0 }
func (p P) Overflow() bool   { return p&Overflow != 0 }
func (p P) Negative() bool   { return p&Negative != 0 }

func (p P) set(flag P, on bool) P {
	if on {
		return p | flag
	}
	return p &^ flag
}

func (p P) SetC(on bool) P          { return p.set(Carry, on) }
func (p P) SetZ(on bool) P          { return p.set(Zero, on) }
func (p P) SetIntDisable(on bool) P { return p.set(Interrupt, on) }
func (p P) SetD(on bool) P          { return p.set(Decimal, on) }
func (p P) SetBreak(on bool) P      { return p.set(Break, on) }
func (p P) SetV(on bool) P          { return p.set(Overflow, on) }
func (p P) SetN(on bool) P          { return p.set(Negative, on) }

func (p *P) checkNZ(v uint8) {
	*p = p.SetN(v&0x80 != 0)
	*p = p.SetZ(v == 0)
}

// sets N flag if bit 7 of v is set, clears it otherwise.
func (p *P) checkN(v uint8) {
	*p = p.SetN(v&(1<<7) != 0)
}

// sets Z flag if v == 0, clears it otherwise.
func (p *P) checkZ(v uint8) {
	*p = p.SetZ(v == 0)
}

func (p *P) checkCV(x, y uint8, sum uint16) {
	// forward carry or unsigned overflow.
	*p = p.SetC(sum > 0xFF)

	// signed overflow, can only happen if the sign of the sum differs
	// from that of both operands.
	v := (uint16(x) ^ sum) & (uint16(y) ^ sum) & 0x80
	*p = p.SetV(v != 0)
}

// pushed returns the value of P as pushed on the stack. The break bit is only
// set by PHP and BRK.
func (p P) pushed(brk bool) uint8 {
	return uint8(p.SetBreak(brk) | Reserved)
}

// pulled returns the value of P after a pull from the stack, which ignores
// the break bit and keeps the reserved bit set.
func pulled(v uint8) P {
	return (P(v) &^ Break) | Reserved
}

func (p P) String() string {
	const bits = "nvubdizcNVUBDIZC"

	s := make([]byte, 8)
	for i := 0; i < 8; i++ {
		ibit := (uint8(p) & (1 << (7 - i))) >> (7 - i)
		s[i] = bits[i+int(8*ibit)]
	}
	return string(s)
}
