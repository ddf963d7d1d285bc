package hwio

import (
	"io"

	"sixtyfour/emu/log"
)

const (
	IOStart = 0xD000 // first address of the I/O area
	IOEnd   = 0xE000 // first address past the I/O area
	IOSize  = IOEnd - IOStart

	// BankCtrl is the zero-page location whose 2 low bits select whether the
	// I/O area is visible to the CPU.
	BankCtrl = 0x0001
)

// BankIO8 is the minimal byte-level access the CPU needs.
type BankIO8 interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

func Write16(b BankIO8, addr uint16, val uint16) {
	lo := uint8(val & 0xff)
	hi := uint8(val >> 8)
	b.Write8(addr, lo)
	b.Write8(addr+1, hi)
}

func Read16(b BankIO8, addr uint16) uint16 {
	lo := b.Read8(addr)
	hi := b.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// IOHandler intercepts accesses to the I/O area.
//
// ReadIO may decline a read by returning handled=false, in which case the last
// byte stored in the I/O shadow is returned. WriteIO is called for every write,
// before the value gets stored in the shadow.
type IOHandler interface {
	ReadIO(addr uint16) (val uint8, handled bool)
	WriteIO(addr uint16, val uint8)
}

// Bus is the 64KB address space: RAM with a 4KB I/O shadow at $D000-$DFFF,
// switched in and out by the bank control byte.
type Bus struct {
	RAM [0x10000]uint8
	IO  [IOSize]uint8

	hdl IOHandler
}

// NewBus returns a zeroed bus. hdl may be nil.
func NewBus(hdl IOHandler) *Bus {
	return &Bus{hdl: hdl}
}

func (b *Bus) ioVisible(addr uint16) bool {
	return b.RAM[BankCtrl]&3 != 0 && addr >= IOStart && addr < IOEnd
}

// Read8 reads a byte, as seen by the CPU.
func (b *Bus) Read8(addr uint16) uint8 {
	if !b.ioVisible(addr) {
		return b.RAM[addr]
	}
	return b.ReadIO(addr, true)
}

// Peek8 reads a byte as seen by the CPU, without I/O side effects.
func (b *Bus) Peek8(addr uint16) uint8 {
	if !b.ioVisible(addr) {
		return b.RAM[addr]
	}
	return b.IO[addr-IOStart]
}

// Write8 writes a byte, as seen by the CPU.
func (b *Bus) Write8(addr uint16, val uint8) {
	if !b.ioVisible(addr) {
		b.RAM[addr] = val
		return
	}
	b.WriteIO(addr, val)
}

func (b *Bus) ReadRAM(addr uint16) uint8 { return b.RAM[addr] }

func (b *Bus) WriteRAM(addr uint16, val uint8) { b.RAM[addr] = val }

// ReadIO reads from the I/O shadow, regardless of the bank configuration. If
// intercept is true the I/O handler gets a chance to provide the value.
// Addresses outside of the I/O area read RAM.
func (b *Bus) ReadIO(addr uint16, intercept bool) uint8 {
	if addr < IOStart || addr >= IOEnd {
		return b.RAM[addr]
	}
	if intercept && b.hdl != nil {
		if val, ok := b.hdl.ReadIO(addr); ok {
			return val
		}
	}
	return b.IO[addr-IOStart]
}

// WriteIO writes into the I/O shadow, regardless of the bank configuration.
// The I/O handler sees the write before the value gets stored. Addresses
// outside of the I/O area write RAM.
func (b *Bus) WriteIO(addr uint16, val uint8) {
	if addr < IOStart || addr >= IOEnd {
		b.RAM[addr] = val
		return
	}
	if b.hdl != nil {
		b.hdl.WriteIO(addr, val)
	}
	b.IO[addr-IOStart] = val
}

func (b *Bus) Read16(addr uint16) uint16 { return Read16(b, addr) }

func (b *Bus) Write16(addr uint16, val uint16) { Write16(b, addr, val) }

// Load copies data into RAM at addr. The copy stops at the end of the address
// space. It returns the number of bytes copied.
func (b *Bus) Load(addr uint16, data []byte) int {
	n := copy(b.RAM[addr:], data)
	if n < len(data) {
		log.ModMem.WarnZ("load truncated at end of memory").
			Hex16("addr", addr).
			Int("size", len(data)).
			Int("copied", n).
			End()
	}
	return n
}

// LoadFrom reads from r into RAM at addr, until EOF or the end of the address
// space.
func (b *Bus) LoadFrom(addr uint16, r io.Reader) (int, error) {
	n, err := io.ReadFull(r, b.RAM[addr:])
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
	}
	return n, err
}

// CopyRAM copies RAM starting at addr into dst, stopping at the end of the
// address space. It returns the number of bytes copied.
func (b *Bus) CopyRAM(addr uint16, dst []byte) int {
	return copy(dst, b.RAM[addr:])
}

// Reset clears RAM and the I/O shadow.
func (b *Bus) Reset() {
	clear(b.RAM[:])
	clear(b.IO[:])
}
