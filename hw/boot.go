package hw

import "sixtyfour/hw/hwio"

const (
	// BASIC start of program, end of program and Kernal end of load pointers.
	txttab = 0x2D
	eal    = 0xAE

	clallVector = 0x032C // CLALL vector, overwritten by autostart loaders
	basicStart  = 0x080D // SYS 2061, after the 1-line BASIC stub
)

// boot loads the first program of the disk, as LOAD"*",8,1 would, and points
// the reset vector at it.
func (m *C64) boot() {
	if m.kernal.disk == nil {
		modKernal.WarnZ("no disk, nothing to boot").End()
		return
	}

	f := m.kernal.disk.OpenFile(nil)
	if f == nil {
		modKernal.WarnZ("no program on disk, nothing to boot").End()
		return
	}

	d := m.kernal.disk
	load := uint16(d.ReadByte(f)) | uint16(d.ReadByte(f))<<8
	addr := load

	// Loading stops at the top of memory, which also ends cyclic sector
	// chains. Writes go through the banked bus so that programs loaded over
	// the I/O area reach colour RAM and the chip registers.
	n := 0
	for room := 0x10000 - int(load); f.Open() && n < room; n++ {
		m.Bus.Write8(addr, d.ReadByte(f))
		addr++
	}
	if f.Open() {
		modKernal.WarnZ("boot program truncated at end of memory").
			Hex16("load", load).
			Int("loaded", n).
			End()
	}
	f.Close()

	hwio.Write16(ramIO{m.Bus}, txttab, addr)
	hwio.Write16(ramIO{m.Bus}, eal, addr)

	// Programs loaded over the CLALL vector autostart through it.
	entry := uint16(basicStart)
	if load <= clallVector {
		entry = hwio.Read16(ramIO{m.Bus}, clallVector)
	}
	hwio.Write16(ramIO{m.Bus}, ResetVector, entry)

	modKernal.InfoZ("boot program loaded").
		Hex16("load", load).
		Hex16("end", addr).
		Hex16("entry", entry).
		End()
}

// ramIO gives access to the RAM below the I/O area.
type ramIO struct{ bus *hwio.Bus }

func (r ramIO) Read8(addr uint16) uint8       { return r.bus.ReadRAM(addr) }
func (r ramIO) Write8(addr uint16, val uint8) { r.bus.WriteRAM(addr, val) }
