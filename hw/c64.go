package hw

import (
	"io"
	"sync/atomic"

	"sixtyfour/emu/log"
	"sixtyfour/hw/hwio"
	"sixtyfour/hw/sid"
)

// FrameCycles is the number of CPU cycles in a frame.
const FrameCycles = CyclesPerLine * NumLines

// Raster interrupt registers.
const (
	VicCtrl1  = 0xD011
	Raster    = 0xD012
	VicIRQ    = 0xD019
	VicIRQEna = 0xD01A
)

type MachineConfig struct {
	Disk  Disk
	Input InputDevice
	VIC   VICConfig
	SID   sid.Config
}

// C64 ties the chips to the bus and runs them, one raster line at a time.
type C64 struct {
	Bus *hwio.Bus
	CPU *CPU
	VIC *VIC
	SID *sid.SID
	CIA *CIA

	kernal kernal

	line        int
	audioCycles int64
	rasterIRQ   bool
	frames      int64

	// Copies of line and CPU cycles, for log entries emitted from other
	// goroutines.
	logLine   atomic.Int64
	logCycles atomic.Int64
}

func NewC64(cfg MachineConfig) *C64 {
	m := &C64{}
	m.Bus = hwio.NewBus(ioHooks{m})
	m.CIA = newCIA(m.Bus, cfg.Input)
	m.kernal = kernal{bus: m.Bus, disk: cfg.Disk}
	m.CPU = NewCPU(m.Bus, m.kernal.trap)
	m.kernal.cpu = m.CPU
	m.VIC = NewVIC(m.Bus, cfg.VIC)
	m.SID = sid.New(m.Bus, cfg.SID)

	m.PowerUp()
	return m
}

// PowerUp clears memory, loads the boot program and resets the CPU.
func (m *C64) PowerUp() {
	m.Bus.Reset()
	m.kernal.closeFile()
	m.rasterIRQ = false
	m.line = 0
	m.logLine.Store(0)
	m.logCycles.Store(0)
	*m.CIA = CIA{bus: m.Bus, input: m.CIA.input}

	m.Bus.WriteRAM(hwio.BankCtrl, 0x37)
	for _, r := range []struct {
		addr uint16
		val  uint8
	}{
		{0xD018, 0x14},
		{0xD011, 27},
		{0xD016, 24},
		{0xDD00, 0x03},
		{0xD030, 0xFF},
		{0xD0BC, 0xFF},
		{0xDC00, 0xFF},
	} {
		m.Bus.WriteIO(r.addr, r.val)
	}

	m.boot()
	m.CPU.Reset()
	log.ModEmu.InfoZ("power up").End()
}

// Reset resets the CPU. Memory is kept.
func (m *C64) Reset() {
	m.CPU.Reset()
}

func (m *C64) Jammed() bool  { return m.CPU.Jammed() }
func (m *C64) Line() int     { return m.line }
func (m *C64) Cycles() int64 { return m.CPU.Cycles }
func (m *C64) Frames() int64 { return m.frames }

// SetTraceOutput enables the CPU execution trace, with the raster line of
// each instruction.
func (m *C64) SetTraceOutput(w io.Writer) {
	m.CPU.SetTraceOutput(w)
	m.CPU.SetTraceLine(m.Line)
}

// AddLogContext adds the current raster line and cycle to log entries.
func (m *C64) AddLogContext(e *log.EntryZ) {
	e.Int("line", int(m.logLine.Load())).Int64("cyc", m.logCycles.Load())
}

// RunFrame emulates a whole frame. The rendered picture is available with
// VIC.Frame and the audio samples in the SID queue.
func (m *C64) RunFrame() {
	m.CPU.Cycles = 0
	m.logCycles.Store(0)
	m.audioCycles = 0

	for line := range FirstVisibleLine {
		m.runLine(line, false)
	}

	m.VIC.BeginFrame()
	for line := FirstVisibleLine; line < FirstInvisibleLine; line++ {
		m.runLine(line, true)
	}

	for line := FirstInvisibleLine; line < NumLines; line++ {
		m.runLine(line, false)
	}

	// Audio until the end of the frame.
	if m.audioCycles < FrameCycles {
		m.SID.BufferSamples(int(FrameCycles - m.audioCycles))
		m.audioCycles = FrameCycles
	}

	m.VIC.EndFrame()
	m.frames++
}

func (m *C64) runLine(line int, visible bool) {
	m.line = line
	m.logLine.Store(int64(line))
	if m.Bus.ReadIO(VicIRQEna, false)&1 != 0 && line == m.rasterCompare() {
		m.rasterIRQ = true
	}
	m.CIA.tickLine()

	target := int64(CyclesPerLine * line)
	for m.CPU.Cycles < target && !m.CPU.Jammed() {
		m.CPU.SetIRQ(m.CIA.IRQ() || m.rasterIRQ)
		m.CPU.Step()
		m.logCycles.Store(m.CPU.Cycles)
	}

	if visible {
		m.VIC.RenderLine()
	}
}

// rasterCompare returns the line at which the raster interrupt triggers.
func (m *C64) rasterCompare() int {
	return int(m.Bus.ReadIO(VicCtrl1, false)&0x80)*2 + int(m.Bus.ReadIO(Raster, false))
}

// flushAudio runs the SID up to the current CPU cycle.
func (m *C64) flushAudio() {
	m.SID.BufferSamples(int(m.CPU.Cycles - m.audioCycles))
	m.audioCycles = m.CPU.Cycles
}

// ioHooks intercepts the I/O accesses that have side effects.
type ioHooks struct{ m *C64 }

func (h ioHooks) WriteIO(addr uint16, val uint8) {
	m := h.m
	switch {
	case addr >= sid.Base && addr < sid.Base+sid.NumRegs:
		// Audio up to now uses the register values before the write.
		m.flushAudio()
	case addr == CIAICR:
		m.CIA.writeICR(val)
	case addr == CIACRA:
		m.CIA.writeCRA(val)
	case addr == VicIRQ:
		// Any write acknowledges the raster interrupt.
		m.rasterIRQ = false
	}
}

func (h ioHooks) ReadIO(addr uint16) (uint8, bool) {
	m := h.m
	switch addr {
	case CIAPortA:
		return m.CIA.readPortA(), true
	case CIAPortB:
		return m.CIA.readPortB(), true
	case CIAICR:
		return m.CIA.readICR(), true
	case VicCtrl1:
		val := m.Bus.ReadIO(VicCtrl1, false) & 0x7f
		if m.line >= 0x100 {
			val |= 0x80
		}
		return val, true
	case Raster:
		return uint8(m.line), true
	case VicIRQEna:
		return m.Bus.ReadIO(VicIRQEna, false) | 0xf0, true
	case 0xD030:
		return 0xff, true
	}
	return 0, false
}
