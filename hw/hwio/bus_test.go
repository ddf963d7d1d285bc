package hwio_test

import (
	"bytes"
	"testing"

	"sixtyfour/hw/hwio"
)

// ioRecorder handles a few I/O addresses and records all writes.
type ioRecorder struct {
	bus *hwio.Bus

	handled map[uint16]uint8
	writes  []ioWrite
}

type ioWrite struct {
	addr   uint16
	val    uint8
	stored uint8 // shadow value at the time of the callback
}

func (r *ioRecorder) ReadIO(addr uint16) (uint8, bool) {
	v, ok := r.handled[addr]
	return v, ok
}

func (r *ioRecorder) WriteIO(addr uint16, val uint8) {
	r.writes = append(r.writes, ioWrite{addr: addr, val: val, stored: r.bus.ReadIO(addr, false)})
}

func newTestBus(tb testing.TB) (*hwio.Bus, *ioRecorder) {
	tb.Helper()
	rec := &ioRecorder{handled: map[uint16]uint8{}}
	bus := hwio.NewBus(rec)
	rec.bus = bus
	return bus, rec
}

func wantRead8(tb testing.TB, bus hwio.BankIO8, addr uint16, want uint8) {
	tb.Helper()

	if got := bus.Read8(addr); got != want {
		tb.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestBusRAMReadWrite(t *testing.T) {
	bus := hwio.NewBus(nil)
	bus.Write8(hwio.BankCtrl, 0x37)

	for _, addr := range []uint16{0x0000, 0x0002, 0x00FF, 0x0800, 0xC000, 0xCFFF, 0xE000, 0xFFFF} {
		bus.Write8(addr, uint8(addr>>4)^0x5A)
		wantRead8(t, bus, addr, uint8(addr>>4)^0x5A)
	}
}

func TestBusBankSwitch(t *testing.T) {
	bus, rec := newTestBus(t)

	// I/O visible.
	bus.Write8(hwio.BankCtrl, 0x37)
	bus.Write8(0xD020, 0x0E)
	if bus.RAM[0xD020] != 0 {
		t.Errorf("I/O write leaked into RAM: %02X", bus.RAM[0xD020])
	}
	if bus.IO[0x020] != 0x0E {
		t.Errorf("I/O shadow = %02X, want 0E", bus.IO[0x020])
	}
	if len(rec.writes) != 1 {
		t.Fatalf("got %d intercepted writes, want 1", len(rec.writes))
	}

	// All RAM.
	bus.Write8(hwio.BankCtrl, 0x34)
	bus.Write8(0xD020, 0x42)
	wantRead8(t, bus, 0xD020, 0x42)
	if bus.IO[0x020] != 0x0E {
		t.Errorf("RAM write modified I/O shadow: %02X", bus.IO[0x020])
	}
	if len(rec.writes) != 1 {
		t.Errorf("RAM write was intercepted")
	}

	// Back to I/O.
	bus.Write8(hwio.BankCtrl, 0x35)
	wantRead8(t, bus, 0xD020, 0x0E)
}

func TestBusReadInterception(t *testing.T) {
	bus, rec := newTestBus(t)
	bus.Write8(hwio.BankCtrl, 0x37)

	bus.Write8(0xD012, 0x33)
	bus.Write8(0xD021, 0x06)
	rec.handled[0xD012] = 0x99

	wantRead8(t, bus, 0xD012, 0x99)
	// Declined read returns the stored shadow byte.
	wantRead8(t, bus, 0xD021, 0x06)

	if got := bus.ReadIO(0xD012, false); got != 0x33 {
		t.Errorf("ReadIO(D012, no intercept) = %02X, want 33", got)
	}
	if got := bus.Peek8(0xD012); got != 0x33 {
		t.Errorf("Peek8(D012) = %02X, want 33", got)
	}
}

func TestBusWriteHookBeforeStore(t *testing.T) {
	bus, rec := newTestBus(t)
	bus.Write8(hwio.BankCtrl, 0x37)

	bus.Write8(0xD418, 0x0F)
	bus.Write8(0xD418, 0x1F)

	want := []ioWrite{
		{addr: 0xD418, val: 0x0F, stored: 0x00},
		{addr: 0xD418, val: 0x1F, stored: 0x0F},
	}
	if len(rec.writes) != len(want) {
		t.Fatalf("got %d writes, want %d", len(rec.writes), len(want))
	}
	for i := range want {
		if rec.writes[i] != want[i] {
			t.Errorf("write %d = %+v, want %+v", i, rec.writes[i], want[i])
		}
	}
}

func TestBusRawAccessOutsideIO(t *testing.T) {
	bus, rec := newTestBus(t)

	bus.WriteIO(0x1234, 0xAB)
	if bus.RAM[0x1234] != 0xAB {
		t.Errorf("WriteIO outside of I/O area should write RAM")
	}
	if got := bus.ReadIO(0x1234, true); got != 0xAB {
		t.Errorf("ReadIO(1234) = %02X, want AB", got)
	}
	if len(rec.writes) != 0 {
		t.Errorf("WriteIO outside of I/O area was intercepted")
	}

	// Raw RAM under I/O.
	bus.WriteRAM(0xD800, 0x07)
	if got := bus.ReadRAM(0xD800); got != 0x07 {
		t.Errorf("ReadRAM(D800) = %02X, want 07", got)
	}
}

func TestBusRead16(t *testing.T) {
	bus := hwio.NewBus(nil)
	bus.Write8(0xFFFC, 0x0D)
	bus.Write8(0xFFFD, 0x08)
	if got := bus.Read16(0xFFFC); got != 0x080D {
		t.Errorf("Read16(FFFC) = %04X, want 080D", got)
	}

	// Address wraps.
	bus.Write8(0xFFFF, 0x34)
	bus.Write8(0x0000, 0x12)
	if got := bus.Read16(0xFFFF); got != 0x1234 {
		t.Errorf("Read16(FFFF) = %04X, want 1234", got)
	}

	bus.Write16(0x0300, 0xBEEF)
	wantRead8(t, bus, 0x0300, 0xEF)
	wantRead8(t, bus, 0x0301, 0xBE)
}

func TestBusLoadClamp(t *testing.T) {
	bus := hwio.NewBus(nil)
	data := bytes.Repeat([]byte{0xEA}, 32)

	if n := bus.Load(0xFFF0, data); n != 16 {
		t.Errorf("Load copied %d bytes, want 16", n)
	}
	if bus.RAM[0] != 0 {
		t.Errorf("Load wrapped around to address 0")
	}

	n, err := bus.LoadFrom(0xFFF8, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("LoadFrom copied %d bytes, want 8", n)
	}

	n, err = bus.LoadFrom(0x1000, bytes.NewReader([]byte{1, 2, 3}))
	if err != nil || n != 3 {
		t.Errorf("LoadFrom short reader = (%d, %v), want (3, nil)", n, err)
	}

	dst := make([]byte, 64)
	if n := bus.CopyRAM(0xFFE0, dst); n != 32 {
		t.Errorf("CopyRAM copied %d bytes, want 32", n)
	}
}
