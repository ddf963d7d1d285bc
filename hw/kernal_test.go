package hw

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sixtyfour/disk"
)

type prgFile struct {
	name string
	data []byte
}

// d64Offset returns the offset of a sector of the first tracks (21 sectors
// each) of a D64 image.
func d64Offset(track, sector int) int {
	return ((track-1)*21 + sector) * disk.SectorSize
}

// newTestDisk builds a D64 image holding PRG files. Files are stored in
// consecutive sectors, from track 1.
func newTestDisk(tb testing.TB, saveDir string, files ...prgFile) *disk.Image {
	tb.Helper()

	data := make([]byte, disk.D64Size)
	dir := data[d64Offset(18, 1):]

	track, sector := 1, 0
	for i, f := range files {
		e := dir[2+i*32:]
		e[0] = 0x82
		e[1], e[2] = uint8(track), uint8(sector)
		for j := range 16 {
			e[3+j] = 0xA0
		}
		copy(e[3:], f.name)

		rest := f.data
		for {
			sec := data[d64Offset(track, sector):]
			n := copy(sec[2:disk.SectorSize], rest)
			rest = rest[n:]
			sector++
			if sector == 21 {
				track, sector = track+1, 0
			}
			if len(rest) == 0 {
				sec[0], sec[1] = 0, uint8(n+1)
				break
			}
			sec[0], sec[1] = uint8(track), uint8(sector)
		}
	}

	img, err := disk.New("test", data, saveDir)
	if err != nil {
		tb.Fatal(err)
	}
	return img
}

// setName stores name in RAM and calls SETNAM.
func setName(m *C64, name string) {
	const addr = 0x0340
	for i := range len(name) {
		m.Bus.WriteRAM(addr+uint16(i), name[i])
	}
	m.CPU.A = uint8(len(name))
	m.CPU.X = addr & 0xff
	m.CPU.Y = addr >> 8
	m.kernal.trap(SETNAM)
}

// readFile reads the current input file through CHRIN, until the status
// byte is non-zero. It returns the bytes and the final status.
func readFile(m *C64) ([]byte, uint8) {
	var buf []byte
	for range 0x10000 {
		m.kernal.trap(CHRIN)
		st := m.Bus.ReadRAM(statusAddr)
		if st&0x02 == 0 {
			buf = append(buf, m.CPU.A)
		}
		if st != statusOK {
			return buf, st
		}
	}
	return buf, 0xff
}

func TestKernalRead(t *testing.T) {
	img := newTestDisk(t, "",
		prgFile{"BOOT", []byte{0x01, 0x08}},
		prgFile{"LEVEL", []byte("LEVEL DATA")},
	)
	m := NewC64(MachineConfig{Disk: img})

	setName(m, "LEVEL")
	if got := string(m.kernal.name); got != "LEVEL" {
		t.Fatalf("name = %q, want LEVEL", got)
	}
	m.kernal.trap(CHKIN)
	got, st := readFile(m)
	if string(got) != "LEVEL DATA" {
		t.Errorf("read %q, want %q", got, "LEVEL DATA")
	}
	if st != statusEOF {
		t.Errorf("status = %02X, want %02X", st, statusEOF)
	}
	m.kernal.trap(CLOSE)
	if m.kernal.file != nil {
		t.Errorf("file not closed")
	}

	t.Run("not found", func(t *testing.T) {
		setName(m, "MISSING")
		m.kernal.trap(CHKIN)
		m.kernal.trap(CHRIN)
		if st := m.Bus.ReadRAM(statusAddr); st != statusNotFound {
			t.Errorf("status = %02X, want %02X", st, statusNotFound)
		}
	})
}

func TestKernalSetnamReplacePrefix(t *testing.T) {
	m := NewC64(MachineConfig{})
	setName(m, "@0:HISCORE")
	if got := string(m.kernal.name); got != "HISCORE" {
		t.Errorf("name = %q, want HISCORE", got)
	}
}

func TestKernalWrite(t *testing.T) {
	dir := t.TempDir()
	img := newTestDisk(t, dir, prgFile{"HISCORE", []byte{0, 0}})
	m := NewC64(MachineConfig{Disk: img})

	setName(m, "@0:HISCORE")
	m.kernal.trap(CHKOUT)
	for _, b := range []byte{0x12, 0x34, 0x56} {
		m.CPU.A = b
		m.kernal.trap(CHROUT)
	}
	m.kernal.trap(CLOSE)

	buf, err := os.ReadFile(filepath.Join(dir, "testHISCORE"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x12, 0x34, 0x56}, buf); diff != "" {
		t.Errorf("saved file mismatch (-want +got):\n%s", diff)
	}

	// Reading back gets the saved file.
	setName(m, "HISCORE")
	m.kernal.trap(CHKIN)
	got, _ := readFile(m)
	if diff := cmp.Diff([]byte{0x12, 0x34, 0x56}, got); diff != "" {
		t.Errorf("read back mismatch (-want +got):\n%s", diff)
	}
}

func TestKernalNoDisk(t *testing.T) {
	m := NewC64(MachineConfig{})

	setName(m, "ANY")
	m.kernal.trap(CHKIN)
	m.kernal.trap(CHRIN)
	if st := m.Bus.ReadRAM(statusAddr); st != statusNotFound {
		t.Errorf("status = %02X, want %02X", st, statusNotFound)
	}
	m.kernal.trap(CHKOUT)
	m.kernal.trap(CHROUT)
	m.kernal.trap(CLOSE)
}

func TestKernalCIOUT(t *testing.T) {
	m := NewC64(MachineConfig{})
	m.kernal.trap(CIOUT)
	if st := m.Bus.ReadRAM(statusAddr); st != statusNoDevice {
		t.Errorf("status = %02X, want %02X", st, statusNoDevice)
	}
}

func TestKernalTrapThroughCPU(t *testing.T) {
	img := newTestDisk(t, "", prgFile{"BOOT", []byte{0x5a, 0x10, 0x60}})
	m := NewC64(MachineConfig{Disk: img})

	// SETNAM "BOOT", CHKIN, CHRIN, STA $0300, then JAM. Jumps into the
	// trap window land on zeroed RAM.
	const prog = `
0340: 42 4f 4f 54
2000: a9 04 a2 40 a0 03 20 bd ff 20 c6 ff 20 cf ff 8d
2010: 00 03 02`
	for _, dl := range loadDump(t, prog) {
		m.Bus.Load(dl.off, dl.bytes)
	}
	m.Bus.Write16(ResetVector, 0x2000)
	m.Reset()
	m.RunFrame()

	if !m.Jammed() {
		t.Fatalf("program didn't complete, PC=%04X", m.CPU.PC)
	}
	if got := m.Bus.ReadRAM(0x0300); got != 0x5a {
		t.Errorf("first byte = %02X, want 5A", got)
	}
	if got := m.Bus.ReadRAM(statusAddr); got != statusOK {
		t.Errorf("status = %02X, want 00", got)
	}
}
