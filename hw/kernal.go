package hw

import (
	"bytes"

	"sixtyfour/disk"
	"sixtyfour/emu/log"
	"sixtyfour/hw/hwio"
)

var modKernal = log.NewModule("kernal")

// Kernal routines replaced by traps.
const (
	CIOUT  = 0xFFA8
	CLOSE  = 0xFFC3
	CHKIN  = 0xFFC6
	CHKOUT = 0xFFC9
	CHRIN  = 0xFFCF
	CHROUT = 0xFFD2
	SETNAM = 0xFFBD
)

// Kernal I/O status byte.
const (
	statusAddr = 0x90

	statusOK       = 0x00
	statusEOF      = 0x40
	statusNotFound = 0x42 // EOF and timeout
	statusNoDevice = 0x80
)

// Disk is where the Kernal traps and the boot loader find files.
type Disk interface {
	OpenFile(name []byte) *disk.File
	OpenFileForWrite(name []byte) *disk.File
	ReadByte(f *disk.File) uint8
	WriteByte(f *disk.File, val uint8)
}

// kernal implements the file I/O routines of the Kernal on top of a disk
// image. There's a single open file at a time.
type kernal struct {
	cpu  *CPU
	bus  *hwio.Bus
	disk Disk

	name []byte
	file *disk.File
}

func (k *kernal) ram(addr uint16) uint8 {
	return k.bus.ReadRAM(addr)
}

func (k *kernal) setStatus(val uint8) {
	k.bus.WriteRAM(statusAddr, val)
}

// trap is called by the CPU when it executes an address of the trap window.
func (k *kernal) trap(pc uint16) {
	switch pc {
	case SETNAM:
		k.setnam()
	case CHKIN:
		k.closeFile()
		k.file = k.openFile(false)
	case CHKOUT:
		k.closeFile()
		k.file = k.openFile(true)
	case CHRIN:
		k.chrin()
	case CHROUT:
		if k.disk != nil && k.file != nil {
			k.disk.WriteByte(k.file, k.cpu.A)
		}
	case CLOSE:
		k.closeFile()
	case CIOUT:
		// Makes fastloaders believe there's no drive.
		k.setStatus(statusNoDevice)
	default:
		modKernal.DebugZ("unhandled trap").Hex16("pc", pc).End()
	}
}

// setnam records the file name. A is its length, X/Y its address. The "@0:"
// prefix (save with replace) is removed.
func (k *kernal) setnam() {
	n := int(k.cpu.A)
	addr := uint16(k.cpu.Y)<<8 | uint16(k.cpu.X)
	if n >= 3 && k.ram(addr) == '@' && k.ram(addr+1) == '0' {
		addr += 3
		n -= 3
	}

	k.name = make([]byte, n)
	for i := range k.name {
		k.name[i] = k.ram(addr)
		addr++
	}
	modKernal.DebugZ("SETNAM").String("name", string(k.name)).End()
}

func (k *kernal) openFile(write bool) *disk.File {
	if k.disk == nil {
		modKernal.WarnZ("no disk").String("name", string(k.name)).End()
		return nil
	}

	var f *disk.File
	if write {
		f = k.disk.OpenFileForWrite(k.name)
	} else {
		f = k.disk.OpenFile(k.name)
	}
	if f == nil {
		modKernal.WarnZ("failed to open file").
			String("name", string(bytes.ToValidUTF8(k.name, []byte("?")))).
			Blob("raw", k.name).
			Bool("write", write).
			End()
	}
	return f
}

func (k *kernal) chrin() {
	if k.file == nil {
		k.setStatus(statusNotFound)
		return
	}
	if k.file.Open() {
		k.cpu.A = k.disk.ReadByte(k.file)
	}
	if k.file.Open() {
		k.setStatus(statusOK)
	} else {
		k.setStatus(statusEOF)
	}
}

func (k *kernal) closeFile() {
	if k.file != nil {
		k.file.Close()
		k.file = nil
	}
}
