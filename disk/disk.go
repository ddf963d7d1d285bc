// Package disk reads files from D64 and D81 floppy disk images.
//
// Files written by the emulated program are not stored in the image but in a
// separate directory, where they take precedence over the image content when
// read back.
package disk

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sixtyfour/emu/log"
)

var modDisk = log.NewModule("disk")

type Type uint8

const (
	D64 Type = iota
	D81
)

func (t Type) String() string {
	if t == D81 {
		return "D81"
	}
	return "D64"
}

const (
	D64Size = 174848
	D81Size = 819200

	SectorSize = 256

	maxD64Track = 35
	maxTrack    = 80
	maxSector   = 40
)

var d64SectorsPerTrack = [maxD64Track + 1]int{
	0,
	21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21, 21,
	19, 19, 19, 19, 19, 19, 19,
	18, 18, 18, 18, 18, 18,
	17, 17, 17, 17, 17,
}

// Directory location, per image type.
var dirStart = [...]struct{ track, sector int }{
	D64: {18, 1},
	D81: {40, 3},
}

// Image is a disk image loaded in memory.
type Image struct {
	name    string
	typ     Type
	data    []byte
	saveDir string

	offsets [maxTrack + 1][maxSector]int // -1 for invalid sectors
}

// Open loads the disk image at path. Its type is derived from its size.
func Open(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk image: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return New(name, data, "")
}

// New creates an image from its raw content. name identifies the image in
// the save directory. An empty saveDir disables saved files.
func New(name string, data []byte, saveDir string) (*Image, error) {
	img := &Image{
		name:    name,
		data:    data,
		saveDir: saveDir,
	}
	switch len(data) {
	case D64Size:
		img.typ = D64
	case D81Size:
		img.typ = D81
	default:
		return nil, fmt.Errorf("unsupported disk image size: %d bytes", len(data))
	}
	img.makeSectorTable()

	modDisk.InfoZ("disk image loaded").
		String("name", name).
		Stringer("type", img.typ).
		End()
	return img, nil
}

func (img *Image) Name() string { return img.name }
func (img *Image) Type() Type   { return img.typ }

// SetSaveDir sets the directory where written files go.
func (img *Image) SetSaveDir(dir string) { img.saveDir = dir }

func (img *Image) makeSectorTable() {
	for t := range img.offsets {
		for s := range img.offsets[t] {
			img.offsets[t][s] = -1
		}
	}

	off := 0
	if img.typ == D64 {
		for t := 1; t <= maxD64Track; t++ {
			for s := range d64SectorsPerTrack[t] {
				img.offsets[t][s] = off
				off += SectorSize
			}
		}
		return
	}
	for t := 1; t <= maxTrack; t++ {
		for s := range maxSector {
			img.offsets[t][s] = off
			off += SectorSize
		}
	}
}

// sector returns the content of a sector, or nil if track and sector are
// out of the image.
func (img *Image) sector(track, sector int) []byte {
	if track <= 0 || track > maxTrack || sector < 0 || sector >= maxSector {
		return nil
	}
	off := img.offsets[track][sector]
	if off < 0 {
		return nil
	}
	return img.data[off : off+SectorSize]
}

// savePath returns the path of a file in the save directory. Names that could
// point outside of it are rejected.
func (img *Image) savePath(name []byte) (string, bool) {
	base := img.name + string(name)
	if strings.ContainsAny(base, `/\`) || base == "." || base == ".." {
		modDisk.WarnZ("invalid file name for the save directory").String("name", string(name)).End()
		return "", false
	}
	return filepath.Join(img.saveDir, base), true
}

// OpenFile opens a PRG file for reading. A file with the same name in the save
// directory is opened first. A nil name opens the first PRG of the directory.
// It returns nil when the file can't be found.
func (img *Image) OpenFile(name []byte) *File {
	if name != nil && img.saveDir != "" {
		if path, ok := img.savePath(name); ok {
			if buf, err := os.ReadFile(path); err == nil {
				modDisk.DebugZ("opened saved file").String("name", string(name)).End()
				return &File{saved: buf, savedOpen: len(buf) > 0}
			}
		}
	}

	var f *File
	img.walkDir(func(e []byte) bool {
		if e[0] != typePRG {
			return true
		}
		if name != nil && !bytes.HasPrefix(e[3:3+nameLen], name) {
			return true
		}
		f = &File{track: int(e[1]), sector: int(e[2]), offset: 2}
		return false
	})
	return f
}

// OpenFileForWrite creates a file in the save directory.
func (img *Image) OpenFileForWrite(name []byte) *File {
	if img.saveDir == "" {
		modDisk.WarnZ("no save directory, can't write file").String("name", string(name)).End()
		return nil
	}
	path, ok := img.savePath(name)
	if !ok {
		return nil
	}
	w, err := os.Create(path)
	if err != nil {
		modDisk.WarnZ("failed to create file").Error("err", err).End()
		return nil
	}
	return &File{fd: w, w: bufio.NewWriter(w)}
}

// ReadByte reads the next byte of f. The file closes after its last byte is
// read. Reading a closed file returns 0.
func (img *Image) ReadByte(f *File) uint8 {
	if !f.Open() {
		return 0
	}

	if f.savedOpen {
		val := f.saved[f.pos]
		f.pos++
		if f.pos >= len(f.saved) {
			f.savedOpen = false
		}
		return val
	}
	if f.w != nil {
		return 0
	}

	sec := img.sector(f.track, f.sector)
	if sec == nil || f.offset >= SectorSize {
		modDisk.WarnZ("invalid sector in file chain").
			Int("track", f.track).
			Int("sector", f.sector).
			End()
		f.track = 0
		return 0
	}

	val := sec[f.offset]
	if sec[0] == 0 {
		// Last sector, byte 1 is the index of the last used byte.
		if f.offset >= int(sec[1]) {
			f.track = 0
		} else {
			f.offset++
		}
		return val
	}

	f.offset++
	if f.offset >= SectorSize {
		f.track = int(sec[0])
		f.sector = int(sec[1])
		f.offset = 2
	}
	return val
}

// WriteByte appends a byte to a file opened for writing.
func (img *Image) WriteByte(f *File, val uint8) {
	if f == nil || f.w == nil {
		return
	}
	if err := f.w.WriteByte(val); err != nil {
		modDisk.WarnZ("write failed").Error("err", err).End()
	}
}

// File is a file handle, reading from the image or from the save directory,
// or writing to the save directory.
type File struct {
	// position in the image
	track, sector, offset int

	saved     []byte
	pos       int
	savedOpen bool

	fd *os.File
	w  *bufio.Writer
}

// Open reports whether the file has more bytes to read, or is open for
// writing.
func (f *File) Open() bool {
	return f != nil && (f.savedOpen || f.w != nil || f.track != 0)
}

// Close closes the file. Further reads return 0.
func (f *File) Close() {
	if f == nil {
		return
	}
	if f.w != nil {
		err := f.w.Flush()
		if cerr := f.fd.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			modDisk.WarnZ("close failed").Error("err", err).End()
		}
		f.w, f.fd = nil, nil
	}
	f.savedOpen = false
	f.saved = nil
	f.track = 0
}
