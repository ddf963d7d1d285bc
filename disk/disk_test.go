package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/jx"
	"github.com/google/go-cmp/cmp"
)

func d64Offset(track, sector int) int {
	off := 0
	for t := 1; t < track; t++ {
		off += d64SectorsPerTrack[t] * SectorSize
	}
	return off + sector*SectorSize
}

func d81Offset(track, sector int) int {
	return ((track-1)*maxSector + sector) * SectorSize
}

type testFile struct {
	name    string
	typ     uint8
	sectors [][2]int // chain of track/sector
	data    []byte
}

// buildImage writes files into a blank image. Directory entries all fit in
// the first directory sector.
func buildImage(tb testing.TB, size int, files ...testFile) []byte {
	tb.Helper()

	data := make([]byte, size)
	offset := d64Offset
	dirt, dirs := 18, 1
	if size == D81Size {
		offset = d81Offset
		dirt, dirs = 40, 3
	}

	dir := data[offset(dirt, dirs):]
	for i, f := range files {
		e := dir[2+i*dirEntrySize:]
		e[0] = f.typ
		e[1] = uint8(f.sectors[0][0])
		e[2] = uint8(f.sectors[0][1])
		name := bytes.Repeat([]byte{namePad}, nameLen)
		copy(name, f.name)
		copy(e[3:], name)
		e[28] = uint8(len(f.sectors))

		rest := f.data
		for j, ts := range f.sectors {
			sec := data[offset(ts[0], ts[1]):]
			n := copy(sec[2:SectorSize], rest)
			rest = rest[n:]
			if j+1 < len(f.sectors) {
				sec[0] = uint8(f.sectors[j+1][0])
				sec[1] = uint8(f.sectors[j+1][1])
			} else {
				sec[0] = 0
				sec[1] = uint8(n + 1)
			}
		}
		if len(rest) != 0 {
			tb.Fatalf("file %s doesn't fit in its sectors", f.name)
		}
	}
	return data
}

func readAll(img *Image, f *File) []byte {
	var buf []byte
	for f.Open() {
		buf = append(buf, img.ReadByte(f))
	}
	return buf
}

func seq(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return buf
}

var testFiles = []testFile{
	{name: "NOTES", typ: 0x81, sectors: [][2]int{{17, 0}}, data: []byte("hello")},
	{name: "BOOT", typ: typePRG, sectors: [][2]int{{1, 0}}, data: []byte{0x01, 0x08, 0xA9, 0x00}},
	{name: "LEVEL1", typ: typePRG, sectors: [][2]int{{1, 1}, {2, 5}, {1, 2}}, data: seq(600)},
}

func TestOpenFile(t *testing.T) {
	img, err := New("game", buildImage(t, D64Size, testFiles...), "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name []byte
		want []byte
	}{
		{name: nil, want: []byte{0x01, 0x08, 0xA9, 0x00}},
		{name: []byte("BOOT"), want: []byte{0x01, 0x08, 0xA9, 0x00}},
		{name: []byte("LEVEL1"), want: seq(600)},
		{name: []byte("LEV"), want: seq(600)},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			f := img.OpenFile(tt.name)
			if f == nil {
				t.Fatalf("OpenFile(%q) = nil", tt.name)
			}
			if diff := cmp.Diff(tt.want, readAll(img, f)); diff != "" {
				t.Errorf("content mismatch (-want +got):\n%s", diff)
			}
			if got := img.ReadByte(f); got != 0 {
				t.Errorf("ReadByte after EOF = %02x, want 0", got)
			}
		})
	}

	for _, name := range []string{"NOTES", "LEVEL2"} {
		if f := img.OpenFile([]byte(name)); f != nil {
			t.Errorf("OpenFile(%q) = %+v, want nil", name, f)
		}
	}
}

func TestOpenFileD81(t *testing.T) {
	data := buildImage(t, D81Size, testFile{
		name: "MAIN", typ: typePRG, sectors: [][2]int{{39, 0}, {80, 39}}, data: seq(300),
	})
	img, err := New("big", data, "")
	if err != nil {
		t.Fatal(err)
	}
	if img.Type() != D81 {
		t.Fatalf("type = %s, want D81", img.Type())
	}
	f := img.OpenFile(nil)
	if diff := cmp.Diff(seq(300), readAll(img, f)); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidImage(t *testing.T) {
	if _, err := New("bad", make([]byte, 1000), ""); err == nil {
		t.Errorf("New with a 1000 bytes image: no error")
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.d64")); err == nil {
		t.Errorf("Open of a missing file: no error")
	}
}

func TestBrokenChain(t *testing.T) {
	data := buildImage(t, D64Size, testFile{
		name: "BROKEN", typ: typePRG, sectors: [][2]int{{1, 0}, {2, 0}}, data: seq(300),
	})
	// Second sector points to a track past the end of the disk.
	data[d64Offset(1, 0)] = 36

	img, err := New("broken", data, "")
	if err != nil {
		t.Fatal(err)
	}
	got := readAll(img, img.OpenFile(nil))
	if len(got) != 254+1 {
		t.Errorf("read %d bytes, want 255", len(got))
	}
}

func TestSavedFiles(t *testing.T) {
	dir := t.TempDir()
	img, err := New("game", buildImage(t, D64Size, testFiles...), dir)
	if err != nil {
		t.Fatal(err)
	}

	w := img.OpenFileForWrite([]byte("BOOT"))
	if !w.Open() {
		t.Fatal("file not open for write")
	}
	for _, b := range []byte("saved") {
		img.WriteByte(w, b)
	}
	w.Close()
	if w.Open() {
		t.Errorf("file still open after close")
	}

	buf, err := os.ReadFile(filepath.Join(dir, "gameBOOT"))
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != "saved" {
		t.Errorf("saved file = %q, want %q", buf, "saved")
	}

	// The saved file takes precedence over the image.
	if got := readAll(img, img.OpenFile([]byte("BOOT"))); string(got) != "saved" {
		t.Errorf("read %q, want %q", got, "saved")
	}
	// Except for the boot file.
	if got := readAll(img, img.OpenFile(nil)); len(got) != 4 {
		t.Errorf("boot file is %d bytes, want 4", len(got))
	}
}

func TestSaveNameOutsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "save")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	img, err := New("game", buildImage(t, D64Size, testFiles...), dir)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"/../../ESCAPE", `\..\ESCAPE`, "A/B"} {
		t.Run(name, func(t *testing.T) {
			if f := img.OpenFileForWrite([]byte(name)); f != nil {
				f.Close()
				t.Errorf("OpenFileForWrite(%q) = %+v, want nil", name, f)
			}
		})
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("%d entries next to the save directory, want 1", len(entries))
	}

	// "game/../SECRET" would resolve to a file of the save directory.
	if err := os.WriteFile(filepath.Join(dir, "SECRET"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if f := img.OpenFile([]byte("/../SECRET")); f != nil {
		t.Errorf("OpenFile read a file through a relative name: %+v", f)
	}
}

func TestWriteWithoutSaveDir(t *testing.T) {
	img, err := New("game", buildImage(t, D64Size, testFiles...), "")
	if err != nil {
		t.Fatal(err)
	}
	f := img.OpenFileForWrite([]byte("HISCORE"))
	if f != nil {
		t.Fatalf("OpenFileForWrite = %+v, want nil", f)
	}
	img.WriteByte(f, 1)
	f.Close()
}

func TestDir(t *testing.T) {
	img, err := New("game", buildImage(t, D64Size, testFiles...), "")
	if err != nil {
		t.Fatal(err)
	}

	want := []Entry{
		{Name: "NOTES", Type: "SEQ", Track: 17, Sector: 0, Blocks: 1},
		{Name: "BOOT", Type: "PRG", Track: 1, Sector: 0, Blocks: 1},
		{Name: "LEVEL1", Type: "PRG", Track: 1, Sector: 1, Blocks: 3},
	}
	if diff := cmp.Diff(want, img.Dir()); diff != "" {
		t.Errorf("Dir mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	img, err := New("game", buildImage(t, D64Size, testFiles...), "")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := img.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var (
		name  string
		files []string
	)
	d := jx.DecodeBytes(buf.Bytes())
	err = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			s, err := d.Str()
			name = s
			return err
		case "files":
			return d.Arr(func(d *jx.Decoder) error {
				return d.Obj(func(d *jx.Decoder, key string) error {
					if key != "name" {
						return d.Skip()
					}
					s, err := d.Str()
					files = append(files, s)
					return err
				})
			})
		}
		return d.Skip()
	})
	if err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if name != "game" {
		t.Errorf("name = %q, want %q", name, "game")
	}
	if diff := cmp.Diff([]string{"NOTES", "BOOT", "LEVEL1"}, files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestPetsciiName(t *testing.T) {
	raw := []byte{'A', 0xC2, '1', 0x05, namePad, 'X'}
	if got := petsciiName(raw); got != "AB1?" {
		t.Errorf("petsciiName = %q, want %q", got, "AB1?")
	}
}
