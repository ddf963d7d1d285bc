package disk

import (
	"io"
	"strings"

	"github.com/go-faster/jx"
)

const (
	dirEntrySize = 32
	nameLen      = 16
	namePad      = 0xA0

	typePRG = 0x82 // closed PRG file
)

var fileTypes = [...]string{"DEL", "SEQ", "PRG", "USR", "REL"}

// Entry describes a file of the directory.
type Entry struct {
	Name   string
	Type   string
	Track  int
	Sector int
	Blocks int
}

// walkDir calls fn with each non-empty directory entry, starting at its file
// type byte, until fn returns false.
func (img *Image) walkDir(fn func(e []byte) bool) {
	start := dirStart[img.typ]
	track, sector := start.track, start.sector

	// Bounds the walk for looping chains.
	for range maxTrack * maxSector {
		if track == 0 {
			return
		}
		sec := img.sector(track, sector)
		if sec == nil {
			modDisk.WarnZ("invalid directory sector").
				Int("track", track).
				Int("sector", sector).
				End()
			return
		}
		for d := 2; d < SectorSize; d += dirEntrySize {
			e := sec[d : d+dirEntrySize-2]
			if e[0] == 0 {
				continue
			}
			if !fn(e) {
				return
			}
		}
		track, sector = int(sec[0]), int(sec[1])
	}
}

// Dir lists the directory of the image.
func (img *Image) Dir() []Entry {
	var entries []Entry
	img.walkDir(func(e []byte) bool {
		typ := "???"
		if t := int(e[0] & 7); t < len(fileTypes) {
			typ = fileTypes[t]
		}
		entries = append(entries, Entry{
			Name:   petsciiName(e[3 : 3+nameLen]),
			Type:   typ,
			Track:  int(e[1]),
			Sector: int(e[2]),
			Blocks: int(e[28]) | int(e[29])<<8,
		})
		return true
	})
	return entries
}

// petsciiName converts a padded file name to a printable string.
func petsciiName(raw []byte) string {
	var sb strings.Builder
	for _, c := range raw {
		if c == namePad {
			break
		}
		switch {
		case c >= 0x20 && c < 0x7f:
			sb.WriteByte(c)
		case c >= 0xC1 && c <= 0xDA:
			sb.WriteByte(c - 0x80)
		default:
			sb.WriteByte('?')
		}
	}
	return sb.String()
}

// WriteJSON writes the directory listing as a JSON document.
func (img *Image) WriteJSON(w io.Writer) error {
	var e jx.Encoder
	e.SetIdent(2)
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(img.name) })
		e.Field("type", func(e *jx.Encoder) { e.Str(img.typ.String()) })
		e.Field("files", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, ent := range img.Dir() {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(ent.Name) })
						e.Field("type", func(e *jx.Encoder) { e.Str(ent.Type) })
						e.Field("track", func(e *jx.Encoder) { e.Int(ent.Track) })
						e.Field("sector", func(e *jx.Encoder) { e.Int(ent.Sector) })
						e.Field("blocks", func(e *jx.Encoder) { e.Int(ent.Blocks) })
					})
				}
			})
		})
	})
	_, err := w.Write(append(e.Bytes(), '\n'))
	return err
}
