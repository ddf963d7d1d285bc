package log

import (
	"encoding/hex"
	"fmt"
	"strconv"
)

type fieldKind uint8

const (
	kindString fieldKind = iota
	kindBool
	kindInt
	kindHex
	kindFloat
	kindError
	kindStringer
	kindBlob
)

// field is a typed key/value pair. It's only formatted if the entry it belongs
// to is emitted.
type field struct {
	kind  fieldKind
	key   string
	width int // hex digits

	str string
	num int64
	flt float64
	err error
	val fmt.Stringer
	buf []byte
}

func (f *field) format() string {
	switch f.kind {
	case kindString:
		return f.str
	case kindBool:
		return strconv.FormatBool(f.num != 0)
	case kindInt:
		return strconv.FormatInt(f.num, 10)
	case kindHex:
		return fmt.Sprintf("%0*x", f.width, uint64(f.num))
	case kindFloat:
		return strconv.FormatFloat(f.flt, 'g', 6, 64)
	case kindError:
		if f.err == nil {
			return "<nil>"
		}
		return f.err.Error()
	case kindStringer:
		return f.val.String()
	case kindBlob:
		return hex.Dump(f.buf)
	}
	return ""
}
