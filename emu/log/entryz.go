package log

import (
	"fmt"
	"sync"

	"gopkg.in/Sirupsen/logrus.v0"
)

const maxFields = 16

// EntryZ is a log entry built through chained typed fields. A nil *EntryZ is
// valid: all methods are no-ops on it, so that disabled log calls cost a
// single branch.
type EntryZ struct {
	lvl Level
	msg string
	mod Module

	fields  [maxFields]field
	nfields int
}

var entryPool = sync.Pool{
	New: func() any { return new(EntryZ) },
}

func newEntryZ(mod Module, lvl Level, msg string) *EntryZ {
	e := entryPool.Get().(*EntryZ)
	e.mod, e.lvl, e.msg = mod, lvl, msg
	e.nfields = 0
	return e
}

// add appends f, extra fields are dropped.
func (e *EntryZ) add(f field) *EntryZ {
	if e == nil {
		return nil
	}
	if e.nfields < len(e.fields) {
		e.fields[e.nfields] = f
		e.nfields++
	}
	return e
}

func (e *EntryZ) String(key, val string) *EntryZ {
	return e.add(field{kind: kindString, key: key, str: val})
}

func (e *EntryZ) Bool(key string, val bool) *EntryZ {
	f := field{kind: kindBool, key: key}
	if val {
		f.num = 1
	}
	return e.add(f)
}

func (e *EntryZ) Int(key string, val int) *EntryZ {
	return e.add(field{kind: kindInt, key: key, num: int64(val)})
}

func (e *EntryZ) Int64(key string, val int64) *EntryZ {
	return e.add(field{kind: kindInt, key: key, num: val})
}

func (e *EntryZ) Float64(key string, val float64) *EntryZ {
	return e.add(field{kind: kindFloat, key: key, flt: val})
}

// Hex8 and Hex16 format bytes and addresses the way a machine monitor shows
// them: zero padded, without prefix.
func (e *EntryZ) Hex8(key string, val uint8) *EntryZ {
	return e.add(field{kind: kindHex, key: key, num: int64(val), width: 2})
}

func (e *EntryZ) Hex16(key string, val uint16) *EntryZ {
	return e.add(field{kind: kindHex, key: key, num: int64(val), width: 4})
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	return e.add(field{kind: kindError, key: key, err: err})
}

func (e *EntryZ) Stringer(key string, s fmt.Stringer) *EntryZ {
	return e.add(field{kind: kindStringer, key: key, val: s})
}

// Blob adds a hex dump of buf.
func (e *EntryZ) Blob(key string, buf []byte) *EntryZ {
	return e.add(field{kind: kindBlob, key: key, buf: buf})
}

// End emits the entry and recycles it. The entry must not be used after.
func (e *EntryZ) End() {
	if e == nil {
		return
	}

	if !disabled {
		for _, c := range loadContexts() {
			c.AddLogContext(e)
		}

		fields := make(logrus.Fields, e.nfields+1)
		fields["_mod"] = e.mod.String()
		for i := range e.fields[:e.nfields] {
			fields[e.fields[i].key] = e.fields[i].format()
		}
		entry := logrus.StandardLogger().WithFields(fields)

		switch e.lvl {
		case PanicLevel:
			entry.Panic(e.msg)
		case FatalLevel:
			entry.Fatal(e.msg)
		case ErrorLevel:
			entry.Error(e.msg)
		case WarnLevel:
			entry.Warn(e.msg)
		case InfoLevel:
			entry.Info(e.msg)
		default:
			entry.Debug(e.msg)
		}
	}

	clear(e.fields[:e.nfields])
	e.nfields = 0
	entryPool.Put(e)
}
