// Package rpc allows to control a running emulator from another process.
package rpc

import (
	"image"

	"sixtyfour/emu/log"
)

var modRPC = log.NewModule("rpc")

// Emu is the part of the emulator that can be remotely controlled.
type Emu interface {
	Reset()
	Restart()
	SetPause(pause bool)
	Stop()
	Frames() int64
	Screenshot() *image.RGBA
}

// Status describes the state of the remote emulator.
type Status struct {
	Frames int64
	Paused bool
}
