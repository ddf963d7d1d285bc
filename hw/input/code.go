package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type ControllerType uint8

const (
	UnsetController ControllerType = iota
	Keyboard
	ControllerButton
	ControllerAxis
)

func (t ControllerType) String() string {
	switch t {
	case Keyboard:
		return "key"
	case ControllerButton:
		return "joy button"
	case ControllerAxis:
		return "joy axis"
	}
	return "not set"
}

// A Code identifies a host input: a keyboard key, a game controller button
// or one direction of a game controller axis. Type tells which fields are
// meaningful.
//
// In configuration files a Code is written as:
//
//	key <scancode name>
//	joybtn <button> <controller GUID>
//	joyaxis <axis>[+-] <controller GUID>
type Code struct {
	Scancode sdl.Scancode

	CtrlGUID    string
	CtrlButton  sdl.GameControllerButton
	CtrlAxis    sdl.GameControllerAxis
	CtrlAxisDir int16

	Type ControllerType
}

// Key returns the Code of the keyboard key with the given SDL scancode name.
// It panics if the name is unknown, it's meant for default mappings.
func Key(name string) Code {
	var c Code
	if err := c.parseKey(name); err != nil {
		panic(err)
	}
	return c
}

// Name returns an user-friendly name for the input code.
func (c Code) Name() string {
	switch c.Type {
	case Keyboard:
		return sdl.GetScancodeName(c.Scancode)
	case ControllerButton:
		return sdl.GameControllerGetStringForButton(c.CtrlButton)
	case ControllerAxis:
		if c.CtrlAxisDir >= 0 {
			return sdl.GameControllerGetStringForAxis(c.CtrlAxis) + "+"
		}
		return sdl.GameControllerGetStringForAxis(c.CtrlAxis) + "-"
	}
	return ""
}

func (c Code) MarshalText() ([]byte, error) {
	switch c.Type {
	case Keyboard:
		return []byte("key " + c.Name()), nil
	case ControllerButton:
		return []byte("joybtn " + c.Name() + " " + c.CtrlGUID), nil
	case ControllerAxis:
		return []byte("joyaxis " + c.Name() + " " + c.CtrlGUID), nil
	}
	return nil, nil
}

func (c *Code) UnmarshalText(text []byte) error {
	*c = Code{}

	s := string(text)
	if s == "" {
		return nil
	}

	kind, args, _ := strings.Cut(s, " ")
	switch kind {
	case "key":
		return c.parseKey(args)
	case "joybtn":
		return c.parseButton(args)
	case "joyaxis":
		return c.parseAxis(args)
	}
	return fmt.Errorf("unrecognized input code: %s", s)
}

// Scancode names may contain spaces ("Left Ctrl").
func (c *Code) parseKey(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("malformed key code: missing key name")
	}
	c.Scancode = sdl.GetScancodeFromName(name)
	if c.Scancode == sdl.SCANCODE_UNKNOWN {
		return fmt.Errorf("unrecognized scancode %q", name)
	}
	c.Type = Keyboard
	return nil
}

func (c *Code) parseButton(args string) error {
	var name string
	if _, err := fmt.Sscanf(args, "%s %s", &name, &c.CtrlGUID); err != nil {
		return fmt.Errorf("malformed joybtn code: %s", args)
	}
	c.CtrlButton = sdl.GameControllerGetButtonFromString(name)
	if c.CtrlButton == sdl.CONTROLLER_BUTTON_INVALID {
		return fmt.Errorf("unrecognized button %q", name)
	}
	c.Type = ControllerButton
	return nil
}

func (c *Code) parseAxis(args string) error {
	var name string
	if _, err := fmt.Sscanf(args, "%s %s", &name, &c.CtrlGUID); err != nil {
		return fmt.Errorf("malformed joyaxis code: %s", args)
	}
	switch {
	case strings.HasSuffix(name, "+"):
		c.CtrlAxisDir = 1
	case strings.HasSuffix(name, "-"):
		c.CtrlAxisDir = -1
	default:
		return fmt.Errorf("malformed axis direction: %s", name)
	}
	c.CtrlAxis = sdl.GameControllerGetAxisFromString(name[:len(name)-1])
	if c.CtrlAxis == sdl.CONTROLLER_AXIS_INVALID {
		return fmt.Errorf("unrecognized axis %q", name)
	}
	c.Type = ControllerAxis
	return nil
}
