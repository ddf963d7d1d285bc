package input

import "github.com/veandco/go-sdl2/sdl"

// Joystick bits, before inversion.
const (
	JoyUp    = 0x01
	JoyDown  = 0x02
	JoyLeft  = 0x04
	JoyRight = 0x08
	JoyFire  = 0x10
)

// JoystickConfig maps host inputs to the joystick plugged in control port 2.
type JoystickConfig struct {
	Up    Code `toml:"up"`
	Down  Code `toml:"down"`
	Left  Code `toml:"left"`
	Right Code `toml:"right"`
	Fire  Code `toml:"fire"`
}

type Config struct {
	Joystick JoystickConfig `toml:"joystick"`
}

func DefaultConfig() Config {
	return Config{
		Joystick: JoystickConfig{
			Up:    Key("Up"),
			Down:  Key("Down"),
			Left:  Key("Left"),
			Right: Key("Right"),
			Fire:  Key("Left Ctrl"),
		},
	}
}

// A keySlot places a host key in the keyboard matrix: row slot>>3, column
// bit slot&7. Some keys can also be pressed with a controller button.
type keySlot struct {
	scancode sdl.Scancode
	slot     uint8
	button   sdl.GameControllerButton
}

const noButton = sdl.CONTROLLER_BUTTON_INVALID

var keySlots = [...]keySlot{
	{sdl.SCANCODE_BACKSPACE, 0, noButton}, // INST/DEL
	{sdl.SCANCODE_RETURN, 1, noButton},
	{sdl.SCANCODE_F7, 3, noButton},
	{sdl.SCANCODE_F1, 4, noButton},
	{sdl.SCANCODE_F3, 5, noButton},
	{sdl.SCANCODE_F5, 6, noButton},
	{sdl.SCANCODE_3, 8, noButton},
	{sdl.SCANCODE_W, 9, noButton},
	{sdl.SCANCODE_A, 10, noButton},
	{sdl.SCANCODE_4, 11, noButton},
	{sdl.SCANCODE_Z, 12, noButton},
	{sdl.SCANCODE_S, 13, noButton},
	{sdl.SCANCODE_E, 14, noButton},
	{sdl.SCANCODE_LSHIFT, 15, noButton},
	{sdl.SCANCODE_5, 16, noButton},
	{sdl.SCANCODE_R, 17, noButton},
	{sdl.SCANCODE_D, 18, noButton},
	{sdl.SCANCODE_6, 19, noButton},
	{sdl.SCANCODE_C, 20, noButton},
	{sdl.SCANCODE_F, 21, noButton},
	{sdl.SCANCODE_T, 22, noButton},
	{sdl.SCANCODE_X, 23, noButton},
	{sdl.SCANCODE_7, 24, noButton},
	{sdl.SCANCODE_Y, 25, noButton},
	{sdl.SCANCODE_G, 26, noButton},
	{sdl.SCANCODE_8, 27, noButton},
	{sdl.SCANCODE_B, 28, noButton},
	{sdl.SCANCODE_H, 29, noButton},
	{sdl.SCANCODE_U, 30, noButton},
	{sdl.SCANCODE_V, 31, noButton},
	{sdl.SCANCODE_9, 32, noButton},
	{sdl.SCANCODE_I, 33, noButton},
	{sdl.SCANCODE_J, 34, noButton},
	{sdl.SCANCODE_0, 35, noButton},
	{sdl.SCANCODE_M, 36, noButton},
	{sdl.SCANCODE_K, 37, noButton},
	{sdl.SCANCODE_O, 38, noButton},
	{sdl.SCANCODE_N, 39, noButton},
	{sdl.SCANCODE_KP_PLUS, 40, noButton},
	{sdl.SCANCODE_P, 41, noButton},
	{sdl.SCANCODE_L, 42, noButton},
	{sdl.SCANCODE_MINUS, 43, noButton},
	{sdl.SCANCODE_PERIOD, 44, sdl.CONTROLLER_BUTTON_RIGHTSHOULDER},
	{sdl.SCANCODE_APOSTROPHE, 45, noButton},  // :
	{sdl.SCANCODE_LEFTBRACKET, 46, noButton}, // @
	{sdl.SCANCODE_COMMA, 47, sdl.CONTROLLER_BUTTON_LEFTSHOULDER},
	{sdl.SCANCODE_KP_MULTIPLY, 49, noButton},
	{sdl.SCANCODE_SEMICOLON, 50, noButton},
	{sdl.SCANCODE_HOME, 51, noButton},
	{sdl.SCANCODE_RSHIFT, 52, noButton},
	{sdl.SCANCODE_EQUALS, 53, noButton},
	{sdl.SCANCODE_SLASH, 55, noButton},
	{sdl.SCANCODE_1, 56, noButton},
	{sdl.SCANCODE_2, 59, noButton},
	{sdl.SCANCODE_SPACE, 60, noButton},
	{sdl.SCANCODE_Q, 62, noButton},
	{sdl.SCANCODE_ESCAPE, 63, sdl.CONTROLLER_BUTTON_START}, // RUN/STOP
}

// Provider samples the host keyboard and game controllers. It implements
// hw.InputDevice.
type Provider struct {
	keystate []uint8
	ctrls    *GameControllers

	cfg Config
}

// NewProvider returns a Provider reading the SDL keyboard state, which SDL
// keeps up to date while events are pumped. ctrls may be nil.
func NewProvider(cfg Config, ctrls *GameControllers) *Provider {
	var keystate []uint8
	sdl.Do(func() { keystate = sdl.GetKeyboardState() })
	return &Provider{keystate: keystate, ctrls: ctrls, cfg: cfg}
}

func (p *Provider) pressed(code Code) bool {
	switch code.Type {
	case Keyboard:
		return int(code.Scancode) < len(p.keystate) && p.keystate[code.Scancode] != 0
	case ControllerButton, ControllerAxis:
		return p.ctrls.pressed(code)
	}
	return false
}

// Joystick returns the state of the joystick in port 2, active low.
func (p *Provider) Joystick() uint8 {
	joy := p.cfg.Joystick
	state := uint8(0)
	for _, b := range []struct {
		code Code
		bit  uint8
	}{
		{joy.Up, JoyUp},
		{joy.Down, JoyDown},
		{joy.Left, JoyLeft},
		{joy.Right, JoyRight},
		{joy.Fire, JoyFire},
	} {
		if p.pressed(b.code) {
			state |= b.bit
		}
	}
	return state ^ 0xff
}

// KeyMatrix returns the 8 rows of the keyboard matrix, a cleared bit being a
// pressed key.
func (p *Provider) KeyMatrix() [8]uint8 {
	rows := [8]uint8{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	for _, k := range keySlots {
		down := int(k.scancode) < len(p.keystate) && p.keystate[k.scancode] != 0
		if !down && k.button != noButton {
			down = p.ctrls.anyButton(k.button)
		}
		if down {
			rows[k.slot>>3] &^= 1 << (k.slot & 7)
		}
	}
	return rows
}
