package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"sixtyfour/emu/log"
)

// JoyAxisThreshold is the axis value above which a controller axis direction
// counts as pressed. Axes go from -32768 to 32767.
const JoyAxisThreshold = 32000

// GameControllers tracks the connected game controllers. Once created,
// UpdateDevices must be called with each controller device event to remain in
// sync.
type GameControllers struct {
	guids map[string]*sdl.GameController
	ids   map[sdl.JoystickID]*sdl.GameController
}

// NewGameControllers opens the game controllers currently connected. SDL
// must have been initialized with the game controller subsystem.
func NewGameControllers() *GameControllers {
	gcs := &GameControllers{
		guids: make(map[string]*sdl.GameController),
		ids:   make(map[sdl.JoystickID]*sdl.GameController),
	}
	for i := range sdl.NumJoysticks() {
		if sdl.IsGameController(i) {
			gcs.open(i)
		}
	}
	return gcs
}

func (gcs *GameControllers) open(idx int) {
	c := sdl.GameControllerOpen(idx)
	if c == nil {
		log.ModInput.WarnZ("can't open controller").Int("index", idx).End()
		return
	}
	joy := c.Joystick()
	guid := sdl.JoystickGetGUIDString(joy.GUID())
	gcs.guids[guid] = c
	gcs.ids[joy.InstanceID()] = c

	log.ModInput.InfoZ("added controller").
		Int("id", int(joy.InstanceID())).
		String("guid", guid).
		String("name", c.Name()).
		End()
}

func (gcs *GameControllers) UpdateDevices(e sdl.ControllerDeviceEvent) {
	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		gcs.open(int(e.Which))

	case sdl.CONTROLLERDEVICEREMOVED:
		c := gcs.ids[e.Which]
		if c == nil {
			log.ModInput.WarnZ("removed unknown controller").Int("id", int(e.Which)).End()
			return
		}
		guid := sdl.JoystickGetGUIDString(c.Joystick().GUID())
		delete(gcs.guids, guid)
		delete(gcs.ids, e.Which)
		c.Close()

		log.ModInput.InfoZ("removed controller").
			Int("id", int(e.Which)).
			String("guid", guid).
			End()
	}
}

// pressed reports whether the controller input described by code is active.
// A nil receiver has no controllers.
func (gcs *GameControllers) pressed(code Code) bool {
	if gcs == nil {
		return false
	}
	c := gcs.guids[code.CtrlGUID]
	if c == nil {
		return false
	}

	switch code.Type {
	case ControllerButton:
		return c.Button(code.CtrlButton) != 0
	case ControllerAxis:
		v := int32(c.Axis(code.CtrlAxis)) * int32(code.CtrlAxisDir)
		return v >= JoyAxisThreshold
	}
	return false
}

// anyButton reports whether btn is pressed on any connected controller.
func (gcs *GameControllers) anyButton(btn sdl.GameControllerButton) bool {
	if gcs == nil {
		return false
	}
	for _, c := range gcs.guids {
		if c.Button(btn) != 0 {
			return true
		}
	}
	return false
}

func (gcs *GameControllers) Close() {
	for _, c := range gcs.guids {
		c.Close()
	}
	clear(gcs.guids)
	clear(gcs.ids)
}
