package emu

import (
	"sync"

	"github.com/veandco/go-sdl2/sdl"

	"sixtyfour/hw"
	"sixtyfour/hw/input"
)

// Output presents the emulated frames to the user.
type Output interface {
	// Present shows a frame of palette indices. frame is only valid during
	// the call.
	Present(frame []uint8)

	// Poll processes host events. It returns false once the user asked to
	// quit.
	Poll() bool

	Close() error
}

// headlessOutput discards frames.
type headlessOutput struct{}

func (headlessOutput) Present([]uint8) {}
func (headlessOutput) Poll() bool      { return true }
func (headlessOutput) Close() error    { return nil }

const numVideoBuffers = 2

// windowOutput shows frames in a SDL window. Frames are converted to RGBA by
// the emulation goroutine and handed to a render goroutine, which draws them
// on the SDL main thread.
type windowOutput struct {
	win   *window
	ctrls *input.GameControllers

	framebuf    [numVideoBuffers][]byte
	framebufidx int
	framech     chan []byte
	done        sync.WaitGroup
}

// newWindowOutput initializes SDL and opens the emulator window. It must be
// called from within sdl.Main.
func newWindowOutput(cfg VideoConfig) (*windowOutput, error) {
	var (
		win *window
		err error
	)
	out := &windowOutput{framech: make(chan []byte)}
	sdl.Do(func() {
		if err = sdl.Init(sdl.INIT_VIDEO | sdl.INIT_GAMECONTROLLER); err != nil {
			return
		}
		win, err = newWindow(windowConfig{
			title:  "sixtyfour",
			texw:   hw.ScreenWidth,
			texh:   hw.ScreenHeight,
			scale:  cfg.Scale,
			vsync:  !cfg.DisableVSync,
			shader: cfg.Shader,
		})
		if err != nil {
			sdl.Quit()
			return
		}
		out.ctrls = input.NewGameControllers()
	})
	if err != nil {
		return nil, err
	}

	out.win = win
	for i := range out.framebuf {
		out.framebuf[i] = make([]byte, hw.ScreenWidth*hw.ScreenHeight*4)
	}

	out.done.Add(1)
	go out.render()
	return out, nil
}

func (o *windowOutput) Present(frame []uint8) {
	o.framebufidx = (o.framebufidx + 1) % numVideoBuffers
	buf := o.framebuf[o.framebufidx]
	hw.ToRGBA(buf, frame)

	// Blocks until the previous frame has been drawn, so the buffer being
	// drawn is never the one we fill.
	o.framech <- buf
}

func (o *windowOutput) render() {
	defer o.done.Done()
	for buf := range o.framech {
		sdl.Do(func() { o.win.draw(buf) })
	}
}

func (o *windowOutput) Poll() bool {
	running := true
	sdl.Do(func() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case sdl.QuitEvent:
				running = false
			case sdl.WindowEvent:
				if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
					o.win.resize(e.Data1, e.Data2)
				}
			case sdl.ControllerDeviceEvent:
				o.ctrls.UpdateDevices(e)
			}
		}
	})
	return running
}

func (o *windowOutput) Close() error {
	close(o.framech)
	o.done.Wait()

	var err error
	sdl.Do(func() {
		o.ctrls.Close()
		err = o.win.Close()
		sdl.Quit()
	})
	return err
}
