package emu

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"sixtyfour/disk"
	"sixtyfour/emu/log"
	"sixtyfour/hw"
	"sixtyfour/hw/input"
	"sixtyfour/hw/sid"
)

var modVideo = log.NewModule("video")

const framesPerSecond = 50

type Emulator struct {
	Machine *hw.C64

	out   Output
	audio *audioPlayer
	wav   *wavRecorder
	cfg   Config

	// These are accessed concurrently by the emulator loop and the RPC server.
	quit    atomic.Bool
	paused  atomic.Bool
	reset   atomic.Bool
	restart atomic.Bool
	frames  atomic.Int64

	mu        sync.Mutex
	lastFrame []uint8
}

// Launch powers up the machine with img in the drive (img may be nil), and
// sets up video, audio and input. Unless cfg.Headless is set, it must be
// called from within sdl.Main. It doesn't start the emulation loop, call Run
// for that.
func Launch(img *disk.Image, cfg Config) (*Emulator, error) {
	e := &Emulator{
		cfg:       cfg,
		out:       headlessOutput{},
		lastFrame: make([]uint8, hw.ScreenWidth*hw.ScreenHeight),
	}

	mcfg := hw.MachineConfig{
		VIC: hw.VICConfig{RefetchEveryLine: cfg.Video.RefetchEveryLine},
		SID: sid.Config{SampleRate: cfg.Audio.SampleRate},
	}
	if img != nil {
		if cfg.Disk.SaveDir != "" {
			img.SetSaveDir(cfg.Disk.SaveDir)
		}
		mcfg.Disk = img
	}

	if !cfg.Headless {
		wout, err := newWindowOutput(cfg.Video)
		if err != nil {
			return nil, fmt.Errorf("video: %w", err)
		}
		e.out = wout
		mcfg.Input = input.NewProvider(cfg.Input, wout.ctrls)
	}

	e.Machine = hw.NewC64(mcfg)
	log.AddContext(e.Machine)

	if cfg.TraceOut != nil {
		e.Machine.SetTraceOutput(cfg.TraceOut)
	}

	queue := e.Machine.SID.Queue()
	if cfg.WAVPath != "" {
		rec, err := newWAVRecorder(cfg.WAVPath, e.Machine.SID.SampleRate())
		if err != nil {
			e.close()
			return nil, err
		}
		e.wav = rec
		queue.SetRecorder(rec.Record)
	}

	switch {
	case cfg.Headless:
	case cfg.Audio.DisableAudio:
		log.ModSound.WarnZ("audio disabled").End()
	default:
		ap, err := newAudioPlayer(queue, e.Machine.SID.SampleRate())
		if err != nil {
			e.close()
			return nil, fmt.Errorf("audio: %w", err)
		}
		e.audio = ap
	}

	return e, nil
}

// RunOneFrame emulates a frame and presents it.
func (e *Emulator) RunOneFrame() {
	e.Machine.RunFrame()

	frame := e.Machine.VIC.Frame()
	e.mu.Lock()
	copy(e.lastFrame, frame)
	e.mu.Unlock()

	e.out.Present(frame)
	e.frames.Add(1)

	if e.audio != nil {
		if n := e.Machine.SID.Queue().Underruns(); n > 0 {
			log.ModSound.DebugZ("audio underrun").Int("count", n).End()
		}
	}
}

// Run runs the emulation loop until the user closes the window, Stop is
// called, cfg.MaxFrames frames have been emulated or ctx is done. Frames are
// paced at 50Hz, except in headless mode where they run as fast as possible.
func (e *Emulator) Run(ctx context.Context) error {
	defer e.close()

	var tick <-chan time.Time
	if !e.cfg.Headless {
		ticker := time.NewTicker(time.Second / framesPerSecond)
		defer ticker.Stop()
		tick = ticker.C
	}

	jammed := false
	wasPaused := false
	for e.out.Poll() {
		if e.quit.Load() {
			break
		}
		e.handleReset()

		if paused := e.isPaused(); paused != wasPaused {
			e.pauseAudio(paused)
			wasPaused = paused
		}
		if wasPaused {
			// Don't burn cpu while paused.
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		e.RunOneFrame()
		if !jammed && e.Machine.Jammed() {
			jammed = true
			log.ModEmu.WarnZ("CPU jammed, video and audio keep running").
				Hex16("pc", e.Machine.CPU.PC).
				End()
		}
		if e.cfg.MaxFrames > 0 && e.frames.Load() >= e.cfg.MaxFrames {
			break
		}

		if tick == nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
		}
	}

	log.ModEmu.InfoZ("emulation loop exited").Int64("frames", e.frames.Load()).End()
	return nil
}

func (e *Emulator) pauseAudio(pause bool) {
	if e.audio == nil {
		return
	}
	var err error
	if pause {
		err = e.audio.ctx.Suspend()
	} else {
		err = e.audio.ctx.Resume()
		e.Machine.SID.Queue().Underruns()
	}
	if err != nil {
		log.ModSound.WarnZ("failed to pause/resume audio").Bool("pause", pause).Error("err", err).End()
	}
}

func (e *Emulator) close() {
	log.RemoveContext(e.Machine)

	var errs []error
	if e.audio != nil {
		errs = append(errs, e.audio.Close())
		e.audio = nil
	}
	if e.wav != nil {
		e.Machine.SID.Queue().SetRecorder(nil)
		errs = append(errs, e.wav.Close())
		e.wav = nil
	}
	if e.out != nil {
		errs = append(errs, e.out.Close())
		e.out = nil
	}
	if err := errors.Join(errs...); err != nil {
		log.ModEmu.WarnZ("error during shutdown").Error("err", err).End()
	}
}

// Frames returns the number of frames emulated so far.
func (e *Emulator) Frames() int64 { return e.frames.Load() }

// Screenshot returns the last emulated frame.
func (e *Emulator) Screenshot() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, hw.ScreenWidth, hw.ScreenHeight))
	e.mu.Lock()
	hw.ToRGBA(img.Pix, e.lastFrame)
	e.mu.Unlock()
	return img
}

// SetPause, Stop, Reset and Restart allow to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.Store(pause) }
func (e *Emulator) Reset()              { e.reset.Store(true) }
func (e *Emulator) Restart()            { e.restart.Store(true) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

func (e *Emulator) isPaused() bool {
	return e.paused.Load()
}

func (e *Emulator) handleReset() {
	if e.reset.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("performing soft reset").End()
		e.Machine.Reset()
	} else if e.restart.CompareAndSwap(true, false) {
		log.ModEmu.InfoZ("performing hard reset").End()
		e.Machine.PowerUp()
	}
}
