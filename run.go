package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"sixtyfour/disk"
	"sixtyfour/emu"
	"sixtyfour/emu/log"
	"sixtyfour/emu/rpc"
)

// emuMain runs the emulator with the given disk image, if any.
func emuMain(args Run) {
	cfg := loadConfig(args.ConfigPath)
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
		cfg.Check()
	}
	cfg.Headless = args.Headless
	cfg.MaxFrames = args.Frames
	cfg.WAVPath = args.WAV

	var img *disk.Image
	if args.ImagePath != "" {
		var err error
		img, err = disk.Open(args.ImagePath)
		checkf(err, "failed to open disk image")
	}

	if args.Trace != nil {
		cfg.TraceOut = args.Trace
	}

	var err error
	if cfg.Headless {
		err = runEmulator(img, cfg, args)
	} else {
		sdl.Main(func() { err = runEmulator(img, cfg, args) })
	}

	if args.Trace != nil {
		if cerr := args.Trace.Close(); err == nil {
			err = cerr
		}
	}
	checkf(err, "emulator error")
}

func runEmulator(img *disk.Image, cfg emu.Config, args Run) error {
	emulator, err := emu.Launch(img, cfg)
	if err != nil {
		return fmt.Errorf("failed to start emulator: %w", err)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The server listens before the emulation loop starts.
	var server *rpc.Server
	if args.Port != 0 {
		server, err = rpc.NewServer(args.Port, emulator)
		if err != nil {
			// Run releases the window and audio device.
			emulator.Stop()
			return errors.Join(fmt.Errorf("rpc: %w", err), emulator.Run(ctx))
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		// The RPC server goes down with the emulator.
		defer cancel()
		return emulator.Run(ctx)
	})
	if server != nil {
		g.Go(func() error { return server.Serve(ctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if args.Screenshot != "" {
		if err := emu.SavePNG(emulator.Screenshot(), args.Screenshot); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	return nil
}

func loadConfig(path string) emu.Config {
	if path == "" {
		var err error
		path, err = emu.DefaultConfigPath()
		if err != nil {
			log.ModEmu.WarnZ("no configuration directory, using defaults").Error("err", err).End()
			return emu.DefaultConfig()
		}
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration %s", path)
	return cfg
}
