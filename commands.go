package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/BurntSushi/toml"

	"sixtyfour/disk"
	"sixtyfour/emu"
	"sixtyfour/emu/rpc"
)

func dirMain(args Dir) {
	img, err := disk.Open(args.ImagePath)
	checkf(err, "failed to open disk image")

	if args.JSON {
		checkf(img.WriteJSON(os.Stdout), "failed to write directory")
		return
	}

	fmt.Printf("%s (%s)\n", img.Name(), img.Type())
	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, e := range img.Dir() {
		fmt.Fprintf(tw, "%d\t%q\t%s\n", e.Blocks, e.Name, e.Type)
	}
	checkf(tw.Flush(), "failed to write directory")
}

func configMain(args Config) {
	path := args.ConfigPath
	if path == "" {
		var err error
		path, err = emu.DefaultConfigPath()
		checkf(err, "failed to locate configuration directory")
	}

	if args.WriteDefault {
		checkf(emu.SaveConfig(path, emu.DefaultConfig()), "failed to write configuration")
		fmt.Println("default configuration written to", path)
		return
	}

	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration %s", path)
	fmt.Printf("# %s\n", path)
	checkf(toml.NewEncoder(os.Stdout).Encode(cfg), "failed to encode configuration")
}

func ctlMain(args Ctl) {
	client, err := rpc.NewClient(fmt.Sprintf("localhost:%d", args.Port))
	checkf(err, "failed to connect to emulator")
	defer client.Close()

	switch args.Action {
	case "pause":
		err = client.SetPause(true)
	case "resume":
		err = client.SetPause(false)
	case "reset":
		err = client.Reset()
	case "restart":
		err = client.Restart()
	case "stop":
		err = client.Stop()
	case "status":
		var st rpc.Status
		if st, err = client.Status(); err == nil {
			fmt.Printf("frames: %d\npaused: %t\n", st.Frames, st.Paused)
		}
	case "screenshot":
		img, rerr := client.Screenshot()
		if err = rerr; err == nil {
			err = emu.SavePNG(img, args.Out)
		}
	}
	checkf(err, "%s failed", args.Action)
}
