package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"sixtyfour/emu/log"
)

type mode byte

const (
	runMode     mode = iota // Run a disk image
	dirMode                 // List disk image directory
	configMode              // Show or write the configuration
	ctlMode                 // Control a running emulator
	versionMode             // Show version
)

type (
	CLI struct {
		Run     Run     `cmd:"" help:"Run the emulator, with an optional disk image in the drive."`
		Dir     Dir     `cmd:"" help:"List the directory of a disk image."`
		Config  Config  `cmd:"" help:"Show the effective configuration."`
		Ctl     Ctl     `cmd:"" help:"Control an emulator started with --port."`
		Version Version `cmd:"" help:"Show sixtyfour version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		ImagePath string `arg:"" name:"/path/to/image" help:"D64 or D81 disk image." optional:"" type:"existingfile"`

		ConfigPath string   `name:"config" help:"${config_help}" type:"path"`
		CPUProfile string   `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		Headless   bool     `name:"headless" help:"Run without window nor audio output."`
		Frames     int64    `name:"frames" help:"Stop after N frames (0 means no limit)." placeholder:"N"`
		Screenshot string   `name:"screenshot" help:"Save the last frame as PNG on exit." type:"path" placeholder:"PNG"`
		WAV        string   `name:"wav" help:"Record audio output to a WAV file." type:"path" placeholder:"FILE"`
		Scale      int      `name:"scale" help:"Window scale factor, overrides configuration."`
		Port       int      `name:"port" help:"Serve RPC control requests on this port."`
	}

	Dir struct {
		ImagePath string `arg:"" name:"/path/to/image" type:"existingfile"`
		JSON      bool   `name:"json" help:"Output JSON."`
	}

	Config struct {
		ConfigPath   string `name:"config" help:"${config_help}" type:"path"`
		WriteDefault bool   `name:"write-default" help:"Write the default configuration file."`
	}

	Ctl struct {
		Action string `arg:"" enum:"pause,resume,reset,restart,stop,status,screenshot" help:"One of: ${enum}."`
		Port   int    `name:"port" help:"RPC port of the running emulator." required:""`
		Out    string `name:"out" help:"Screenshot output file." type:"path" default:"screenshot.png"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"config_help":     "Configuration file. (default: $XDG_CONFIG_HOME/sixtyfour/config.toml)",
	"cpuprofile_help": "Write CPU profile to file.",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("sixtyfour"),
		kong.Description("Commodore 64 emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch strings.Fields(ctx.Command())[0] {
	case "dir":
		cfg.mode = dirMode
	case "config":
		cfg.mode = configMode
	case "ctl":
		cfg.mode = ctlMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if !strings.HasPrefix(ctx.Command(), "run") {
		return nil
	}

	w := tabwriter.NewWriter(os.Stderr, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "\nLog modules (--log mod1,mod2,...):")
	names := log.ModuleNames()
	for i := 0; i < len(names); i += 4 {
		fmt.Fprintf(w, "  %s\n", strings.Join(names[i:min(i+4, len(names))], "\t"))
	}
	fmt.Fprintln(w, "  all\tenable all debug logs")
	fmt.Fprintln(w, "  no\tdisable all logs, warnings included")
	return w.Flush()
}

// logModMask is the set of modules for which debug logs are enabled.
type logModMask log.ModuleMask

// Decode implements kong.MapperValue. It accepts a comma-separated list of
// module names, "all" or "no".
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	var arg string
	if err := ctx.Scan.PopValueInto("log modules", &arg); err != nil {
		return err
	}

	var mask log.ModuleMask
	for _, name := range strings.Split(arg, ",") {
		switch name = strings.TrimSpace(name); name {
		case "all":
			mask = log.ModuleMaskAll
		case "no":
			if arg != "no" {
				return fmt.Errorf("'no' can't be combined with other log modules")
			}
			log.Disable()
		default:
			mod, ok := log.ModuleByName(name)
			if !ok {
				return fmt.Errorf("unknown log module %q", name)
			}
			mask |= mod.Mask()
		}
	}

	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

// outfile is a file, or one of the standard streams, opened from the command
// line.
type outfile struct {
	io.WriteCloser
	name string
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Decode implements kong.MapperValue, for FILE|stdout|stderr arguments. "-"
// is an alias for stdout.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	if err := ctx.Scan.PopValueInto("file", &f.name); err != nil {
		return err
	}

	switch f.name {
	case "stdout", "-":
		f.WriteCloser = nopCloser{os.Stdout}
	case "stderr":
		f.WriteCloser = nopCloser{os.Stderr}
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.WriteCloser = fd
	}
	return nil
}

func (f *outfile) String() string { return f.name }

func checkf(err error, format string, args ...any) {
	if err != nil {
		fatalf(format+": %v", append(args, err)...)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "sixtyfour: "+format+"\n", args...)
	os.Exit(1)
}
