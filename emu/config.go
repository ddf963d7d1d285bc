package emu

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"sixtyfour/emu/log"
	"sixtyfour/hw/input"
	"sixtyfour/hw/sid"
)

type Config struct {
	Video VideoConfig  `toml:"video"`
	Audio AudioConfig  `toml:"audio"`
	Input input.Config `toml:"input"`
	Disk  DiskConfig   `toml:"disk"`

	// Per-run settings, from the command line.
	TraceOut  io.Writer `toml:"-"`
	Headless  bool      `toml:"-"`
	MaxFrames int64     `toml:"-"` // 0 runs until stopped
	WAVPath   string    `toml:"-"`
}

type VideoConfig struct {
	Scale            int    `toml:"scale"`
	DisableVSync     bool   `toml:"disable_vsync"`
	Shader           string `toml:"shader"`
	RefetchEveryLine bool   `toml:"refetch_every_line"`
}

type AudioConfig struct {
	DisableAudio bool `toml:"disable_audio"`
	SampleRate   int  `toml:"sample_rate"`
}

type DiskConfig struct {
	// SaveDir is where files written by programs are stored. They shadow the
	// files of the disk image with the same name. Empty disables saving.
	SaveDir string `toml:"save_dir"`
}

func DefaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale:  3,
			Shader: DefaultShader,
		},
		Audio: AudioConfig{
			SampleRate: sid.DefaultSampleRate,
		},
		Input: input.DefaultConfig(),
	}
}

// Check replaces invalid settings with their default values.
func (cfg *Config) Check() {
	def := DefaultConfig()
	if cfg.Video.Scale < 1 || cfg.Video.Scale > 8 {
		log.ModEmu.WarnZ("invalid video scale, using default").
			Int("scale", cfg.Video.Scale).
			Int("default", def.Video.Scale).
			End()
		cfg.Video.Scale = def.Video.Scale
	}
	if _, ok := fragmentShaders[cfg.Video.Shader]; !ok {
		log.ModEmu.WarnZ("invalid shader name, using default").
			String("shader", cfg.Video.Shader).
			String("default", DefaultShader).
			End()
		cfg.Video.Shader = DefaultShader
	}
	if cfg.Audio.SampleRate < 8000 || cfg.Audio.SampleRate > 192000 {
		log.ModEmu.WarnZ("invalid sample rate, using default").
			Int("rate", cfg.Audio.SampleRate).
			Int("default", def.Audio.SampleRate).
			End()
		cfg.Audio.SampleRate = def.Audio.SampleRate
	}
}

const cfgFilename = "config.toml"

// DefaultConfigPath returns the path of the configuration file in the user
// configuration directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sixtyfour", cfgFilename), nil
}

// LoadConfig reads the configuration file at path. Settings missing from the
// file keep their default value, and a missing file gives the default
// configuration.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		log.ModEmu.InfoZ("no config file, using defaults").String("path", path).End()
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").String("key", key.String()).End()
	}
	cfg.Check()
	return cfg, nil
}

// SaveConfig writes cfg at path, creating the directory if needed.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
