package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Durations holds stage lengths in whole seconds.
type Durations struct {
	Countdown int `toml:"countdown"`
	Observe   int `toml:"observe"`
	Write     int `toml:"write"`
	Revise    int `toml:"revise"`
	Narrate   int `toml:"narrate"`
	EndPause  int `toml:"end_pause"`
}

// Exits configures the emergency exit allowance.
type Exits struct {
	Limit      int `toml:"limit"`
	WindowDays int `toml:"window_days"`
}

// Config holds all configurable storydrill settings.
type Config struct {
	ImagesDir   string    `toml:"images_dir"`
	DataDir     string    `toml:"data_dir"` // empty means the XDG data directory
	Store       string    `toml:"store"`    // "file" | "bolt" | "sqlite" | "memory"
	LogLevel    string    `toml:"log_level"`
	ImageViewer string    `toml:"image_viewer"` // run with the image path on each show
	TATImages   int       `toml:"tat_images"`
	Durations   Durations `toml:"durations"`
	Exits       Exits     `toml:"exits"`
}

// Defaults returns the standard test timings and storage settings.
func Defaults() Config {
	return Config{
		ImagesDir: "images",
		Store:     "file",
		LogLevel:  "info",
		TATImages: 11,
		Durations: Durations{
			Countdown: 3,
			Observe:   30,
			Write:     240,
			Revise:    240,
			Narrate:   60,
			EndPause:  3,
		},
		Exits: Exits{Limit: 3, WindowDays: 7},
	}
}

// GlobalPath returns ~/.config/storydrill/config.toml.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "storydrill", "config.toml"), nil
}

// ProjectFile is the per-directory override file.
const ProjectFile = ".storydrill.toml"

// LoadGlobal reads ~/.config/storydrill/config.toml.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .storydrill.toml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// Load merges the global and project files and validates the result.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge layers defaults, global and project, project winning. Zero values
// mean "not set" and fall through to the layer below.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer != nil {
			overlay(&result, layer)
		}
	}
	return result
}

func overlay(dst, src *Config) {
	setString(&dst.ImagesDir, src.ImagesDir)
	setString(&dst.DataDir, src.DataDir)
	setString(&dst.Store, src.Store)
	setString(&dst.LogLevel, src.LogLevel)
	setString(&dst.ImageViewer, src.ImageViewer)
	setInt(&dst.TATImages, src.TATImages)

	setInt(&dst.Durations.Countdown, src.Durations.Countdown)
	setInt(&dst.Durations.Observe, src.Durations.Observe)
	setInt(&dst.Durations.Write, src.Durations.Write)
	setInt(&dst.Durations.Revise, src.Durations.Revise)
	setInt(&dst.Durations.Narrate, src.Durations.Narrate)
	setInt(&dst.Durations.EndPause, src.Durations.EndPause)

	setInt(&dst.Exits.Limit, src.Exits.Limit)
	setInt(&dst.Exits.WindowDays, src.Exits.WindowDays)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// Validate rejects settings no session could run with.
func (c Config) Validate() error {
	var problems []string
	positive := func(name string, v int) {
		if v <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive, got %d", name, v))
		}
	}
	positive("tat_images", c.TATImages)
	positive("durations.countdown", c.Durations.Countdown)
	positive("durations.observe", c.Durations.Observe)
	positive("durations.write", c.Durations.Write)
	positive("durations.revise", c.Durations.Revise)
	positive("durations.narrate", c.Durations.Narrate)
	positive("durations.end_pause", c.Durations.EndPause)
	positive("exits.limit", c.Exits.Limit)
	positive("exits.window_days", c.Exits.WindowDays)

	switch c.Store {
	case "file", "bolt", "sqlite", "memory":
	default:
		problems = append(problems, fmt.Sprintf("store must be one of file, bolt, sqlite, memory; got %q", c.Store))
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// ResolveDataDir returns DataDir, or $XDG_DATA_HOME/storydrill
// (~/.local/share/storydrill) when it is unset.
func (c Config) ResolveDataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	return xdgDir("XDG_DATA_HOME", ".local/share")
}

// StateDir returns $XDG_STATE_HOME/storydrill or ~/.local/state/storydrill.
func StateDir() (string, error) {
	return xdgDir("XDG_STATE_HOME", ".local/state")
}

func xdgDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, filepath.FromSlash(fallback))
	}
	return filepath.Join(base, "storydrill"), nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
