package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Feature: storydrill, Property 10: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)
	optionalInt := func(t *rapid.T, label string) int {
		if rapid.Bool().Draw(t, "has"+label) {
			return rapid.IntRange(1, 1000).Draw(t, label)
		}
		return 0
	}

	// Each field is independently either unset or a non-zero value.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasImagesDir") {
			cfg.ImagesDir = nonEmptyString.Draw(t, "imagesDir")
		}
		if rapid.Bool().Draw(t, "hasImageViewer") {
			cfg.ImageViewer = nonEmptyString.Draw(t, "imageViewer")
		}
		cfg.TATImages = optionalInt(t, "tatImages")
		cfg.Durations.Write = optionalInt(t, "write")
		cfg.Exits.Limit = optionalInt(t, "limit")
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		global := configGen.Draw(t, "global")
		project := configGen.Draw(t, "project")

		merged := Merge(global, project)
		defaults := Defaults()

		checkField(t, "ImagesDir", global.ImagesDir, project.ImagesDir, defaults.ImagesDir, merged.ImagesDir)
		checkField(t, "ImageViewer", global.ImageViewer, project.ImageViewer, defaults.ImageViewer, merged.ImageViewer)
		checkField(t, "TATImages", global.TATImages, project.TATImages, defaults.TATImages, merged.TATImages)
		checkField(t, "Durations.Write", global.Durations.Write, project.Durations.Write, defaults.Durations.Write, merged.Durations.Write)
		checkField(t, "Exits.Limit", global.Exits.Limit, project.Exits.Limit, defaults.Exits.Limit, merged.Exits.Limit)

		if merged.Durations.Observe != defaults.Durations.Observe {
			t.Fatalf("Durations.Observe: never set, expected default %d, got %d", defaults.Durations.Observe, merged.Durations.Observe)
		}
	})
}

// checkField asserts the merge precedence rule for a single field:
//   - project set → merged == project
//   - project unset, global set → merged == global
//   - both unset → merged == defaultVal
func checkField[T comparable](t *rapid.T, name string, globalVal, projectVal, defaultVal, mergedVal T) {
	t.Helper()
	var zero T
	switch {
	case projectVal != zero:
		if mergedVal != projectVal {
			t.Fatalf("%s: expected project value %v, got %v", name, projectVal, mergedVal)
		}
	case globalVal != zero:
		if mergedVal != globalVal {
			t.Fatalf("%s: only global set, expected global value %v, got %v", name, globalVal, mergedVal)
		}
	default:
		if mergedVal != defaultVal {
			t.Fatalf("%s: neither set, expected default %v, got %v", name, defaultVal, mergedVal)
		}
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.Store != "file" || d.TATImages != 11 {
		t.Errorf("unexpected defaults: %+v", d)
	}
	want := Durations{Countdown: 3, Observe: 30, Write: 240, Revise: 240, Narrate: 60, EndPause: 3}
	if d.Durations != want {
		t.Errorf("Durations: want %+v, got %+v", want, d.Durations)
	}
	if d.Exits != (Exits{Limit: 3, WindowDays: 7}) {
		t.Errorf("Exits: got %+v", d.Exits)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil || *cfg != Defaults() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadLayersProjectOverGlobal(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfgDir := filepath.Join(home, ".config", "storydrill")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	global := "store = \"bolt\"\ntat_images = 5\n\n[durations]\nwrite = 120\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(global), 0o644); err != nil {
		t.Fatal(err)
	}

	project := t.TempDir()
	chdir(t, project)
	if err := os.WriteFile(ProjectFile, []byte("[durations]\nwrite = 90\n\n[exits]\nlimit = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != "bolt" || cfg.TATImages != 5 {
		t.Errorf("global values lost: %+v", cfg)
	}
	if cfg.Durations.Write != 90 || cfg.Exits.Limit != 1 {
		t.Errorf("project values not applied: %+v", cfg)
	}
	if cfg.Durations.Observe != 30 || cfg.Exits.WindowDays != 7 {
		t.Errorf("defaults not kept for unset fields: %+v", cfg)
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfgDir := filepath.Join(tmp, ".config", "storydrill")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte("store = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "config.toml") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestValidateRejectsNonPositive(t *testing.T) {
	cfg := Defaults()
	cfg.Durations.Observe = -1
	cfg.Exits.Limit = -2
	cfg.Store = "redis"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"durations.observe", "exits.limit", "store"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidateAcceptsEveryBackend(t *testing.T) {
	for _, store := range []string{"file", "bolt", "sqlite", "memory"} {
		cfg := Defaults()
		cfg.Store = store
		if err := cfg.Validate(); err != nil {
			t.Errorf("store %q: %v", store, err)
		}
	}
}

func TestDirectories(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	dir, err := Defaults().ResolveDataDir()
	if err != nil || dir != filepath.Join("/data", "storydrill") {
		t.Errorf("ResolveDataDir: %q, %v", dir, err)
	}
	cfg := Defaults()
	cfg.DataDir = "/custom"
	if dir, _ := cfg.ResolveDataDir(); dir != "/custom" {
		t.Errorf("explicit data_dir ignored: %q", dir)
	}
	if dir, err := StateDir(); err != nil || dir != filepath.Join("/state", "storydrill") {
		t.Errorf("StateDir: %q, %v", dir, err)
	}
}
