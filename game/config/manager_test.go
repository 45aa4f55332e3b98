package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/maze-robot/game/engine"
)

const courtyardYAML = `name: Courtyard
description: Hand-drawn 3x3
shape: layout
layout: |
  Es  EW  SW
  ES  W   NS
  NE  EW  NWf
`

func createValidConfig(name string) *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        name,
		Description: "Test configuration",
		Shape:       "spiral",
		Width:       4,
		Height:      3,
	}
}

func writeRaw(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", filename, err)
	}
}

func writeConfigFile(t *testing.T, m *Manager, name string, config *engine.MazeConfig) {
	t.Helper()
	if err := m.SaveConfig(name, config); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "classic.yaml", "name: Classic\ndescription: d\nshape: random\nwidth: 5\nheight: 5\nseed: 1\n")

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic as default, got %q", manager.GetDefault().Name)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory uses built-in default", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without config files: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.Shape != "spiral" || def.Width != 5 || def.Height != 5 {
			t.Errorf("Expected built-in 5x5 spiral, got %+v", def)
		}
	})

	t.Run("first valid config without classic", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "a_broken.yaml", "name: Broken\nshape: random\n")
		writeRaw(t, dir, "b_line.yml", "name: Line\ndescription: d\nshape: line\nlength: 3\n")

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Line" {
			t.Errorf("Expected first valid config as default, got %q", manager.GetDefault().Name)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "courtyard.yaml", courtyardYAML)
	writeRaw(t, dir, "short.yml", "name: Short\ndescription: d\nshape: line\nlength: 2\n")
	writeRaw(t, dir, "invalid.yaml", "name: Invalid\nshape: spiral\nwidth: 0\nheight: 3\n")
	writeRaw(t, dir, "malformed.yaml", "name: [unterminated\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("layout config", func(t *testing.T) {
		config, err := manager.LoadConfig("courtyard")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		layout, err := config.Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if layout.Grid.Rows() != 3 || layout.Finish.Row != 2 || layout.Finish.Col != 2 {
			t.Errorf("Unexpected layout: %+v", layout)
		}
	})

	t.Run("yml extension", func(t *testing.T) {
		config, err := manager.LoadConfig("short.yml")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Length != 2 {
			t.Errorf("Expected length 2, got %d", config.Length)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("courtyard")
		config2, err := manager.LoadConfig("courtyard.yaml")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("not found", func(t *testing.T) {
		for _, name := range []string{"non-existent", "../courtyard", ""} {
			if _, err := manager.LoadConfig(name); !errors.Is(err, ErrConfigNotFound) {
				t.Errorf("LoadConfig(%q): expected ErrConfigNotFound, got %v", name, err)
			}
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := manager.LoadConfig("invalid"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		if _, err := manager.LoadConfig("malformed"); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	for _, name := range []string{"alpha", "beta", "gamma"} {
		writeConfigFile(t, manager, name, createValidConfig(name))
	}
	writeRaw(t, dir, "readme.txt", "not a config")
	writeRaw(t, dir, "broken.yaml", "name: Broken\n")

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("Expected 3 configs, got %d", len(configs))
	}
	for i, want := range []string{"alpha", "beta", "gamma"} {
		if configs[i].ConfigID != want || configs[i].Filename != want+".yaml" {
			t.Errorf("Config %d: expected %s, got %+v", i, want, configs[i])
		}
		if configs[i].Shape != "spiral" || configs[i].Width != 4 || configs[i].Height != 3 {
			t.Errorf("Config %d: unexpected details %+v", i, configs[i])
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	seed := int64(11)
	config := &engine.MazeConfig{Name: "Seeded", Description: "d", Shape: "random", Width: 6, Height: 4, Seed: &seed}
	writeConfigFile(t, manager, "seeded", config)

	// A fresh manager reads the file back from disk.
	fresh, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	loaded, err := fresh.LoadConfig("seeded")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Seed == nil || *loaded.Seed != 11 || loaded.Width != 6 {
		t.Errorf("Unexpected round trip: %+v", loaded)
	}

	a, _ := config.Build()
	b, _ := loaded.Build()
	if a.Start != b.Start || a.Finish != b.Finish {
		t.Error("Seeded configs should build the same maze")
	}

	if err := manager.SaveConfig("bad", &engine.MazeConfig{Name: "Bad", Shape: "line"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if err := manager.SaveConfig("../escape", createValidConfig("x")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for path name, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	writeConfigFile(t, manager, "other", createValidConfig("Other"))

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Errorf("Expected Other as default, got %q", manager.GetDefault().Name)
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	writeRaw(t, dir, "classic.yaml", "name: Classic\ndescription: d\nshape: line\nlength: 4\n")
	manager.RefreshCache()
	if manager.GetDefault().Name != "Classic" {
		t.Errorf("Expected classic after refresh, got %q", manager.GetDefault().Name)
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "changeable.yaml", "name: Changeable\ndescription: d\nshape: line\nlength: 3\n")

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Length != 3 {
		t.Errorf("Expected initial length 3, got %d", loaded.Length)
	}

	writeRaw(t, dir, "changeable.yaml", "name: Changeable\ndescription: d\nshape: line\nlength: 9\n")
	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Length != 9 {
		t.Errorf("Expected reloaded length 9, got %d", reloaded.Length)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	names := []string{"c1", "c2", "c3", "c4", "c5"}
	for _, name := range names {
		writeConfigFile(t, manager, name, createValidConfig(name))
	}
	manager.RefreshCache()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := manager.LoadConfig(names[id%len(names)]); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() < len(names) {
		t.Errorf("Expected at least %d configs in cache, got %d", len(names), manager.Count())
	}
}

func TestShippedConfigs(t *testing.T) {
	manager, err := NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to open shipped configs: %v", err)
	}
	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) < 5 {
		t.Errorf("Expected every shipped config to be valid, got %d", len(configs))
	}
	if manager.GetDefault().Name != "Classic" {
		t.Errorf("Expected Classic default, got %q", manager.GetDefault().Name)
	}
	for _, info := range configs {
		config, _ := manager.LoadConfig(info.ConfigID)
		if _, err := config.Build(); err != nil {
			t.Errorf("%s: build failed: %v", info.ConfigID, err)
		}
	}
}

// Test-only helpers

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configID(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
