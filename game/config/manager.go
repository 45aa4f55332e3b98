package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/service"
	"github.com/wricardo/maze-robot/internal/logging"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is preferred as the default when present.
const DefaultConfigName = "classic"

var extensions = []string{".yaml", ".yml"}

// Manager handles maze configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.MazeConfig
	configs       map[string]*engine.MazeConfig
	logger        *slog.Logger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	return NewManagerWithLogger(configDir, logging.NewNop())
}

// NewManagerWithLogger is NewManager with a logger for skipped files.
func NewManagerWithLogger(configDir string, logger *slog.Logger) (*Manager, error) {
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.MazeConfig),
		logger:    logger,
	}
	m.loadDefaultConfig()
	return m, nil
}

// configID strips a known extension from name.
func configID(name string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// LoadConfig loads a configuration by name, with or without extension
func (m *Manager) LoadConfig(name string) (*engine.MazeConfig, error) {
	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	data, err := m.readConfigFile(id)
	if err != nil {
		return nil, err
	}

	var config engine.MazeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, id, err)
	}
	if err := engine.ValidateMazeConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = &config
	return &config, nil
}

func (m *Manager) readConfigFile(id string) ([]byte, error) {
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(m.configDir, id+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil, ErrConfigNotFound
}

// ListConfigs returns information about all valid configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := configID(entry.Name())
		if id == entry.Name() {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			m.logger.Warn("skipping config", "file", entry.Name(), "error", err)
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
			Shape:       config.Shape,
			Width:       config.Width,
			Height:      config.Height,
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.MazeConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.MazeConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first valid config, then a
// built-in spiral.
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr == nil && len(configs) > 0 {
			config, err = m.LoadConfig(configs[0].ConfigID)
		}
	}
	if err != nil || config == nil {
		config = MinimalConfig()
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates and writes a configuration as YAML
func (m *Manager) SaveConfig(name string, config *engine.MazeConfig) error {
	if err := engine.ValidateMazeConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+".yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// MinimalConfig is the built-in fallback maze.
func MinimalConfig() *engine.MazeConfig {
	return &engine.MazeConfig{
		Name:        "default",
		Description: "Built-in 5x5 spiral",
		Shape:       "spiral",
		Width:       5,
		Height:      5,
	}
}
