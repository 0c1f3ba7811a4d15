package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultConfigName is the configuration used when none is requested
const DefaultConfigName = "classic"

// extensions are tried in order when a configuration is looked up by name
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles round configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.RoundConfig
	configs       map[string]*engine.RoundConfig
	log           logrus.FieldLogger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.RoundConfig),
		log:       logrus.StandardLogger(),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// SetLogger replaces the logger used for skipped or unreadable files
func (m *Manager) SetLogger(log logrus.FieldLogger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = log
}

// LoadConfig loads a configuration by name. The name may carry a .json,
// .yaml or .yml extension; without one the extensions are tried in that order.
func (m *Manager) LoadConfig(name string) (*engine.RoundConfig, error) {
	id := configID(name)

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

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	config, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all available configurations.
// Files that fail to load are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasConfigExtension(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			m.logger().WithError(err).WithField("file", entry.Name()).Warn("Skipping configuration")
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:      entry.Name(),
			ConfigID:      id,
			Name:          config.Name,
			Description:   config.Description,
			Rows:          config.Rows,
			Cols:          config.Cols,
			ObstacleCount: config.ObstacleCount,
			CoinCount:     config.CoinCount,
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.RoundConfig {
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

// RefreshCache drops every cached configuration and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.RoundConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// SaveConfig validates and writes a configuration to disk. A .yaml or .yml
// name is written as YAML, anything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.RoundConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := engine.ValidateRoundConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !hasConfigExtension(filename) {
		filename = name + ".json"
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("%w: config name must not contain a path: %q", ErrInvalidConfig, name)
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(filename)] = config
	m.mu.Unlock()

	return nil
}

// loadDefaultConfig picks classic, then the first valid file, then the built-in board
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultConfigName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = builtinConfig()
		} else if config, err = m.LoadConfig(configs[0].Filename); err != nil {
			config = builtinConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// resolve finds the file backing a configuration name. Callers hold m.mu.
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", ErrConfigNotFound
	}

	candidates := []string{name}
	if !hasConfigExtension(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, candidate := range candidates {
		path := filepath.Join(m.configDir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

func (m *Manager) logger() logrus.FieldLogger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.log
}

// readConfigFile decodes and validates one configuration file
func readConfigFile(path string) (*engine.RoundConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.RoundConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(path), err)
	}

	if err := engine.ValidateRoundConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if config.Name == "" {
		config.Name = configID(path)
	}

	return &config, nil
}

// builtinConfig is used when the directory holds no usable configuration
func builtinConfig() *engine.RoundConfig {
	config := engine.DefaultRoundConfig()
	return &config
}

func hasConfigExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, known := range extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// configID strips the directory and a known extension from a file name
func configID(name string) string {
	base := filepath.Base(name)
	if hasConfigExtension(base) {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base
}
