// Package config loads configuration from defaults, an optional YAML file and
// TEMPLATE_CLONER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// TEMPLATE_CLONER_MATCHING_THRESHOLD.
const EnvPrefix = "TEMPLATE_CLONER"

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager and loads the initial config. An empty
// cfgFile searches for config.yaml in the working directory and in
// $HOME/.template-cloner.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{v: viper.New()}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile string) error {
	setDefaults(cm.v, DefaultConfig())

	cm.v.SetEnvPrefix(EnvPrefix)
	cm.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cm.v.AutomaticEnv()

	if cfgFile != "" {
		cm.v.SetConfigFile(cfgFile)
	} else {
		cm.v.SetConfigName("config")
		cm.v.SetConfigType("yaml")
		cm.v.AddConfigPath(".")
		cm.v.AddConfigPath("$HOME/.template-cloner")
	}

	// The config file is optional.
	if err := cm.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("matching.threshold", d.Matching.Threshold)
	v.SetDefault("matching.method", d.Matching.Method)
	v.SetDefault("matching.channel", d.Matching.Channel)
	v.SetDefault("matching.downscale", d.Matching.Downscale)
	v.SetDefault("matching.candidates", d.Matching.Candidates)

	v.SetDefault("cloning.anchor_threshold", d.Cloning.AnchorThreshold)
	v.SetDefault("cloning.group_threshold", d.Cloning.GroupThreshold)
	v.SetDefault("cloning.field_threshold", d.Cloning.FieldThreshold)
	v.SetDefault("cloning.edge_align_threshold", d.Cloning.EdgeAlignThreshold)
	v.SetDefault("cloning.edge_tolerance", d.Cloning.EdgeTolerance)
	v.SetDefault("cloning.edge_slack", d.Cloning.EdgeSlack)
	v.SetDefault("cloning.merge_distance", d.Cloning.MergeDistance)
	v.SetDefault("cloning.workers", d.Cloning.Workers)
	v.SetDefault("cloning.on_ambiguity", d.Cloning.OnAmbiguity)
}

// load parses the current viper state into a validated Config.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// BindFlag lets a command-line flag override key.
func (cm *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	if err := cm.v.BindPFlag(key, flag); err != nil {
		return err
	}
	return cm.Reload()
}

// Reload re-reads the viper state, keeping the old config if the new one is
// invalid.
func (cm *Manager) Reload() error {
	cfg, err := cm.load()
	if err != nil {
		return err
	}
	cm.mu.Lock()
	cm.config = cfg
	cm.mu.Unlock()
	return nil
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func (cm *Manager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of the config file. Invalid edits are
// logged and ignored.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			slog.Warn("config reload rejected", "file", e.Name, "error", err)
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	cm.v.WatchConfig()
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# template-cloner configuration
# Every key can be overridden with TEMPLATE_CLONER_<SECTION>_<KEY>,
# e.g. TEMPLATE_CLONER_CLONING_WORKERS=4

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
