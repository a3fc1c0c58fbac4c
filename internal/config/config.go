// Package config loads the editor agent's settings from defaults, an
// optional YAML file and FRAMECAST_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort             = 8787
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".framecast"
	DefaultSnapStep         = 0.25
	DefaultSnapThreshold    = 0.05
	DefaultAutosaveInterval = 5 * time.Second
	DefaultFFprobePath      = "ffprobe"

	// EnvPrefix prefixes every environment override, e.g. FRAMECAST_PORT or
	// FRAMECAST_SNAP_STEP.
	EnvPrefix = "FRAMECAST"
	// EnvConfigFile names an explicit config file.
	EnvConfigFile = "FRAMECAST_CONFIG"

	ConfigFilename = "editor.yaml"
	DBFilename     = "editor.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportDir() string
	Headless() bool
	SnapStep() float64
	SnapThreshold() float64
	AutosaveInterval() time.Duration
	FFprobePath() string
	ConfigFile() string
}

// ViperConfig is a Config resolved once at load time.
type ViperConfig struct {
	port             int
	logLevel         string
	dataDir          string
	headless         bool
	snapStep         float64
	snapThreshold    float64
	autosaveInterval time.Duration
	ffprobePath      string
	configFile       string
}

// New loads the configuration from the default locations.
func New() (*ViperConfig, error) {
	return Load("")
}

// Load reads path when it is set, else FRAMECAST_CONFIG, else
// <data_dir>/editor.yaml. Only the last may be missing.
func Load(path string) (*ViperConfig, error) {
	v := viper.New()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("headless", false)
	v.SetDefault("snap.step", DefaultSnapStep)
	v.SetDefault("snap.threshold", DefaultSnapThreshold)
	v.SetDefault("autosave_interval", DefaultAutosaveInterval)
	v.SetDefault("ffprobe_path", DefaultFFprobePath)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	explicit := path
	if explicit == "" {
		explicit = os.Getenv(EnvConfigFile)
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigFile(filepath.Join(expandHome(v.GetString("data_dir")), ConfigFilename))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case explicit == "" && errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &ViperConfig{
		port:             v.GetInt("port"),
		logLevel:         v.GetString("log_level"),
		dataDir:          expandHome(v.GetString("data_dir")),
		headless:         v.GetBool("headless"),
		snapStep:         v.GetFloat64("snap.step"),
		snapThreshold:    v.GetFloat64("snap.threshold"),
		autosaveInterval: v.GetDuration("autosave_interval"),
		ffprobePath:      v.GetString("ffprobe_path"),
		configFile:       v.ConfigFileUsed(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ViperConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", c.port)
	}
	if c.dataDir == "" {
		return errors.New("data_dir must not be empty")
	}
	if c.snapStep < 0 {
		return fmt.Errorf("invalid snap.step %v: must not be negative", c.snapStep)
	}
	if c.snapThreshold < 0 {
		return fmt.Errorf("invalid snap.threshold %v: must not be negative", c.snapThreshold)
	}
	if c.autosaveInterval <= 0 {
		return fmt.Errorf("invalid autosave_interval %s: must be positive", c.autosaveInterval)
	}
	return nil
}

// Port returns the HTTP server port
func (c *ViperConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *ViperConfig) LogLevel() string {
	return c.logLevel
}

func (c *ViperConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *ViperConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportDir is where export jobs write their files.
func (c *ViperConfig) ExportDir() string {
	return filepath.Join(c.dataDir, "exports")
}

// Headless disables the system tray.
func (c *ViperConfig) Headless() bool {
	return c.headless
}

func (c *ViperConfig) SnapStep() float64 {
	return c.snapStep
}

func (c *ViperConfig) SnapThreshold() float64 {
	return c.snapThreshold
}

func (c *ViperConfig) AutosaveInterval() time.Duration {
	return c.autosaveInterval
}

func (c *ViperConfig) FFprobePath() string {
	return c.ffprobePath
}

// ConfigFile returns the file the settings were read from, or "" when none
// was found.
func (c *ViperConfig) ConfigFile() string {
	if _, err := os.Stat(c.configFile); err != nil {
		return ""
	}
	return c.configFile
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/' && rest[0] != filepath.Separator) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
