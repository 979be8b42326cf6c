// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the compositor configuration
type Config struct {
	// Gesture recognizer tuning
	Gesture GestureConfig `mapstructure:"gesture"`

	// Shell behavior
	Shell ShellConfig `mapstructure:"shell"`

	// Display overrides
	Display DisplayConfig `mapstructure:"display"`

	// Input device selection
	Input InputConfig `mapstructure:"input"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// GestureConfig contains the tunable thresholds of the gesture recognizer.
// Distances are pixels, times milliseconds, velocities pixels per second.
type GestureConfig struct {
	EdgeThreshold          float64 `mapstructure:"edge_threshold"`
	SwipeThreshold         float64 `mapstructure:"swipe_threshold"`
	SwipeCompleteThreshold float64 `mapstructure:"swipe_complete_threshold"`
	SwipeLongThreshold     float64 `mapstructure:"swipe_long_threshold"`
	LongPressMs            int     `mapstructure:"long_press_ms"`
	TapMs                  int     `mapstructure:"tap_ms"`
	TapDistance            float64 `mapstructure:"tap_distance"`
	FlickVelocity          float64 `mapstructure:"flick_velocity"`
}

// ShellConfig contains mobile-shell settings
type ShellConfig struct {
	StartView   string `mapstructure:"start_view"`   // lock, home, app, app_switcher, quick_settings
	AnimationMs int    `mapstructure:"animation_ms"` // transition animation duration
	Terminal    string `mapstructure:"terminal"`     // autolaunch command, FLICK_TERMINAL wins
}

// DisplayConfig contains output overrides
type DisplayConfig struct {
	Width        int `mapstructure:"width"`  // 0 = use backend mode
	Height       int `mapstructure:"height"` // 0 = use backend mode
	WarmupFrames int `mapstructure:"warmup_frames"`
}

// InputConfig pins evdev device nodes instead of scanning /dev/input
type InputConfig struct {
	TouchDevice    string `mapstructure:"touch_device"`
	KeyboardDevice string `mapstructure:"keyboard_device"`
	PointerDevice  string `mapstructure:"pointer_device"`
}

// DevicePaths returns the pinned node list, empty when the input
// layer should discover devices itself
func (c InputConfig) DevicePaths() []string {
	var paths []string
	for _, p := range []string{c.TouchDevice, c.KeyboardDevice, c.PointerDevice} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Gesture: GestureConfig{
			EdgeThreshold:          80,
			SwipeThreshold:         300,
			SwipeCompleteThreshold: 100,
			SwipeLongThreshold:     200,
			LongPressMs:            500,
			TapMs:                  200,
			TapDistance:            10,
			FlickVelocity:          500,
		},
		Shell: ShellConfig{
			StartView:   "home",
			AnimationMs: 200,
			Terminal:    "",
		},
		Display: DisplayConfig{
			Width:        0,
			Height:       0,
			WarmupFrames: 3,
		},
		Input:   InputConfig{},
		Logging: LoggingConfig{LogLevel: ""},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("flick")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/flick")
		if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", "flick"))
		}
		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("gesture.edge_threshold", DefaultConfig.Gesture.EdgeThreshold)
	viper.SetDefault("gesture.swipe_threshold", DefaultConfig.Gesture.SwipeThreshold)
	viper.SetDefault("gesture.swipe_complete_threshold", DefaultConfig.Gesture.SwipeCompleteThreshold)
	viper.SetDefault("gesture.swipe_long_threshold", DefaultConfig.Gesture.SwipeLongThreshold)
	viper.SetDefault("gesture.long_press_ms", DefaultConfig.Gesture.LongPressMs)
	viper.SetDefault("gesture.tap_ms", DefaultConfig.Gesture.TapMs)
	viper.SetDefault("gesture.tap_distance", DefaultConfig.Gesture.TapDistance)
	viper.SetDefault("gesture.flick_velocity", DefaultConfig.Gesture.FlickVelocity)

	viper.SetDefault("shell.start_view", DefaultConfig.Shell.StartView)
	viper.SetDefault("shell.animation_ms", DefaultConfig.Shell.AnimationMs)
	viper.SetDefault("shell.terminal", DefaultConfig.Shell.Terminal)

	viper.SetDefault("display.width", DefaultConfig.Display.Width)
	viper.SetDefault("display.height", DefaultConfig.Display.Height)
	viper.SetDefault("display.warmup_frames", DefaultConfig.Display.WarmupFrames)

	viper.SetDefault("input.touch_device", DefaultConfig.Input.TouchDevice)
	viper.SetDefault("input.keyboard_device", DefaultConfig.Input.KeyboardDevice)
	viper.SetDefault("input.pointer_device", DefaultConfig.Input.PointerDevice)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if os.Getuid() == 0 {
		return "/etc/flick/flick.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/flick/flick.toml"
	}

	return filepath.Join(home, ".config", "flick", "flick.toml")
}
