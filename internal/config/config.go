// Package config provides configuration types and defaults for bloom.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/bloom/internal/flags"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/sound"
	"github.com/zjrosen/bloom/internal/tracing"
)

// Config holds all configuration options for bloom.
type Config struct {
	// PatternsFile is an optional YAML file of intentions layered over the
	// built-in catalog. It is watched and reloaded while the TUI runs.
	PatternsFile string        `mapstructure:"patterns_file"`
	TickInterval time.Duration `mapstructure:"tick_interval"`

	Garden  GardenConfig    `mapstructure:"garden"`
	Zen     ZenConfig       `mapstructure:"zen"`
	Server  ServerConfig    `mapstructure:"server"`
	Sound   SoundConfig     `mapstructure:"sound"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	UI      UIConfig        `mapstructure:"ui"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// GardenConfig configures the local oasis database.
type GardenConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ZenConfig configures the TUI's connection to a zen server.
type ZenConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BaseURL  string        `mapstructure:"base_url"`
	Username string        `mapstructure:"username"`
	UserID   string        `mapstructure:"user_id"` // written back after the first registration
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures `bloom serve`.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	DBPath         string        `mapstructure:"db_path"`
	LeaderboardTTL time.Duration `mapstructure:"leaderboard_ttl"`
}

// SoundConfig holds audio cue configuration.
type SoundConfig struct {
	// EnabledSounds maps cue names ("phase_change", "session_complete") to
	// whether the terminal bell rings for them.
	EnabledSounds map[string]bool `mapstructure:"enabled_sounds"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	ShowGarden    bool   `mapstructure:"show_garden"`
}

const (
	DefaultTickInterval   = 100 * time.Millisecond
	MinTickInterval       = 10 * time.Millisecond
	MaxTickInterval       = time.Second
	DefaultZenTimeout     = 5 * time.Second
	DefaultServerAddr     = "127.0.0.1:8470"
	DefaultZenBaseURL     = "http://" + DefaultServerAddr
	DefaultLeaderboardTTL = 30 * time.Second
)

// DefaultDataDir returns ~/.local/share/bloom, or ".bloom" when the home
// directory is unavailable.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bloom"
	}
	return filepath.Join(home, ".local", "share", "bloom")
}

// DefaultTracesFilePath returns the default path for trace file export.
func DefaultTracesFilePath() string {
	return filepath.Join(DefaultDataDir(), "traces", "traces.jsonl")
}

// Defaults returns the default configuration.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()

	return Config{
		TickInterval: DefaultTickInterval,
		Garden: GardenConfig{
			DBPath: filepath.Join(DefaultDataDir(), "garden.db"),
		},
		Zen: ZenConfig{
			BaseURL: DefaultZenBaseURL,
			Timeout: DefaultZenTimeout,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			DBPath:         filepath.Join(DefaultDataDir(), "zen.db"),
			LeaderboardTTL: DefaultLeaderboardTTL,
		},
		Sound: SoundConfig{
			EnabledSounds: map[string]bool{
				sound.CuePhaseChange:         false,
				sound.CueSessionComplete:     true,
				sound.CueDesktopNotification: false,
			},
		},
		Tracing: tc,
		UI: UIConfig{
			MarkdownStyle: "dark",
			ShowGarden:    true,
		},
		Flags: flags.Defaults(),
	}
}

// Validate checks the whole configuration and returns the first problem.
func Validate(cfg Config) error {
	if err := ValidateTickInterval(cfg.TickInterval); err != nil {
		return err
	}
	if err := ValidateZen(cfg.Zen); err != nil {
		return err
	}
	if err := ValidateServer(cfg.Server); err != nil {
		return err
	}
	if err := ValidateSound(cfg.Sound); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if cfg.PatternsFile != "" {
		if info, err := os.Stat(cfg.PatternsFile); err == nil && info.IsDir() {
			return fmt.Errorf("patterns_file %q is a directory", cfg.PatternsFile)
		}
	}
	return nil
}

// ValidateTickInterval checks the controller tick interval.
// Zero means "use the default".
func ValidateTickInterval(d time.Duration) error {
	if d == 0 {
		return nil
	}
	if d < MinTickInterval || d > MaxTickInterval {
		return fmt.Errorf("tick_interval must be between %s and %s, got %s", MinTickInterval, MaxTickInterval, d)
	}
	return nil
}

// ValidateZen checks the zen client settings. Nothing is required while the
// client is disabled.
func ValidateZen(z ZenConfig) error {
	if z.Timeout < 0 {
		return fmt.Errorf("zen.timeout must not be negative, got %s", z.Timeout)
	}
	if !z.Enabled {
		return nil
	}
	if z.BaseURL == "" {
		return fmt.Errorf("zen.base_url is required when zen is enabled")
	}
	u, err := url.Parse(z.BaseURL)
	if err != nil {
		return fmt.Errorf("zen.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("zen.base_url must use http or https, got %q", z.BaseURL)
	}
	if z.UserID == "" && z.Username == "" {
		return fmt.Errorf("zen.username is required when zen is enabled and no user_id is set")
	}
	return nil
}

// ValidateServer checks the serve command settings.
func ValidateServer(s ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if s.DBPath == "" {
		return fmt.Errorf("server.db_path is required")
	}
	if s.LeaderboardTTL < 0 {
		return fmt.Errorf("server.leaderboard_ttl must not be negative, got %s", s.LeaderboardTTL)
	}
	return nil
}

// ValidateSound rejects cue names that bloom never plays.
func ValidateSound(s SoundConfig) error {
	for name := range s.EnabledSounds {
		switch name {
		case sound.CuePhaseChange, sound.CueSessionComplete, sound.CueDesktopNotification:
		default:
			return fmt.Errorf("sound.enabled_sounds: unknown cue %q", name)
		}
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" {
		switch tc.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
		}
	}

	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// ValidateUI checks UI options.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
		return nil
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
}

// DefaultConfigTemplate returns the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# Bloom Configuration

# Extra intentions layered over the built-in catalog. Reloaded on change.
# patterns_file: ~/.config/bloom/patterns.yaml
#
# Example patterns file:
# intentions:
#   - key: morning-reset
#     title: Morning Reset
#     subtitle: Wake up gently
#     icon: "☀"
#     pattern:
#       name: Energizing Breath
#       inhale: 4
#       hold: 2
#       exhale: 4
#       hold_after: 0
#       cycles: 12

# How often the breathing clock advances (10ms to 1s)
tick_interval: 100ms

garden:
  db_path: ~/.local/share/bloom/garden.db

# Zen coins, achievements and the leaderboard (needs a running "bloom serve")
zen:
  enabled: false
  base_url: http://127.0.0.1:8470
  username: ""
  timeout: 5s

server:
  addr: 127.0.0.1:8470
  db_path: ~/.local/share/bloom/zen.db
  leaderboard_ttl: 30s

sound:
  enabled_sounds:
    phase_change: false
    session_complete: true
    desktop_notification: false

ui:
  markdown_style: dark
  show_garden: true

flags:
  gamification: true
  garden: true
  sound-cues: true
  remote-guide: true

# Tracing (OpenTelemetry)
# tracing:
#   enabled: true
#   exporter: file        # none, file, stdout, otlp
#   file_path: ~/.local/share/bloom/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
