package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/flags"
	"github.com/zjrosen/bloom/internal/sound"
	"github.com/zjrosen/bloom/internal/tracing"
)

func TestDefaults_AreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultTickInterval, cfg.TickInterval)
	require.Equal(t, DefaultLeaderboardTTL, cfg.Server.LeaderboardTTL)
	require.False(t, cfg.Zen.Enabled)
	require.True(t, cfg.Sound.EnabledSounds[sound.CueSessionComplete])
	require.True(t, cfg.Flags[flags.FlagGarden])
	require.NotEmpty(t, cfg.Tracing.FilePath)
}

func TestValidateTickInterval(t *testing.T) {
	require.NoError(t, ValidateTickInterval(0), "zero uses the default")
	require.NoError(t, ValidateTickInterval(100*time.Millisecond))
	require.NoError(t, ValidateTickInterval(MinTickInterval))
	require.NoError(t, ValidateTickInterval(MaxTickInterval))

	err := ValidateTickInterval(time.Millisecond)
	require.ErrorContains(t, err, "tick_interval")
	require.Error(t, ValidateTickInterval(2*time.Second))
}

func TestValidateZen(t *testing.T) {
	tests := []struct {
		name    string
		zen     ZenConfig
		wantErr string
	}{
		{name: "disabled needs nothing", zen: ZenConfig{}},
		{name: "enabled with username", zen: ZenConfig{Enabled: true, BaseURL: "http://localhost:8470", Username: "ana"}},
		{name: "enabled with user id", zen: ZenConfig{Enabled: true, BaseURL: "https://zen.example.com", UserID: "u-1"}},
		{name: "missing base url", zen: ZenConfig{Enabled: true, Username: "ana"}, wantErr: "zen.base_url is required"},
		{name: "bad scheme", zen: ZenConfig{Enabled: true, BaseURL: "ftp://zen", Username: "ana"}, wantErr: "http or https"},
		{name: "no identity", zen: ZenConfig{Enabled: true, BaseURL: "http://zen"}, wantErr: "zen.username"},
		{name: "negative timeout", zen: ZenConfig{Timeout: -time.Second}, wantErr: "zen.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateZen(tt.zen)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateServer(t *testing.T) {
	ok := ServerConfig{Addr: ":8470", DBPath: "zen.db"}
	require.NoError(t, ValidateServer(ok))

	noAddr := ok
	noAddr.Addr = ""
	require.ErrorContains(t, ValidateServer(noAddr), "server.addr")

	noDB := ok
	noDB.DBPath = ""
	require.ErrorContains(t, ValidateServer(noDB), "server.db_path")

	negTTL := ok
	negTTL.LeaderboardTTL = -time.Second
	require.ErrorContains(t, ValidateServer(negTTL), "leaderboard_ttl")
}

func TestValidateSound_UnknownCue(t *testing.T) {
	require.NoError(t, ValidateSound(SoundConfig{}))
	require.NoError(t, ValidateSound(SoundConfig{EnabledSounds: map[string]bool{sound.CuePhaseChange: true}}))

	err := ValidateSound(SoundConfig{EnabledSounds: map[string]bool{"gong": true}})
	require.ErrorContains(t, err, `unknown cue "gong"`)
}

func TestValidateTracing(t *testing.T) {
	require.NoError(t, ValidateTracing(tracing.DefaultConfig()))

	err := ValidateTracing(tracing.Config{SampleRate: 1.5})
	require.ErrorContains(t, err, "sample_rate")

	err = ValidateTracing(tracing.Config{SampleRate: 1, Exporter: "jaeger"})
	require.ErrorContains(t, err, "tracing.exporter")

	err = ValidateTracing(tracing.Config{Enabled: true, SampleRate: 1, Exporter: tracing.ExporterFile})
	require.ErrorContains(t, err, "file_path")

	err = ValidateTracing(tracing.Config{Enabled: true, SampleRate: 1, Exporter: tracing.ExporterOTLP})
	require.ErrorContains(t, err, "otlp_endpoint")

	// Path requirements only apply once tracing is on.
	require.NoError(t, ValidateTracing(tracing.Config{SampleRate: 1, Exporter: tracing.ExporterOTLP}))
}

func TestValidateUI(t *testing.T) {
	require.NoError(t, ValidateUI(UIConfig{}))
	require.NoError(t, ValidateUI(UIConfig{MarkdownStyle: "light"}))
	require.ErrorContains(t, ValidateUI(UIConfig{MarkdownStyle: "neon"}), "markdown_style")
}

func TestValidate_PatternsFileDirectory(t *testing.T) {
	cfg := Defaults()
	cfg.PatternsFile = t.TempDir()
	require.ErrorContains(t, Validate(cfg), "is a directory")

	cfg.PatternsFile = filepath.Join(t.TempDir(), "missing.yaml")
	require.NoError(t, Validate(cfg), "a missing file is created later by the user")
}

func TestWriteDefaultConfig_RoundTripsThroughViper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	require.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	require.Equal(t, 30*time.Second, cfg.Server.LeaderboardTTL)
	require.Equal(t, 5*time.Second, cfg.Zen.Timeout)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
	require.True(t, cfg.Flags[flags.FlagRemoteGuide])
	require.False(t, cfg.Sound.EnabledSounds[sound.CuePhaseChange])
	require.NoError(t, ValidateSound(cfg.Sound))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	require.Equal(t, filepath.Join(home, "bloom", "garden.db"), ExpandHome("~/bloom/garden.db"))
	require.Equal(t, "/tmp/garden.db", ExpandHome("/tmp/garden.db"))
	require.Equal(t, "~", ExpandHome("~"))
}
