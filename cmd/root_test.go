package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/bloom/internal/config"
	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/pattern"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix("BLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestSetDefaults_UnmarshalMatchesDefaults(t *testing.T) {
	var got config.Config
	require.NoError(t, newTestViper().Unmarshal(&got))

	want := config.Defaults()
	require.Equal(t, want.TickInterval, got.TickInterval)
	require.Equal(t, want.Server.Addr, got.Server.Addr)
	require.Equal(t, want.Server.LeaderboardTTL, got.Server.LeaderboardTTL)
	require.Equal(t, want.Zen.Timeout, got.Zen.Timeout)
	require.Equal(t, want.Zen.BaseURL, got.Zen.BaseURL)
	require.True(t, got.UI.ShowGarden)
	require.Equal(t, "dark", got.UI.MarkdownStyle)
}

func TestSetDefaults_EnvOverrides(t *testing.T) {
	t.Setenv("BLOOM_TICK_INTERVAL", "250ms")
	t.Setenv("BLOOM_SERVER_ADDR", ":9000")
	t.Setenv("BLOOM_ZEN_ENABLED", "true")

	var got config.Config
	require.NoError(t, newTestViper().Unmarshal(&got))

	require.Equal(t, 250*time.Millisecond, got.TickInterval)
	require.Equal(t, ":9000", got.Server.Addr)
	require.True(t, got.Zen.Enabled)
}

func TestSetDefaults_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tick_interval: 50ms\nzen:\n  username: ana\n"), 0o600))

	v := newTestViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var got config.Config
	require.NoError(t, v.Unmarshal(&got))
	require.Equal(t, 50*time.Millisecond, got.TickInterval)
	require.Equal(t, "ana", got.Zen.Username)
	require.Equal(t, config.DefaultZenTimeout, got.Zen.Timeout)
}

func TestExpandPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := config.Config{
		PatternsFile: "~/breath.yaml",
		Garden:       config.GardenConfig{DBPath: "~/garden.db"},
		Server:       config.ServerConfig{DBPath: "/abs/zen.db"},
	}
	expandPaths(&c)

	require.Equal(t, filepath.Join(home, "breath.yaml"), c.PatternsFile)
	require.Equal(t, filepath.Join(home, "garden.db"), c.Garden.DBPath)
	require.Equal(t, "/abs/zen.db", c.Server.DBPath)
}

func TestOpenGarden_SQLite(t *testing.T) {
	gardener, closeStore := openGarden(filepath.Join(t.TempDir(), "garden.db"))
	t.Cleanup(closeStore)
	t.Cleanup(gardener.Close)

	_, isMemory := gardener.Store().(*garden.MemoryStore)
	require.False(t, isMemory)
}

func TestOpenGarden_FallsBackToMemory(t *testing.T) {
	// A regular file where the parent directory should be makes the open fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	gardener, closeStore := openGarden(filepath.Join(blocker, "garden.db"))
	t.Cleanup(closeStore)
	t.Cleanup(gardener.Close)

	_, isMemory := gardener.Store().(*garden.MemoryStore)
	require.True(t, isMemory)
}

func TestRenderCatalog(t *testing.T) {
	out := renderCatalog(pattern.Builtins())

	require.Contains(t, out, "KEY")
	require.Contains(t, out, pattern.CalmBeforeEvent)
	require.Contains(t, out, "Box Breathing")
	require.Contains(t, out, "4s-4s-4s-4s")
}

func TestPatternsValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`intentions:
  - key: morning-energy
    title: Morning Energy
    pattern: {name: Energizer, inhale: 3, exhale: 3, cycles: 12}
`), 0o600))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`intentions:
  - key: broken
    title: Broken
    pattern: {name: Broken, inhale: 3, exhale: 3, cycles: 0}
`), 0o600))

	var out bytes.Buffer
	patternsValidateCmd.SetOut(&out)
	t.Cleanup(func() { patternsValidateCmd.SetOut(nil) })

	require.NoError(t, patternsValidateCmd.RunE(patternsValidateCmd, []string{good}))
	require.Contains(t, out.String(), "1 intention(s) OK")

	require.Error(t, patternsValidateCmd.RunE(patternsValidateCmd, []string{bad}))
	require.Error(t, patternsValidateCmd.RunE(patternsValidateCmd, []string{filepath.Join(dir, "missing.yaml")}))
}
