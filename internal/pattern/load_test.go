package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const overlayYAML = `intentions:
  - key: morning-energy
    title: Morning Energy
    subtitle: Wake up gently
    icon: "☀"
    pattern:
      name: Energizer
      inhale: 3
      exhale: 3
      cycles: 12
  - key: just-breathe
    title: Just Breathe
    pattern:
      name: Coherence Breathing
      inhale: 6
      exhale: 6
      cycles: 5
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog_Overlay(t *testing.T) {
	c, err := LoadCatalog(writeFile(t, overlayYAML))
	require.NoError(t, err)
	require.Equal(t, 6, c.Len())

	p, err := c.Get("morning-energy")
	require.NoError(t, err)
	require.Equal(t, 72.0, p.TotalDuration())

	p, err = c.Get(JustBreathe)
	require.NoError(t, err)
	require.Equal(t, 6.0, p.Inhale)
	require.Equal(t, 5, p.Cycles)
}

func TestLoadCatalog_MissingFileUsesBuiltins(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, 5, c.Len())

	c, err = LoadCatalog("")
	require.NoError(t, err)
	require.Equal(t, 5, c.Len())
}

func TestLoadCatalog_InvalidEntry(t *testing.T) {
	path := writeFile(t, "intentions:\n  - key: bad\n    pattern: {inhale: 4, exhale: 4, cycles: 0}\n")
	_, err := LoadCatalog(path)
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestLoadCatalog_Malformed(t *testing.T) {
	_, err := LoadCatalog(writeFile(t, "intentions: [\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing patterns file")
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	path := writeFile(t, overlayYAML)
	c, err := LoadCatalog(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("intentions:\n  - key: bad\n    pattern: {cycles: 1}\n"), 0o644))
	require.Error(t, c.Reload(path))
	require.Equal(t, 6, c.Len())
}
