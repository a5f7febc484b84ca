package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMinimalConfig(t *testing.T, dir string) string {
	t.Helper()
	content := `
[general]
work_root = "` + dir + `"

[rule]
root = "./rules"

[source]
root = "./sources"
`
	path := filepath.Join(dir, "wparse.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewBuildsRegistryAndPool(t *testing.T) {
	dir := t.TempDir()
	configFile := writeMinimalConfig(t, dir)

	a, err := New(Options{ConfigFile: configFile, Workers: 2})
	require.NoError(t, err)
	assert.NotNil(t, a)
	assert.NotNil(t, a.Registry())
	assert.NotNil(t, a.Stats())

	for _, g := range []string{"default", "miss", "residue", "error", "monitor"} {
		_, ok := a.Registry().Group(g)
		assert.Truef(t, ok, "expected infra group %q to exist", g)
	}
}

func TestNewFailsOnMissingConfig(t *testing.T) {
	a, err := New(Options{ConfigFile: "/nonexistent/wparse.toml"})
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestStartStopLifecycle(t *testing.T) {
	dir := t.TempDir()
	configFile := writeMinimalConfig(t, dir)

	a, err := New(Options{ConfigFile: configFile, Workers: 1})
	require.NoError(t, err)

	require.NoError(t, a.Start())
	require.NoError(t, a.Stop())

	assert.EqualValues(t, 0, a.Stats().Admitted())
}
