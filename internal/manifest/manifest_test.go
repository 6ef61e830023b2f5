package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "forma.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseReadsPackageAndCapabilities(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "demo"
version = "0.1.0"
entry = "src/main.forma"

[capabilities]
grant = ["net", "fs"]
`)
	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "demo", m.Name)
	require.Equal(t, "0.1.0", m.Version)
	require.Equal(t, "src/main.forma", m.Entry)
	require.Equal(t, []string{"net", "fs"}, m.Capabilities)
}

func TestParseReadsDeps(t *testing.T) {
	path := writeManifest(t, `
[package]
name = "demo"

[deps]
collections = "1.0.0"
`)
	m, err := Parse(path)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", m.Deps["collections"])
}

func TestParseRejectsMalformedSection(t *testing.T) {
	path := writeManifest(t, "[package\nname = \"demo\"\n")
	_, err := Parse(path)
	require.Error(t, err)
}

func TestParseRejectsMissingEquals(t *testing.T) {
	path := writeManifest(t, "[package]\nname demo\n")
	_, err := Parse(path)
	require.Error(t, err)
}

func TestNewDefaultsEntry(t *testing.T) {
	m := New()
	require.Equal(t, "main.forma", m.Entry)
	require.NotNil(t, m.Deps)
}
