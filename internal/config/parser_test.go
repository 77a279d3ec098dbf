package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	manifolderrors "github.com/alexisbeaulieu97/manifold/pkg/errors"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseManifestLoadsPlugins(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
version: "1.0"
plugins:
  - name: rest-scaffold
    version: 1.2.0
    type: api
    description: Scaffolds REST endpoints with mock responses
    capabilities:
      design: true
      mock: true
      test: false
      document: true
      monitor: true
    hooks:
      - event: POST_INIT
        description: Warm the template cache after startup
`)

	manifest, err := ParseManifest(path)
	require.NoError(t, err)
	require.Equal(t, "1.0", manifest.Version)
	require.Len(t, manifest.Plugins, 1)

	cfg := manifest.Plugins[0]
	require.Equal(t, "rest-scaffold", cfg.Name)
	require.Equal(t, TypeAPI, cfg.Type)
	require.Equal(t, true, cfg.Capabilities["design"])
	require.Equal(t, false, cfg.Capabilities["test"])
	require.Len(t, cfg.Hooks, 1)
	require.Equal(t, EventPostInit, cfg.Hooks[0].Event)
}

func TestParseManifestMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest(filepath.Join(t.TempDir(), "absent.yaml"))

	var perr *manifolderrors.ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseManifestMalformedYAMLCarriesLine(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "version: \"1.0\"\nplugins:\n  - name: broken\n   version: oops\n")

	_, err := ParseManifest(path)

	var perr *manifolderrors.ParseError
	require.ErrorAs(t, err, &perr)
	require.Greater(t, perr.Line, 0)
}

func TestParseManifestRequiresPlugins(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, "version: \"1.0\"\nplugins: []\n")

	_, err := ParseManifest(path)
	require.ErrorIs(t, err, &manifolderrors.ValidationError{})
}

func TestParseManifestRequiresVersion(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `
plugins:
  - name: rest-scaffold
    version: 1.2.0
    type: api
    description: Scaffolds REST endpoints with mock responses
    capabilities:
      design: true
`)

	_, err := ParseManifest(path)
	require.ErrorIs(t, err, &manifolderrors.ValidationError{})
}
