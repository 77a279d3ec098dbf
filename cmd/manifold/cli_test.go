package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testManifest = `
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
  - name: schema-sync
    version: 0.4.1
    type: database
    description: Keeps database schemas aligned with models
    capabilities:
      schema: true
      migrate: true
      seed: false
      backup: true
      monitor: true
`

const brokenManifest = `
version: "1.0"
plugins:
  - name: rest-scaffold
    version: 1.2.0
    type: api
    description: Scaffolds REST endpoints with mock responses
    capabilities:
      design: true
`

func writeTestManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommandAcceptsValidManifest(t *testing.T) {
	path := writeTestManifest(t, testManifest)

	out, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	require.Contains(t, out, "rest-scaffold")
	require.Contains(t, out, "schema-sync")
	require.Contains(t, out, "2 plugin configurations valid")
}

func TestValidateCommandReportsFailures(t *testing.T) {
	path := writeTestManifest(t, brokenManifest)

	out, err := runCommand(t, "validate", path)
	require.Error(t, err)
	require.Contains(t, out, "rest-scaffold")
	require.Contains(t, out, "missing required capabilities")
}

func TestValidateCommandMissingManifest(t *testing.T) {
	_, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestListCommandPrintsRegisteredPlugins(t *testing.T) {
	path := writeTestManifest(t, testManifest)

	out, err := runCommand(t, "list", path)
	require.NoError(t, err)
	require.Contains(t, out, "NAME")
	require.Contains(t, out, "rest-scaffold")
	require.Contains(t, out, "api")
	require.Contains(t, out, "UNINITIALIZED")
}

func TestRunCommandCompletesLifecycle(t *testing.T) {
	path := writeTestManifest(t, testManifest)

	_, err := runCommand(t, "run", path)
	require.NoError(t, err)
}

func TestRunCommandFailsOnInvalidPlugin(t *testing.T) {
	path := writeTestManifest(t, brokenManifest)

	_, err := runCommand(t, "run", path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rest-scaffold")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Manifold")
}
