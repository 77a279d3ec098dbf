package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	manifolderrors "github.com/alexisbeaulieu97/manifold/pkg/errors"
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// ParseManifest loads a plugin manifest from disk and validates the
// document envelope. Individual plugin configurations are validated at
// registration time so callers can report per-plugin results.
func ParseManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, manifolderrors.NewParseError(path, 0, err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, manifolderrors.NewParseError(path, extractLine(err), err)
	}

	v := validatorInstance()
	if err := v.StructPartial(&manifest, "Version", "Plugins"); err != nil {
		return nil, convertValidationError(err)
	}

	return &manifest, nil
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
