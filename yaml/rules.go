// Package yaml loads extraction rules from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/pagecut"
	"gopkg.in/yaml.v3"
)

// LoadRules reads a rules file and applies it on top of
// pagecut.DefaultRules. Keys absent from the file keep their defaults.
// Lists in the file replace the default lists; class colours are merged.
func LoadRules(path string) (*pagecut.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pagecut.Wrap(pagecut.EINVALID, err, fmt.Sprintf("read rules file %s", path))
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules decodes YAML rules on top of pagecut.DefaultRules and
// validates the result. Unknown keys are rejected so typos surface.
func ParseRules(data []byte) (*pagecut.Rules, error) {
	rules := pagecut.DefaultRules()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(rules); err != nil && !errors.Is(err, io.EOF) {
		return nil, pagecut.Wrap(pagecut.EINVALID, err, "invalid rules")
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}
