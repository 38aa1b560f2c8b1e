package manifest

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/forgebuild/forged/internal/errwrap"
)

// Reads and parses a pipeline manifest from a file.
//
// The result is not validated; call [Pipeline.Validate] before executing.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errwrap.Wrap(ErrParse, err)
	}
	return Parse(data)
}

// Parses a pipeline manifest from YAML.
//
// Unknown fields are rejected so that typos in a manifest surface as
// parse errors rather than silently dropped instructions.
func Parse(data []byte) (*Pipeline, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errwrap.Wrapf(ErrParse, "empty manifest")
		}
		return nil, errwrap.Wrap(ErrParse, err)
	}

	return &p, nil
}
