package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSeed marks a seed that was read but cannot be used. Retrying
// does not help until the file changes.
var ErrInvalidSeed = errors.New("invalid catalog seed")

// Loader handles loading and parsing of the catalog seed file
type Loader struct {
	filePath string
}

// NewLoader creates a new catalog loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file. Unknown keys are rejected so a
// typo does not silently drop data.
func (l *Loader) Load(ctx context.Context) (*SeedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var seed SeedFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrInvalidSeed, l.filePath)
		}
		return nil, fmt.Errorf("%w: failed to parse catalog yaml: %v", ErrInvalidSeed, err)
	}

	return &seed, nil
}
