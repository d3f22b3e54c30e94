// Package config loads JSON scenario/parameter files into engine
// configuration structs. Loading is the only place this module touches
// the filesystem; engine constructors always take values, never paths.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the JSON file at path and decodes it into out.
func Load[T any](path string, out *T) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(out); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return nil
}
