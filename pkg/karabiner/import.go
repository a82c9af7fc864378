package karabiner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/hyperkey/pkg/errors"
)

// ReadJSON decodes a karabiner.json document from r.
//
// Only the modelled subset is decoded; other keys Karabiner writes into the
// file (devices, virtual_hid_keyboard, parameters) are ignored. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	return cfg, nil
}

// ImportJSON reads the karabiner.json file at path.
// A missing file is reported as FILE_NOT_FOUND.
func ImportJSON(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := ReadJSON(f)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read %s", path)
	}
	return cfg, nil
}
