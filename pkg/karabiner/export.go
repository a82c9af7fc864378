package karabiner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/hyperkey/pkg/errors"
)

// Marshal encodes cfg the way Karabiner's own tooling formats the file:
// two-space indentation, no HTML escaping, trailing newline.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(cfg, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON encodes cfg as JSON and writes it to w.
// The same Config always produces the same bytes.
func WriteJSON(cfg Config, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes cfg to the file at path.
// This is a convenience wrapper around [Marshal] and [WriteFile].
func ExportJSON(cfg Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode configuration")
	}
	return WriteFile(path, data)
}

// WriteFile replaces the file at path with data.
//
// The data is written to a temporary file in the same directory, synced and
// renamed over path, so readers never observe a partially written file. The
// parent directory is created if needed. Failures are returned as
// WRITE_FAILED errors wrapping the underlying I/O error; the temporary file is
// removed.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "create %s", path)
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", path)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "write %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeWriteFailed, err, "replace %s", path)
	}
	return nil
}
