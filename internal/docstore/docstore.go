// Package docstore persists the application's JSON artifacts (annotation
// sidecars, the setlist document, settings) with crash-safe replace
// semantics: a reader never observes a half-written file, and a failed
// save leaves the previous content untouched. Corrupt files are reported
// but never overwritten or deleted, so hand recovery stays possible.
package docstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/score-stand/internal/util"
)

// Load reads the JSON document at path into a value of type T.
//
// A missing file is not an error; def is returned unchanged. A file that
// exists but does not decode as T returns def plus an error wrapping
// util.ErrCorrupt, with the on-disk bytes left exactly as found.
func Load[T any](path string, def T) (T, error) {
	raw, err := util.RetryableReadFile(path, util.RetryConfigFor(filepath.Dir(path)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return def, nil
		}
		return def, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return def, fmt.Errorf("failed to decode %s: %w (%v)", path, util.ErrCorrupt, err)
	}
	return doc, nil
}

// Save writes doc to path durably. The full serialization goes into a
// temp file beside the target (same directory, so the final rename stays
// within one filesystem), is fsynced, then atomically renamed over the
// target. The parent directory is created if missing. On any failure the
// temp file is removed, the previous target content is unchanged, and
// the returned error wraps util.ErrUnwritable.
func Save[T any](path string, doc T) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w (%v)", path, util.ErrUnwritable, err)
	}

	dir := filepath.Dir(path)
	cfg := util.RetryConfigFor(dir)

	if err := util.RetryableMkdirAll(dir, 0755, cfg); err != nil {
		return unwritable(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return unwritable(path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = util.RetryableRemove(tmpPath, cfg)
		return unwritable(path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		_ = util.RetryableRemove(tmpPath, cfg)
		return unwritable(path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = util.RetryableRemove(tmpPath, cfg)
		return unwritable(path, err)
	}

	if err := util.RetryableRename(tmpPath, path, cfg); err != nil {
		_ = util.RetryableRemove(tmpPath, cfg)
		return unwritable(path, err)
	}
	return nil
}

// encode serializes with two-space indentation and raw (unescaped)
// Unicode, matching the sidecars the application has always written.
func encode(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unwritable(path string, err error) error {
	return fmt.Errorf("failed to save %s: %w (%v)", path, util.ErrUnwritable, err)
}
