// Package encoding provides small helpers for loading and atomically saving
// structured documents (YAML configuration, JSON snapshot sidecars) to disk.
package encoding

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoadAndUnmarshal reads the data at the specified path and invokes the
// specified unmarshaling callback to decode it. os.IsNotExist errors are
// passed through unmodified so that callers can distinguish "missing file"
// from "corrupt file".
func LoadAndUnmarshal(path string, unmarshal func([]byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("unable to load file: %w", err)
	}
	if err := unmarshal(data); err != nil {
		return fmt.Errorf("unable to unmarshal data: %w", err)
	}
	return nil
}

// MarshalAndSave invokes the specified marshaling callback and writes the
// result atomically to the specified path using a temporary-file-plus-rename
// sequence, so that a reader never observes a partially written document.
func MarshalAndSave(path string, permissions os.FileMode, marshal func() ([]byte, error)) error {
	data, err := marshal()
	if err != nil {
		return fmt.Errorf("unable to marshal data: %w", err)
	}
	if err := writeFileAtomic(path, data, permissions); err != nil {
		return fmt.Errorf("unable to write data: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to disk using an intermediate temporary file
// that is swapped into place with a rename.
func writeFileAtomic(path string, data []byte, permissions os.FileMode) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), ".bisync-write-")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	name := temporary.Name()

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(name)
		return fmt.Errorf("unable to write temporary file: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}
	if err := os.Chmod(name, permissions); err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to set file permissions: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("unable to rename temporary file into place: %w", err)
	}
	return nil
}
