package wavio

import (
	"fmt"
	"os"
	"path/filepath"
)

// tempSibling opens a temp file next to path so the final rename stays on
// one filesystem.
func tempSibling(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return f, nil
}

// WriteFileAtomic writes data to path through a sibling temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	tmp, err := tempSibling(path)
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("place file: %w", err)
	}
	return nil
}
