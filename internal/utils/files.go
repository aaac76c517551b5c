package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// StagedFile is data written beside its target and not yet renamed into place.
type StagedFile struct {
	Path string
	Tmp  string
}

// StageFile writes data to a uniquely named temp file in path's directory, creating
// the directory if missing. The file at path is left untouched until Commit.
func StageFile(path string, data []byte) (StagedFile, error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return StagedFile{}, fmt.Errorf("create dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return StagedFile{}, fmt.Errorf("create temp file: %w", err)
	}
	s := StagedFile{Path: path, Tmp: f.Name()}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = s.Discard()
		return StagedFile{}, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		_ = s.Discard()
		return StagedFile{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.Discard()
		return StagedFile{}, fmt.Errorf("close temp file: %w", err)
	}
	return s, nil
}

// Commit atomically renames the temp file over Path.
func (s StagedFile) Commit() error {
	if err := os.Rename(s.Tmp, s.Path); err != nil {
		_ = s.Discard()
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// Discard removes the temp file.
func (s StagedFile) Discard() error {
	if err := os.Remove(s.Tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SafeWriteFile writes data to a temp file next to path and atomically renames it into place,
// replacing any existing file. The parent directory is created if missing.
func SafeWriteFile(path string, data []byte) error {
	s, err := StageFile(path, data)
	if err != nil {
		return err
	}
	return s.Commit()
}

// ErrNotRegular is returned by RequireFile for directories and other non-files.
var ErrNotRegular = errors.New("not a regular file")

// RequireFile returns an error unless path is an existing regular file.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	return nil
}
