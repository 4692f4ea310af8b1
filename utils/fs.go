package utils

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

// WriteFile creates the parent directory if needed and replaces filePath with data.
func (fs Fs) WriteFile(filePath string, data []byte) error {
	if err := fs.AppFs.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}

	f, err := fs.AppFs.Create(filePath)
	if err != nil {
		return xerrors.Errorf("unable to open a file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	return nil
}

// ReplaceFile writes data to a temporary file next to filePath and renames it
// into place. filePath is left untouched if any step fails.
func (fs Fs) ReplaceFile(filePath string, data []byte) error {
	dir := filepath.Dir(filePath)
	if err := fs.AppFs.MkdirAll(dir, os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}

	f, err := afero.TempFile(fs.AppFs, dir, "."+filepath.Base(filePath)+"-")
	if err != nil {
		return xerrors.Errorf("unable to create a temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = fs.AppFs.Remove(tmpPath)
		return xerrors.Errorf("failed to save a file: %w", err)
	}
	if err = f.Close(); err != nil {
		_ = fs.AppFs.Remove(tmpPath)
		return xerrors.Errorf("failed to close a file: %w", err)
	}
	if err = fs.AppFs.Rename(tmpPath, filePath); err != nil {
		_ = fs.AppFs.Remove(tmpPath)
		return xerrors.Errorf("unable to rename %s: %w", tmpPath, err)
	}
	return nil
}

func (fs Fs) WriteJSON(filePath string, data interface{}) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return xerrors.Errorf("failed to marshal JSON: %w", err)
	}
	return fs.WriteFile(filePath, b)
}
