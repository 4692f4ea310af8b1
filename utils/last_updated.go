package utils

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

const (
	lastUpdatedFile = "last_updated.json"
)

// LastUpdated records when each feed target was last refreshed.
type LastUpdated map[string]time.Time

func GetLastUpdatedDate(fs Fs, dir, target string) (time.Time, error) {
	lastUpdated, err := getLastUpdatedDate(fs, dir)
	if err != nil {
		return time.Time{}, err
	}

	t, ok := lastUpdated[target]
	if !ok {
		return time.Unix(0, 0), nil
	}

	return t, nil
}

func getLastUpdatedDate(fs Fs, dir string) (LastUpdated, error) {
	lastUpdated := LastUpdated{}
	filePath := filepath.Join(dir, lastUpdatedFile)
	if ok, err := afero.Exists(fs.AppFs, filePath); err != nil {
		return nil, xerrors.Errorf("unable to stat %s: %w", filePath, err)
	} else if !ok {
		return lastUpdated, nil
	}

	f, err := fs.AppFs.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err = json.NewDecoder(f).Decode(&lastUpdated); err != nil {
		return nil, xerrors.Errorf("failed to decode %s: %w", filePath, err)
	}

	return lastUpdated, nil
}

func SetLastUpdatedDate(fs Fs, dir, target string, lastUpdatedDate time.Time) error {
	lastUpdated, err := getLastUpdatedDate(fs, dir)
	if err != nil {
		return xerrors.Errorf("failed to get last updated date: %w", err)
	}
	lastUpdated[target] = lastUpdatedDate

	if err = fs.WriteJSON(filepath.Join(dir, lastUpdatedFile), lastUpdated); err != nil {
		return xerrors.Errorf("failed to write last updated date: %w", err)
	}

	return nil
}
