package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ernestoongaro/omnicles/internal/domain"
)

// FileStore implements domain.HistoryStore using a JSON artifact on disk.
// The artifact is carried between CI runs by external artifact storage.
type FileStore struct{}

func New() *FileStore {
	return &FileStore{}
}

// Load reads the snapshot at path. A missing artifact is not an error: the
// first run on a repository starts from an empty baseline.
func (s *FileStore) Load(path string) (*domain.HistorySnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snap domain.HistorySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save rewrites the artifact in full.
func (s *FileStore) Save(path string, snap domain.HistorySnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}
