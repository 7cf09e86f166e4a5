package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/suntrap/buildboard/kernel/loader"
	"gopkg.in/yaml.v2"
)

// FileStore serves a fixtures file. Reads and writes go to an in-memory copy;
// Save writes that copy back to the file.
type FileStore struct {
	*MemoryStore
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{Path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards local changes and re-reads the file. It must not race
// with readers.
func (s *FileStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := loader.LoadFixtures(s.Path)
	if err != nil {
		return err
	}
	s.MemoryStore = NewMemoryStoreFrom(f)
	return nil
}

func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.MemoryStore.Fixtures()
	sort.Slice(f.ServerDetails, func(i, j int) bool { return f.ServerDetails[i].Hostname < f.ServerDetails[j].Hostname })

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		data, err = json.MarshalIndent(f, "", "  ")
	} else {
		data, err = yaml.Marshal(f)
	}
	if err != nil {
		return errors.Wrap(err, "failed to marshal fixtures")
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write fixtures")
	}
	return nil
}

// Open returns a FileStore when path is set, otherwise the built-in data set.
func Open(path string) (OperationStore, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	return NewFileStore(path)
}

var _ OperationStore = (*MemoryStore)(nil)
var _ OperationStore = (*FileStore)(nil)
