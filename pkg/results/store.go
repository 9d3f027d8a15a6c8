package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Store is a JSON file of records keyed by Key. Every Put reads the
// file, replaces one key and writes the file back, so records written
// by other runs are preserved. A Store serializes its own writers;
// separate processes must not share a file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Put stores r under key.
func (s *Store) Put(key string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return errors.Wrapf(err, "encoding record %s", key)
	}
	data[key] = raw
	return s.write(data)
}

// Load returns every record in the store.
func (s *Store) Load() (map[string]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(data))
	for key, raw := range data {
		var r Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, errors.Wrapf(err, "%s: record %s", s.path, key)
		}
		out[key] = r
	}
	return out, nil
}

// Keys returns the stored keys in order.
func (s *Store) Keys() ([]string, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading result store")
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrapf(err, "%s", s.path)
	}
	return data, nil
}

func (s *Store) write(data map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "creating result directory")
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding result store")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "writing result store")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(b, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing result store")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "writing result store")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing result store")
}
