package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a scene persistence backend.
type Store interface {
	Load() (Document, error)
	Save(Document) error
}

// FileStore keeps the scene in a single JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (Document, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return Document{}, err
	}
	return Decode(data)
}

func (f *FileStore) Save(d Document) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	// Write-then-rename so a crash mid-save never leaves a truncated scene.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// LoadOrDefault loads from the store, falling back to the default document on
// any error. The error is returned alongside so the caller can log it.
func LoadOrDefault(s Store) (Document, error) {
	d, err := s.Load()
	if err != nil {
		return DefaultDocument(), err
	}
	return d, nil
}

// Fallback chains a primary store with a backup. Loads prefer the primary;
// saves go to the primary and land in the backup when the primary fails, so a
// dead remote never loses the user's scene.
type Fallback struct {
	Primary Store
	Backup  Store
}

func (f Fallback) Load() (Document, error) {
	d, err := f.Primary.Load()
	if err == nil {
		return d, nil
	}
	bd, berr := f.Backup.Load()
	if berr != nil {
		return Document{}, errors.Join(err, berr)
	}
	return bd, nil
}

func (f Fallback) Save(d Document) error {
	err := f.Primary.Save(d)
	if err == nil {
		return nil
	}
	if berr := f.Backup.Save(d); berr != nil {
		return errors.Join(err, berr)
	}
	return fmt.Errorf("primary store failed, saved to backup: %w", err)
}
