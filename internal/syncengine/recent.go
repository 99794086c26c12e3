package syncengine

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// maxRecents bounds the quick-switch list of recently opened colocs.
const maxRecents = 5

// RecentColoc is one quick-switch entry.
type RecentColoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Code  string `json:"code"`
}

// Recents is the most-recently-used list of colocs a client has opened,
// persisted as a JSON file so it survives restarts.
type Recents struct {
	mu   sync.Mutex
	path string
	list []RecentColoc
}

// LoadRecents reads the list from path. A missing file is an empty list; a
// corrupt file is an error so the caller can decide whether to start over.
func LoadRecents(path string) (*Recents, error) {
	r := &Recents{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &r.list); err != nil {
		return nil, err
	}
	if len(r.list) > maxRecents {
		r.list = r.list[:maxRecents]
	}
	return r, nil
}

// Touch moves (or inserts) the coloc to the front of the list, dropping the
// oldest entry past the cap, and persists the result.
func (r *Recents) Touch(c RecentColoc) error {
	if c.ID == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]RecentColoc, 0, maxRecents)
	next = append(next, c)
	for _, existing := range r.list {
		if existing.ID == c.ID {
			continue
		}
		if len(next) == maxRecents {
			break
		}
		next = append(next, existing)
	}
	r.list = next
	return r.saveLocked()
}

// Remove drops a coloc from the list and persists the result.
func (r *Recents) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.list[:0]
	for _, existing := range r.list {
		if existing.ID != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(r.list) {
		return nil
	}
	r.list = kept
	return r.saveLocked()
}

// List returns the entries, most recent first.
func (r *Recents) List() []RecentColoc {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecentColoc, len(r.list))
	copy(out, r.list)
	return out
}

// saveLocked writes atomically: full temp file then rename, so a crash never
// leaves a truncated list behind.
func (r *Recents) saveLocked() error {
	raw, err := json.MarshalIndent(r.list, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".recents-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}
