// Package artifacts persists fitted forecast models as snappy-compressed
// gob files keyed by uuid.
package artifacts

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/panelcast/panelcast/internal/engine"
	"github.com/panelcast/panelcast/internal/regress"
)

func init() {
	// Concrete model types crossing the gob interface boundary.
	gob.Register(&regress.LinearModel{})
	gob.Register(&regress.StandardizedModel{})
	gob.Register(&regress.LogisticModel{})
}

const fileExt = ".model"

// ErrNotFound reports a model id with no stored artifact.
var ErrNotFound = fmt.Errorf("model not found")

// Info describes a stored artifact.
type Info struct {
	ID        string    `json:"id"`
	Strategy  string    `json:"strategy"`
	Horizon   int       `json:"horizon"`
	Entities  int       `json:"entities"`
	Censored  bool      `json:"censored"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// artifact is the serialized envelope.
type artifact struct {
	Info  Info
	Model *engine.Model
}

// Store is a directory-backed model store. Writes go through a temp file
// and rename; a mutex serializes multi-step operations on the same id.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore opens (creating if needed) a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save serializes the model under a fresh uuid and returns its Info.
func (s *Store) Save(m *engine.Model) (Info, error) {
	info := Info{
		ID:        uuid.New().String(),
		Strategy:  m.Strategy.String(),
		Horizon:   m.Horizon,
		Entities:  len(m.Entities),
		Censored:  m.Censored,
		CreatedAt: time.Now().UTC(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&artifact{Info: info, Model: m}); err != nil {
		return Info{}, fmt.Errorf("encoding model: %w", err)
	}
	compressed := snappy.Encode(nil, buf.Bytes())
	info.SizeBytes = int64(len(compressed))

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(info.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return Info{}, fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return Info{}, fmt.Errorf("publishing artifact: %w", err)
	}
	return info, nil
}

// Load reads a stored model by id.
func (s *Store) Load(id string) (*engine.Model, Info, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, Info{}, fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Info{}, fmt.Errorf("model %q: %w", id, ErrNotFound)
		}
		return nil, Info{}, fmt.Errorf("reading artifact: %w", err)
	}

	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, Info{}, fmt.Errorf("decompressing artifact %q: %w", id, err)
	}

	var art artifact
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&art); err != nil {
		return nil, Info{}, fmt.Errorf("decoding artifact %q: %w", id, err)
	}
	art.Info.SizeBytes = int64(len(data))
	return art.Model, art.Info, nil
}

// Describe returns a stored model's Info without keeping the model.
func (s *Store) Describe(id string) (Info, error) {
	_, info, err := s.Load(id)
	return info, err
}

// List returns Info for every stored artifact, newest first.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), fileExt)
		info, err := s.Describe(id)
		if err != nil {
			continue // skip unreadable artifacts
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

// Delete removes a stored artifact.
func (s *Store) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return fmt.Errorf("model %q: %w", id, ErrNotFound)
	}
	return err
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}
