// Package projectconfig persists per-project settings (sort strategies,
// defaults and task templates) in a YAML file.
package projectconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the config directory.
const FileName = "config.yaml"

// ErrMalformed marks a config file that is not valid YAML.
var ErrMalformed = errors.New("malformed config file")

// Config is one project's free-form configuration.
type Config = map[string]any

type document struct {
	Projects map[string]Config `yaml:"projects"`
}

// Entry summarizes one configured project.
type Entry struct {
	ProjectID int64  `json:"project_id"`
	Name      string `json:"name"`
}

// Store reads and writes the config file. Every operation re-reads the file
// so external edits are picked up.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the config file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

func (s *Store) load() (document, error) {
	doc := document{Projects: map[string]Config{}}
	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Projects == nil {
		doc.Projects = map[string]Config{}
	}
	return doc, nil
}

// save writes doc to a temp file in the same directory and renames it over
// the config file.
func (s *Store) save(doc document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpName = ""
	return nil
}

func key(projectID int64) string {
	return strconv.FormatInt(projectID, 10)
}

// Get returns a project's config, or nil when none exists.
func (s *Store) Get(projectID int64) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Projects[key(projectID)], nil
}

// Set replaces a project's config and reports whether it was new.
func (s *Store) Set(projectID int64, cfg Config) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	if cfg == nil {
		cfg = Config{}
	}
	_, exists := doc.Projects[key(projectID)]
	doc.Projects[key(projectID)] = cfg
	if err := s.save(doc); err != nil {
		return false, err
	}
	return !exists, nil
}

// Update deep-merges updates into a project's config and returns the result.
func (s *Store) Update(projectID int64, updates Config) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	merged := DeepMerge(doc.Projects[key(projectID)], updates)
	doc.Projects[key(projectID)] = merged
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes a project's config and reports whether it existed.
func (s *Store) Delete(projectID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return false, err
	}
	if _, ok := doc.Projects[key(projectID)]; !ok {
		return false, nil
	}
	delete(doc.Projects, key(projectID))
	if err := s.save(doc); err != nil {
		return false, err
	}
	return true, nil
}

// List returns every configured project ordered by id. Entries whose key is
// not numeric are skipped.
func (s *Store) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(doc.Projects))
	for rawID, cfg := range doc.Projects {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			continue
		}
		name, _ := cfg["name"].(string)
		if name == "" {
			name = "Project " + rawID
		}
		entries = append(entries, Entry{ProjectID: id, Name: name})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.ProjectID < b.ProjectID:
			return -1
		case a.ProjectID > b.ProjectID:
			return 1
		}
		return 0
	})
	return entries, nil
}

// Settings returns the typed view of a project's config, or nil when the
// project has none.
func (s *Store) Settings(projectID int64) (*Settings, error) {
	cfg, err := s.Get(projectID)
	if err != nil || cfg == nil {
		return nil, err
	}
	return Decode(cfg)
}

// DeepMerge returns base with updates applied. Nested maps merge key by key;
// any other value replaces. Neither argument is modified.
func DeepMerge(base, updates Config) Config {
	out := make(Config, len(base)+len(updates))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range updates {
		next, nextIsMap := v.(map[string]any)
		prev, prevIsMap := out[k].(map[string]any)
		if nextIsMap && prevIsMap {
			out[k] = DeepMerge(prev, next)
			continue
		}
		out[k] = v
	}
	return out
}
