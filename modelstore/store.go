// Package modelstore is the read-only (from this repository's point of
// view) machine-model collaborator: a drive table and a handful of
// configured directory categories, guarded by a reader-writer lock so that
// pathresolver can consult it without racing a concurrent
// configuration update.
//
// The real machine model lives in the control server proper; this package
// gives SPEC_FULL's "model store (read-only collaborator, in scope only as
// an interface)" a concrete, exercised body, persisted to a YAML file with
// the teacher's atomic renameio write pattern (see cmd/poc/main.go's
// streamStore.save) so a configured drive table survives a restart.
package modelstore

import (
	"io/ioutil"
	"sync"

	"github.com/google/renameio"
	yaml "gopkg.in/yaml.v2"
)

// DirectoryCategory names one of the fixed directory categories a virtual
// relative path resolves against.
type DirectoryCategory string

// Directory category values.
const (
	CategoryFilaments DirectoryCategory = "Filaments"
	CategoryGCodes    DirectoryCategory = "GCodes"
	CategoryMacros    DirectoryCategory = "Macros"
	CategorySystem    DirectoryCategory = "System"
	CategoryWWW       DirectoryCategory = "WWW"
)

// StorageInfo describes one numbered drive (drive 0, the base directory, is
// not listed here; it's configured separately as BaseDirectory).
type StorageInfo struct {
	Drive int    `yaml:"drive"`
	Path  string `yaml:"path"`
}

// View is a point-in-time, detached snapshot of the model: safe to read
// freely, but must not be retained past the ReadScope/WriteScope call that
// produced it (per the project's scoped-lock discipline).
type View struct {
	BaseDirectory string
	storages      []StorageInfo
	directories   map[DirectoryCategory]string
}

// Storages returns a copy of the drive table; mutating the result has no
// effect on the store.
func (v View) Storages() []StorageInfo {
	out := make([]StorageInfo, len(v.storages))
	copy(out, v.storages)
	return out
}

// Directory returns the configured directory for category, or "" if unset.
// Per §6, this is itself possibly a virtual `<n>:/…` path, resolved
// recursively by the caller (pathresolver), not by this package.
func (v View) Directory(category DirectoryCategory) string {
	return v.directories[category]
}

// SetDirectory updates category's configured directory. Only meaningful on
// the *View passed into a WriteScope closure.
func (v *View) SetDirectory(category DirectoryCategory, path string) {
	if v.directories == nil {
		v.directories = make(map[DirectoryCategory]string, 8)
	}
	v.directories[category] = path
}

// SetStorages replaces the drive table. Only meaningful on the *View passed
// into a WriteScope closure.
func (v *View) SetStorages(storages []StorageInfo) {
	v.storages = append(v.storages[:0:0], storages...)
}

// Store is the machine-model's drive table and directory categories,
// guarded by a sync.RWMutex per §5. The zero Store is valid and empty;
// use Load to populate one from a directories.yaml file.
type Store struct {
	mu   sync.RWMutex
	path string // backing file for persistence; "" disables persistence

	baseDirectory string
	storages      []StorageInfo
	directories   map[DirectoryCategory]string
}

// New returns a Store with no backing file (WriteScope never persists).
func New(baseDirectory string) *Store {
	return &Store{
		baseDirectory: baseDirectory,
		directories:   make(map[DirectoryCategory]string, 8),
	}
}

// storeFile is the on-disk YAML shape persisted by WriteScope and read by
// Load.
type storeFile struct {
	BaseDirectory string                       `yaml:"base_directory"`
	Storages      []StorageInfo                `yaml:"storages"`
	Directories   map[DirectoryCategory]string `yaml:"directories"`
}

// Load reads a Store from a directories.yaml-style file at path. Every
// subsequent WriteScope call persists back to the same path via an atomic
// renameio replace.
func Load(path string) (*Store, error) {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sf storeFile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, err
	}
	if sf.Directories == nil {
		sf.Directories = make(map[DirectoryCategory]string, 8)
	}
	return &Store{
		path:          path,
		baseDirectory: sf.BaseDirectory,
		storages:      sf.Storages,
		directories:   sf.Directories,
	}, nil
}

// ReadScope runs fn with a read lock held, passing it a detached snapshot
// of the model. The lock is released (via defer, covering panics too) the
// moment fn returns; fn must not stash the View it's given anywhere that
// outlives the call.
func (s *Store) ReadScope(fn func(View)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(View{
		BaseDirectory: s.baseDirectory,
		storages:      append([]StorageInfo(nil), s.storages...),
		directories:   copyDirectories(s.directories),
	})
}

// WriteScope runs fn with the exclusive lock held, passing it a mutable
// snapshot seeded from the current model. If fn returns nil, the snapshot
// replaces the store's state and (when a backing path was given to Load) is
// persisted to disk atomically before WriteScope returns. If fn returns an
// error, or the persist fails, the store's in-memory state is left
// unchanged.
func (s *Store) WriteScope(fn func(*View) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &View{
		BaseDirectory: s.baseDirectory,
		storages:      append([]StorageInfo(nil), s.storages...),
		directories:   copyDirectories(s.directories),
	}
	if err := fn(v); err != nil {
		return err
	}

	if s.path != "" {
		if err := persist(s.path, v); err != nil {
			return err
		}
	}

	s.baseDirectory = v.BaseDirectory
	s.storages = v.storages
	s.directories = v.directories
	return nil
}

func copyDirectories(in map[DirectoryCategory]string) map[DirectoryCategory]string {
	out := make(map[DirectoryCategory]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// persist writes v to path atomically: a temp file in the same directory,
// fsynced, then renamed over path. Grounded on the teacher's
// streamStore.save (cmd/poc/main.go), adapted from Markdown content to a
// YAML-encoded struct.
func persist(path string, v *View) (rerr error) {
	b, err := yaml.Marshal(storeFile{
		BaseDirectory: v.BaseDirectory,
		Storages:      v.Storages(),
		Directories:   v.directories,
	})
	if err != nil {
		return err
	}

	pf, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer func() {
		if rerr == nil {
			rerr = pf.CloseAtomicallyReplace()
		}
		_ = pf.Cleanup()
	}()

	if _, err := pf.Write(b); err != nil {
		return err
	}
	return nil
}
