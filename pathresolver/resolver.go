// Package pathresolver converts between RepRapFirmware/FatFs virtual paths
// (drive-qualified "<n>:/rest", absolute "/rest", or directory-category
// relative "rest") and real filesystem paths, consulting modelstore for the
// numbered-drive table and per-category directories.
package pathresolver

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/duet3d/gcode/modelstore"
)

// Resolver resolves virtual paths against a *modelstore.Store.
type Resolver struct {
	store *modelstore.Store
}

// New returns a Resolver backed by store.
func New(store *modelstore.Store) *Resolver {
	return &Resolver{store: store}
}

// ToPhysical resolves a virtual path to a real filesystem path. category is
// only consulted for a bare relative path (no drive prefix, no leading
// slash); it is ignored otherwise.
func (r *Resolver) ToPhysical(virtual string, category modelstore.DirectoryCategory) (string, error) {
	if drive, rest, ok := splitDriveQualified(virtual); ok {
		return r.driveToPhysical(drive, rest)
	}
	if strings.HasPrefix(virtual, "/") {
		var base string
		r.store.ReadScope(func(v modelstore.View) { base = v.BaseDirectory })
		// virtual is already a physical path under base (e.g. a prior
		// ToPhysical result fed back in): leave it alone rather than
		// prefixing base a second time, so ToPhysical is idempotent on
		// already-physical absolute paths under the base directory.
		if base != "" && (virtual == base || strings.HasPrefix(virtual, base+"/")) {
			return virtual, nil
		}
		return filepath.Join(base, strings.TrimPrefix(virtual, "/")), nil
	}
	return r.relativeToPhysical(virtual, category, 0)
}

// relativeToPhysical resolves a bare relative path against category's
// configured directory, which may itself be a virtual path — resolved
// recursively, but only once (depth guards against a misconfigured category
// pointing at itself).
func (r *Resolver) relativeToPhysical(virtual string, category modelstore.DirectoryCategory, depth int) (string, error) {
	var dir string
	r.store.ReadScope(func(v modelstore.View) { dir = v.Directory(category) })

	if depth == 0 {
		if drive, rest, ok := splitDriveQualified(dir); ok {
			base, err := r.driveToPhysical(drive, rest)
			if err != nil {
				return "", err
			}
			return filepath.Join(base, virtual), nil
		}
	}
	return filepath.Join(dir, virtual), nil
}

func (r *Resolver) driveToPhysical(drive int, rest string) (string, error) {
	if drive == 0 {
		var base string
		r.store.ReadScope(func(v modelstore.View) { base = v.BaseDirectory })
		return filepath.Join(base, rest), nil
	}

	var (
		path string
		ok   bool
	)
	r.store.ReadScope(func(v modelstore.View) {
		for _, s := range v.Storages() {
			if s.Drive == drive {
				path, ok = s.Path, true
				return
			}
		}
	})
	if !ok {
		return "", &InvalidDrive{Drive: drive}
	}
	return filepath.Join(path, rest), nil
}

// ToVirtual resolves a real filesystem path back to a virtual path. If
// physical lives under the base directory, it's returned as "0:/<rel>"; if
// it lives under a configured storage's root, it's returned as "<n>:/<rel>"
// for that storage's drive number (this is what makes ToVirtual(ToPhysical
// (v)) == v round-trip for a drive-qualified v, per the testable property);
// otherwise it's returned as "0:/" prefixed onto the path verbatim.
func (r *Resolver) ToVirtual(physical string) string {
	var (
		base     string
		storages []modelstore.StorageInfo
	)
	r.store.ReadScope(func(v modelstore.View) {
		base = v.BaseDirectory
		storages = v.Storages()
	})

	for _, s := range storages {
		if rel, ok := relUnder(s.Path, physical); ok {
			return strconv.Itoa(s.Drive) + ":/" + rel
		}
	}
	if rel, ok := relUnder(base, physical); ok {
		return "0:/" + rel
	}
	return "0:/" + physical
}

func relUnder(root, path string) (string, bool) {
	if root == "" {
		return "", false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// splitDriveQualified splits a "<n>:/rest" or "<n>:rest" virtual path into
// its drive number and remainder.
func splitDriveQualified(virtual string) (drive int, rest string, ok bool) {
	i := strings.IndexByte(virtual, ':')
	if i <= 0 {
		return 0, "", false
	}
	for j := 0; j < i; j++ {
		if virtual[j] < '0' || virtual[j] > '9' {
			return 0, "", false
		}
	}
	n, err := strconv.Atoi(virtual[:i])
	if err != nil {
		return 0, "", false
	}
	rest = strings.TrimPrefix(virtual[i+1:], "/")
	return n, rest, true
}
