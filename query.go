package cratedock

import (
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/cratedock/cratedock/internal/index"
)

// Release is one row of the listing: a published (name, version) pair.
type Release struct {
	Name    string
	Version string
	Yanked  bool
}

// List yields every published release by walking the index tree, one Release
// per index line, in directory-then-append order. Each call re-reads current
// on-disk state; nothing is cached. A non-nil error for a release means its
// index file could not be read; the walk continues past it.
func (r *Registry) List() iter.Seq2[Release, error] {
	return func(yield func(Release, error) bool) {
		walkErr := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == r.root {
					return nil
				}
				// Content storage is not part of the index tree.
				if d.Name() == cratesDir && filepath.Dir(path) == r.root {
					return filepath.SkipDir
				}
				return nil
			}
			if !r.isIndexFile(path, d.Name()) {
				return nil
			}

			entries, err := index.ReadFile(path)
			if err != nil {
				if !yield(Release{}, err) {
					return filepath.SkipAll
				}
				return nil
			}
			for _, e := range entries {
				if !yield(Release{Name: e.Name, Version: e.Version, Yanked: e.Yanked}, nil) {
					return filepath.SkipAll
				}
			}
			return nil
		})
		if walkErr != nil {
			yield(Release{}, walkErr)
		}
	}
}

// Entries returns the index entries for one package in publish order.
func (r *Registry) Entries(name string) ([]Entry, error) {
	entries, err := index.ReadFile(r.IndexPath(name))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &NotFoundError{Name: name}
	}
	return entries, nil
}

// isIndexFile filters the walk down to actual index files: a file counts only
// when it sits exactly where the sharding rule puts its own name. That one
// check drops the config document, lock files, temp files and any stray file
// someone leaves in the tree.
func (r *Registry) isIndexFile(path, name string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}
	return filepath.ToSlash(rel) == index.Path(name)
}
