package cratedock

import (
	"github.com/cratedock/cratedock/internal/index"
)

// Yank sets or clears the yanked flag on one published version. The flag is
// the only index field ever rewritten in place; the rest of the entry and the
// stored archive are untouched, so the version stays fetchable for builds
// that already depend on it.
func (r *Registry) Yank(name, version string, yanked bool) error {
	lock, err := r.lockIndex(name)
	if err != nil {
		return err
	}
	defer lock.Release()

	indexPath := r.IndexPath(name)
	entries, err := index.ReadFile(indexPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return &NotFoundError{Name: name}
	}

	pos := findVersion(entries, version)
	if pos < 0 {
		return &NotFoundError{Name: name, Version: version}
	}
	if entries[pos].Yanked == yanked {
		return nil
	}

	entries[pos].Yanked = yanked
	return index.WriteFile(indexPath, entries)
}
