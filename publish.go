package cratedock

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/cratedock/cratedock/internal/crate"
	"github.com/cratedock/cratedock/internal/index"
)

// Publish adds the archive at path to the registry: it inspects the embedded
// manifest, appends an entry to the package's index file and copies the
// archive into content storage.
//
// Publishing an existing, non-yanked version fails with
// DuplicateVersionError. Publishing over a yanked version is a republish: the
// new entry replaces the yanked one in place, clearing the flag.
//
// The index update and the archive copy are two separate writes. If the copy
// fails after the index write, the entry is already visible to readers and is
// not rolled back; the error is a PartialPublishError and Verify reports the
// missing archive until it is repaired.
func (r *Registry) Publish(path string) (*Entry, error) {
	info, err := crate.Inspect(path)
	if err != nil {
		return nil, err
	}

	lock, err := r.lockIndex(info.Name)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	indexPath := r.IndexPath(info.Name)
	entries, err := index.ReadFile(indexPath)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		Name:     info.Name,
		Version:  info.Version,
		Deps:     info.Deps,
		Checksum: info.Checksum,
		Features: info.Features,
		Links:    info.Links,
	}

	pos := findVersion(entries, info.Version)
	if pos >= 0 {
		if !entries[pos].Yanked {
			return nil, &DuplicateVersionError{Name: info.Name, Version: info.Version}
		}
		entries[pos] = entry
	} else {
		entries = append(entries, entry)
	}

	if err := index.WriteFile(indexPath, entries); err != nil {
		return nil, err
	}

	if err := r.storeBlob(info.Name, info.Version, path); err != nil {
		return nil, &PartialPublishError{Name: info.Name, Version: info.Version, Err: err}
	}

	return &entry, nil
}

// findVersion locates version in entries, comparing canonical semver values
// so "1.0.0" and "1.0.0+meta" don't create a second entry for the same
// release.
func findVersion(entries []Entry, version string) int {
	want, err := semver.StrictNewVersion(version)
	if err != nil {
		// Inspect validated the incoming version; entries written by older
		// tools fall back to string comparison.
		for i, e := range entries {
			if e.Version == version {
				return i
			}
		}
		return -1
	}
	for i, e := range entries {
		if have, err := semver.StrictNewVersion(e.Version); err == nil {
			if have.Equal(want) {
				return i
			}
			continue
		}
		if e.Version == version {
			return i
		}
	}
	return -1
}

// storeBlob copies the archive to its content-addressed path, temp file then
// rename so a concurrent download never sees a partial archive.
func (r *Registry) storeBlob(name, version, archivePath string) error {
	dst := r.BlobPath(name, version)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	src, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod blob: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename blob: %w", err)
	}
	return nil
}
