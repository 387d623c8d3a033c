package cratedock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cratedock/cratedock/internal/index"
	"github.com/cratedock/cratedock/internal/lockfile"
)

// cratesDir holds the published archives, one file per (name, version) at
// crates/<name>/<version>/download — the exact relative path the download
// template points clients at.
const cratesDir = "crates"

// Entry is one published version's index record.
// Re-exported from internal/index for convenience.
type Entry = index.Entry

// Dependency is one declared dependency of an Entry.
// Re-exported from internal/index for convenience.
type Dependency = index.Dependency

// Registry is one self-hosted package registry: a root directory holding the
// config document, the sharded index tree and the content storage. It is a
// plain value; multiple registries can be open in one process.
type Registry struct {
	root        string
	cfg         Config
	lockTimeout time.Duration
}

// Initialize creates a registry at root, writing the config document. The
// directory may not already contain files unless WithForce is given; with
// force the config is replaced wholesale, never merged.
func Initialize(root, baseURL string, opts ...InitOption) (*Registry, error) {
	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}

	cfg, err := newConfig(baseURL, options)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create registry root: %w", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read registry root: %w", err)
	}
	if len(entries) > 0 && !options.force {
		return nil, fmt.Errorf("%w: %s", ErrPathNotEmpty, root)
	}

	if err := writeConfig(filepath.Join(root, ConfigFile), cfg); err != nil {
		return nil, err
	}

	return &Registry{root: root, cfg: cfg, lockTimeout: lockfile.DefaultTimeout}, nil
}

// Open loads an existing registry from root. ErrNotInitialized is returned
// when no config document exists there.
func Open(root string, opts ...OpenOption) (*Registry, error) {
	cfg, err := readConfig(filepath.Join(root, ConfigFile))
	if err != nil {
		return nil, err
	}
	r := &Registry{root: root, cfg: cfg, lockTimeout: lockfile.DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Root returns the registry root directory.
func (r *Registry) Root() string { return r.root }

// Config returns the registry's config document.
func (r *Registry) Config() Config { return r.cfg }

// IndexPath returns the absolute path of the index file for a package name.
func (r *Registry) IndexPath(name string) string {
	return filepath.Join(r.root, filepath.FromSlash(index.Path(name)))
}

// BlobPath returns the absolute path of the stored archive for a version.
func (r *Registry) BlobPath(name, version string) string {
	return filepath.Join(r.root, cratesDir, name, version, "download")
}

// lockIndex takes the per-package publish lock. The lock file sits next to
// the index file, so unrelated packages never contend.
func (r *Registry) lockIndex(name string) (*lockfile.Lock, error) {
	return lockfile.Acquire(r.IndexPath(name)+".lock", r.lockTimeout)
}
