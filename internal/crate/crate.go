// Package crate reads package archives: gzip-compressed tarballs with the
// package manifest embedded at <name>-<version>/Cargo.toml. Inspect is the
// only entry point; it computes the archive digest and extracts everything
// the publish pipeline needs from the manifest.
package crate

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/klauspost/compress/gzip"

	"github.com/cratedock/cratedock/internal/index"
)

var (
	// ErrUnreadableArchive means the file could not be opened or is not a
	// gzip-compressed tarball.
	ErrUnreadableArchive = errors.New("crate: unreadable archive")

	// ErrMissingManifest means no Cargo.toml was found inside the archive.
	ErrMissingManifest = errors.New("crate: missing manifest")

	// ErrMalformedManifest means the manifest exists but could not be used.
	ErrMalformedManifest = errors.New("crate: malformed manifest")
)

// Info is everything Inspect learns about an archive.
type Info struct {
	Name     string
	Version  string
	Deps     []index.Dependency
	Features map[string][]string
	Links    string
	Checksum string // sha256 hex of the full archive bytes
	Size     int64
}

// Inspect reads the archive at path, computes the SHA-256 digest of its raw
// bytes and decodes the embedded manifest. The digest is what the client
// recomputes after download, so it is always taken over the file exactly as
// stored, before any decompression.
func Inspect(path string) (*Info, error) {
	digest, size, err := digestFile(path)
	if err != nil {
		return nil, err
	}

	m, err := readManifest(path)
	if err != nil {
		return nil, err
	}

	info, err := m.toInfo()
	if err != nil {
		return nil, err
	}
	info.Checksum = digest
	info.Size = size
	return info, nil
}

func digestFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

func readManifest(path string) (*manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s", ErrMissingManifest, path)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableArchive, path, err)
		}
		if !isManifestPath(hdr.Name) {
			continue
		}

		var m manifest
		if _, err := toml.NewDecoder(tr).Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedManifest, path, err)
		}
		return &m, nil
	}
}

// isManifestPath matches the manifest at the archive's single top-level
// directory (<name>-<version>/Cargo.toml), not manifests of vendored
// subprojects deeper in the tree.
func isManifestPath(name string) bool {
	name = strings.TrimPrefix(name, "./")
	parts := strings.Split(name, "/")
	return len(parts) == 2 && parts[1] == "Cargo.toml"
}

type manifest struct {
	Package           packageSection           `toml:"package"`
	Dependencies      map[string]dependency    `toml:"dependencies"`
	DevDependencies   map[string]dependency    `toml:"dev-dependencies"`
	BuildDependencies map[string]dependency    `toml:"build-dependencies"`
	Target            map[string]targetSection `toml:"target"`
	Features          map[string][]string      `toml:"features"`
}

type packageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Links   string `toml:"links"`
}

type targetSection struct {
	Dependencies      map[string]dependency `toml:"dependencies"`
	DevDependencies   map[string]dependency `toml:"dev-dependencies"`
	BuildDependencies map[string]dependency `toml:"build-dependencies"`
}

// dependency accepts both manifest forms: a bare version requirement string
// and the detailed inline table.
type dependency struct {
	Version         string
	Optional        bool
	DefaultFeatures bool
	Features        []string
	Package         string
	Registry        string
	Path            string
}

func (d *dependency) UnmarshalTOML(v any) error {
	d.DefaultFeatures = true

	switch val := v.(type) {
	case string:
		d.Version = val
		return nil
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			d.Version = s
		}
		if b, ok := val["optional"].(bool); ok {
			d.Optional = b
		}
		if b, ok := val["default-features"].(bool); ok {
			d.DefaultFeatures = b
		}
		if list, ok := val["features"].([]any); ok {
			for _, f := range list {
				if s, ok := f.(string); ok {
					d.Features = append(d.Features, s)
				}
			}
		}
		if s, ok := val["package"].(string); ok {
			d.Package = s
		}
		if s, ok := val["registry"].(string); ok {
			d.Registry = s
		}
		if s, ok := val["path"].(string); ok {
			d.Path = s
		}
		return nil
	default:
		return fmt.Errorf("dependency must be a version string or a table, got %T", v)
	}
}

func (m *manifest) toInfo() (*Info, error) {
	if m.Package.Name == "" {
		return nil, fmt.Errorf("%w: package.name is required", ErrMalformedManifest)
	}
	if m.Package.Version == "" {
		return nil, fmt.Errorf("%w: package.version is required", ErrMalformedManifest)
	}
	if _, err := semver.StrictNewVersion(m.Package.Version); err != nil {
		return nil, fmt.Errorf("%w: package.version %q: %v", ErrMalformedManifest, m.Package.Version, err)
	}

	var deps []index.Dependency
	deps = appendDeps(deps, m.Dependencies, "normal", "")
	deps = appendDeps(deps, m.DevDependencies, "dev", "")
	deps = appendDeps(deps, m.BuildDependencies, "build", "")
	for target, section := range m.Target {
		deps = appendDeps(deps, section.Dependencies, "normal", target)
		deps = appendDeps(deps, section.DevDependencies, "dev", target)
		deps = appendDeps(deps, section.BuildDependencies, "build", target)
	}

	// Manifest tables are unordered maps; sort so the index entry comes out
	// the same no matter the decode order.
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		if deps[i].Kind != deps[j].Kind {
			return deps[i].Kind < deps[j].Kind
		}
		return deps[i].Target < deps[j].Target
	})
	if deps == nil {
		deps = []index.Dependency{}
	}

	features := m.Features
	if features == nil {
		features = map[string][]string{}
	}

	return &Info{
		Name:     m.Package.Name,
		Version:  m.Package.Version,
		Deps:     deps,
		Features: features,
		Links:    m.Package.Links,
	}, nil
}

func appendDeps(out []index.Dependency, in map[string]dependency, kind, target string) []index.Dependency {
	for name, d := range in {
		// Path-only dependencies carry no version requirement; the archive
		// producer strips them at package time, so one surviving here cannot
		// be resolved by any downstream client.
		if d.Version == "" {
			continue
		}
		features := d.Features
		if features == nil {
			features = []string{}
		}
		out = append(out, index.Dependency{
			Name:            name,
			Req:             d.Version,
			Features:        features,
			Optional:        d.Optional,
			DefaultFeatures: d.DefaultFeatures,
			Target:          target,
			Kind:            kind,
			Registry:        d.Registry,
			Package:         d.Package,
		})
	}
	return out
}
