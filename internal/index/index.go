// Package index implements the sparse-index metadata files of a registry:
// the sharded path rule that maps a package name to its index file, the
// one-JSON-object-per-line entry format, and the atomic rewrite discipline
// that keeps index files readable during concurrent publishes.
package index

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Entry is one published version of a package, serialized as a single JSON
// line in the package's index file. Field names and order follow the sparse
// registry wire format; new fields must be optional so older readers keep
// working.
type Entry struct {
	Name     string              `json:"name"`
	Version  string              `json:"vers"`
	Deps     []Dependency        `json:"deps"`
	Checksum string              `json:"cksum"`
	Features map[string][]string `json:"features"`
	Yanked   bool                `json:"yanked"`
	Links    string              `json:"links,omitempty"`
}

// Dependency is one declared dependency of an Entry.
type Dependency struct {
	Name            string   `json:"name"`
	Req             string   `json:"req"`
	Features        []string `json:"features"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Target          string   `json:"target,omitempty"`
	Kind            string   `json:"kind"`
	Registry        string   `json:"registry,omitempty"`
	Package         string   `json:"package,omitempty"`
}

// Path returns the index file path for a package name, relative to the
// registry root. The sharding rule is fixed by the client protocol:
//
//	1-letter names    1/<name>
//	2-letter names    2/<name>
//	3-letter names    3/<first>/<name>
//	longer names      <name[0:2]>/<name[2:4]>/<name>
//
// The name is lowercased first; the client derives the same path on its side,
// so any deviation here breaks resolution.
func Path(name string) string {
	name = strings.ToLower(name)
	switch len(name) {
	case 0:
		return ""
	case 1:
		return path.Join("1", name)
	case 2:
		return path.Join("2", name)
	case 3:
		return path.Join("3", name[:1], name)
	default:
		return path.Join(name[:2], name[2:4], name)
	}
}

// ReadFile parses the index file at p. A missing file is not an error: the
// package simply has no published versions yet.
func ReadFile(p string) ([]Entry, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read index file: %w", err)
	}
	return Parse(data)
}

// Parse decodes newline-delimited entries. Blank lines are skipped.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("parse index line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan index file: %w", err)
	}
	return entries, nil
}

// Marshal renders entries in file form: one compact JSON object per line,
// trailing newline included, publish order preserved.
func Marshal(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode entry %s %s: %w", e.Name, e.Version, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// WriteFile replaces the index file at p atomically: the new content is
// written to a temp file in the same directory and renamed into place, so a
// concurrent reader sees either the old or the new file, never a torn one.
func WriteFile(p string, entries []Entry) error {
	data, err := Marshal(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	// Dot-prefixed so directory walkers and static servers skip it.
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp index file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp index file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp index file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}
