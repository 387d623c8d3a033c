package cratedock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/sourcegraph/conc/pool"

	"github.com/cratedock/cratedock/internal/index"
)

// Problem kinds reported by Verify.
const (
	ProblemMissingArchive   = "missing-archive"
	ProblemChecksumMismatch = "checksum-mismatch"
)

// Problem is one index entry whose content storage does not match.
type Problem struct {
	Kind    string
	Name    string
	Version string
	Path    string
	Detail  string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s: %s (%s)", p.Name, p.Version, p.Kind, p.Detail)
}

// verifyConcurrency bounds the parallel digest computations.
const verifyConcurrency = 8

// Verify checks every index entry against content storage: the archive must
// exist and its SHA-256 digest must match the recorded checksum. A missing
// archive is the footprint of an interrupted publish; a mismatch means
// corruption. Verify never repairs anything, it only reports.
func (r *Registry) Verify(ctx context.Context) ([]Problem, error) {
	seen := map[string]bool{}
	var names []string
	for release, err := range r.List() {
		if err != nil {
			return nil, err
		}
		if !seen[release.Name] {
			seen[release.Name] = true
			names = append(names, release.Name)
		}
	}

	var all []index.Entry
	for _, name := range names {
		entries, err := index.ReadFile(r.IndexPath(name))
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}

	p := pool.NewWithResults[*Problem]().WithContext(ctx).WithMaxGoroutines(verifyConcurrency)
	for _, e := range all {
		p.Go(func(ctx context.Context) (*Problem, error) {
			return r.checkEntry(e), nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var problems []Problem
	for _, res := range results {
		if res != nil {
			problems = append(problems, *res)
		}
	}
	return problems, nil
}

func (r *Registry) checkEntry(e index.Entry) *Problem {
	blobPath := r.BlobPath(e.Name, e.Version)

	f, err := os.Open(blobPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Problem{
				Kind:    ProblemMissingArchive,
				Name:    e.Name,
				Version: e.Version,
				Path:    blobPath,
				Detail:  "index entry has no stored archive",
			}
		}
		return &Problem{
			Kind:    ProblemMissingArchive,
			Name:    e.Name,
			Version: e.Version,
			Path:    blobPath,
			Detail:  err.Error(),
		}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return &Problem{
			Kind:    ProblemChecksumMismatch,
			Name:    e.Name,
			Version: e.Version,
			Path:    blobPath,
			Detail:  err.Error(),
		}
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != e.Checksum {
		return &Problem{
			Kind:    ProblemChecksumMismatch,
			Name:    e.Name,
			Version: e.Version,
			Path:    blobPath,
			Detail:  fmt.Sprintf("stored archive hashes to %s, index says %s", got, e.Checksum),
		}
	}
	return nil
}
