package cratedock

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type PublishSuite struct {
	suite.Suite
	reg *Registry
}

func (s *PublishSuite) SetupTest() {
	reg, err := Initialize(s.T().TempDir(), "http://127.0.0.1:8000/")
	s.Require().NoError(err)
	s.reg = reg
}

func TestPublishSuite(t *testing.T) {
	suite.Run(t, new(PublishSuite))
}

func (s *PublishSuite) releases() []Release {
	var out []Release
	for rel, err := range s.reg.List() {
		s.Require().NoError(err)
		out = append(out, rel)
	}
	return out
}

func (s *PublishSuite) TestPublishThenList() {
	path, digest := buildCrate(s.T(), "foo", "1.0.0", "")

	entry, err := s.reg.Publish(path)
	s.Require().NoError(err)
	s.Equal("foo", entry.Name)
	s.Equal("1.0.0", entry.Version)
	s.Equal(digest, entry.Checksum)
	s.False(entry.Yanked)

	releases := s.releases()
	s.Require().Len(releases, 1)
	s.Equal(Release{Name: "foo", Version: "1.0.0"}, releases[0])

	// The stored archive sits at the path the download template resolves to.
	blob, err := os.ReadFile(s.reg.BlobPath("foo", "1.0.0"))
	s.Require().NoError(err)
	s.NotEmpty(blob)
}

func (s *PublishSuite) TestPublishRecordsManifestData() {
	path, _ := buildCrate(s.T(), "foo", "1.0.0", `
[dependencies]
serde = { version = "1.0", optional = true }

[features]
default = []
serde-support = ["dep:serde"]
`)
	entry, err := s.reg.Publish(path)
	s.Require().NoError(err)

	s.Require().Len(entry.Deps, 1)
	s.Equal("serde", entry.Deps[0].Name)
	s.Equal("1.0", entry.Deps[0].Req)
	s.True(entry.Deps[0].Optional)
	s.Contains(entry.Features, "serde-support")

	// Everything survives the trip through the index file.
	entries, err := s.reg.Entries("foo")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(*entry, entries[0])
}

func (s *PublishSuite) TestDuplicateVersionRejected() {
	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")

	_, err := s.reg.Publish(path)
	s.Require().NoError(err)

	_, err = s.reg.Publish(path)
	var dup *DuplicateVersionError
	s.Require().ErrorAs(err, &dup)
	s.Equal("foo", dup.Name)
	s.Equal("1.0.0", dup.Version)

	// The index still holds exactly one entry for the version.
	entries, err := s.reg.Entries("foo")
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PublishSuite) TestRepublishAfterYank() {
	path, digest := buildCrate(s.T(), "foo", "1.0.0", "")

	_, err := s.reg.Publish(path)
	s.Require().NoError(err)
	s.Require().NoError(s.reg.Yank("foo", "1.0.0", true))

	entry, err := s.reg.Publish(path)
	s.Require().NoError(err)
	s.False(entry.Yanked, "republish clears the yanked flag")
	s.Equal(digest, entry.Checksum)

	entries, err := s.reg.Entries("foo")
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.False(entries[0].Yanked)
}

func (s *PublishSuite) TestYank() {
	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")
	_, err := s.reg.Publish(path)
	s.Require().NoError(err)

	s.Require().NoError(s.reg.Yank("foo", "1.0.0", true))
	releases := s.releases()
	s.Require().Len(releases, 1)
	s.True(releases[0].Yanked)

	// Setting the flag to its current value is a no-op, not an error.
	s.Require().NoError(s.reg.Yank("foo", "1.0.0", true))

	s.Require().NoError(s.reg.Yank("foo", "1.0.0", false))
	s.False(s.releases()[0].Yanked)
}

func (s *PublishSuite) TestYankUnknown() {
	var nf *NotFoundError
	s.Require().ErrorAs(s.reg.Yank("ghost", "1.0.0", true), &nf)
	s.Equal("ghost", nf.Name)

	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")
	_, err := s.reg.Publish(path)
	s.Require().NoError(err)

	err = s.reg.Yank("foo", "9.9.9", true)
	s.Require().ErrorAs(err, &nf)
	s.Equal("9.9.9", nf.Version)
}

func (s *PublishSuite) TestListOrder() {
	// Publish order within one package is append order; packages come out in
	// directory order.
	for _, v := range []string{"0.2.0", "0.1.0", "0.3.0"} {
		path, _ := buildCrate(s.T(), "zzz", v, "")
		_, err := s.reg.Publish(path)
		s.Require().NoError(err)
	}
	path, _ := buildCrate(s.T(), "aaa", "1.0.0", "")
	_, err := s.reg.Publish(path)
	s.Require().NoError(err)

	releases := s.releases()
	s.Require().Len(releases, 4)
	s.Equal("aaa", releases[0].Name)
	s.Equal([]string{"0.2.0", "0.1.0", "0.3.0"}, []string{
		releases[1].Version, releases[2].Version, releases[3].Version,
	})
}

// Stray files in the registry tree (a README, editor droppings) must not be
// parsed as index files: only paths matching the sharding rule count.
func (s *PublishSuite) TestListIgnoresStrayFiles() {
	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")
	_, err := s.reg.Publish(path)
	s.Require().NoError(err)

	for _, stray := range []string{
		"README.md",
		"notes",
		filepath.Join("3", "f", "foo.orig"),
	} {
		p := filepath.Join(s.reg.Root(), stray)
		s.Require().NoError(os.MkdirAll(filepath.Dir(p), 0755))
		s.Require().NoError(os.WriteFile(p, []byte("not an index file"), 0644))
	}

	releases := s.releases()
	s.Require().Len(releases, 1)
	s.Equal(Release{Name: "foo", Version: "1.0.0"}, releases[0])
}

func (s *PublishSuite) TestPublishMalformedArchive() {
	path := filepath.Join(s.T().TempDir(), "junk.crate")
	s.Require().NoError(os.WriteFile(path, []byte("not a crate"), 0644))

	_, err := s.reg.Publish(path)
	s.Require().ErrorIs(err, ErrUnreadableArchive)
	s.Empty(s.releases(), "failed publish must not touch the index")
}

func (s *PublishSuite) TestPartialPublishSurfaced() {
	// Block content storage by occupying the crates/ path with a file.
	s.Require().NoError(os.WriteFile(filepath.Join(s.reg.Root(), "crates"), []byte{}, 0644))

	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")
	_, err := s.reg.Publish(path)

	var partial *PartialPublishError
	s.Require().ErrorAs(err, &partial)
	s.Equal("foo", partial.Name)

	// The index update stays visible: the documented partial-publish shape.
	entries, err := s.reg.Entries("foo")
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *PublishSuite) TestLockTimeout() {
	reg, err := Open(s.reg.Root(), WithLockTimeout(100*time.Millisecond))
	s.Require().NoError(err)

	held, err := reg.lockIndex("foo")
	s.Require().NoError(err)
	defer held.Release()

	path, _ := buildCrate(s.T(), "foo", "1.0.0", "")
	_, err = reg.Publish(path)
	s.Require().ErrorIs(err, ErrLockTimeout)
}

func (s *PublishSuite) TestEntriesUnknownPackage() {
	_, err := s.reg.Entries("ghost")
	var nf *NotFoundError
	s.Require().ErrorAs(err, &nf)
}

// Index files for differently-cased names collapse onto one lowercased path.
func (s *PublishSuite) TestIndexPathCaseNormalized() {
	s.Equal(s.reg.IndexPath("foo"), s.reg.IndexPath("FOO"))
	s.Equal(filepath.Join(s.reg.Root(), "3", "f", "foo"), s.reg.IndexPath("foo"))
}
