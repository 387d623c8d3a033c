// Package cratedock manages a self-hosted sparse package registry: a plain
// directory tree that any static file server can expose to an unmodified
// package-manager client.
//
// The on-disk layout is fixed by the client protocol. A config document sits
// at config.json under the registry root, index files live at paths derived
// from the package name (1/a, 2/ab, 3/a/abc, ab/cd/abcd), and published
// archives are stored at crates/<name>/<version>/download — the same relative
// path the config's download template resolves to.
//
// Basic usage:
//
//	reg, _ := cratedock.Initialize("/srv/registry", "http://127.0.0.1:8000/")
//
//	// Publish an archive; its manifest supplies name, version and deps.
//	entry, _ := reg.Publish("foo-1.0.0.crate")
//
//	// Enumerate published releases.
//	for rel, err := range reg.List() {
//	    ...
//	}
//
//	// Soft-remove a version without deleting history.
//	reg.Yank("foo", "1.0.0", true)
//
//	// Cross-check index entries against stored archives.
//	problems, _ := reg.Verify(ctx)
//
// Publishes to the same package serialize through a per-index-file advisory
// lock; publishes to different packages run concurrently. Index files are
// replaced by atomic rename, so readers (including a live file server) never
// observe a half-written file.
package cratedock
