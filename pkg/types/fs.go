package types

import "io/fs"

// FS abstracts the filesystem operations the clean engine performs, so
// scanners and the executor can run against an in-memory filesystem in
// tests.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	Readlink(name string) (string, error)
	Remove(name string) error

	// WriteFile exists for seeding in-memory fixtures; the engine
	// itself only ever unlinks.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Lstat reads a symlink's own metadata without following it.
	// For testing, implementations may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)
}
