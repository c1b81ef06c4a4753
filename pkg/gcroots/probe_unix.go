//go:build unix

package gcroots

import "golang.org/x/sys/unix"

// DefaultProbe checks existence and writability of path without
// following symlinks, mirroring what the collector itself would be
// able to unlink.
func DefaultProbe(path string) (bool, error) {
	err := unix.Faccessat(unix.AT_FDCWD, path, unix.F_OK|unix.W_OK, unix.AT_SYMLINK_NOFOLLOW)
	switch err {
	case nil:
		return true, nil
	case unix.EACCES, unix.ENOENT:
		return false, nil
	default:
		return false, err
	}
}
