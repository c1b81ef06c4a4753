// Package profiles discovers profile directories for a clean scope and
// parses their generation symlinks into tagged sets.
package profiles

import (
	"os"
	"os/user"
	"path/filepath"

	"github.com/unixpariah/nh/pkg/config"
	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/filesystem"
	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/types"
)

// Locator enumerates the profile symlinks a scope covers.
type Locator struct {
	fs       types.FS
	users    UserEnumerator
	settings config.Settings
	euid     func() int
	current  func() (User, error)
}

// LocatorOptions configures a Locator. Zero fields get production
// defaults: the OS filesystem, the passwd database, and the real
// effective UID.
type LocatorOptions struct {
	FS       types.FS
	Users    UserEnumerator
	Settings config.Settings
	EUID     func() int
	Current  func() (User, error)
}

// NewLocator creates a Locator with the given options.
func NewLocator(opts LocatorOptions) *Locator {
	l := &Locator{
		fs:       opts.FS,
		users:    opts.Users,
		settings: opts.Settings,
		euid:     opts.EUID,
		current:  opts.Current,
	}
	if l.fs == nil {
		l.fs = filesystem.NewOS()
	}
	if l.users == nil {
		l.users = PasswdUsers{}
	}
	if l.euid == nil {
		l.euid = os.Geteuid
	}
	if l.current == nil {
		l.current = currentUser
	}
	return l
}

func currentUser() (User, error) {
	u, err := user.Current()
	if err != nil {
		return User{}, err
	}
	return User{Name: u.Username, Home: u.HomeDir}, nil
}

// Locate returns the profile symlinks to scan for a scope. Missing
// optional directories are skipped with a warning; an explicitly
// requested profile is returned as-is, with existence deferred to the
// scanner.
func (l *Locator) Locate(scope types.Scope) ([]string, error) {
	switch scope.Kind {
	case types.ScopeProfile:
		return []string{scope.Profile}, nil
	case types.ScopeUser:
		return l.locateUser()
	case types.ScopeAll:
		return l.locateAll()
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown scope %d", scope.Kind)
	}
}

func (l *Locator) locateUser() ([]string, error) {
	if l.euid() == 0 {
		return nil, errors.New(errors.ErrPermission, "nh clean user: don't run me as root")
	}

	u, err := l.current()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUserResolve, "resolving current user")
	}
	if u.Home == "" {
		return nil, errors.Newf(errors.ErrUserResolve, "user %s has no home directory", u.Name)
	}

	candidates := []string{
		filepath.Join(u.Home, config.StateProfilesDir),
		filepath.Join(l.settings.PerUserRoot, u.Name),
	}

	var profiles []string
	for _, dir := range l.existingDirs(candidates) {
		profiles = append(profiles, l.profilesInDir(dir)...)
	}

	if len(profiles) == 0 {
		lg := logging.GetLogger("profiles")
		lg.Warn().Msg("No active profile directories found for the current user. Nothing to clean.")
	}

	return profiles, nil
}

func (l *Locator) locateAll() ([]string, error) {
	if l.euid() != 0 {
		return nil, errors.New(errors.ErrPermission, "nh clean all: must run as root")
	}
	logger := logging.GetLogger("profiles")

	var profiles []string
	for _, dir := range l.existingDirs([]string{l.settings.ProfilesRoot}) {
		profiles = append(profiles, l.profilesInDir(dir)...)
	}
	for _, dir := range l.existingDirs([]string{l.settings.PerUserRoot}) {
		entries, err := l.fs.ReadDir(dir)
		if err != nil {
			logger.Warn().Err(err).Str("dir", dir).Msg("Failed to read per-user profiles directory")
			continue
		}
		for _, entry := range entries {
			child := filepath.Join(dir, entry.Name())
			if !l.isDir(child) {
				continue
			}
			profiles = append(profiles, l.profilesInDir(child)...)
		}
	}

	// XDG state profiles for root plus the regular-user UID block
	uids := []uint32{0}
	for uid := l.settings.UIDMin; uid < l.settings.UIDMax; uid++ {
		uids = append(uids, uid)
	}
	logger.Debug().
		Uint32("min", l.settings.UIDMin).
		Uint32("max", l.settings.UIDMax).
		Msg("Scanning XDG state profiles for root and the regular-user UID range")

	for _, uid := range uids {
		u, ok := l.users.LookupUID(uid)
		if !ok {
			continue
		}
		stateDir := filepath.Join(u.Home, config.StateProfilesDir)
		if !l.isDir(stateDir) {
			continue
		}
		logger.Debug().Str("user", u.Name).Str("dir", stateDir).Msg("Adding XDG state profiles for user")
		profiles = append(profiles, l.profilesInDir(stateDir)...)
	}

	return profiles, nil
}

// profilesInDir returns the symlinks in dir that point at a generation
// (target basename shaped <name>-<N>-link). Unreadable entries are
// warnings, never failures.
func (l *Locator) profilesInDir(dir string) []string {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		lg := logging.GetLogger("profiles")
		lg.Warn().Err(err).Str("dir", dir).Msg("Failed to read profiles directory")
		return nil
	}

	var res []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		dst, err := l.fs.Readlink(path)
		if err != nil {
			// Not a symlink, or unreadable; either way not a profile
			continue
		}
		if generationPattern.MatchString(filepath.Base(dst)) {
			res = append(res, path)
		}
	}
	return res
}

// existingDirs filters paths to existing directories, warning for the
// rest. A user with no profile history is expected and normal.
func (l *Locator) existingDirs(paths []string) []string {
	var out []string
	for _, path := range paths {
		if l.isDir(path) {
			out = append(out, path)
		} else {
			lg := logging.GetLogger("profiles")
			lg.Warn().Str("path", path).Msg("Profiles directory not found, skipping")
		}
	}
	return out
}

func (l *Locator) isDir(path string) bool {
	info, err := l.fs.Stat(path)
	return err == nil && info.IsDir()
}
