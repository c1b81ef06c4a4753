package profiles_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpariah/nh/pkg/config"
	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/profiles"
	"github.com/unixpariah/nh/pkg/types"
)

func asUID(uid int) func() int {
	return func() int { return uid }
}

// profileDir builds a profiles directory containing one valid profile
// symlink plus its generation link, returning the profile path.
func profileDir(t *testing.T, dir, name string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeGeneration(t, dir, name+"-1-link")
	profile := filepath.Join(dir, name)
	require.NoError(t, os.Symlink(name+"-1-link", profile))
	return profile
}

func testSettings(t *testing.T, root string) config.Settings {
	t.Helper()
	cfg := config.Default()
	cfg.ProfilesRoot = filepath.Join(root, "profiles")
	cfg.PerUserRoot = filepath.Join(root, "profiles", "per-user")
	s, err := cfg.Settings()
	require.NoError(t, err)
	return s
}

func TestLocateProfileScopePassthrough(t *testing.T) {
	l := profiles.NewLocator(profiles.LocatorOptions{EUID: asUID(1000)})

	got, err := l.Locate(types.ProfileScope("/nix/var/nix/profiles/system"))
	require.NoError(t, err)
	// No existence check here; the scanner fails per-profile instead.
	assert.Equal(t, []string{"/nix/var/nix/profiles/system"}, got)
}

func TestLocateUserRefusesRoot(t *testing.T) {
	l := profiles.NewLocator(profiles.LocatorOptions{EUID: asUID(0)})

	_, err := l.Locate(types.UserScope())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrPermission))
}

func TestLocateUser(t *testing.T) {
	root := t.TempDir()
	home := filepath.Join(root, "home", "alice")
	stateDir := filepath.Join(home, ".local/state/nix/profiles")
	hm := profileDir(t, stateDir, "home-manager")

	settings := testSettings(t, root)
	perUser := filepath.Join(settings.PerUserRoot, "alice")
	legacy := profileDir(t, perUser, "profile")

	l := profiles.NewLocator(profiles.LocatorOptions{
		Settings: settings,
		EUID:     asUID(1000),
		Current: func() (profiles.User, error) {
			return profiles.User{Name: "alice", Home: home}, nil
		},
	})

	got, err := l.Locate(types.UserScope())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{hm, legacy}, got)
}

func TestLocateUserNoDirsIsNotAnError(t *testing.T) {
	root := t.TempDir()
	l := profiles.NewLocator(profiles.LocatorOptions{
		Settings: testSettings(t, root),
		EUID:     asUID(1000),
		Current: func() (profiles.User, error) {
			return profiles.User{Name: "bob", Home: filepath.Join(root, "nohome")}, nil
		},
	})

	got, err := l.Locate(types.UserScope())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLocateAllRequiresRoot(t *testing.T) {
	l := profiles.NewLocator(profiles.LocatorOptions{EUID: asUID(1000)})

	_, err := l.Locate(types.AllScope())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrPermission))
}

func TestLocateAll(t *testing.T) {
	root := t.TempDir()
	settings := testSettings(t, root)

	system := profileDir(t, settings.ProfilesRoot, "system")
	aliceLegacy := profileDir(t, filepath.Join(settings.PerUserRoot, "alice"), "profile")

	rootHome := filepath.Join(root, "root")
	rootState := profileDir(t, filepath.Join(rootHome, ".local/state/nix/profiles"), "profile")

	aliceHome := filepath.Join(root, "home", "alice")
	aliceState := profileDir(t, filepath.Join(aliceHome, ".local/state/nix/profiles"), "home-manager")

	users := profiles.StaticUsers{
		0:                   {Name: "root", Home: rootHome},
		settings.UIDMin:     {Name: "alice", Home: aliceHome},
		settings.UIDMin + 1: {Name: "ghost", Home: filepath.Join(root, "home", "ghost")},
	}

	l := profiles.NewLocator(profiles.LocatorOptions{
		Settings: settings,
		Users:    users,
		EUID:     asUID(0),
	})

	got, err := l.Locate(types.AllScope())
	require.NoError(t, err)
	// ghost has no state profiles directory, so it contributes nothing.
	assert.ElementsMatch(t, []string{system, aliceLegacy, rootState, aliceState}, got)
}

func TestLocateAllMissingRootsAreWarnings(t *testing.T) {
	settings := testSettings(t, t.TempDir())

	l := profiles.NewLocator(profiles.LocatorOptions{
		Settings: settings,
		Users:    profiles.StaticUsers{},
		EUID:     asUID(0),
	})

	got, err := l.Locate(types.AllScope())
	require.NoError(t, err)
	assert.Empty(t, got)
}
