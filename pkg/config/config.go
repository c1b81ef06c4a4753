// Package config loads nh's optional TOML configuration and compiles
// it into an explicit Settings value passed into the scanners. Nothing
// in the engine reads configuration through globals; the pattern set
// and directory roots are visible, testable inputs.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/logging"
)

// Default filesystem locations of the Nix profile and GC-root trees.
const (
	DefaultProfilesRoot = "/nix/var/nix/profiles"
	DefaultPerUserRoot  = "/nix/var/nix/profiles/per-user"
	DefaultGcRootsDir   = "/nix/var/nix/gcroots/auto"

	// StateProfilesDir is the per-user XDG state profile directory,
	// relative to a home directory.
	StateProfilesDir = ".local/state/nix/profiles"
)

// DefaultGcRootPatterns classify which auto GC-root destinations the
// engine considers at all: direnv caches and default build-result
// links. Everything else is invisible to the cleanup plan.
var DefaultGcRootPatterns = []string{
	`.*/\.direnv/.*`,
	`.*result.*`,
}

// Config mirrors the optional config file ($XDG_CONFIG_HOME/nh/config.toml).
type Config struct {
	// Keep is the minimum number of generations to retain per profile.
	// A pointer so that an explicit keep = 0, which applies the age
	// rule alone, stays distinguishable from an absent key.
	Keep *uint32 `toml:"keep"`

	// KeepSince keeps generations and GC roots younger than this
	// duration; accepts Go durations plus d (day) and w (week) units.
	KeepSince string `toml:"keep_since"`

	// Elevation selects the privilege elevation program: "auto",
	// a bare program name to force, or an absolute path to prefer.
	Elevation string `toml:"elevation"`

	ProfilesRoot   string   `toml:"profiles_root"`
	PerUserRoot    string   `toml:"per_user_root"`
	GcRootsDir     string   `toml:"gcroots_dir"`
	GcRootPatterns []string `toml:"gcroot_patterns"`
}

func uint32Ptr(v uint32) *uint32 { return &v }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Keep:           uint32Ptr(1),
		KeepSince:      "0h",
		Elevation:      "auto",
		ProfilesRoot:   DefaultProfilesRoot,
		PerUserRoot:    DefaultPerUserRoot,
		GcRootsDir:     DefaultGcRootsDir,
		GcRootPatterns: DefaultGcRootPatterns,
	}
}

// ConfigFilePath returns the location of the user config file.
func ConfigFilePath() string {
	return filepath.Join(xdg.ConfigHome, "nh", "config.toml")
}

// Load reads the config file at path, layered over the defaults.
// A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	logger := logging.GetLogger("config")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("No config file, using defaults")
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "reading config file %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrConfigParse, "parsing config file %s", path)
	}

	logger.Debug().Str("path", path).Msg("Loaded config file")
	return cfg, nil
}

// LoadDefault loads the config from the standard XDG location.
func LoadDefault() (Config, error) {
	return Load(ConfigFilePath())
}

// Settings is the compiled, immutable form of Config that the scanners
// consume.
type Settings struct {
	ProfilesRoot   string
	PerUserRoot    string
	GcRootsDir     string
	GcRootPatterns []*regexp.Regexp

	// UIDMin and UIDMax bound the regular-user UID block scanned in
	// the all-profiles scope. Root is always scanned in addition.
	UIDMin uint32
	UIDMax uint32
}

// Settings compiles the configuration into scanner inputs.
func (c Config) Settings() (Settings, error) {
	s := Settings{
		ProfilesRoot: c.ProfilesRoot,
		PerUserRoot:  c.PerUserRoot,
		GcRootsDir:   c.GcRootsDir,
		UIDMin:       uidMin,
		UIDMax:       uidMin + 100,
	}

	for _, pat := range c.GcRootPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			return s, errors.Wrapf(err, errors.ErrConfigParse, "compiling gcroot pattern %q", pat)
		}
		s.GcRootPatterns = append(s.GcRootPatterns, re)
	}

	return s, nil
}

// PatternStrings returns the pattern sources for report rendering.
func (s Settings) PatternStrings() []string {
	out := make([]string, len(s.GcRootPatterns))
	for i, re := range s.GcRootPatterns {
		out[i] = re.String()
	}
	return out
}

// Most unix systems start regular users at uid 1000+, but macOS is
// special at 501+.
var uidMin uint32 = func() uint32 {
	if runtime.GOOS == "darwin" {
		return 501
	}
	return 1000
}()
