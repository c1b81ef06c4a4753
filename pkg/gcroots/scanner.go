// Package gcroots enumerates the collector's automatic GC roots and
// classifies which ones the cleanup plan may touch.
package gcroots

import (
	"path/filepath"
	"regexp"

	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/filesystem"
	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/types"
)

// AccessProbe checks a resolved root destination for existence and
// writability without following a second symlink hop. It reports false
// for stale or protected destinations and errors only on unexpected
// failures.
type AccessProbe func(path string) (bool, error)

// Scanner discovers removable auto GC roots. The classification
// pattern set is an explicit input, not package state.
type Scanner struct {
	fs       types.FS
	patterns []*regexp.Regexp
	probe    AccessProbe
}

// Options configures a Scanner. Zero fields get production defaults.
type Options struct {
	FS       types.FS
	Patterns []*regexp.Regexp
	Probe    AccessProbe
}

// NewScanner creates a Scanner with the given options.
func NewScanner(opts Options) *Scanner {
	s := &Scanner{
		fs:       opts.FS,
		patterns: opts.Patterns,
		probe:    opts.Probe,
	}
	if s.fs == nil {
		s.fs = filesystem.NewOS()
	}
	if s.probe == nil {
		s.probe = DefaultProbe
	}
	return s
}

// Scan walks the auto-roots directory and returns every tracked root
// tagged for removal; the retention age rule flips the survivors.
// Roots whose destination matches no pattern, is missing or not
// writable, or cannot be resolved are invisible to the plan. Fatal are
// only a failure to list the directory itself and an unexpected probe
// errno.
func (s *Scanner) Scan(dir string) (types.GcRootSet, error) {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrGcRootsList, "reading auto gcroots dir %s", dir)
	}
	logger := logging.GetLogger("gcroots")

	var roots types.GcRootSet
	for _, entry := range entries {
		src := filepath.Join(dir, entry.Name())
		dst, err := s.fs.Readlink(src)
		if err != nil {
			logger.Warn().Err(err).Str("src", src).Msg("Failed to resolve gcroot symlink, skipping")
			continue
		}

		if !s.matches(dst) {
			logger.Debug().Str("dst", dst).Msg("Destination matches no gcroot pattern, skipping")
			continue
		}

		ok, err := s.probe(dst)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrGcRootsList, "checking access for gcroot %s", dst)
		}
		if !ok {
			logger.Debug().Str("dst", dst).Msg("Destination missing or not writable, skipping")
			continue
		}

		info, err := s.fs.Lstat(dst)
		if err != nil {
			logger.Warn().Err(err).Str("dst", dst).Msg("Failed to read gcroot metadata, skipping")
			continue
		}

		roots = append(roots, types.GcRoot{
			Destination:  dst,
			LastModified: info.ModTime(),
			Remove:       true,
		})
	}

	return roots, nil
}

func (s *Scanner) matches(dst string) bool {
	for _, re := range s.patterns {
		if re.MatchString(dst) {
			return true
		}
	}
	return false
}
