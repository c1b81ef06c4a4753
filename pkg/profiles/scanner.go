package profiles

import (
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/types"
)

// generationPattern matches generation symlink names: <name>-<N>-link.
var generationPattern = regexp.MustCompile(`^(.*)-(\d+)-link$`)

// ScanGenerations lists the generations of one profile, every entry
// tagged for removal. Entries in the profile's parent directory that do
// not look like generations of this profile are ignored; a generation
// whose number cannot be parsed is skipped with a warning. Only a
// failure to list the parent directory itself fails the call.
func ScanGenerations(fsys types.FS, profile string) (types.GenerationSet, error) {
	name := filepath.Base(profile)
	parent := filepath.Dir(profile)

	entries, err := fsys.ReadDir(parent)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrProfileList, "reading generations of profile %s", profile).
			WithDetail("profile", profile)
	}

	var set types.GenerationSet
	for _, entry := range entries {
		m := generationPattern.FindStringSubmatch(entry.Name())
		if m == nil || m[1] != name {
			continue
		}

		path := filepath.Join(parent, entry.Name())

		number, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			lg := logging.GetLogger("profiles")
			lg.Warn().Err(err).Str("path", path).Msg("Failed to parse generation number, skipping")
			continue
		}

		set = append(set, types.TaggedGeneration{
			Generation: types.Generation{
				Number:       number,
				LastModified: linkModTime(fsys, path),
				Path:         path,
			},
			Remove: true,
		})
	}

	set.Sort()
	return set, nil
}

// linkModTime reads a symlink's own mtime. The zero time marks an
// entry whose metadata could not be read; the scan never aborts a
// whole profile over one unreadable link.
func linkModTime(fsys types.FS, path string) time.Time {
	info, err := fsys.Lstat(path)
	if err != nil {
		lg := logging.GetLogger("profiles")
		lg.Warn().Err(err).Str("path", path).Msg("Failed to read symlink metadata")
		return time.Time{}
	}
	return info.ModTime()
}
