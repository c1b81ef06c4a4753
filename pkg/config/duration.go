package config

import (
	"regexp"
	"strconv"
	"time"

	"github.com/unixpariah/nh/pkg/errors"
)

var durationToken = regexp.MustCompile(`^(\d+)(ns|us|ms|s|m|h|d|w)`)

// ParseDuration parses a duration for --keep-since. On top of the
// standard Go units it accepts d (24h) and w (7d), so values like
// "30d" or "2w12h" work.
func ParseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	if s == "" {
		return 0, errors.New(errors.ErrInvalidInput, "empty duration")
	}

	var total time.Duration
	rest := s
	for rest != "" {
		m := durationToken.FindStringSubmatch(rest)
		if m == nil {
			return 0, errors.Newf(errors.ErrInvalidInput, "invalid duration %q", s)
		}
		n, err := strconv.ParseUint(m[1], 10, 63)
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrInvalidInput, "invalid duration %q", s)
		}
		var unit time.Duration
		switch m[2] {
		case "ns":
			unit = time.Nanosecond
		case "us":
			unit = time.Microsecond
		case "ms":
			unit = time.Millisecond
		case "s":
			unit = time.Second
		case "m":
			unit = time.Minute
		case "h":
			unit = time.Hour
		case "d":
			unit = 24 * time.Hour
		case "w":
			unit = 7 * 24 * time.Hour
		}
		total += time.Duration(n) * unit
		rest = rest[len(m[0]):]
	}

	return total, nil
}
