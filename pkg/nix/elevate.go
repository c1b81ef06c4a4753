package nix

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/logging"
)

// autoPrograms is the probe order for automatic elevation selection.
var autoPrograms = []string{"doas", "sudo"}

// ElevationKind discriminates the elevation strategy variants.
type ElevationKind int

const (
	// ElevationAuto probes for a known elevation program on PATH.
	ElevationAuto ElevationKind = iota
	// ElevationPrefer uses a specific path when present, falling back
	// to the auto probe.
	ElevationPrefer
	// ElevationForce requires a specific program, failing otherwise.
	ElevationForce
)

// ElevationStrategy is a closed variant: Auto | Prefer(path) |
// Force(name). It is plain data resolved by a pure function, so the
// policy is exhaustively testable.
type ElevationStrategy struct {
	Kind    ElevationKind
	Program string
}

// AutoElevation probes PATH for a known elevation program.
func AutoElevation() ElevationStrategy { return ElevationStrategy{Kind: ElevationAuto} }

// PreferElevation uses path when it exists, otherwise falls back.
func PreferElevation(path string) ElevationStrategy {
	return ElevationStrategy{Kind: ElevationPrefer, Program: path}
}

// ForceElevation requires the named program.
func ForceElevation(name string) ElevationStrategy {
	return ElevationStrategy{Kind: ElevationForce, Program: name}
}

// ParseElevation maps a config string to a strategy: "auto" or empty
// selects the probe, an absolute path is preferred, and a bare name is
// forced.
func ParseElevation(s string) ElevationStrategy {
	switch {
	case s == "" || s == "auto":
		return AutoElevation()
	case strings.HasPrefix(s, string(filepath.Separator)):
		return PreferElevation(s)
	default:
		return ForceElevation(s)
	}
}

// ResolveElevation resolves a strategy to a concrete program path.
// lookPath is injected so the resolution stays a pure function in
// tests.
func ResolveElevation(s ElevationStrategy, lookPath func(string) (string, error)) (string, error) {
	switch s.Kind {
	case ElevationForce:
		path, err := lookPath(s.Program)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrElevation, "elevation program %q not found", s.Program)
		}
		return path, nil
	case ElevationPrefer:
		if path, err := lookPath(s.Program); err == nil {
			return path, nil
		}
		fallthrough
	default:
		for _, name := range autoPrograms {
			if path, err := lookPath(name); err == nil {
				return path, nil
			}
		}
		return "", errors.New(errors.ErrElevation, "no elevation program found (tried doas, sudo)")
	}
}

// SelfElevate re-execs the current binary under the resolved elevation
// program, forwarding the original arguments and the required
// environment. On success it never returns.
func SelfElevate(strategy ElevationStrategy) error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, errors.ErrElevation, "resolving current executable")
	}

	prog, err := ResolveElevation(strategy, exec.LookPath)
	if err != nil {
		return err
	}

	cmd := NewCommand(exe, os.Args[1:]...).
		Elevate(true).
		Elevation(ForceElevation(prog)).
		WithRequiredEnv()

	argv, err := cmd.Argv()
	if err != nil {
		return err
	}

	lg := logging.GetLogger("nix")
	lg.Debug().Strs("argv", argv).Msg("Re-executing with elevated privileges")
	if err := unix.Exec(argv[0], argv, os.Environ()); err != nil {
		return errors.Wrap(err, errors.ErrElevation, "re-executing with elevated privileges")
	}
	return nil
}
