// Package nix wraps the external collaborators: the nix store
// collector binaries and the privilege-elevation launcher. The engine
// itself never shells out directly.
package nix

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unixpariah/nh/pkg/logging"
)

// requiredPreserveEnv lists the variables forwarded to nix
// invocations. nixos-rebuild preserves LOCALE_ARCHIVE, so we do too;
// PATH must survive so nh can invoke CLI utilities.
var requiredPreserveEnv = []string{
	"LOCALE_ARCHIVE",
	"PATH",
	"NIX_SSHOPTS",
	"HOME_MANAGER_BACKUP_EXT",
	"NIX_CONFIG",
	"NIX_PATH",
	"NIX_REMOTE",
	"NIX_SSL_CERT_FILE",
	"NIX_USER_CONF_FILES",
}

type envActionKind int

const (
	envSet envActionKind = iota
	envPreserve
	envRemove
)

// EnvAction is a closed variant describing what happens to one
// environment variable when the command runs: set to a value, preserve
// from the current environment, or remove.
type EnvAction struct {
	kind  envActionKind
	value string
}

// SetEnv sets a variable to a specific value.
func SetEnv(value string) EnvAction { return EnvAction{kind: envSet, value: value} }

// PreserveEnv forwards a variable from the current environment.
func PreserveEnv() EnvAction { return EnvAction{kind: envPreserve} }

// RemoveEnv unsets a variable for the command.
func RemoveEnv() EnvAction { return EnvAction{kind: envRemove} }

// Command builds one external command invocation.
type Command struct {
	name       string
	args       []string
	dry        bool
	message    string
	elevate    bool
	elevation  ElevationStrategy
	ssh        string
	showOutput bool
	env        map[string]EnvAction
}

// NewCommand creates a command builder for the named program.
func NewCommand(name string, args ...string) *Command {
	return &Command{
		name:      name,
		args:      args,
		elevation: AutoElevation(),
		env:       make(map[string]EnvAction),
	}
}

// Args appends arguments.
func (c *Command) Args(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// Dry sets whether to only log the command instead of running it.
func (c *Command) Dry(dry bool) *Command {
	c.dry = dry
	return c
}

// Message sets a message logged before the command runs.
func (c *Command) Message(message string) *Command {
	c.message = message
	return c
}

// Elevate sets whether to run with elevated privileges.
func (c *Command) Elevate(elevate bool) *Command {
	c.elevate = elevate
	return c
}

// Elevation selects the elevation program strategy.
func (c *Command) Elevation(strategy ElevationStrategy) *Command {
	c.elevation = strategy
	return c
}

// SSH sets a remote host; the command line is executed there instead.
func (c *Command) SSH(host string) *Command {
	c.ssh = host
	return c
}

// ShowOutput forwards the command's output to the user's terminal.
func (c *Command) ShowOutput(show bool) *Command {
	c.showOutput = show
	return c
}

// Env records an action for one environment variable.
func (c *Command) Env(key string, action EnvAction) *Command {
	c.env[key] = action
	return c
}

// PreserveEnvs forwards the listed variables from the current
// environment.
func (c *Command) PreserveEnvs(keys ...string) *Command {
	for _, key := range keys {
		c.env[key] = PreserveEnv()
	}
	return c
}

// WithRequiredEnv configures the environment nix invocations need.
// USER is always pinned, HOME only for non-elevated commands, and
// every NH_* variable is forwarded verbatim.
func (c *Command) WithRequiredEnv() *Command {
	if user, ok := os.LookupEnv("USER"); ok {
		c.env["USER"] = SetEnv(user)
	}
	if !c.elevate {
		if home, ok := os.LookupEnv("HOME"); ok {
			c.env["HOME"] = SetEnv(home)
		}
	}
	for _, key := range requiredPreserveEnv {
		if _, ok := os.LookupEnv(key); ok {
			c.env[key] = PreserveEnv()
		}
	}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "NH_") {
			key, value, _ := strings.Cut(kv, "=")
			c.env[key] = SetEnv(value)
		}
	}
	return c
}

// Argv resolves the full command line, including the elevation prefix
// and ssh wrapping. Exposed for logging and tests; Run uses it.
func (c *Command) Argv() ([]string, error) {
	var argv []string

	if c.elevate {
		prefix, err := c.elevationPrefix()
		if err != nil {
			return nil, err
		}
		argv = append(argv, prefix...)
	}

	argv = append(argv, c.name)
	argv = append(argv, c.args...)

	if c.ssh != "" {
		argv = []string{"ssh", "-T", c.ssh, strings.Join(argv, " ")}
	}

	return argv, nil
}

// elevationPrefix builds the sudo/doas prefix, preserving and setting
// environment variables the way the elevation program allows.
func (c *Command) elevationPrefix() ([]string, error) {
	prog, err := ResolveElevation(c.elevation, exec.LookPath)
	if err != nil {
		return nil, err
	}

	prefix := []string{prog}

	if filepath.Base(prog) == "sudo" {
		prefix = append(prefix, "--set-home")
		if preserve := c.preservedKeys(); len(preserve) > 0 {
			prefix = append(prefix, "--preserve-env="+strings.Join(preserve, ","))
		}
		if _, ok := os.LookupEnv("NH_SUDO_ASKPASS"); ok {
			prefix = append(prefix, "-A")
		}
	}

	// Explicitly pass set variables through env(1), since the
	// elevated command does not inherit our environment.
	if pairs := c.setPairs(); len(pairs) > 0 {
		prefix = append(prefix, "env")
		prefix = append(prefix, pairs...)
	}

	return prefix, nil
}

func (c *Command) preservedKeys() []string {
	var keys []string
	for key, action := range c.env {
		if action.kind == envPreserve {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *Command) setPairs() []string {
	var pairs []string
	for key, action := range c.env {
		if action.kind == envSet {
			pairs = append(pairs, key+"="+action.value)
		}
	}
	sort.Strings(pairs)
	return pairs
}

// environ builds the child environment for non-elevated runs:
// inherited, minus removed variables, with set values pinned.
func (c *Command) environ() []string {
	var env []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if action, ok := c.env[key]; ok && action.kind != envPreserve {
			continue
		}
		env = append(env, kv)
	}
	for key, action := range c.env {
		if action.kind == envSet {
			env = append(env, key+"="+action.value)
		}
	}
	return env
}

// Run executes the command, honoring dry mode. A non-zero exit is an
// error carrying the captured stderr when output is not shown.
func (c *Command) Run() error {
	argv, err := c.Argv()
	if err != nil {
		return err
	}

	logger := logging.GetLogger("nix")
	if c.message != "" {
		logger.Info().Msg(c.message)
	}
	logger.Debug().Strs("argv", argv).Bool("dry", c.dry).Msg("Running command")

	if c.dry {
		return nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if !c.elevate && c.ssh == "" {
		cmd.Env = c.environ()
	}

	var stderr bytes.Buffer
	if c.showOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Stdin = os.Stdin
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		msg := c.message
		if msg == "" {
			msg = "Command failed"
		}
		if captured := strings.TrimSpace(stderr.String()); captured != "" {
			return fmt.Errorf("%s: %w\nstderr:\n%s", msg, err, captured)
		}
		return fmt.Errorf("%s: %w", msg, err)
	}
	return nil
}

// RunCapture executes the command and returns its stdout. Dry mode
// returns an empty string.
func (c *Command) RunCapture() (string, error) {
	argv, err := c.Argv()
	if err != nil {
		return "", err
	}

	logger := logging.GetLogger("nix")
	if c.message != "" {
		logger.Info().Msg(c.message)
	}
	logger.Debug().Strs("argv", argv).Bool("dry", c.dry).Msg("Running command")

	if c.dry {
		return "", nil
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if !c.elevate && c.ssh == "" {
		cmd.Env = c.environ()
	}

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("capturing output of %s: %w", c.name, err)
	}
	return string(out), nil
}
