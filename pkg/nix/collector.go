package nix

import (
	"github.com/unixpariah/nh/pkg/errors"
)

// StoreCollector runs garbage collection and optimisation on the
// underlying store after the plan executes.
type StoreCollector interface {
	// GC runs garbage collection, optionally bounded by a byte limit
	// forwarded verbatim (e.g. "20G"). Empty means unbounded.
	GC(max string) error

	// Optimise deduplicates the store.
	Optimise() error
}

// Collector invokes the real nix binaries.
type Collector struct {
	// Dry logs the invocations without running them.
	Dry bool
}

// NewCollector creates a store collector.
func NewCollector(dry bool) *Collector {
	return &Collector{Dry: dry}
}

func (c *Collector) GC(max string) error {
	args := []string{"store", "gc"}
	if max != "" {
		args = append(args, "--max", max)
	}

	if err := NewCommand("nix", args...).
		Dry(c.Dry).
		Message("Performing garbage collection on the nix store").
		ShowOutput(true).
		WithRequiredEnv().
		Run(); err != nil {
		return errors.Wrap(err, errors.ErrCollector, "nix store gc")
	}
	return nil
}

func (c *Collector) Optimise() error {
	if err := NewCommand("nix-store", "--optimise").
		Dry(c.Dry).
		Message("Optimising the nix store").
		ShowOutput(true).
		WithRequiredEnv().
		Run(); err != nil {
		return errors.Wrap(err, errors.ErrCollector, "nix-store --optimise")
	}
	return nil
}
