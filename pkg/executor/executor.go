// Package executor applies an approved cleanup plan: it removes the
// tagged GC roots and generation links, then hands off to the store
// collector. Individual removal failures are logged and skipped so one
// stubborn path never aborts the whole cleanup.
package executor

import (
	"github.com/rs/zerolog"

	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/filesystem"
	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/nix"
	"github.com/unixpariah/nh/pkg/types"
)

// Result summarizes what a run actually did.
type Result struct {
	RemovedRoots       int
	RemovedGenerations int
	Failed             []string
}

// Options configures an Executor.
type Options struct {
	FS        types.FS
	DryRun    bool
	Collector nix.StoreCollector
	Logger    *zerolog.Logger
}

// RunOptions tunes a single Execute call.
type RunOptions struct {
	NoGC     bool
	Optimise bool
	Max      string
}

type Executor struct {
	fs        types.FS
	dryRun    bool
	collector nix.StoreCollector
	logger    zerolog.Logger
}

func New(opts Options) *Executor {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	collector := opts.Collector
	if collector == nil {
		collector = &nix.Collector{Dry: opts.DryRun}
	}
	var logger zerolog.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = logging.GetLogger("executor")
	}
	return &Executor{
		fs:        fs,
		dryRun:    opts.DryRun,
		collector: collector,
		logger:    logger,
	}
}

// Execute removes everything the plan tags for removal, then runs the
// store collector. In dry-run mode no path is touched; the collector
// still receives its calls and announces what it would have run.
func (e *Executor) Execute(p *types.Plan, run RunOptions) (*Result, error) {
	res := &Result{}

	if e.dryRun {
		e.logger.Info().Msg("dry run, skipping path removal")
		return res, e.collect(run)
	}

	for _, root := range p.Roots {
		if !root.Remove {
			continue
		}
		if e.remove(root.Destination, res) {
			res.RemovedRoots++
		}
	}

	for _, profile := range p.ProfilePaths() {
		set := p.Profiles[profile]
		for i := len(set) - 1; i >= 0; i-- {
			if !set[i].Remove {
				continue
			}
			if e.remove(set[i].Path, res) {
				res.RemovedGenerations++
			}
		}
	}

	return res, e.collect(run)
}

func (e *Executor) collect(run RunOptions) error {
	if !run.NoGC {
		if err := e.collector.GC(run.Max); err != nil {
			return errors.Wrap(err, errors.ErrCollector, "store garbage collection failed")
		}
	}

	if run.Optimise {
		if err := e.collector.Optimise(); err != nil {
			return errors.Wrap(err, errors.ErrCollector, "store optimisation failed")
		}
	}

	return nil
}

func (e *Executor) remove(path string, res *Result) bool {
	e.logger.Info().Str("path", path).Msg("removing")
	if err := e.fs.Remove(path); err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("failed to remove, skipping")
		res.Failed = append(res.Failed, path)
		return false
	}
	return true
}
