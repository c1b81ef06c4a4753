package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/unixpariah/nh/pkg/config"
	"github.com/unixpariah/nh/pkg/errors"
	"github.com/unixpariah/nh/pkg/executor"
	"github.com/unixpariah/nh/pkg/filesystem"
	"github.com/unixpariah/nh/pkg/gcroots"
	"github.com/unixpariah/nh/pkg/logging"
	"github.com/unixpariah/nh/pkg/nix"
	"github.com/unixpariah/nh/pkg/plan"
	"github.com/unixpariah/nh/pkg/profiles"
	"github.com/unixpariah/nh/pkg/retention"
	"github.com/unixpariah/nh/pkg/types"
)

var (
	cleanKeep      uint32
	cleanKeepSince string
	cleanDry       bool
	cleanAsk       bool
	cleanNoGC      bool
	cleanNoGcRoots bool
	cleanOptimise  bool
	cleanMax       string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean profile generations and GC roots",
	Long: `Clean removes old Nix profile generations and stale garbage-collector
roots, keeping at least --keep generations per profile and everything
newer than --keep-since, then garbage-collects the store.

The plan is printed before anything is removed; pass --ask to require
confirmation or --dry to only print it.`,
}

var cleanAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Clean all profiles on the system (requires root)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd, types.AllScope())
	},
}

var cleanUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Clean the invoking user's profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd, types.UserScope())
	},
}

var cleanProfileCmd = &cobra.Command{
	Use:   "profile <path>",
	Short: "Clean a single profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClean(cmd, types.ProfileScope(args[0]))
	},
}

func init() {
	pf := cleanCmd.PersistentFlags()
	pf.Uint32VarP(&cleanKeep, "keep", "k", 1, "At least how many generations to keep per profile")
	pf.StringVarP(&cleanKeepSince, "keep-since", "K", "0h", "Keep generations and GC roots newer than this (accepts d and w units)")
	pf.BoolVarP(&cleanDry, "dry", "n", false, "Print the cleanup plan without removing anything")
	pf.BoolVarP(&cleanAsk, "ask", "a", false, "Ask for confirmation before cleaning")
	pf.BoolVar(&cleanNoGC, "no-gc", false, "Skip the store garbage collection afterwards")
	pf.BoolVar(&cleanNoGcRoots, "no-gcroots", false, "Skip cleaning GC roots")
	pf.BoolVar(&cleanOptimise, "optimise", false, "Optimise the store after garbage collection")
	pf.StringVar(&cleanMax, "max", "", "Maximum amount of data to garbage-collect, e.g. 10G")

	cleanCmd.AddCommand(cleanAllCmd)
	cleanCmd.AddCommand(cleanUserCmd)
	cleanCmd.AddCommand(cleanProfileCmd)
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, scope types.Scope) error {
	logger := logging.GetLogger("cmd.clean")

	cfg, err := config.LoadDefault()
	if err != nil {
		return err
	}

	keep := cleanKeep
	if !cmd.Flags().Changed("keep") && cfg.Keep != nil {
		keep = *cfg.Keep
	}
	keepSinceStr := cleanKeepSince
	if !cmd.Flags().Changed("keep-since") && cfg.KeepSince != "" {
		keepSinceStr = cfg.KeepSince
	}
	keepSince, err := config.ParseDuration(keepSinceStr)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid keep-since duration %q", keepSinceStr)
	}

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	// Cleaning every profile needs root. Re-exec under the configured
	// elevation program; on success this never returns.
	if scope.Kind == types.ScopeAll && os.Geteuid() != 0 {
		logger.Info().Msg("Not running as root, re-executing with elevated privileges")
		return nix.SelfElevate(nix.ParseElevation(cfg.Elevation))
	}

	locator := profiles.NewLocator(profiles.LocatorOptions{Settings: settings})
	paths, err := locator.Locate(scope)
	if err != nil {
		return err
	}

	fsys := filesystem.NewOS()
	policy := retention.New(keep, keepSince)

	profileSet := types.ProfileSet{}
	for _, path := range paths {
		set, err := profiles.ScanGenerations(fsys, path)
		if err != nil {
			return err
		}
		policy.Apply(set)
		profileSet[path] = set
	}

	var roots types.GcRootSet
	if scope.Kind != types.ScopeProfile && !cleanNoGcRoots {
		scanner := gcroots.NewScanner(gcroots.Options{Patterns: settings.GcRootPatterns})
		roots, err = scanner.Scan(settings.GcRootsDir)
		if err != nil {
			return err
		}
		policy.ApplyAge(roots)
	}

	p := plan.Build(profileSet, roots, keep, keepSince, settings.PatternStrings())
	plan.NewRenderer(os.Stdout).Render(p)

	if cleanAsk {
		ok, err := plan.Confirm(os.Stdin, os.Stdout)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "reading confirmation")
		}
		if !ok {
			return errors.New(errors.ErrPlanRejected, "user rejected the cleanup plan")
		}
	}

	exec := executor.New(executor.Options{
		DryRun:    cleanDry,
		Collector: nix.NewCollector(cleanDry),
	})
	res, err := exec.Execute(p, executor.RunOptions{
		NoGC:     cleanNoGC,
		Optimise: cleanOptimise,
		Max:      cleanMax,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Int("generations", res.RemovedGenerations).
		Int("gcroots", res.RemovedRoots).
		Int("failed", len(res.Failed)).
		Msg("Cleanup finished")
	return nil
}
