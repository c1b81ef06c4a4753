package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/unixpariah/nh/internal/version"
	"github.com/unixpariah/nh/pkg/logging"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "nh",
		Short: "Yet another Nix helper",
		Long: `nh keeps Nix installations tidy. Its clean subsystem removes old
profile generations and stale garbage-collector roots under an explicit,
reviewable retention policy, then triggers a store garbage collection.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(manCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for nh`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nh version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(nh completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ nh completion bash > /etc/bash_completion.d/nh
  # macOS:
  $ nh completion bash > /usr/local/etc/bash_completion.d/nh

Zsh:
  $ nh completion zsh > "${fpath[1]}/_nh"

Fish:
  $ nh completion fish > ~/.config/fish/completions/nh.fish

PowerShell:
  PS> nh completion powershell > nh.ps1
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}

var manCmd = &cobra.Command{
	Use:   "man [dir]",
	Short: "Generate man pages",
	Long:  `Generate man pages for nh into dir (default: current directory)`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		header := &doc.GenManHeader{
			Title:   "NH",
			Section: "1",
		}
		return doc.GenManTree(rootCmd, header, dir)
	},
}
