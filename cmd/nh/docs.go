package main

import (
	"embed"
	"fmt"
	"path"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/unixpariah/nh/pkg/errors"
)

//go:embed docs/*.md
var docsFS embed.FS

var docsCmd = &cobra.Command{
	Use:       "docs [topic]",
	Short:     "Show extended documentation for a topic",
	Long:      `Render the extended documentation for a topic in the terminal.`,
	ValidArgs: []string{"clean"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := docsFS.ReadFile(path.Join("docs", args[0]+".md"))
		if err != nil {
			return errors.Wrapf(err, errors.ErrInvalidInput, "no documentation for %q", args[0])
		}

		renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			// Plain text is better than no text.
			fmt.Fprint(cmd.OutOrStdout(), string(content))
			return nil
		}
		rendered, err := renderer.Render(string(content))
		if err != nil {
			fmt.Fprint(cmd.OutOrStdout(), string(content))
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
