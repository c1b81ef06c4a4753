package plan

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/unixpariah/nh/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// Renderer writes the human-legible plan report. Color is applied only
// when the output is a terminal that supports it.
type Renderer struct {
	Out   io.Writer
	Color bool
}

// NewRenderer creates a renderer for out, auto-detecting color
// support.
func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) && termenv.NewOutput(f).ColorProfile() != termenv.Ascii
	}
	return &Renderer{Out: out, Color: color}
}

// Render writes the full report: policy header, legend, GC roots, then
// every profile with its generations newest-first.
func (r *Renderer) Render(p *types.Plan) {
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, r.header("Welcome to nh clean"))
	fmt.Fprintf(r.Out, "Keeping %d generation(s)\n", p.Keep)
	fmt.Fprintf(r.Out, "Keeping paths newer than %s\n", p.KeepSince)
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "legend:")
	fmt.Fprintf(r.Out, "%s: path regular expression to be matched\n", r.re())
	fmt.Fprintf(r.Out, "%s: path to be kept\n", r.ok())
	fmt.Fprintf(r.Out, "%s: path to be removed\n", r.del())
	fmt.Fprintln(r.Out)

	if len(p.Roots) > 0 {
		fmt.Fprintln(r.Out, r.group("gcroots (matching the following regex patterns)"))
		for _, pat := range p.Patterns {
			fmt.Fprintf(r.Out, "- %s  %s\n", r.re(), pat)
		}
		for _, root := range p.Roots {
			fmt.Fprintf(r.Out, "- %s %s\n", r.tag(root.Remove), root.Destination)
		}
		fmt.Fprintln(r.Out)
	}

	for _, profile := range p.ProfilePaths() {
		fmt.Fprintln(r.Out, r.group(profile))
		set := p.Profiles[profile]
		for i := len(set) - 1; i >= 0; i-- {
			fmt.Fprintf(r.Out, "- %s %s\n", r.tag(set[i].Remove), set[i].Path)
		}
		fmt.Fprintln(r.Out)
	}
}

func (r *Renderer) tag(remove bool) string {
	if remove {
		return r.del()
	}
	return r.ok()
}

func (r *Renderer) del() string {
	if r.Color {
		return pterm.NewStyle(pterm.FgRed).Sprint("DEL")
	}
	return "DEL"
}

func (r *Renderer) ok() string {
	if r.Color {
		return pterm.NewStyle(pterm.FgGreen).Sprint("OK ")
	}
	return "OK "
}

func (r *Renderer) re() string {
	if r.Color {
		return pterm.NewStyle(pterm.FgMagenta).Sprint("RE")
	}
	return "RE"
}

func (r *Renderer) header(s string) string {
	if r.Color {
		return headerStyle.Render(s)
	}
	return s
}

func (r *Renderer) group(s string) string {
	if r.Color {
		return groupStyle.Render(s)
	}
	return s
}
