// Package terminal provides rich terminal output with colors and tables
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/ui/styles"
	"github.com/arthur-debert/pipis/pkg/ui/summary"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Renderer provides styled terminal output
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderResult renders a command result with terminal styling
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case types.Report:
		for _, line := range summary.Report(v) {
			if err := r.println(styleLine(line)); err != nil {
				return err
			}
		}
		return nil
	case types.Listing:
		return r.renderListing(v)
	case types.FreezeList:
		for _, req := range v.Requirements {
			name, version, _ := strings.Cut(req, "==")
			if err := r.println(styles.Get("Package").Render(name) + "==" + styles.Get("Version").Render(version)); err != nil {
				return err
			}
		}
		return nil
	case types.SearchResult:
		out := strings.TrimRight(v.Output, "\n")
		if !v.Found {
			out = styles.Get("Warning").Render(out)
		}
		return r.println(out)
	case types.VersionInfo:
		return r.println(fmt.Sprintf("pipis version: %s\n%s",
			styles.Get("Version").Render(v.Version),
			styles.Get("Muted").Render(fmt.Sprintf("commit %s, built %s", v.Commit, v.Date))))
	default:
		return r.println(fmt.Sprintf("%+v", result))
	}
}

func styleLine(line summary.Line) string {
	switch line.Kind {
	case summary.KindSuccess:
		return styles.Get("Success").Render("✓") + " " + line.Text
	case summary.KindWarning:
		return styles.Get("Warning").Render("! " + line.Text)
	default:
		return styles.Get("Info").Render(line.Text)
	}
}

func (r *Renderer) renderListing(l types.Listing) error {
	if len(l.Packages) == 0 {
		return r.println(styles.Get("Muted").Render("No packages installed"))
	}

	rows := make([][]string, 0, len(l.Packages))
	for _, p := range l.Packages {
		rows = append(rows, []string{p.Name, p.Version})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Get("TableBorder")).
		Headers("Package", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Get("TableHeader")
			}
			cell := styles.Get("TableCell")
			if col == 1 && row < len(rows) && rows[row][1] == types.UnknownVersion {
				return cell.Inherit(styles.Get("Muted"))
			}
			return cell
		})

	return r.println(t.String())
}

// RenderError renders an error in the error style
func (r *Renderer) RenderError(err error) error {
	return r.println(styles.Get("Error").Render("Error:") + " " + summary.Error(err))
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.println(msg)
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.output, s)
	return err
}
