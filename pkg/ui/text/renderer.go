// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/pipis/pkg/types"
	"github.com/arthur-debert/pipis/pkg/ui/summary"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderResult renders a command result as plain text
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case types.Report:
		for _, line := range summary.Report(v) {
			if err := r.RenderMessage(line.Text); err != nil {
				return err
			}
		}
		return nil
	case types.Listing:
		return r.renderListing(v)
	case types.FreezeList:
		for _, req := range v.Requirements {
			if err := r.RenderMessage(req); err != nil {
				return err
			}
		}
		return nil
	case types.SearchResult:
		return r.RenderMessage(strings.TrimRight(v.Output, "\n"))
	case types.VersionInfo:
		_, err := fmt.Fprintf(r.output, "pipis version: %s\ncommit: %s\nbuilt: %s\n", v.Version, v.Commit, v.Date)
		return err
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

func (r *Renderer) renderListing(l types.Listing) error {
	w := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Package\tVersion")
	fmt.Fprintln(w, "-------\t-------")
	for _, p := range l.Packages {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Version)
	}
	return w.Flush()
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %s\n", summary.Error(err))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
