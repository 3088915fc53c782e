package cli

import (
	"io"

	"github.com/pterm/pterm"
)

// progressBar shows a pterm progress bar over multi-package runs
type progressBar struct {
	w       io.Writer
	label   string
	current string
	bar     *pterm.ProgressbarPrinter
}

func newProgressBar(w io.Writer) *progressBar {
	return &progressBar{w: w}
}

func (p *progressBar) Start(label string, total int) {
	p.label, p.current = label, ""
	if total < 2 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(label).
		WithWriter(p.w).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return
	}
	p.bar = bar
}

func (p *progressBar) Step(name string) {
	if p.bar == nil {
		return
	}
	if p.current != "" {
		p.bar.Increment()
	}
	p.current = name
	p.bar.UpdateTitle(p.label + " " + name)
}

func (p *progressBar) Done() {
	if p.bar == nil {
		return
	}
	if p.current != "" {
		p.bar.Increment()
	}
	_, _ = p.bar.Stop()
	p.bar = nil
}
