// Package summary turns command results into the human-readable lines shared
// by the terminal and text renderers.
package summary

import (
	"fmt"

	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/types"
)

// Kind classifies a line for styling
type Kind int

const (
	KindSuccess Kind = iota
	KindWarning
	KindInfo
)

// Line is one message of a report
type Line struct {
	Kind    Kind
	Package string
	Text    string
}

var verbs = map[string]string{
	types.CommandInstall:   "installed",
	types.CommandUpdate:    "updated",
	types.CommandUninstall: "uninstalled",
}

// Report describes every package of r in processing order, followed by one
// warning per skipped link
func Report(r types.Report) []Line {
	var lines []Line
	for _, p := range r.Packages {
		lines = append(lines, packageLine(r.Command, p))
		for _, l := range p.Links {
			if l.Status != types.LinkSkipped {
				continue
			}
			lines = append(lines, Line{
				Kind:    KindWarning,
				Package: p.Name,
				Text:    fmt.Sprintf("Not linking %s: %s already exists (use --upgrade to replace it)", l.Script, l.Link),
			})
		}
	}
	return lines
}

func packageLine(command string, p types.PackageResult) Line {
	if p.Outcome == types.OutcomeNotInstalled {
		return Line{Kind: KindWarning, Package: p.Name, Text: NotInstalled(p.Name, p.Suggestion)}
	}

	verb, ok := verbs[command]
	if !ok {
		verb = string(p.Outcome)
	}
	text := fmt.Sprintf("Successfully %s %s", verb, p.Name)

	switch p.Outcome {
	case types.OutcomeUninstalled:
	case types.OutcomeUpgraded, types.OutcomeDowngraded:
		text += fmt.Sprintf(" %s -> %s", p.PreviousVersion, p.Version)
	default:
		if p.Version != "" {
			text += " " + p.Version
		}
	}
	return Line{Kind: KindSuccess, Package: p.Name, Text: text}
}

// NotInstalled is the message for a package without an environment
func NotInstalled(name, suggestion string) string {
	msg := fmt.Sprintf("Package %s is not installed", name)
	if suggestion != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", suggestion)
	}
	return msg
}

// Error returns the user-facing message for err, with a name suggestion
// when the error carries one
func Error(err error) string {
	msg := errors.UserMessage(err)
	if s, ok := errors.GetErrorDetails(err)["suggestion"].(string); ok && s != "" {
		msg += fmt.Sprintf(", did you mean '%s'?", s)
	}
	return msg
}
