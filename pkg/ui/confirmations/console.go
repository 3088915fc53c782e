// Package confirmations asks the user to approve mutating commands.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/pipis/pkg/errors"
)

// Prompt is the question shown before a mutating command runs
const Prompt = "Do you want to continue [y/N]? "

// ConsoleDialog reads answers from a line-oriented input
type ConsoleDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDialog creates a dialog reading from in and writing to out
func NewConsoleDialog(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

// Confirm prints the summary lines and the prompt, then reports whether the
// answer was y or yes. End of input counts as no.
func (d *ConsoleDialog) Confirm(summary ...string) (bool, error) {
	for _, line := range summary {
		if _, err := fmt.Fprintln(d.out, line); err != nil {
			return false, err
		}
	}
	if _, err := fmt.Fprint(d.out, Prompt); err != nil {
		return false, err
	}

	answer, err := d.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to read user input")
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
