package manager

import (
	"github.com/arthur-debert/pipis/pkg/errors"
	"github.com/arthur-debert/pipis/pkg/packages"
	"github.com/arthur-debert/pipis/pkg/requirements"
)

// Usage error messages
const (
	MsgMissingArgs          = "missing arguments/options"
	MsgTooManyArgs          = "too many arguments/options"
	MsgDependencyMultiple   = "cannot add dependency to multiple packages"
	MsgUnsupportedLibrary   = "library installation is not supported by pipis"
	MsgRequirementFileEmpty = "requirements file lists no packages"
)

// Targets names the packages a command applies to: explicit names or a
// requirements file, never both
type Targets struct {
	Names       []string
	Requirement string
}

// IsEmpty reports whether neither names nor a file were given
func (t Targets) IsEmpty() bool {
	return len(t.Names) == 0 && t.Requirement == ""
}

// resolve validates and parses targets. When allowEmpty is false, empty
// targets are a usage error; otherwise they resolve to no refs.
func (m *Manager) resolve(t Targets, allowEmpty bool) ([]packages.Ref, error) {
	if len(t.Names) > 0 && t.Requirement != "" {
		return nil, errors.New(errors.ErrUsage, MsgTooManyArgs)
	}
	if t.IsEmpty() {
		if allowEmpty {
			return nil, nil
		}
		return nil, errors.New(errors.ErrUsage, MsgMissingArgs)
	}

	raw := t.Names
	if t.Requirement != "" {
		lines, err := requirements.ReadFile(m.fs, t.Requirement)
		if err != nil {
			return nil, err
		}
		if len(lines) == 0 {
			return nil, errors.New(errors.ErrUsage, MsgRequirementFileEmpty).
				WithDetail("path", t.Requirement)
		}
		raw = lines
	}

	refs := make([]packages.Ref, 0, len(raw))
	for _, r := range raw {
		ref, err := packages.Parse(r)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func refNames(refs []packages.Ref) []string {
	if refs == nil {
		return nil
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}
