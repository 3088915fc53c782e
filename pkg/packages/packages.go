// Package packages parses and normalizes package references such as
// "black", "black==24.1.0" or "httpie[socks]>=3,<4".
package packages

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/arthur-debert/pipis/pkg/errors"
)

var (
	nameRe       = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?`)
	specifierRe  = regexp.MustCompile(`^(===|==|!=|~=|<=|>=|<|>)([A-Za-z0-9.*+!_-]+)$`)
	unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9.]+`)
	unsafeExtra  = regexp.MustCompile(`[^A-Za-z0-9.-]+`)
	canonicalRe  = regexp.MustCompile(`[-_.]+`)
)

// Ref is a normalized package reference
type Ref struct {
	// Name is the normalized project name, also used as the environment name
	Name string
	// VersionSpec is the sorted, comma-joined specifier set; empty means latest
	VersionSpec string
	Extras      []string
}

// Parse normalizes a raw package reference. An environment marker after ';'
// is accepted and dropped.
func Parse(raw string) (Ref, error) {
	spec := raw
	if i := strings.Index(spec, ";"); i >= 0 {
		spec = spec[:i]
	}
	spec = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, spec)

	name := nameRe.FindString(spec)
	if name == "" {
		return Ref{}, invalid(raw, "missing package name")
	}
	rest := spec[len(name):]

	var extras []string
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return Ref{}, invalid(raw, "unterminated extras")
		}
		for _, extra := range strings.Split(rest[1:end], ",") {
			if extra == "" {
				continue
			}
			if nameRe.FindString(extra) != extra {
				return Ref{}, invalid(raw, "invalid extra "+extra)
			}
			extras = append(extras, strings.ToLower(unsafeExtra.ReplaceAllString(extra, "_")))
		}
		sort.Strings(extras)
		rest = rest[end+1:]
	}

	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = rest[1 : len(rest)-1]
	}

	var specifiers []string
	if rest != "" {
		for _, part := range strings.Split(rest, ",") {
			if !specifierRe.MatchString(part) {
				return Ref{}, invalid(raw, "invalid version specifier "+part)
			}
			specifiers = append(specifiers, part)
		}
		sort.Strings(specifiers)
	}

	return Ref{
		Name:        unsafeNameRe.ReplaceAllString(name, "-"),
		VersionSpec: strings.Join(specifiers, ","),
		Extras:      extras,
	}, nil
}

// MustParse is Parse for references known to be valid
func MustParse(raw string) Ref {
	ref, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return ref
}

// Requirement is the form passed to pip
func (r Ref) Requirement() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[")
		b.WriteString(strings.Join(r.Extras, ","))
		b.WriteString("]")
	}
	b.WriteString(r.VersionSpec)
	return b.String()
}

func (r Ref) String() string {
	return r.Requirement()
}

// Canonical returns the PEP 503 form of a project name
func Canonical(name string) string {
	return canonicalRe.ReplaceAllString(strings.ToLower(name), "-")
}

func invalid(raw, reason string) *errors.PipisError {
	return errors.Newf(errors.ErrInvalidPackageSpec, "invalid package reference %q: %s", raw, reason).
		WithDetail("spec", raw)
}
