package main

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/pipis/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"usage", errors.New(errors.ErrUsage, "missing arguments/options"), 2},
		{"wrapped usage", errors.Wrap(errors.New(errors.ErrUsage, "bad flag"), errors.ErrInternal, "outer"), 2},
		{"not installed", errors.New(errors.ErrNotInstalled, "Package demo is not installed"), 1},
		{"plain", stderrors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
