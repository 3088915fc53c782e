// Package filesystem provides filesystem implementations for pipis.
//
// This package contains implementations of the types.FS interface:
// the OS filesystem used at runtime and an afero-backed one for tests.
package filesystem
