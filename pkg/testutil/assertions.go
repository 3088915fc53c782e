package testutil

import (
	"os"
	"testing"
)

// AssertSymlink checks that link is a symlink pointing at target
func AssertSymlink(t *testing.T, link, target string) {
	t.Helper()

	info, err := os.Lstat(link)
	if err != nil {
		t.Errorf("Link does not exist: %s", link)
		return
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("Expected symlink at %s, got mode %v", link, info.Mode())
		return
	}
	got, err := os.Readlink(link)
	if err != nil {
		t.Errorf("Cannot read link %s: %v", link, err)
		return
	}
	if got != target {
		t.Errorf("Link %s points at %s, want %s", link, got, target)
	}
}

// AssertNotExists checks that nothing, not even a dangling link, is at path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Lstat(path); err == nil {
		t.Errorf("Expected %s not to exist", path)
	}
}

// AssertDirExists checks that a directory exists
func AssertDirExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("Directory does not exist: %s", path)
	}
}

// AssertFileExists checks that a regular file exists
func AssertFileExists(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		t.Errorf("File does not exist: %s", path)
	}
}
