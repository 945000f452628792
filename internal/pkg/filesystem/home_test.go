package filesystem

import (
	"path/filepath"
	"testing"
)

func TestExpandPathTilde(t *testing.T) {
	got := ExpandPath("~/rules.yaml")
	want := filepath.Join(UserHomeDir(), "rules.yaml")
	if got != want {
		t.Fatalf("ExpandPath(~/rules.yaml) = %q, want %q", got, want)
	}
}

func TestExpandPathAbsolutePassesThrough(t *testing.T) {
	if got := ExpandPath("/etc/osai.yaml"); got != "/etc/osai.yaml" {
		t.Fatalf("ExpandPath(/etc/osai.yaml) = %q", got)
	}
}

func TestExpandPathRelativeStaysWorkingDirRelative(t *testing.T) {
	// Relative paths are cleaned, not rehomed under the home directory.
	if got := ExpandPath("./conf/../rules.yaml"); got != "rules.yaml" {
		t.Fatalf("ExpandPath(./conf/../rules.yaml) = %q", got)
	}
}

func TestExpandPathEmpty(t *testing.T) {
	if got := ExpandPath(""); got != "" {
		t.Fatalf("ExpandPath(\"\") = %q", got)
	}
}
