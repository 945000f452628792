package osascript

import (
	"context"
	"strings"
	"testing"
)

func TestClassifyFailurePermissionDenied(t *testing.T) {
	stderr := `execution error: Not authorized to send Apple events to Finder. (-1743)`
	guidance := ClassifyFailure(stderr)
	if !strings.Contains(guidance, "Privacy & Security") {
		t.Fatalf("expected automation permission guidance, got %q", guidance)
	}
}

func TestClassifyFailureBritishSpelling(t *testing.T) {
	stderr := `execution error: Not authorised to send Apple events to Numbers. (-1743)`
	if ClassifyFailure(stderr) == "" {
		t.Fatal("expected guidance for -1743 with British spelling")
	}
}

func TestClassifyFailureUnknownError(t *testing.T) {
	if got := ClassifyFailure("syntax error: Expected end of line (-2741)"); got != "" {
		t.Fatalf("expected no guidance, got %q", got)
	}
}

func TestRunReportsMissingBinary(t *testing.T) {
	r := NewRunner("definitely-not-osascript-binary")
	result, err := r.Run(context.Background(), `display dialog "hi"`)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result.Ran {
		t.Fatal("result.Ran must be false when exec fails")
	}
	if result.Err == nil {
		t.Fatal("result.Err must carry the failure")
	}
}
