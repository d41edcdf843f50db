package cmd

import (
	"strings"
	"testing"
)

func TestFileMentions(t *testing.T) {
	prompt := "please refactor internal/server.go and look at data.tonl, ignore notes.txt"

	got := fileMentions(prompt)

	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "internal/server.go") {
		t.Errorf("Expected internal/server.go in mentions, got %v", got)
	}
	if !strings.Contains(joined, "data.tonl") {
		t.Errorf("Expected data.tonl in mentions, got %v", got)
	}
	if strings.Contains(joined, "notes.txt") {
		t.Errorf("txt files are not source mentions, got %v", got)
	}
}

func TestFileMentionsNone(t *testing.T) {
	if got := fileMentions("no files here at all"); len(got) != 0 {
		t.Errorf("Expected no mentions, got %v", got)
	}
}

func TestRunHookUnknown(t *testing.T) {
	err := RunHook("no-such-hook", t.TempDir())
	if err == nil {
		t.Fatal("Expected error for unknown hook")
	}
	if !strings.Contains(err.Error(), "no-such-hook") {
		t.Errorf("Error should name the hook, got: %v", err)
	}
	if !strings.Contains(err.Error(), "pre-read") {
		t.Errorf("Error should list available hooks, got: %v", err)
	}
}
