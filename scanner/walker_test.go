package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIgnoredDirs(t *testing.T) {
	// Verify common directories are in the ignored list
	expectedIgnored := []string{
		".git", "node_modules", "vendor", "__pycache__",
		".venv", "dist", "target", ".gradle", ".skillkit",
	}

	for _, dir := range expectedIgnored {
		if !IgnoredDirs[dir] {
			t.Errorf("Expected %q to be in IgnoredDirs", dir)
		}
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func TestScanFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":            "package main\n\nfunc main() {}\n",
		"README.md":          "# readme\n",
		"src/app.go":         "package src\n",
		"src/util/helper.go": "package util\n",
	})

	files, err := ScanFiles(tmpDir, NewGitIgnoreCache(tmpDir))
	if err != nil {
		t.Fatalf("ScanFiles failed: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("Expected 4 files, got %d", len(files))
	}

	byPath := make(map[string]FileInfo)
	for _, f := range files {
		byPath[f.Path] = f
	}

	mainGo, ok := byPath["main.go"]
	if !ok {
		t.Fatal("main.go missing from scan results")
	}
	if mainGo.Lines != 3 {
		t.Errorf("main.go line count = %d, want 3", mainGo.Lines)
	}
	if mainGo.Ext != ".go" {
		t.Errorf("main.go ext = %q, want .go", mainGo.Ext)
	}

	if _, ok := byPath[filepath.Join("src", "util", "helper.go")]; !ok {
		t.Error("Nested file missing from scan results")
	}
}

func TestScanFilesRespectsGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":     "ignored.txt\ngenerated/\n",
		"kept.txt":       "kept\n",
		"ignored.txt":    "should not appear\n",
		"generated/x.go": "package x\n",
	})

	files, err := ScanFiles(tmpDir, NewGitIgnoreCache(tmpDir))
	if err != nil {
		t.Fatalf("ScanFiles failed: %v", err)
	}

	for _, f := range files {
		if f.Path == "ignored.txt" || strings.HasPrefix(f.Path, "generated") {
			t.Errorf("Gitignored file %s should be skipped", f.Path)
		}
	}
}

func TestScanFilesNestedGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"sub/.gitignore": "local.txt\n",
		"sub/local.txt":  "ignored by nested rule\n",
		"sub/kept.txt":   "kept\n",
		"local.txt":      "not covered by the nested rule\n",
	})

	files, err := ScanFiles(tmpDir, NewGitIgnoreCache(tmpDir))
	if err != nil {
		t.Fatalf("ScanFiles failed: %v", err)
	}

	byPath := make(map[string]bool)
	for _, f := range files {
		byPath[f.Path] = true
	}

	if byPath[filepath.Join("sub", "local.txt")] {
		t.Error("Nested .gitignore rule should apply inside sub/")
	}
	if !byPath["local.txt"] {
		t.Error("Root local.txt is outside the nested rule's scope")
	}
	if !byPath[filepath.Join("sub", "kept.txt")] {
		t.Error("sub/kept.txt should survive the scan")
	}
}

func TestOversized(t *testing.T) {
	files := []FileInfo{
		{Path: "small.go", Lines: 10},
		{Path: "big.go", Lines: 2500},
		{Path: "edge.go", Lines: 1000},
		{Path: "huge.py", Lines: 4000},
	}

	over := Oversized(files, 1000)
	if len(over) != 2 {
		t.Fatalf("Expected 2 oversized files, got %d", len(over))
	}
	if over[0].Path != "huge.py" || over[1].Path != "big.go" {
		t.Errorf("Oversized should sort largest first, got %v", over)
	}
}

func TestCountFileLinesMissing(t *testing.T) {
	if got := CountFileLines(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("Missing file should count 0 lines, got %d", got)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b.go", "go"},
		{"x.py", "py"},
		{"data.tonl", "tonl"},
		{"data.json", "json"},
		{"Makefile", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
