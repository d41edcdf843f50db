package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"skillkit/scanner"
)

func writeState(t *testing.T, root string, state State) {
	t.Helper()
	dir := filepath.Join(root, StateDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create %s dir: %v", StateDir, err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal state: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "state.json"), data, 0644); err != nil {
		t.Fatalf("Failed to write state file: %v", err)
	}
}

func TestReadStateStaleButRunning(t *testing.T) {
	tmpDir := t.TempDir()
	writeState(t, tmpDir, State{
		UpdatedAt: time.Now().Add(-2 * time.Minute),
		FileCount: 42,
	})

	// Simulate running daemon by pointing pid file to current process.
	if err := WritePID(tmpDir); err != nil {
		t.Fatalf("Failed to write pid file: %v", err)
	}
	defer RemovePID(tmpDir)

	got := ReadState(tmpDir)
	if got == nil {
		t.Fatal("Expected stale state to be returned when daemon is running")
	}
	if got.FileCount != 42 {
		t.Fatalf("Expected file_count 42, got %d", got.FileCount)
	}
}

func TestReadStateStaleAndNotRunning(t *testing.T) {
	tmpDir := t.TempDir()
	writeState(t, tmpDir, State{
		UpdatedAt: time.Now().Add(-2 * time.Minute),
		FileCount: 7,
	})

	if got := ReadState(tmpDir); got != nil {
		t.Fatalf("Expected nil for stale state with no daemon, got %+v", got)
	}
}

func TestReadStateFresh(t *testing.T) {
	tmpDir := t.TempDir()
	writeState(t, tmpDir, State{
		UpdatedAt: time.Now(),
		Threshold: 1000,
		FileCount: 3,
		Oversized: []scanner.FileInfo{{Path: "big.go", Lines: 2400}},
	})

	got := ReadState(tmpDir)
	if got == nil {
		t.Fatal("Expected fresh state to be returned")
	}
	if len(got.Oversized) != 1 || got.Oversized[0].Path != "big.go" {
		t.Fatalf("Oversized not round-tripped: %+v", got.Oversized)
	}
}

func TestReadStateMissing(t *testing.T) {
	if got := ReadState(t.TempDir()); got != nil {
		t.Fatalf("Expected nil for missing state, got %+v", got)
	}
}

func TestPIDLifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, StateDir), 0755); err != nil {
		t.Fatal(err)
	}

	if IsRunning(tmpDir) {
		t.Error("No pid file written yet, daemon should not be running")
	}

	if err := WritePID(tmpDir); err != nil {
		t.Fatalf("WritePID failed: %v", err)
	}
	if !IsRunning(tmpDir) {
		t.Error("PID points at this process, IsRunning should be true")
	}

	pid, err := ReadPID(tmpDir)
	if err != nil {
		t.Fatalf("ReadPID failed: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID = %d, want %d", pid, os.Getpid())
	}

	RemovePID(tmpDir)
	if IsRunning(tmpDir) {
		t.Error("PID file removed, IsRunning should be false")
	}
}

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString("x\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestHandleEventThresholdCrossings(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, StateDir), 0755); err != nil {
		t.Fatal(err)
	}

	d, err := NewDaemon(tmpDir, Options{Threshold: 5, Extensions: []string{".go"}})
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	defer d.watcher.Close()

	target := filepath.Join(tmpDir, "file.go")

	writeLines(t, target, 3)
	d.handleEvent(fsnotify.Event{Name: target, Op: fsnotify.Create})

	writeLines(t, target, 10)
	d.handleEvent(fsnotify.Event{Name: target, Op: fsnotify.Write})

	writeLines(t, target, 2)
	d.handleEvent(fsnotify.Event{Name: target, Op: fsnotify.Write})

	events := d.GetEvents(0)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	if events[0].Crossed != "" || events[0].Oversized {
		t.Errorf("Initial small file should not cross: %+v", events[0])
	}
	if events[1].Crossed != "UP" || !events[1].Oversized {
		t.Errorf("Growth past threshold should cross UP: %+v", events[1])
	}
	if events[1].Delta != 7 {
		t.Errorf("Expected delta +7, got %d", events[1].Delta)
	}
	if events[2].Crossed != "DOWN" || events[2].Oversized {
		t.Errorf("Shrink below threshold should cross DOWN: %+v", events[2])
	}

	// State file written as a side effect of event logging.
	state := ReadState(tmpDir)
	if state == nil {
		t.Fatal("Expected state.json after events")
	}
	if state.Threshold != 5 {
		t.Errorf("State threshold = %d, want 5", state.Threshold)
	}
	if len(state.Oversized) != 0 {
		t.Errorf("File ended under threshold, oversized should be empty: %+v", state.Oversized)
	}
}

func TestHandleEventRemove(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, StateDir), 0755); err != nil {
		t.Fatal(err)
	}

	d, err := NewDaemon(tmpDir, Options{Threshold: 5, Extensions: []string{".go"}})
	if err != nil {
		t.Fatalf("NewDaemon failed: %v", err)
	}
	defer d.watcher.Close()

	target := filepath.Join(tmpDir, "gone.go")
	writeLines(t, target, 4)
	d.handleEvent(fsnotify.Event{Name: target, Op: fsnotify.Create})

	if d.FileCount() != 1 {
		t.Fatalf("Expected 1 tracked file, got %d", d.FileCount())
	}

	os.Remove(target)
	d.handleEvent(fsnotify.Event{Name: target, Op: fsnotify.Remove})

	if d.FileCount() != 0 {
		t.Errorf("Removed file should be untracked, count = %d", d.FileCount())
	}

	events := d.GetEvents(0)
	last := events[len(events)-1]
	if last.Op != "REMOVE" || last.Delta != -4 {
		t.Errorf("Remove event wrong: %+v", last)
	}
}
