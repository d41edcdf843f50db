// Package watch provides a file system watcher daemon that tracks which
// files sit above the delegation threshold as they change.
package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"skillkit/scanner"
)

// StateDir is the per-project directory for daemon artifacts.
const StateDir = ".skillkit"

// Event represents a file change event with its gate context.
type Event struct {
	Time      time.Time `json:"time"`
	Op        string    `json:"op"`   // CREATE, WRITE, REMOVE, RENAME
	Path      string    `json:"path"` // relative path
	Language  string    `json:"lang,omitempty"`
	Lines     int       `json:"lines,omitempty"`
	Delta     int       `json:"delta,omitempty"` // line count change (+/-)
	Oversized bool      `json:"oversized,omitempty"`
	Crossed   string    `json:"crossed,omitempty"` // UP when a file newly needs delegation, DOWN when it stops
}

// FileState tracks lightweight per-file state for delta calculations.
type FileState struct {
	Lines int
	Size  int64
}

// Graph holds the live file state the daemon maintains.
type Graph struct {
	mu        sync.RWMutex
	Root      string
	Threshold int
	Files     map[string]*scanner.FileInfo
	State     map[string]*FileState
	Events    []Event
	LastScan  time.Time
}

// Daemon keeps the graph updated from file system events.
type Daemon struct {
	root       string
	threshold  int
	extensions map[string]bool
	debounce   time.Duration
	graph      *Graph
	watcher    *fsnotify.Watcher
	gitCache   *scanner.GitIgnoreCache
	eventLog   string
	verbose    bool
	done       chan struct{}
}

// Options configures a Daemon.
type Options struct {
	Threshold  int
	Extensions []string
	Debounce   time.Duration
	Verbose    bool
}

// NewDaemon creates a watch daemon for the given root.
func NewDaemon(root string, opts Options) (*Daemon, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid root path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	exts := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts[strings.ToLower(e)] = true
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}

	d := &Daemon{
		root:       absRoot,
		threshold:  opts.Threshold,
		extensions: exts,
		debounce:   opts.Debounce,
		watcher:    watcher,
		gitCache:   scanner.NewGitIgnoreCache(root),
		verbose:    opts.Verbose,
		done:       make(chan struct{}),
		eventLog:   filepath.Join(absRoot, StateDir, "events.log"),
		graph: &Graph{
			Root:      absRoot,
			Threshold: opts.Threshold,
			Files:     make(map[string]*scanner.FileInfo),
			State:     make(map[string]*FileState),
			Events:    make([]Event, 0),
		},
	}

	return d, nil
}

// Start begins watching and returns immediately.
func (d *Daemon) Start() error {
	if err := os.MkdirAll(filepath.Join(d.root, StateDir), 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", StateDir, err)
	}

	if err := d.fullScan(); err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}

	if err := d.addWatchDirs(); err != nil {
		return fmt.Errorf("failed to add watch dirs: %w", err)
	}

	// Write initial state for hooks to read immediately
	d.writeState()

	go d.eventLoop()

	return nil
}

// StopWatching shuts down the daemon's watcher.
func (d *Daemon) StopWatching() {
	close(d.done)
	d.watcher.Close()
}

// fullScan does a complete scan of the project.
func (d *Daemon) fullScan() error {
	start := time.Now()

	files, err := scanner.ScanFiles(d.root, d.gitCache)
	if err != nil {
		return err
	}

	d.graph.mu.Lock()
	d.graph.Files = make(map[string]*scanner.FileInfo)
	d.graph.State = make(map[string]*FileState)
	for i := range files {
		f := &files[i]
		if !d.tracked(f.Path) {
			continue
		}
		d.graph.Files[f.Path] = f
		d.graph.State[f.Path] = &FileState{Lines: f.Lines, Size: f.Size}
	}
	d.graph.LastScan = time.Now()
	d.graph.mu.Unlock()

	if d.verbose {
		fmt.Printf("[watch] Full scan: %d files in %v\n", len(files), time.Since(start))
	}

	return nil
}

// addWatchDirs recursively adds directories to the watcher.
func (d *Daemon) addWatchDirs() error {
	return filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}

		name := info.Name()
		if info.IsDir() {
			if strings.HasPrefix(name, ".") && path != d.root {
				return filepath.SkipDir
			}
			if scanner.IgnoredDirs[name] {
				return filepath.SkipDir
			}
			return d.watcher.Add(path)
		}
		return nil
	})
}

// eventLoop processes file system events.
func (d *Daemon) eventLoop() {
	// Debounce rapid changes (e.g., save + format)
	debounce := make(map[string]time.Time)

	for {
		select {
		case <-d.done:
			return

		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}

			if !d.tracked(event.Name) {
				continue
			}

			if last, exists := debounce[event.Name]; exists {
				if time.Since(last) < d.debounce {
					continue
				}
			}
			debounce[event.Name] = time.Now()

			d.handleEvent(event)

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			if d.verbose {
				fmt.Printf("[watch] Error: %v\n", err)
			}
		}
	}
}

// tracked checks if a file should be watched.
func (d *Daemon) tracked(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if len(d.extensions) == 0 {
		return ext != ""
	}
	return d.extensions[ext]
}

// handleEvent processes a single file event.
func (d *Daemon) handleEvent(fsEvent fsnotify.Event) {
	relPath, err := filepath.Rel(d.root, fsEvent.Name)
	if err != nil {
		relPath = fsEvent.Name
	}

	var op string
	switch {
	case fsEvent.Op&fsnotify.Create != 0:
		op = "CREATE"
	case fsEvent.Op&fsnotify.Write != 0:
		op = "WRITE"
	case fsEvent.Op&fsnotify.Remove != 0:
		op = "REMOVE"
	case fsEvent.Op&fsnotify.Rename != 0:
		op = "RENAME"
	default:
		return
	}

	event := Event{
		Time:     time.Now(),
		Op:       op,
		Path:     relPath,
		Language: scanner.DetectLanguage(relPath),
	}

	d.graph.mu.Lock()
	switch op {
	case "CREATE", "WRITE":
		if info, err := os.Stat(fsEvent.Name); err == nil && !info.IsDir() {
			newLines := scanner.CountFileLines(fsEvent.Name)
			event.Lines = newLines
			event.Oversized = newLines > d.threshold

			wasOver := false
			if prev, exists := d.graph.State[relPath]; exists {
				event.Delta = newLines - prev.Lines
				wasOver = prev.Lines > d.threshold
			} else {
				event.Delta = newLines // new file, all lines are added
			}

			// Record threshold crossings in either direction
			if event.Oversized && !wasOver {
				event.Crossed = "UP"
			} else if !event.Oversized && wasOver {
				event.Crossed = "DOWN"
			}

			d.graph.State[relPath] = &FileState{Lines: newLines, Size: info.Size()}
			d.graph.Files[relPath] = &scanner.FileInfo{
				Path:  relPath,
				Size:  info.Size(),
				Ext:   filepath.Ext(relPath),
				Lines: newLines,
			}
		}

	case "REMOVE", "RENAME":
		if prev, exists := d.graph.State[relPath]; exists {
			event.Lines = 0
			event.Delta = -prev.Lines
		}
		delete(d.graph.Files, relPath)
		delete(d.graph.State, relPath)
	}

	d.graph.Events = append(d.graph.Events, event)
	d.graph.mu.Unlock()

	d.logEvent(event)

	if d.verbose {
		deltaStr := ""
		if event.Delta != 0 {
			deltaStr = fmt.Sprintf(" (%+d lines)", event.Delta)
		}
		crossStr := ""
		switch event.Crossed {
		case "UP":
			crossStr = " [now DELEGATE]"
		case "DOWN":
			crossStr = " [now PROCEED]"
		}
		fmt.Printf("[watch] %s %s %s%s%s\n", event.Time.Format("15:04:05"), op, relPath, deltaStr, crossStr)
	}
}

// logEvent appends an event to the log file.
func (d *Daemon) logEvent(e Event) {
	f, err := os.OpenFile(d.eventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	deltaStr := ""
	if e.Delta > 0 {
		deltaStr = fmt.Sprintf("+%d", e.Delta)
	} else if e.Delta < 0 {
		deltaStr = fmt.Sprintf("%d", e.Delta)
	}

	crossStr := ""
	if e.Crossed != "" {
		crossStr = "crossed-" + strings.ToLower(e.Crossed)
	}

	line := fmt.Sprintf("%s | %-6s | %-40s | %4d | %6s | %s\n",
		e.Time.Format("2006-01-02 15:04:05"),
		e.Op,
		e.Path,
		e.Lines,
		deltaStr,
		crossStr,
	)
	f.WriteString(line)

	// Update state file for hooks to read
	d.writeState()
}

// State represents the daemon state that hooks can read.
type State struct {
	UpdatedAt    time.Time          `json:"updated_at"`
	Threshold    int                `json:"threshold"`
	FileCount    int                `json:"file_count"`
	Oversized    []scanner.FileInfo `json:"oversized"`
	RecentEvents []Event            `json:"recent_events"` // last 50 events for timeline
}

// writeState persists current state for hooks to read.
func (d *Daemon) writeState() {
	d.graph.mu.RLock()
	defer d.graph.mu.RUnlock()

	events := d.graph.Events
	if len(events) > 50 {
		events = events[len(events)-50:]
	}

	files := make([]scanner.FileInfo, 0, len(d.graph.Files))
	for _, f := range d.graph.Files {
		files = append(files, *f)
	}

	state := State{
		UpdatedAt:    time.Now(),
		Threshold:    d.threshold,
		FileCount:    len(d.graph.Files),
		Oversized:    scanner.Oversized(files, d.threshold),
		RecentEvents: events,
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}

	stateFile := filepath.Join(d.root, StateDir, "state.json")
	os.WriteFile(stateFile, data, 0644)
}

// FileCount returns current tracked file count.
func (d *Daemon) FileCount() int {
	d.graph.mu.RLock()
	defer d.graph.mu.RUnlock()
	return len(d.graph.Files)
}

// GetEvents returns recent events (thread-safe).
func (d *Daemon) GetEvents(limit int) []Event {
	d.graph.mu.RLock()
	defer d.graph.mu.RUnlock()

	events := d.graph.Events
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// ReadState reads the daemon state from disk (for hooks to use).
// Returns nil if state doesn't exist, or if it is stale and the daemon
// is no longer running.
func ReadState(root string) *State {
	stateFile := filepath.Join(root, StateDir, "state.json")
	data, err := os.ReadFile(stateFile)
	if err != nil {
		return nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil
	}

	if time.Since(state.UpdatedAt) > 30*time.Second && !IsRunning(root) {
		return nil
	}

	return &state
}

// WritePID writes the daemon PID to .skillkit/watch.pid
func WritePID(root string) error {
	pidFile := filepath.Join(root, StateDir, "watch.pid")
	return os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPID reads the daemon PID from .skillkit/watch.pid
func ReadPID(root string) (int, error) {
	pidFile := filepath.Join(root, StateDir, "watch.pid")
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0, err
	}
	var pid int
	_, err = fmt.Sscanf(string(data), "%d", &pid)
	return pid, err
}

// RemovePID removes the PID file
func RemovePID(root string) {
	pidFile := filepath.Join(root, StateDir, "watch.pid")
	os.Remove(pidFile)
}

// IsRunning checks if the daemon is running
func IsRunning(root string) bool {
	pid, err := ReadPID(root)
	if err != nil {
		return false
	}
	// Check if process exists by sending signal 0
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds, so send signal 0 to check
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}

// Stop sends SIGTERM to the daemon process
func Stop(root string) error {
	pid, err := ReadPID(root)
	if err != nil {
		return fmt.Errorf("no daemon running: %w", err)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	// Clean up PID file
	RemovePID(root)
	return nil
}
