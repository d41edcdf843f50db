// Package tonl stages raw content into temp files and delegates to the
// external tonl converter binary. The converter itself is an opaque
// collaborator; this package only handles input translation, argument
// reconstruction, and exit-code passthrough.
package tonl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultBin is the converter binary resolved on PATH.
const DefaultBin = "tonl"

// InstallHint is printed when the converter binary is missing.
const InstallHint = "Error: tonl CLI not found. Install with: npm install -g tonl"

// ErrUsage marks bad or missing arguments. Callers map it to exit 1.
var ErrUsage = errors.New("usage error")

// Shim invokes the tonl binary with content staged into temp files.
// Zero-value writers default to the process's own stdio.
type Shim struct {
	Bin    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns a Shim bound to the default binary and process stdio.
func New() *Shim {
	return &Shim{
		Bin:    DefaultBin,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// SuffixFor picks the temp-file suffix for an operation's content.
// encode always takes JSON input and decode always takes TONL; anything
// else is sniffed by the leading non-whitespace character. The sniff is
// a heuristic, not a parse: top-level JSON arrays land on .tonl.
func SuffixFor(operation, content string) string {
	switch operation {
	case "encode":
		return ".json"
	case "decode":
		return ".tonl"
	}
	if strings.HasPrefix(strings.TrimSpace(content), "{") {
		return ".json"
	}
	return ".tonl"
}

// stage writes content to a fresh temp file with the given suffix.
// The caller owns the file and must remove it.
func stage(content, suffix string) (string, error) {
	f, err := os.CreateTemp("", "skillkit-*"+suffix)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Run stages content, invokes the converter, and returns its exit code.
// Temp files are removed on every exit path, including converter failure.
// A missing binary prints the install hint and returns exit 1.
func (s *Shim) Run(operation, content string, extra []string) (int, error) {
	if operation == "validate" {
		return s.runValidate(content, extra)
	}

	file, err := stage(content, SuffixFor(operation, content))
	if err != nil {
		return 1, err
	}
	defer os.Remove(file)

	args := append([]string{operation, file}, extra...)
	return s.invoke(args)
}

// runValidate stages schema and data as two independent .tonl files and
// calls `tonl validate --schema <schema> <data> [rest...]`.
func (s *Shim) runValidate(schemaContent string, extra []string) (int, error) {
	if len(extra) < 1 {
		return 1, fmt.Errorf("%w: validate requires schema and data content", ErrUsage)
	}
	dataContent := extra[0]
	rest := extra[1:]

	schemaFile, err := stage(schemaContent, ".tonl")
	if err != nil {
		return 1, err
	}
	defer os.Remove(schemaFile)

	dataFile, err := stage(dataContent, ".tonl")
	if err != nil {
		return 1, err
	}
	defer os.Remove(dataFile)

	args := append([]string{"validate", "--schema", schemaFile, dataFile}, rest...)
	return s.invoke(args)
}

// invoke runs the converter with inherited stdio and mirrors its exit code.
func (s *Shim) invoke(args []string) (int, error) {
	bin := s.Bin
	if bin == "" {
		bin = DefaultBin
	}

	cmd := exec.Command(bin, args...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		fmt.Fprintln(s.errWriter(), InstallHint)
		return 1, nil
	}
	return 1, err
}

func (s *Shim) errWriter() io.Writer {
	if s.Stderr != nil {
		return s.Stderr
	}
	return os.Stderr
}
