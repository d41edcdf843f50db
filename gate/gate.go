// Package gate implements the pre-flight line-count check that decides
// whether a file may be read directly or must be delegated.
package gate

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Decision is the outcome of a line-count check.
type Decision string

const (
	Proceed  Decision = "PROCEED"
	Delegate Decision = "DELEGATE"
)

// Verdict carries the decision, the measured line count, and the
// threshold the count was judged against.
type Verdict struct {
	Decision  Decision
	LineCount int
	Threshold int
}

// CountLines counts lines in a file without reading it fully into memory.
// Counting is byte-level, so undecodable bytes never fail the read, and
// line length is unbounded: a minified bundle with one multi-megabyte
// line still counts as one line.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	lastByte := byte('\n')
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			lastByte = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	// A file ending mid-line still has that final line.
	if lastByte != '\n' {
		count++
	}
	return count, nil
}

// Check classifies a file against the delegation threshold.
// A missing file is an error that names the path.
func Check(path string, threshold int) (Verdict, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Verdict{}, fmt.Errorf("file not found: %s", path)
		}
		return Verdict{}, err
	}

	count, err := CountLines(path)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{Decision: Proceed, LineCount: count, Threshold: threshold}
	if count > threshold {
		v.Decision = Delegate
	}
	return v, nil
}

// Explanation returns the fixed advisory sentence for a verdict.
func (v Verdict) Explanation() string {
	if v.Decision == Delegate {
		return fmt.Sprintf("File exceeds %d lines. Claude MUST NOT read directly.", v.Threshold)
	}
	return "File within threshold. Claude may proceed normally."
}
