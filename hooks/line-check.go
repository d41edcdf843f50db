//go:build ignore

// Standalone pre-flight check, runnable without installing the binary:
//
//	go run hooks/line-check.go <file>
package main

import (
	"fmt"
	"os"

	"skillkit/gate"
	"skillkit/limits"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: line-check <file>")
		os.Exit(1)
	}

	v, err := gate.Check(os.Args[1], limits.LargeFileLines)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(v.Decision)
	fmt.Printf("LINE_COUNT=%d\n", v.LineCount)
	fmt.Println(v.Explanation())
}
