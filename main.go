// skillkit backs coding-assistant skill extensions: a pre-flight
// line-count gate for read delegation and a shim that stages raw content
// for the external tonl converter.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillkit/cmd"
	"skillkit/config"
	"skillkit/gate"
	"skillkit/render"
	"skillkit/scanner"
	"skillkit/tonl"
	"skillkit/watch"
)

const usage = `skillkit - skill support for read delegation and tonl staging

Usage:
  skillkit check <file>                      Gate a file against the line threshold
  skillkit tonl <operation> <content> [args] Stage content and invoke tonl
  skillkit scan [dir] [--json]               Report files needing delegation
  skillkit watch <start|stop|status> [-v]    Track threshold crossings live
  skillkit context [--live]                  Show tracked delegation state
  skillkit hook <name>                       Run an assistant hook (stdin JSON)
  skillkit serve                             Serve the gate and shim over MCP
  skillkit --version

The check verdict is PROCEED or DELEGATE; files over the threshold
(default 1000 lines, see .skillkit.toml) must not be read directly.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		fmt.Print(usage)
		return 0
	case "--version", "version":
		fmt.Printf("skillkit %s\n", cmd.Version)
		return 0
	case "check":
		return runCheck(args[1:])
	case "tonl":
		return runTonl(args[1:])
	case "scan":
		return runScan(args[1:])
	case "watch":
		return runWatch(args[1:])
	case "context":
		return runContext(args[1:])
	case "hook":
		return runHook(args[1:])
	case "serve":
		return runServe()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n%s", args[0], usage)
		return 1
	}
}

func projectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func runCheck(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: skillkit check <file>")
		return 1
	}

	cfg, err := config.Load(projectRoot())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	v, err := gate.Check(args[0], cfg.Threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(v.Decision)
	fmt.Printf("LINE_COUNT=%d\n", v.LineCount)
	fmt.Println(v.Explanation())
	return 0
}

func runTonl(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: skillkit tonl <operation> <content> [args...]")
		return 1
	}

	cfg, err := config.Load(projectRoot())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	shim := tonl.New()
	shim.Bin = cfg.TonlBin

	code, err := shim.Run(args[0], args[1], args[2:])
	if err != nil {
		if errors.Is(err, tonl.ErrUsage) {
			fmt.Fprintln(os.Stderr, "Error: validate requires schema and data content")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return code
}

func runScan(args []string) int {
	root := "."
	asJSON := false
	for _, a := range args {
		switch a {
		case "--json":
			asJSON = true
		default:
			root = a
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	files, err := scanner.ScanFiles(root, scanner.NewGitIgnoreCache(root))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if asJSON {
		out := struct {
			Root      string             `json:"root"`
			Threshold int                `json:"threshold"`
			FileCount int                `json:"file_count"`
			Oversized []scanner.FileInfo `json:"oversized"`
		}{root, cfg.Threshold, len(files), scanner.Oversized(files, cfg.Threshold)}

		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	render.ScanReport(os.Stdout, root, files, cfg.Threshold, render.Styled())
	return 0
}

func runWatch(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skillkit watch <start|stop|status> [-v]")
		return 1
	}

	root := projectRoot()

	switch args[0] {
	case "start":
		verbose := false
		for _, a := range args[1:] {
			if a == "-v" || a == "--verbose" {
				verbose = true
			}
		}
		return watchStart(root, verbose)

	case "stop":
		if err := watch.Stop(root); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println("Watch daemon stopped.")
		return 0

	case "status":
		if watch.IsRunning(root) {
			fmt.Println("Watch daemon is running.")
		} else {
			fmt.Println("Watch daemon is not running.")
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown watch command: %s\n", args[0])
		return 1
	}
}

func watchStart(root string, verbose bool) int {
	if watch.IsRunning(root) {
		fmt.Println("Watch daemon already running.")
		return 0
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	d, err := watch.NewDaemon(root, watch.Options{
		Threshold:  cfg.Threshold,
		Extensions: cfg.Watch.Extensions,
		Debounce:   time.Duration(cfg.Watch.DebounceMS) * time.Millisecond,
		Verbose:    verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := d.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := watch.WritePID(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer watch.RemovePID(root)

	fmt.Printf("👀 Watching %s (%d files, threshold %d lines)\n", root, d.FileCount(), cfg.Threshold)
	fmt.Println("   Ctrl-C or `skillkit watch stop` to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	d.StopWatching()
	fmt.Println("\nStopped.")
	return 0
}

func runContext(args []string) int {
	root := projectRoot()

	for _, a := range args {
		if a == "--live" {
			if err := render.Live(root); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return 1
			}
			return 0
		}
	}

	render.Context(os.Stdout, root, render.Styled())
	return 0
}

func runHook(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: skillkit hook <pre-read|session-start|prompt-submit>")
		return 1
	}

	if err := cmd.RunHook(args[0], projectRoot()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runServe() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.RunServe(ctx, projectRoot()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
