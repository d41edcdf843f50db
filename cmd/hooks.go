package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"skillkit/config"
	"skillkit/gate"
	"skillkit/limits"
	"skillkit/scanner"
	"skillkit/watch"
)

// RunHook executes the named hook with the given project root
func RunHook(hookName, root string) error {
	switch hookName {
	case "pre-read":
		return hookPreRead(root)
	case "session-start":
		return hookSessionStart(root)
	case "prompt-submit":
		return hookPromptSubmit(root)
	default:
		return fmt.Errorf("unknown hook: %s\nAvailable: pre-read, session-start, prompt-submit", hookName)
	}
}

// hookPreRead gates file reads before they happen (reads JSON from stdin)
func hookPreRead(root string) error {
	filePath, err := extractFilePathFromStdin()
	if err != nil || filePath == "" {
		return nil // silently skip if no file path
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil // a broken config must not break the session
	}

	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(root, filePath)
	}

	v, err := gate.Check(filePath, cfg.Threshold)
	if err != nil {
		return nil // missing file is the editor's problem, not the hook's
	}

	if v.Decision == gate.Delegate {
		fmt.Println()
		fmt.Printf("⚠️  %s: %s\n", v.Decision, filePath)
		fmt.Printf("   LINE_COUNT=%d\n", v.LineCount)
		fmt.Printf("   %s\n", v.Explanation())
		fmt.Println()
	}

	return nil
}

// hookSessionStart summarizes which files currently need delegation
func hookSessionStart(root string) error {
	cfg, err := config.Load(root)
	if err != nil {
		return nil
	}

	var files []scanner.FileInfo
	if state := watch.ReadState(root); state != nil {
		// Daemon state is cheap and fresh; prefer it over a rescan
		files = state.Oversized
	} else {
		scanned, err := scanner.ScanFiles(root, scanner.NewGitIgnoreCache(root))
		if err != nil {
			return nil
		}
		files = scanner.Oversized(scanned, cfg.Threshold)
	}

	var sb strings.Builder
	sb.WriteString("📍 Read delegation status:\n")
	if len(files) == 0 {
		sb.WriteString("   All files within threshold. Direct reads are fine.\n")
	} else {
		fmt.Fprintf(&sb, "   %d file(s) over %d lines. Delegate instead of reading directly:\n", len(files), cfg.Threshold)
		for i, f := range files {
			if i >= 10 {
				fmt.Fprintf(&sb, "   ... and %d more\n", len(files)-10)
				break
			}
			fmt.Fprintf(&sb, "   ⚠️  %s (%d lines)\n", f.Path, f.Lines)
		}
	}

	fmt.Print(limits.TruncateAtLineBoundary(sb.String(), limits.MaxHookOutputBytes, ""))
	return nil
}

// hookPromptSubmit warns about oversized files mentioned in the prompt
func hookPromptSubmit(root string) error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal(input, &data); err != nil {
		return nil
	}

	prompt, ok := data["prompt"].(string)
	if !ok || prompt == "" {
		return nil
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil
	}

	mentioned := fileMentions(prompt)
	if len(mentioned) == 0 {
		return nil
	}

	printed := false
	for _, file := range mentioned {
		v, err := gate.Check(filepath.Join(root, file), cfg.Threshold)
		if err != nil || v.Decision != gate.Delegate {
			continue
		}
		if !printed {
			fmt.Println()
			fmt.Println("📍 Delegation needed for mentioned files:")
			printed = true
		}
		fmt.Printf("   ⚠️  %s is %d lines - do not read directly\n", file, v.LineCount)
	}
	if printed {
		fmt.Println()
	}

	return nil
}

// fileMentions extracts source-file-looking tokens from a prompt
func fileMentions(prompt string) []string {
	var mentioned []string
	extensions := []string{"go", "ts", "js", "py", "rs", "rb", "java", "swift", "kt", "c", "cpp", "h", "json", "tonl"}
	for _, ext := range extensions {
		pattern := regexp.MustCompile(`[a-zA-Z0-9_/.-]+\.` + ext + `\b`)
		matches := pattern.FindAllString(prompt, 3)
		mentioned = append(mentioned, matches...)
	}
	return mentioned
}

// extractFilePathFromStdin reads JSON from stdin and extracts file_path
func extractFilePathFromStdin() (string, error) {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(input, &data); err != nil {
		// Try regex fallback for non-JSON or partial JSON
		re := regexp.MustCompile(`"file_path"\s*:\s*"([^"]+)"`)
		matches := re.FindSubmatch(input)
		if len(matches) >= 2 {
			return string(matches[1]), nil
		}
		return "", err
	}

	if filePath, ok := data["file_path"].(string); ok {
		return filePath, nil
	}

	// PreToolUse payloads nest the path under tool_input
	if toolInput, ok := data["tool_input"].(map[string]interface{}); ok {
		if filePath, ok := toolInput["file_path"].(string); ok {
			return filePath, nil
		}
	}

	return "", nil
}
