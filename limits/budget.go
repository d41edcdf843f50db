package limits

import "strings"

// TruncateAtLineBoundary trims output to maxBytes, preferring a clean newline cut.
func TruncateAtLineBoundary(output string, maxBytes int, truncatedMessage string) string {
	if maxBytes <= 0 || len(output) <= maxBytes {
		return output
	}

	trimmed := output[:maxBytes]
	lineCutThreshold := maxBytes - 1000
	if lineCutThreshold < 0 {
		lineCutThreshold = 0
	}
	if idx := strings.LastIndex(trimmed, "\n"); idx > lineCutThreshold {
		trimmed = trimmed[:idx]
	}

	if truncatedMessage == "" {
		truncatedMessage = "\n\n... (truncated)\n"
	}
	return trimmed + truncatedMessage
}
