package limits

// Delegation threshold for direct file reads. Files above this many lines
// must be routed to the delegation path instead of being read inline.
const (
	LargeFileLines = 1000
)

// Context output budgets for hook and MCP text responses.
const (
	MaxHookOutputBytes = 60000 // ~15k tokens, <10% of a 200k context window
	MaxToolOutputBytes = 30000
)

// Repo-size thresholds used to scale scan output.
const (
	MediumRepoFileCount = 2000
	LargeRepoFileCount  = 5000
)

// ScanListBudget returns how many oversized files a scan report should list
// before eliding the rest. Larger repos get shorter lists.
func ScanListBudget(fileCount int) int {
	switch {
	case fileCount > LargeRepoFileCount:
		return 10
	case fileCount > MediumRepoFileCount:
		return 20
	default:
		return 40
	}
}
