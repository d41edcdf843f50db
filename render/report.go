package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"skillkit/limits"
	"skillkit/scanner"
	"skillkit/watch"
)

// Color palette
var (
	pink     = lipgloss.Color("212")
	purple   = lipgloss.Color("99")
	green    = lipgloss.Color("78")
	yellow   = lipgloss.Color("220")
	orange   = lipgloss.Color("208")
	red      = lipgloss.Color("196")
	gray     = lipgloss.Color("245")
	darkGray = lipgloss.Color("238")
	white    = lipgloss.Color("255")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(pink)

	headerBox = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 2).
			MarginBottom(1)

	sectionTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(purple).
			MarginTop(1)

	statLabel = lipgloss.NewStyle().Foreground(gray)

	statValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(white)

	delegateStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	proceedStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	countHigh = lipgloss.NewStyle().
			Foreground(orange).
			Bold(true)

	countMed = lipgloss.NewStyle().Foreground(yellow)

	timeStyle = lipgloss.NewStyle().Foreground(darkGray)

	dimStyle = lipgloss.NewStyle().Foreground(gray)
)

// Styled reports whether stdout is a terminal that can take styling.
func Styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ScanReport writes a human-readable summary of a tree scan: totals plus
// the files over the delegation threshold, largest first.
func ScanReport(w io.Writer, root string, files []scanner.FileInfo, threshold int, styled bool) {
	oversized := scanner.Oversized(files, threshold)
	name := filepath.Base(root)

	if styled {
		header := titleStyle.Render(name) + "  " + dimStyle.Render(fmt.Sprintf("threshold %d lines", threshold))
		fmt.Fprintln(w, headerBox.Render(header))
		fmt.Fprintln(w, statLabel.Render("files ")+statValue.Render(fmt.Sprintf("%d", len(files)))+
			statLabel.Render("  ·  needs delegation ")+statValue.Render(fmt.Sprintf("%d", len(oversized))))
	} else {
		fmt.Fprintf(w, "%s (threshold %d lines)\n", name, threshold)
		fmt.Fprintf(w, "Files: %d\n", len(files))
		fmt.Fprintf(w, "Needs delegation: %d\n", len(oversized))
	}

	if len(oversized) == 0 {
		if styled {
			fmt.Fprintln(w, proceedStyle.Render("\n✓ All files within threshold"))
		} else {
			fmt.Fprintln(w, "All files within threshold.")
		}
		return
	}

	if styled {
		fmt.Fprintln(w, sectionTitle.Render("◆ Delegate these files"))
	} else {
		fmt.Fprintln(w, "\nDelegate these files:")
	}

	budget := limits.ScanListBudget(len(files))
	for i, f := range oversized {
		if i >= budget {
			if styled {
				fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  ... +%d more", len(oversized)-budget)))
			} else {
				fmt.Fprintf(w, "  ... and %d more\n", len(oversized)-budget)
			}
			break
		}

		if styled {
			bar := strings.Repeat("━", minInt(f.Lines/500, 12))
			countStyle := countMed
			if f.Lines >= 2*threshold {
				countStyle = countHigh
			}
			fmt.Fprintf(w, "  %s %s %s\n", delegateStyle.Render(f.Path), countStyle.Render(bar), countStyle.Render(fmt.Sprintf("%d", f.Lines)))
		} else {
			fmt.Fprintf(w, "  %s: %d lines\n", f.Path, f.Lines)
		}
	}
}

// Context writes the daemon state view: totals, delegation set, and recent
// threshold crossings.
func Context(w io.Writer, root string, styled bool) {
	daemonRunning := watch.IsRunning(root)
	state := watch.ReadState(root)
	name := filepath.Base(root)

	if styled {
		var statusDot, statusText string
		if daemonRunning {
			statusDot = proceedStyle.Render("●")
			statusText = "watching"
		} else {
			statusDot = dimStyle.Render("○")
			statusText = "idle"
		}
		fmt.Fprintln(w, headerBox.Render(titleStyle.Render(name)+"  "+statusDot+" "+dimStyle.Render(statusText)))
	} else {
		status := "idle"
		if daemonRunning {
			status = "watching"
		}
		fmt.Fprintf(w, "%s [%s]\n", name, status)
	}

	if state == nil {
		if styled {
			fmt.Fprintln(w, dimStyle.Render("  No state tracked"))
			fmt.Fprintln(w, dimStyle.Render("  Run: ")+titleStyle.Render("skillkit watch start"))
		} else {
			fmt.Fprintln(w, "No state tracked. Run: skillkit watch start")
		}
		return
	}

	if styled {
		fmt.Fprintln(w, statLabel.Render("files ")+statValue.Render(fmt.Sprintf("%d", state.FileCount))+
			statLabel.Render("  ·  needs delegation ")+statValue.Render(fmt.Sprintf("%d", len(state.Oversized))))
	} else {
		fmt.Fprintf(w, "Files: %d\n", state.FileCount)
		fmt.Fprintf(w, "Needs delegation: %d\n", len(state.Oversized))
	}

	if len(state.Oversized) > 0 {
		if styled {
			fmt.Fprintln(w, sectionTitle.Render("◆ Over threshold"))
		} else {
			fmt.Fprintln(w, "Over threshold:")
		}
		maxShow := 6
		for i, f := range state.Oversized {
			if i >= maxShow {
				if styled {
					fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  ... +%d more", len(state.Oversized)-maxShow)))
				} else {
					fmt.Fprintf(w, "  ... and %d more\n", len(state.Oversized)-maxShow)
				}
				break
			}
			if styled {
				fmt.Fprintf(w, "  %s %s\n", delegateStyle.Render(f.Path), countHigh.Render(fmt.Sprintf("%d", f.Lines)))
			} else {
				fmt.Fprintf(w, "  %s: %d lines\n", f.Path, f.Lines)
			}
		}
	}

	crossings := recentCrossings(state.RecentEvents, 8)
	if len(crossings) > 0 {
		if styled {
			fmt.Fprintln(w, sectionTitle.Render("◆ Recent crossings"))
		} else {
			fmt.Fprintln(w, "Recent crossings:")
		}
		for _, e := range crossings {
			marker := "↓ PROCEED"
			style := proceedStyle
			if e.Crossed == "UP" {
				marker = "↑ DELEGATE"
				style = delegateStyle
			}
			if styled {
				fmt.Fprintf(w, "  %s %s %s\n", style.Render(marker), e.Path, timeStyle.Render(formatTimeAgo(e.Time)))
			} else {
				fmt.Fprintf(w, "  %s %s (%s)\n", marker, e.Path, formatTimeAgo(e.Time))
			}
		}
	}
}

// recentCrossings filters events down to threshold crossings, newest first.
func recentCrossings(events []watch.Event, max int) []watch.Event {
	var out []watch.Event
	for i := len(events) - 1; i >= 0 && len(out) < max; i-- {
		if events[i].Crossed != "" {
			out = append(out, events[i])
		}
	}
	return out
}

// formatTimeAgo returns a human-readable relative time
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		return t.Format("Jan 2")
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
