package jobs

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var logStyles = map[string]lipgloss.Style{
	"error":  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	"warn":   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	"green":  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	"blue":   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	"cyan":   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	"orange": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	"violet": lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
}

// ColorizeLogContent styles job log lines for terminal output based on log level
// and the optional color attribute tasks attach to notable lines.
func ColorizeLogContent(content string) string {
	lines := strings.Split(content, "\n")
	coloredLines := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		coloredLine := line

		// Extract log level from the line (format: level=LEVEL)
		level := extractLogLevel(line)

		switch level {
		case "ERROR":
			coloredLine = logStyles["error"].Render(line)
		case "WARN", "WARNING":
			coloredLine = logStyles["warn"].Render(line)
		case "INFO":
			if hint := extractColorHint(line); hint != "" {
				if style, ok := logStyles[hint]; ok {
					coloredLine = style.Render(line)
				}
			}
			// Other INFO logs stay unstyled
		default:
			// All other logs stay unstyled
		}
		coloredLines = append(coloredLines, coloredLine)
	}

	return strings.Join(coloredLines, "\n")
}

// extractLogLevel extracts the log level from a log line
func extractLogLevel(line string) string {
	// Look for "level=LEVEL" pattern
	if idx := strings.Index(line, "level="); idx != -1 {
		start := idx + 6 // length of "level="
		// Find the next space or end of line
		end := strings.Index(line[start:], " ")
		if end == -1 {
			end = len(line[start:])
		}
		level := line[start : start+end]
		return strings.ToUpper(level)
	}
	return ""
}

// extractColorHint extracts the color attribute from a log line
func extractColorHint(line string) string {
	if idx := strings.Index(line, "color="); idx != -1 {
		start := idx + 6 // length of "color="
		end := strings.Index(line[start:], " ")
		if end == -1 {
			end = len(line[start:])
		}
		return strings.ToLower(line[start : start+end])
	}
	return ""
}
