package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/contre95/ferrum/src/music"
)

// Table provides a simple aligned-column formatter.
type Table struct {
	w       *tabwriter.Writer
	headers []string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	t := &Table{
		w:       tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0),
		headers: headers,
	}
	if len(headers) > 0 {
		_, _ = t.w.Write([]byte(strings.Join(headers, "\t") + "\n"))
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// TruncateString truncates a string to maxLen, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatDuration formats a duration in seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// trackTable renders tracks with the dashboard table's columns.
func trackTable(tracks []*music.Track) {
	table := NewTable("#", "ALBUM", "NO.", "TITLE", "ARTIST", "LENGTH")
	for i, track := range tracks {
		table.Row(
			fmt.Sprintf("%d", i+1),
			TruncateString(track.DisplayAlbum(), 30),
			track.Number(),
			TruncateString(track.DisplayTitle(), 40),
			TruncateString(track.DisplayArtist(), 30),
			trackLength(track),
		)
	}
	table.Flush()
}

func trackLength(track *music.Track) string {
	if track.Duration == nil {
		return "-"
	}
	return FormatDuration(int(track.DurationSeconds()))
}
