package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/contre95/ferrum/src/features/tui/styles"
	"github.com/contre95/ferrum/src/music"
)

// TrackList is the scrollable library table with the filter box on top.
type TrackList struct {
	tracks []*music.Track
	cursor int
	offset int
}

// NewTrackList creates an empty track list.
func NewTrackList() *TrackList {
	return &TrackList{}
}

// SetTracks replaces the listed tracks, keeping the cursor in range.
func (l *TrackList) SetTracks(tracks []*music.Track) {
	l.tracks = tracks
	if l.cursor > len(tracks)-1 {
		l.cursor = len(tracks) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// Selected returns the track under the cursor, nil for an empty list.
func (l *TrackList) Selected() *music.Track {
	if l.cursor < 0 || l.cursor >= len(l.tracks) {
		return nil
	}
	return l.tracks[l.cursor]
}

// MoveUp moves the cursor one row up.
func (l *TrackList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (l *TrackList) MoveDown() {
	if l.cursor < len(l.tracks)-1 {
		l.cursor++
	}
}

// Home moves the cursor to the first row.
func (l *TrackList) Home() {
	l.cursor = 0
}

// End moves the cursor to the last row.
func (l *TrackList) End() {
	if len(l.tracks) > 0 {
		l.cursor = len(l.tracks) - 1
	}
}

// Render renders the library panel. search is the rendered filter input,
// current marks the playing track's row.
func (l *TrackList) Render(search string, current *music.Track, paused bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Library", focused)

	w := width - 4
	if w < 30 {
		w = 30
	}
	rows := height - 6
	if rows < 1 {
		rows = 1
	}

	var content string
	if len(l.tracks) == 0 {
		content = styles.Muted.Render("No tracks. Run a scan or clear the filter.")
	} else {
		content = l.renderRows(current, paused, w, rows)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		search,
		l.renderHeader(w),
		content,
	))
}

// Column split for the table: marker, album, track number, title, artist.
func columnWidths(w int) (marker, album, number, title, artist int) {
	marker = 7
	number = 9
	rest := w - marker - number - 8
	if rest < 15 {
		rest = 15
	}
	album = rest * 35 / 100
	title = rest * 35 / 100
	artist = rest - album - title
	return marker, album, number, title, artist
}

func (l *TrackList) renderHeader(w int) string {
	markerW, albumW, numberW, titleW, artistW := columnWidths(w)
	header := fmt.Sprintf("%s  %s  %s  %s  %s",
		padRight("Playing", markerW),
		padRight("Album", albumW),
		padLeft("Track No.", numberW),
		padRight("Title", titleW),
		padRight("Artist", artistW))
	return styles.Title.Render(header)
}

func (l *TrackList) renderRows(current *music.Track, paused bool, w, maxRows int) string {
	l.ensureVisible(maxRows)

	end := l.offset + maxRows
	if end > len(l.tracks) {
		end = len(l.tracks)
	}

	markerW, albumW, numberW, titleW, artistW := columnWidths(w)

	lines := make([]string, 0, end-l.offset+1)
	for i := l.offset; i < end; i++ {
		track := l.tracks[i]
		isCurrent := current != nil && track.Path == current.Path

		marker := ""
		if isCurrent {
			if paused {
				marker = "  ⏸"
			} else {
				marker = "  ▶"
			}
		}

		row := fmt.Sprintf("%s  %s  %s  %s  %s",
			padRight(marker, markerW),
			padRight(track.DisplayAlbum(), albumW),
			padLeft(track.Number(), numberW),
			padRight(track.DisplayTitle(), titleW),
			padRight(track.DisplayArtist(), artistW))

		var rowStyle lipgloss.Style
		switch {
		case i == l.cursor && isCurrent:
			rowStyle = styles.Selected.Foreground(styles.Green)
		case i == l.cursor:
			rowStyle = styles.Selected
		case isCurrent:
			rowStyle = styles.Playing
		default:
			rowStyle = lipgloss.NewStyle()
		}
		lines = append(lines, rowStyle.Render(row))
	}

	if remaining := len(l.tracks) - end; remaining > 0 {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", remaining)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ensureVisible scrolls the window so the cursor stays on screen.
func (l *TrackList) ensureVisible(rows int) {
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func padRight(s string, w int) string {
	s = truncate(s, w)
	if n := w - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, w int) string {
	s = truncate(s, w)
	if n := w - len([]rune(s)); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
