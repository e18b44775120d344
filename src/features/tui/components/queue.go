package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/contre95/ferrum/src/features/tui/styles"
	"github.com/contre95/ferrum/src/music"
)

// Queue displays the play queue with the current position marked.
type Queue struct{}

// NewQueue creates a new Queue component.
func NewQueue() *Queue {
	return &Queue{}
}

// Render renders the queue panel, scrolled so the current track stays visible.
func (q *Queue) Render(name string, tracks []*music.Track, position int, width, height int, focused bool) string {
	title := styles.PanelTitle("Queue: "+name, focused)

	var content string
	if len(tracks) == 0 {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(tracks, position, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (q *Queue) renderQueue(tracks []*music.Track, position, w, maxLines int) string {
	visible := maxLines - 1
	if visible < 1 {
		visible = 1
	}

	// Keep the current track roughly centered
	start := 0
	if position > visible/2 {
		start = position - visible/2
	}
	if start > len(tracks)-visible {
		start = len(tracks) - visible
	}
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(tracks) {
		end = len(tracks)
	}

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XX. " + marker + separator
	const overhead = 9

	for i := start; i < end; i++ {
		track := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)

		available := w - overhead
		title, artist := fit(track, available)

		if i == position {
			lines = append(lines, styles.Playing.Render(fmt.Sprintf("%s ▶ %s - %s", num, title, artist)))
		} else {
			lines = append(lines, fmt.Sprintf("%s   %s - %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist)))
		}
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit shares the available cell between title and artist, giving artist at
// least a third when both overflow.
func fit(track *music.Track, available int) (string, string) {
	title := track.DisplayTitle()
	artist := track.DisplayArtist()

	if len([]rune(title))+len([]rune(artist)) <= available {
		return title, artist
	}

	minArtist := available / 3
	if minArtist < 10 {
		minArtist = 10
	}
	if minArtist > available-10 {
		minArtist = available - 10
	}

	artistSpace := minArtist
	if len([]rune(artist)) < artistSpace {
		artistSpace = len([]rune(artist))
	}
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}
