package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/contre95/ferrum/src/features/playback"
	"github.com/contre95/ferrum/src/features/tui/styles"
	"github.com/contre95/ferrum/src/music"
)

// NowPlaying is the playback bar under the panels.
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying bar.
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the bar: track line with mode and volume on the right, then
// the progress line.
func (n *NowPlaying) Render(track *music.Track, status playback.Status, position time.Duration, volume float64, mode music.QueueMode, width int) string {
	w := width - 2
	if w < 20 {
		w = 20
	}

	var trackLine string
	if track == nil {
		trackLine = styles.Muted.Render("Nothing playing")
	} else {
		icon := styles.StatusIcon(status == playback.StatusPaused)
		title := styles.Title.Render(track.DisplayTitle())
		artist := styles.Subtitle.Render(track.DisplayArtist())
		trackLine = fmt.Sprintf("%s %s  %s", icon, title, artist)
	}

	right := styles.Dim.Render(fmt.Sprintf("%s ∙ vol %d%%", mode, int(volume*100+0.5)))
	gap := w - lipgloss.Width(trackLine) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	line1 := trackLine + strings.Repeat(" ", gap) + right

	var line2 string
	if track == nil {
		line2 = styles.Dim.Render("--:-- / --:--")
	} else {
		total := track.DurationSeconds()
		percent := 0.0
		if total > 0 {
			percent = position.Seconds() / float64(total) * 100
		}
		barWidth := w - 14
		if barWidth < 10 {
			barWidth = 10
		}
		line2 = fmt.Sprintf("%s %s %s",
			formatClock(position),
			styles.ProgressBar(percent, barWidth),
			formatClock(time.Duration(total)*time.Second))
	}

	bar := lipgloss.JoinVertical(lipgloss.Left, line1, line2)
	return lipgloss.NewStyle().Padding(0, 1).Width(width).Render(bar)
}

// formatClock renders a mm:ss clock.
func formatClock(d time.Duration) string {
	secs := int64(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
