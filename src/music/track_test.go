package music

import (
	"errors"
	"testing"
)

func TestValidate_RejectsEmptyPath(t *testing.T) {
	track := &Track{Path: ""}
	err := track.Validate()
	if err == nil {
		t.Fatal("expected an error for an empty path")
	}
	if !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}

	track.Path = "   "
	if err := track.Validate(); !errors.Is(err, ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation for blank path, got %v", err)
	}
}

func TestValidate_AcceptsPathOnlyTrack(t *testing.T) {
	track := &Track{Path: "/music/unknown.wav"}
	if err := track.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNumber(t *testing.T) {
	cases := []struct {
		name  string
		disc  *string
		track *string
		want  string
	}{
		{"disc and track", String("1"), String("2"), "1.02"},
		{"disc and wide track", String("2"), String("12"), "2.12"},
		{"disc only", String("7"), nil, ""},
		{"track only pads", nil, String("7"), "07"},
		{"wide track alone", nil, String("12"), "12"},
		{"nothing", nil, nil, ""},
	}
	for _, c := range cases {
		tr := &Track{Path: "/x", Disc: c.disc, Track: c.track}
		if got := tr.Number(); got != c.want {
			t.Errorf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
}

func TestDisplayHelpers(t *testing.T) {
	track := &Track{Path: "/x"}
	if got := track.DisplayTitle(); got != "-" {
		t.Errorf("expected \"-\" for a missing title, got %q", got)
	}
	track.Title = String("")
	if got := track.DisplayTitle(); got != "" {
		t.Errorf("expected empty string for an empty title, got %q", got)
	}
	track.Artist = String("Nina Simone")
	if got := track.DisplayArtist(); got != "Nina Simone" {
		t.Errorf("expected artist, got %q", got)
	}
	if got := track.DisplayAlbum(); got != "-" {
		t.Errorf("expected \"-\" for a missing album, got %q", got)
	}
}

func TestMatchesFilter(t *testing.T) {
	track := &Track{
		Path:   "/music/bjork/post/01.flac",
		Title:  String("Army of Me"),
		Artist: String("Björk"),
		Album:  String("Post"),
	}

	if !track.MatchesFilter("") {
		t.Error("empty query should match everything")
	}
	if !track.MatchesFilter("army") {
		t.Error("expected case-insensitive title match")
	}
	if !track.MatchesFilter("bjork") {
		t.Error("expected accent-insensitive artist match")
	}
	if !track.MatchesFilter("POST") {
		t.Error("expected album match")
	}
	if track.MatchesFilter("zeppelin") {
		t.Error("unexpected match")
	}
}

func TestMatchesFilter_MissingTags(t *testing.T) {
	track := &Track{Path: "/music/untitled.wav"}
	if !track.MatchesFilter("") {
		t.Error("empty query should match an untagged track")
	}
	if track.MatchesFilter("anything") {
		t.Error("untagged track should not match a non-empty query")
	}
}

func TestFilterTracks(t *testing.T) {
	tracks := []*Track{
		{Path: "/a", Title: String("Alpha"), Artist: String("One")},
		{Path: "/b", Title: String("Beta"), Artist: String("Two")},
		{Path: "/c", Title: String("Alphabet"), Artist: String("Three")},
	}

	got := FilterTracks(tracks, "alpha")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Path != "/a" || got[1].Path != "/c" {
		t.Errorf("expected order preserved, got %q then %q", got[0].Path, got[1].Path)
	}

	if got := FilterTracks(tracks, ""); len(got) != len(tracks) {
		t.Errorf("empty query should return all tracks, got %d", len(got))
	}
}

func TestDurationSeconds(t *testing.T) {
	track := &Track{Path: "/x"}
	if got := track.DurationSeconds(); got != 0 {
		t.Errorf("expected 0 for unknown duration, got %d", got)
	}
	track.Duration = Int64(191)
	if got := track.DurationSeconds(); got != 191 {
		t.Errorf("expected 191, got %d", got)
	}
}
