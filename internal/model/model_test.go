package model

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewArtistQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Miles Davis", "Miles+Davis"},
		{"  The   Beatles\n", "The+Beatles"},
		{"Björk", "Björk"},
		{"tab\tseparated name", "tab+separated+name"},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NewArtistQuery(tt.input)
			if got.Query != tt.want {
				t.Errorf("NewArtistQuery(%q).Query = %q, want %q", tt.input, got.Query, tt.want)
			}
		})
	}
}

func TestArtistQuery_IsEmpty(t *testing.T) {
	if !NewArtistQuery(" \t ").IsEmpty() {
		t.Error("whitespace-only query should be empty")
	}
	if NewArtistQuery("Nina Simone").IsEmpty() {
		t.Error("query with words should not be empty")
	}
}

func TestVideoCandidate_WithDuration(t *testing.T) {
	c := NewVideoCandidate("abcdefghijk")
	if c.HasDuration() {
		t.Fatal("new candidate should have unknown duration")
	}

	enriched := c.WithDuration(0)
	if !enriched.HasDuration() {
		t.Error("WithDuration(0) should mark duration as known")
	}
	if c.HasDuration() {
		t.Error("WithDuration must not modify the receiver")
	}
	if enriched.WatchURL() != "https://www.youtube.com/watch?v=abcdefghijk" {
		t.Errorf("WatchURL() = %q", enriched.WatchURL())
	}
}

func TestMode_TargetExtension(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeVideoAndAudio, ".mp4"},
		{ModeAudioOnly, ".mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if got := tt.mode.TargetExtension(); got != tt.want {
				t.Errorf("TargetExtension() = %q, want %q", got, tt.want)
			}
		})
	}

	if ModeFor(true) != ModeAudioOnly || ModeFor(false) != ModeVideoAndAudio {
		t.Error("ModeFor returned the wrong mode")
	}
}

func TestNewSingleWorkItem(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "sub", "song.mp3")

	item, err := NewSingleWorkItem("https://www.youtube.com/watch?v=abcdefghijk", dest, ModeAudioOnly)
	if err != nil {
		t.Fatalf("NewSingleWorkItem failed: %v", err)
	}

	if item.Destination.Dir != filepath.Join(dir, "sub") {
		t.Errorf("Dir = %q, want %q", item.Destination.Dir, filepath.Join(dir, "sub"))
	}
	if item.Destination.FileName != "song.mp3" {
		t.Errorf("FileName = %q, want %q", item.Destination.FileName, "song.mp3")
	}
	if item.Destination.Path() != dest {
		t.Errorf("Path() = %q, want %q", item.Destination.Path(), dest)
	}
	if item.Mode != ModeAudioOnly {
		t.Errorf("Mode = %v, want %v", item.Mode, ModeAudioOnly)
	}
}

func TestNewSingleWorkItem_RelativePath(t *testing.T) {
	item, err := NewSingleWorkItem("ref", "clip.mp4", ModeVideoAndAudio)
	if err != nil {
		t.Fatalf("NewSingleWorkItem failed: %v", err)
	}
	if !filepath.IsAbs(item.Destination.Dir) {
		t.Errorf("Dir should be absolute, got %q", item.Destination.Dir)
	}
}

func TestNewSingleWorkItem_Empty(t *testing.T) {
	if _, err := NewSingleWorkItem("ref", "", ModeVideoAndAudio); err == nil {
		t.Error("expected error for empty destination")
	}
}

func TestNewBatchWorkItem(t *testing.T) {
	item := NewBatchWorkItem("abcdefghijk", ModeVideoAndAudio, "/videos")
	if item.Destination.FileName != "" {
		t.Errorf("batch items should use platform naming, got %q", item.Destination.FileName)
	}
	if item.Destination.Path() != "/videos" {
		t.Errorf("Path() = %q, want /videos", item.Destination.Path())
	}
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{"config", NewConfigError("amount", "must be positive"), true},
		{"fatal run", NewFatalRunError("create dir: %w", cause), true},
		{"transient", NewTransientItemError("download", "abc", cause), false},
		{"plain", cause, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal() = %v, want %v", got, tt.fatal)
			}
		})
	}

	var item *TransientItemError
	wrapped := NewTransientItemError("download", "abc", cause)
	if !errors.As(wrapped, &item) || !errors.Is(wrapped, cause) {
		t.Error("TransientItemError should unwrap to its cause")
	}
}

func TestProgressFunc_Emit(t *testing.T) {
	var got []ProgressEvent
	f := ProgressFunc(func(e ProgressEvent) { got = append(got, e) })
	f.Emit(LevelWarning, "careful")

	if len(got) != 1 || got[0].Level != LevelWarning || got[0].Message != "careful" {
		t.Errorf("unexpected events: %+v", got)
	}

	var nilFunc ProgressFunc
	nilFunc.Emit(LevelInfo, "dropped")
}
