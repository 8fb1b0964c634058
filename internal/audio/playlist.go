package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grafov/m3u8"
)

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// FormatM3U creates extended .m3u files (most compatible).
	FormatM3U PlaylistFormat = iota

	// FormatM3U8 creates UTF-8 .m3u8 media playlists.
	FormatM3U8

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS
)

// ParsePlaylistFormat maps a settings value to a PlaylistFormat. Unknown
// values select FormatM3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(s) {
	case "m3u8":
		return FormatM3U8
	case "pls":
		return FormatPLS
	default:
		return FormatM3U
	}
}

// Extension returns the playlist file extension, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatM3U8:
		return ".m3u8"
	case FormatPLS:
		return ".pls"
	default:
		return ".m3u"
	}
}

// PlaylistEntry is one file in a playlist.
type PlaylistEntry struct {
	// Path is the file path. Only the base name is written, so the
	// playlist must sit next to the files.
	Path string

	Title           string
	DurationSeconds int
}

// PlaylistCreator generates a playlist listing the files of a run in
// work-list order.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U)
//	content, err := creator.CreatePlaylist(entries)
//
//	// #EXTM3U
//	// #EXTINF:212,So What
//	// So What.mp3
type PlaylistCreator struct {
	format PlaylistFormat
}

// NewPlaylistCreator creates a new PlaylistCreator.
func NewPlaylistCreator(format PlaylistFormat) *PlaylistCreator {
	return &PlaylistCreator{format: format}
}

// Format returns the playlist format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist renders entries in the creator's format.
func (p *PlaylistCreator) CreatePlaylist(entries []PlaylistEntry) (string, error) {
	switch p.format {
	case FormatM3U8:
		return p.createM3U8(entries)
	case FormatPLS:
		return p.createPLS(entries), nil
	default:
		return p.createM3U(entries), nil
	}
}

// createM3U generates an extended M3U playlist:
//
//	#EXTM3U
//	#EXTINF:180,Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", e.DurationSeconds, entryTitle(e))
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// createM3U8 generates a closed (VOD) media playlist with one segment per
// file.
func (p *PlaylistCreator) createM3U8(entries []PlaylistEntry) (string, error) {
	capacity := uint(len(entries))
	if capacity == 0 {
		capacity = 1
	}

	playlist, err := m3u8.NewMediaPlaylist(0, capacity)
	if err != nil {
		return "", err
	}

	for _, e := range entries {
		if err := playlist.Append(filepath.Base(e.Path), float64(e.DurationSeconds), entryTitle(e)); err != nil {
			return "", fmt.Errorf("append %s: %w", e.Path, err)
		}
	}
	playlist.Close()

	return playlist.Encode().String(), nil
}

// createPLS generates a PLS playlist:
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, entryTitle(e))
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, e.DurationSeconds)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func entryTitle(e PlaylistEntry) string {
	if e.Title != "" {
		return e.Title
	}
	base := filepath.Base(e.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
