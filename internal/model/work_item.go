package model

import (
	"errors"
	"path/filepath"
)

// Mode selects which stream is downloaded for a work item.
type Mode int

const (
	// ModeVideoAndAudio downloads the best muxed video+audio stream.
	ModeVideoAndAudio Mode = iota

	// ModeAudioOnly downloads an audio-only stream.
	ModeAudioOnly
)

// ModeFor returns ModeAudioOnly when audioOnly is set, ModeVideoAndAudio otherwise.
func ModeFor(audioOnly bool) Mode {
	if audioOnly {
		return ModeAudioOnly
	}
	return ModeVideoAndAudio
}

// TargetExtension returns the extension, including the dot, that output files
// must end with once normalized.
//
// Returns:
//   - ".mp4" for ModeVideoAndAudio
//   - ".mp3" for ModeAudioOnly
func (m Mode) TargetExtension() string {
	if m == ModeAudioOnly {
		return ".mp3"
	}
	return ".mp4"
}

func (m Mode) String() string {
	switch m {
	case ModeVideoAndAudio:
		return "video+audio"
	case ModeAudioOnly:
		return "audio-only"
	default:
		return "unknown"
	}
}

// Destination is where a work item is written.
type Destination struct {
	// Dir is the directory the file is created in. Never empty.
	Dir string

	// FileName is the explicit file name. Empty means the platform chooses
	// its default name.
	FileName string
}

// Path returns the full file path when FileName is set, or Dir otherwise.
func (d Destination) Path() string {
	if d.FileName == "" {
		return d.Dir
	}
	return filepath.Join(d.Dir, d.FileName)
}

// WorkItem is one download task.
type WorkItem struct {
	// VideoRef is a video ID or a full watch URL.
	VideoRef string

	// Mode is shared by every item of a run.
	Mode Mode

	// Destination is where the file is written.
	Destination Destination
}

// NewBatchWorkItem creates an item that is written into destDir under the
// platform's default file name.
func NewBatchWorkItem(ref string, mode Mode, destDir string) WorkItem {
	return WorkItem{
		VideoRef:    ref,
		Mode:        mode,
		Destination: Destination{Dir: destDir},
	}
}

// NewSingleWorkItem creates an item written to an explicit file path.
//
// The path is split into its (absolute) directory and file name. The file
// name is handed to the platform unchanged, so its extension decides the
// output type and no normalization pass is needed.
func NewSingleWorkItem(ref, destFile string, mode Mode) (WorkItem, error) {
	if destFile == "" {
		return WorkItem{}, errors.New("destination file is required")
	}
	abs, err := filepath.Abs(destFile)
	if err != nil {
		return WorkItem{}, err
	}
	name := filepath.Base(abs)
	if name == "." || name == string(filepath.Separator) {
		return WorkItem{}, errors.New("destination file has no file name")
	}
	return WorkItem{
		VideoRef: ref,
		Mode:     mode,
		Destination: Destination{
			Dir:      filepath.Dir(abs),
			FileName: name,
		},
	}, nil
}
