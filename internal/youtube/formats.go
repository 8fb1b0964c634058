package youtube

import (
	"fmt"
	"mime"
	"strings"

	yt "github.com/kkdai/youtube/v2"

	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/platform"
)

// preferredAudioContainer is picked over other audio containers when
// present. Its files carry the .mp4 extension that normalization renames.
const preferredAudioContainer = "audio/mp4"

// selectFormat picks the stream to download for mode.
//
// Audio-only picks formats without a picture, preferring the mp4
// container, then the highest bitrate. Video picks muxed formats (picture
// and sound in one stream) with the highest resolution; ties go to mp4,
// then to the higher bitrate.
func selectFormat(formats yt.FormatList, mode model.Mode) (*yt.Format, error) {
	var best *yt.Format
	for i := range formats {
		f := &formats[i]
		if !matchesMode(f, mode) {
			continue
		}
		if best == nil || better(f, best, mode) {
			best = f
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w for %s", platform.ErrNoStream, mode)
	}
	return best, nil
}

func matchesMode(f *yt.Format, mode model.Mode) bool {
	if f.AudioChannels == 0 {
		return false
	}
	if mode == model.ModeAudioOnly {
		return f.Width == 0 && f.Height == 0 && strings.HasPrefix(f.MimeType, "audio/")
	}
	return f.Height > 0 && strings.HasPrefix(f.MimeType, "video/")
}

func better(a, b *yt.Format, mode model.Mode) bool {
	if mode == model.ModeAudioOnly {
		aPref, bPref := isContainer(a, preferredAudioContainer), isContainer(b, preferredAudioContainer)
		if aPref != bPref {
			return aPref
		}
		return bitrate(a) > bitrate(b)
	}

	if a.Height != b.Height {
		return a.Height > b.Height
	}
	aMP4, bMP4 := isContainer(a, "video/mp4"), isContainer(b, "video/mp4")
	if aMP4 != bMP4 {
		return aMP4
	}
	return bitrate(a) > bitrate(b)
}

func isContainer(f *yt.Format, mediaType string) bool {
	mt, _, err := mime.ParseMediaType(f.MimeType)
	if err != nil {
		return strings.HasPrefix(f.MimeType, mediaType)
	}
	return mt == mediaType
}

func bitrate(f *yt.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}

// containerExtension maps a format MIME type to its default file extension.
//
// Example:
//
//	containerExtension(`audio/mp4; codecs="mp4a.40.2"`) // ".mp4"
//	containerExtension(`audio/webm; codecs="opus"`)     // ".webm"
func containerExtension(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	}

	switch mt {
	case "video/mp4", "audio/mp4":
		return ".mp4"
	case "video/webm", "audio/webm":
		return ".webm"
	case "video/3gpp":
		return ".3gp"
	}

	if _, sub, ok := strings.Cut(mt, "/"); ok && sub != "" {
		return "." + sub
	}
	return ".bin"
}

// largestThumbnail returns the URL of the biggest thumbnail, or "".
func largestThumbnail(thumbs yt.Thumbnails) string {
	var (
		bestURL  string
		bestArea uint
	)
	for _, th := range thumbs {
		if area := th.Width * th.Height; bestURL == "" || area > bestArea {
			bestURL, bestArea = th.URL, area
		}
	}
	return bestURL
}
