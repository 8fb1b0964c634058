package audio

import (
	"github.com/bogem/id3v2"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the video metadata.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// Title controls the TIT2 frame (video title).
	Title TagEditAction

	// Artist controls the TPE1 frame (channel name).
	Artist TagEditAction

	// Album controls the TALB frame (the searched artist name).
	Album TagEditAction

	// Comments controls the COMM frame (watch URL).
	Comments TagEditAction

	// Cover embeds the video thumbnail as front cover when available.
	Cover bool
}

// DefaultTagConfig returns the default tag configuration: every field is
// modified and the thumbnail is embedded.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Title:    TagModify,
		Artist:   TagModify,
		Album:    TagModify,
		Comments: TagModify,
		Cover:    true,
	}
}

// TrackInfo is the metadata written into an audio file.
type TrackInfo struct {
	Title  string
	Artist string
	Album  string

	// SourceURL is stored as a comment.
	SourceURL string

	// Cover is JPEG image data, or nil.
	Cover []byte
}

// Tagger writes ID3 tags to downloaded audio files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags("/music/clip.mp3", TrackInfo{
//	    Title:  "So What",
//	    Artist: "Miles Davis - Topic",
//	    Album:  "Miles Davis",
//	})
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes info into the ID3 tag of the file at path, creating the
// tag if the file has none.
func (t *Tagger) SaveTags(path string, info TrackInfo) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	applyText(tag, t.config.Title, info.Title, tag.SetTitle)
	applyText(tag, t.config.Artist, info.Artist, tag.SetArtist)
	applyText(tag, t.config.Album, info.Album, tag.SetAlbum)

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if info.SourceURL != "" {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "Source",
				Text:        info.SourceURL,
			})
		}
	}

	if t.config.Cover && len(info.Cover) > 0 {
		updateArtwork(tag, info.Cover)
	}

	return tag.Save()
}

func applyText(tag *id3v2.Tag, action TagEditAction, value string, set func(string)) {
	switch action {
	case TagEmpty:
		set("")
	case TagModify:
		if value != "" {
			set(value)
		}
	}
}

// updateArtwork replaces any attached pictures with a front cover.
func updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
