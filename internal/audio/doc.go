// Package audio provides post-processing for downloaded files: ID3 tag
// writing and playlist generation.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, audio.TrackInfo{Title: title, Artist: channel})
//
// The tagger supports:
//   - Title, Artist (channel), Album (searched artist name)
//   - A comment holding the watch URL
//   - Cover art from the video thumbnail
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U8)
//	content, err := creator.CreatePlaylist(entries)
//
// Supported formats:
//   - M3U (extended)
//   - M3U8 media playlist
//   - PLS
package audio
