// Package ioutils provides file system and image processing utilities.
//
// This package contains:
//   - Filename sanitization for cross-platform compatibility
//   - Partial files that are renamed into place only when complete
//   - Replace-by-rename for extension normalization
//   - Thumbnail to cover art conversion
//
// # Partial Files
//
//	pf, err := ioutils.CreatePartial("/videos/clip.mp4")
//	// write to pf, then
//	err = pf.Commit() // or pf.Abort() on failure
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
//
// # Image Processing
//
//	svc := ioutils.NewImageService(500)
//	cover, _ := svc.CoverArt(ctx, thumbnail)
package ioutils
