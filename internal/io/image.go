package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif" // decoder registration
	"image/jpeg"
	_ "image/png" // decoder registration

	"golang.org/x/image/draw"
)

// ErrEmptyImage is returned when there are no image bytes to process.
var ErrEmptyImage = errors.New("empty image data")

// ImageService turns video thumbnails into cover art for audio tags.
//
// Thumbnails usually come letterboxed at 16:9; cover art is expected to be
// square and small, so the service can crop to the centre square before
// scaling down.
//
// Example usage:
//
//	svc := NewImageService(500)
//	cover, err := svc.CoverArt(ctx, thumbnailBytes)
type ImageService struct {
	maxSize int
	crop    bool
}

// NewImageService creates an ImageService that bounds output images by
// maxSize on each side and crops them to a square. A non-positive maxSize
// disables scaling.
func NewImageService(maxSize int) *ImageService {
	return &ImageService{maxSize: maxSize, crop: true}
}

// CoverArt decodes a thumbnail, crops and scales it, and encodes it as JPEG.
func (s *ImageService) CoverArt(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if s.crop {
		bounds = centreSquare(bounds)
	}

	width, height := FitWithin(bounds.Dx(), bounds.Dy(), s.maxSize, s.maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FitWithin scales width x height down to fit maxWidth x maxHeight while
// keeping the aspect ratio. Images that already fit, and non-positive
// bounds, leave the size unchanged.
//
// Example:
//
//	FitWithin(1280, 720, 500, 500) // 500, 281
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if maxWidth <= 0 || maxHeight <= 0 || width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return int(float64(maxHeight) * ratio), maxHeight
	}
	return maxWidth, int(float64(maxWidth) / ratio)
}

func centreSquare(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	switch {
	case w > h:
		off := (w - h) / 2
		return image.Rect(r.Min.X+off, r.Min.Y, r.Min.X+off+h, r.Max.Y)
	case h > w:
		off := (h - w) / 2
		return image.Rect(r.Min.X, r.Min.Y+off, r.Max.X, r.Min.Y+off+w)
	default:
		return r
	}
}
