package download

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/yt-harvester/internal/io"
	"github.com/handiism/yt-harvester/internal/model"
)

// CombinedExtension is the extension the platform gives downloads by default.
const CombinedExtension = ".mp4"

// Normalizer renames downloaded files so their extension matches the run mode.
//
// It works on the paths reported by the executor, never on a directory
// listing, so files that were already in the destination are left alone
// unless they collide with a rename target.
type Normalizer struct {
	mode       model.Mode
	onProgress model.ProgressFunc
}

// NewNormalizer creates a Normalizer for mode.
func NewNormalizer(mode model.Mode, onProgress model.ProgressFunc) *Normalizer {
	return &Normalizer{mode: mode, onProgress: onProgress}
}

// Normalize returns the final path for each input path, in input order.
//
// In audio-only mode each path ending in CombinedExtension is renamed to
// the audio extension. An existing, different file at the target path is
// deleted first: the newest download wins. In video mode nothing changes.
//
// Normalize is idempotent: already normalized paths are returned as they
// are, and a path whose rename already happened maps to its target.
//
// A failed rename keeps the original path in the output and is reported in
// the joined error; the remaining paths are still processed.
func (n *Normalizer) Normalize(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	if n.mode != model.ModeAudioOnly {
		copy(out, paths)
		return out, nil
	}

	var errs []error
	for i, path := range paths {
		final, err := n.normalizeOne(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("normalize %s: %w", path, err))
			final = path
		}
		out[i] = final
	}

	return out, errors.Join(errs...)
}

func (n *Normalizer) normalizeOne(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), CombinedExtension) {
		return path, nil
	}
	target := ioutils.SwapExt(path, n.mode.TargetExtension())

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if _, terr := os.Stat(target); terr == nil {
			return target, nil
		}
		return "", err
	}

	replaced, err := ioutils.ReplaceFile(path, target)
	if err != nil {
		return "", err
	}
	if replaced {
		n.onProgress.Emit(model.LevelWarning, fmt.Sprintf("Replaced existing %s", filepath.Base(target)))
	}
	n.onProgress.Emit(model.LevelVerbose, fmt.Sprintf("Renamed %s -> %s", filepath.Base(path), filepath.Base(target)))
	return target, nil
}
