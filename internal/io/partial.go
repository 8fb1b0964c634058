package ioutils

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PartialExt marks files that are still being written.
const PartialExt = ".part"

// PartialFile is a file written under a unique temporary name and moved to
// its final path by Commit.
//
// Concurrent downloads of the same title never share a temporary file, and
// an aborted download leaves nothing at the final path.
//
// Example:
//
//	pf, err := CreatePartial("/videos/clip.mp4")
//	if err != nil {
//	    return err
//	}
//	if _, err := io.Copy(pf, stream); err != nil {
//	    pf.Abort()
//	    return err
//	}
//	return pf.Commit()
type PartialFile struct {
	file      *os.File
	tempPath  string
	finalPath string
	closed    bool
}

// CreatePartial creates the temporary file for finalPath in the same directory.
func CreatePartial(finalPath string) (*PartialFile, error) {
	dir, base := filepath.Split(finalPath)
	tempPath := filepath.Join(dir, "."+base+"."+uuid.NewString()+PartialExt)

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	return &PartialFile{file: f, tempPath: tempPath, finalPath: finalPath}, nil
}

// Write implements io.Writer.
func (p *PartialFile) Write(b []byte) (int, error) {
	return p.file.Write(b)
}

// TempPath returns the temporary file path.
func (p *PartialFile) TempPath() string {
	return p.tempPath
}

// FinalPath returns the path the file is moved to on Commit.
func (p *PartialFile) FinalPath() string {
	return p.finalPath
}

// Commit closes the file and renames it to its final path, replacing any
// existing file.
func (p *PartialFile) Commit() error {
	if err := p.close(); err != nil {
		os.Remove(p.tempPath)
		return err
	}
	if err := os.Rename(p.tempPath, p.finalPath); err != nil {
		os.Remove(p.tempPath)
		return err
	}
	return nil
}

// Abort closes and removes the temporary file. Safe to call more than once.
func (p *PartialFile) Abort() {
	p.close()
	os.Remove(p.tempPath)
}

// CheckWritable reports whether files can be created in dir, by creating
// and removing a partial file there.
func CheckWritable(dir string) error {
	pf, err := CreatePartial(filepath.Join(dir, "write-check"))
	if err != nil {
		return err
	}
	pf.Abort()
	return nil
}

func (p *PartialFile) close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.file.Close()
}
