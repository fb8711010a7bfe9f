package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet manages the source files diagnostics point into. The resolver
// itself never reads source text; files exist so spans can be mapped back
// to path:line:col when diagnostics are rendered.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores content under path and returns a fresh FileID. A path may be
// added more than once; the index always points at the latest version.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalized := normalizePath(path)

	count, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(count)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// Load reads path from disk and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.Add(path, content, 0), nil
}

// AddVirtual adds an in-memory file (tests, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when id is out of range.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// PathOf returns the normalized path for id, or "" when unknown.
func (fs *FileSet) PathOf(id FileID) string {
	if f := fs.Get(id); f != nil {
		return f.Path
	}
	return ""
}

// Position maps a byte offset in a file to 1-based line/column.
func (fs *FileSet) Position(id FileID, offset uint32) LineCol {
	f := fs.Get(id)
	if f == nil {
		return LineCol{Line: 1, Col: 1}
	}
	return toLineCol(f.LineIdx, offset)
}

// LineText returns the raw text of the 1-based line, without the newline.
func (fs *FileSet) LineText(id FileID, line uint32) string {
	f := fs.Get(id)
	if f == nil || line == 0 {
		return ""
	}
	start := uint32(0)
	if line > 1 {
		if int(line-2) >= len(f.LineIdx) {
			return ""
		}
		start = f.LineIdx[line-2] + 1
	}
	end := uint32(len(f.Content))
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Len reports the number of files in the set.
func (fs *FileSet) Len() int {
	return len(fs.files)
}
