package util

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// SourceFile is a source file opened for a single parse. Content is
// memory-mapped when possible and falls back to a plain read when mmap is
// unavailable (empty files, special filesystems).
//
// The bytes returned by Bytes are only valid until Close.
type SourceFile struct {
	Path string

	data     mmap.MMap
	file     *os.File
	fallback []byte
}

// OpenSource opens path read-only and maps its content.
func OpenSource(path string) (*SourceFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if stat.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%q is a directory", path)
	}

	// Zero bytes can't be mapped.
	if stat.Size() == 0 {
		file.Close()
		return &SourceFile{Path: path, fallback: []byte{}}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				path, err, readErr)
		}
		return &SourceFile{Path: path, fallback: content}, nil
	}

	return &SourceFile{Path: path, data: data, file: file}, nil
}

// Bytes returns the file content.
func (s *SourceFile) Bytes() []byte {
	if s.data != nil {
		return s.data
	}
	return s.fallback
}

// Mapped reports whether the content is backed by a memory mapping.
func (s *SourceFile) Mapped() bool {
	return s.data != nil
}

// Close unmaps the content and closes the descriptor. It is safe to call
// more than once.
func (s *SourceFile) Close() error {
	var firstErr error
	if s.data != nil {
		if err := s.data.Unmap(); err != nil {
			firstErr = fmt.Errorf("failed to unmap %q: %w", s.Path, err)
		}
		s.data = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close %q: %w", s.Path, err)
		}
		s.file = nil
	}
	s.fallback = nil
	return firstErr
}
