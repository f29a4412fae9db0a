// Package postfile reads post content files and writes rendered content back
// to them.
package postfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Source is the content of one post file as it was read.
type Source struct {
	Path      string
	Content   string
	FromStdin bool
	Mode      fs.FileMode
}

// Store reads and atomically replaces post files. It allows at most one
// in-flight write per path.
type Store struct {
	fs    afero.Fs
	stdin io.Reader

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore returns a Store over fsys. stdin is consumed when the path "-" or
// an empty path is read.
func NewStore(fsys afero.Fs, stdin io.Reader) *Store {
	return &Store{fs: fsys, stdin: stdin, locks: map[string]*sync.Mutex{}}
}

// Read loads the file at path.
func (s *Store) Read(path string) (*Source, error) {
	if path == "" || path == Stdin {
		if s.stdin == nil {
			return nil, errors.New("no standard input available")
		}
		data, err := io.ReadAll(s.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &Source{Path: Stdin, Content: string(data), FromStdin: true}, nil
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	return &Source{Path: path, Content: string(data), Mode: info.Mode().Perm()}, nil
}

// WriteBack replaces the file src was read from with content. The new content
// is written to a temporary file in the same directory, synced and renamed
// over the original. Sources read from stdin have nowhere to go; WriteBack
// reports false for them without error.
func (s *Store) WriteBack(src *Source, content string) (bool, error) {
	if src == nil || src.FromStdin {
		return false, nil
	}

	unlock := s.lock(src.Path)
	defer unlock()

	mode := src.Mode
	if mode == 0 {
		mode = 0o644
	}

	dir, base := filepath.Split(src.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := afero.TempFile(s.fs, dir, "."+base+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpName) }

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return false, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return false, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return false, err
	}
	if err := s.fs.Chmod(tmpName, mode); err != nil {
		cleanup()
		return false, err
	}
	if err := s.fs.Rename(tmpName, src.Path); err != nil {
		cleanup()
		return false, fmt.Errorf("replace %s: %w", src.Path, err)
	}
	return true, nil
}

func (s *Store) lock(path string) func() {
	key := filepath.Clean(path)
	if abs, err := filepath.Abs(key); err == nil {
		key = abs
	}

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
