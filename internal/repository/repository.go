// Package repository looks up read-only data files by name prefix.
//
// Test cases, body templates and schema documents are all referenced by the start of
// their file name ("TC001" finds "TC001_create_user.csv"). A Repository walks its
// root directory for the first regular file whose base name has the prefix and
// caches file contents, since the directories do not change during a run. Concurrent
// workers asking for the same file share one read.
package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// NotFoundError is returned when no file under Dir starts with Prefix.
type NotFoundError struct {
	Dir    string
	Prefix string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no file starting with %q found under %s", e.Prefix, e.Dir)
}

// errFound stops the directory walk at the first match.
var errFound = errors.New("found")

// Repository resolves file name prefixes under one directory.
type Repository struct {
	fs   afero.Fs
	dir  string
	exts []string

	group singleflight.Group
	mu    sync.RWMutex
	data  map[string][]byte
}

// New creates a Repository over dir. When exts is not empty only files with one of
// those extensions are considered.
func New(fsys afero.Fs, dir string, exts ...string) *Repository {
	return &Repository{
		fs:   fsys,
		dir:  dir,
		exts: exts,
		data: make(map[string][]byte),
	}
}

// Dir returns the root directory.
func (r *Repository) Dir() string {
	return r.dir
}

// Find returns the path of the first file, in lexical walk order, whose base name
// starts with prefix.
func (r *Repository) Find(prefix string) (string, error) {
	var match string
	err := afero.Walk(r.fs, r.dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !r.accepts(path) {
			return nil
		}
		if strings.HasPrefix(info.Name(), prefix) {
			match = path
			return errFound
		}
		return nil
	})
	if errors.Is(err, errFound) {
		return match, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("searching %s for %q: %w", r.dir, prefix, err)
	}
	return "", &NotFoundError{Dir: r.dir, Prefix: prefix}
}

// Read returns the contents of the file Find selects for prefix.
func (r *Repository) Read(prefix string) ([]byte, error) {
	r.mu.RLock()
	cached, ok := r.data[prefix]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := r.group.Do(prefix, func() (interface{}, error) {
		path, err := r.Find(prefix)
		if err != nil {
			return nil, err
		}
		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		r.mu.Lock()
		r.data[prefix] = content
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// List returns every accepted file under the root, in lexical order.
func (r *Repository) List() ([]string, error) {
	var files []string
	err := afero.Walk(r.fs, r.dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && r.accepts(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Invalidate drops cached contents, for example after the files changed on disk.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.data = make(map[string][]byte)
	r.mu.Unlock()
}

func (r *Repository) accepts(path string) bool {
	if len(r.exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range r.exts {
		if ext == e {
			return true
		}
	}
	return false
}
