package documents

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type DocumentInfo struct {
	Name    string // base file name
	Path    string // slash separated path relative to the store root
	Size    int64
	ModTime time.Time
}

type FileStore interface {
	Open(name string) (io.ReadCloser, DocumentInfo, error)
	Stat(name string) (DocumentInfo, error)
	Remove(name string) error
	List(dir string) ([]DocumentInfo, error)
}

// LocalFileStore serves documents from a directory. Lookups are confined to
// that directory, symlinks included.
type LocalFileStore struct {
	root *os.Root
}

func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", ErrInvalidName
	}
	return path.Clean(name), nil
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrDocumentNotFound
	}
	return err
}

func toInfo(name string, fi fs.FileInfo) DocumentInfo {
	return DocumentInfo{
		Name:    fi.Name(),
		Path:    name,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}
}

func (s *LocalFileStore) Stat(name string) (DocumentInfo, error) {
	name, err := cleanName(name)
	if err != nil {
		return DocumentInfo{}, err
	}
	fi, err := s.root.Stat(filepath.FromSlash(name))
	if err != nil {
		return DocumentInfo{}, mapFSError(err)
	}
	if !fi.Mode().IsRegular() {
		return DocumentInfo{}, ErrDocumentNotFound
	}
	return toInfo(name, fi), nil
}

func (s *LocalFileStore) Open(name string) (io.ReadCloser, DocumentInfo, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, DocumentInfo{}, err
	}
	f, err := s.root.Open(filepath.FromSlash(name))
	if err != nil {
		return nil, DocumentInfo{}, mapFSError(err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, DocumentInfo{}, err
	}
	if !fi.Mode().IsRegular() {
		f.Close()
		return nil, DocumentInfo{}, ErrDocumentNotFound
	}
	return f, toInfo(name, fi), nil
}

func (s *LocalFileStore) Remove(name string) error {
	if _, err := s.Stat(name); err != nil {
		return err
	}
	name, _ = cleanName(name)
	if err := s.root.Remove(filepath.FromSlash(name)); err != nil {
		return mapFSError(err)
	}
	return nil
}

// List returns the regular files directly under dir, sorted by name.
func (s *LocalFileStore) List(dir string) ([]DocumentInfo, error) {
	dir, err := cleanName(dir)
	if err != nil {
		return nil, err
	}
	f, err := s.root.Open(filepath.FromSlash(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, mapFSError(err)
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}
	docs := make([]DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, toInfo(path.Join(dir, entry.Name()), fi))
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Name < docs[j].Name
	})
	return docs, nil
}

func (s *LocalFileStore) Close() error {
	return s.root.Close()
}

func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("open document root: %w", err)
	}
	return &LocalFileStore{root: root}, nil
}
