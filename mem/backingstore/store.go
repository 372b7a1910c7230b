// Package backingstore reads page contents from the store that backs the
// simulated address space. Page p starts at byte p*vm.PageSize of the store.
package backingstore

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/vmmgr/mem/vm"
)

var (
	// ErrStoreUnreadable is returned when the store cannot be opened.
	ErrStoreUnreadable = errors.New("backing store cannot be opened")

	// ErrShortRead is returned when the store ends before the page does.
	ErrShortRead = errors.New("backing store is shorter than the page")
)

// A Store provides the content of pages.
type Store interface {
	// ReadPage returns the vm.PageSize bytes of the page.
	ReadPage(page vm.PageNumber) ([]byte, error)
}

// ReaderStore is a Store that reads pages from an io.ReaderAt.
type ReaderStore struct {
	r io.ReaderAt
}

// NewReaderStore creates a store over r.
func NewReaderStore(r io.ReaderAt) *ReaderStore {
	return &ReaderStore{r: r}
}

// ReadPage returns the content of the page.
func (s *ReaderStore) ReadPage(page vm.PageNumber) ([]byte, error) {
	return readPageAt(s.r, page)
}

func readPageAt(r io.ReaderAt, page vm.PageNumber) ([]byte, error) {
	data := make([]byte, vm.PageSize)
	offset := int64(page) * vm.PageSize

	n, err := r.ReadAt(data, offset)
	if n == vm.PageSize {
		return data, nil
	}

	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("page %d: read %d of %d bytes: %w",
			page, n, vm.PageSize, ErrShortRead)
	}

	return nil, fmt.Errorf("page %d: %w", page, err)
}

// FileStore is a Store backed by a file. The file is opened on the first read
// and stays open until Close is called.
type FileStore struct {
	path string
	file *os.File
}

// NewFileStore creates a store that reads from the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the path of the file.
func (s *FileStore) Path() string {
	return s.path
}

// ReadPage returns the content of the page.
func (s *FileStore) ReadPage(page vm.PageNumber) ([]byte, error) {
	if s.file == nil {
		file, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", s.path, ErrStoreUnreadable, err)
		}

		s.file = file
	}

	return readPageAt(s.file, page)
}

// Close closes the file if it has been opened.
func (s *FileStore) Close() error {
	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}
