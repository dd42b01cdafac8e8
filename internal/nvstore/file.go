package nvstore

import (
	"bytes"
	"fmt"
	"os"
)

// FileStore is a Store backed by a fixed-size image file. Every write is
// synced before it returns.
type FileStore struct {
	f *os.File
}

// OpenFile opens the image at path, creating it erased if it does not exist
// and padding it with erased cells if it is short.
func OpenFile(path string) (*FileStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat store: %w", err)
	}
	if fi.Size() < Size {
		pad := bytes.Repeat([]byte{Erased}, Size-int(fi.Size()))
		if _, err := f.WriteAt(pad, fi.Size()); err != nil {
			f.Close()
			return nil, fmt.Errorf("initialize store: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("initialize store: %w", err)
		}
	}

	return &FileStore{f: f}, nil
}

// ReadCell returns the value at addr.
func (s *FileStore) ReadCell(addr uint16) (byte, error) {
	if addr >= Size {
		return 0, ErrAddressRange
	}
	var b [1]byte
	if _, err := s.f.ReadAt(b[:], int64(addr)); err != nil {
		return 0, fmt.Errorf("read cell %d: %w", addr, err)
	}
	return b[0], nil
}

// WriteCell stores v at addr.
func (s *FileStore) WriteCell(addr uint16, v byte) error {
	if addr >= Size {
		return ErrAddressRange
	}
	if _, err := s.f.WriteAt([]byte{v}, int64(addr)); err != nil {
		return fmt.Errorf("write cell %d: %w", addr, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync cell %d: %w", addr, err)
	}
	return nil
}

// Close closes the image file.
func (s *FileStore) Close() error {
	return s.f.Close()
}
