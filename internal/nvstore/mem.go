package nvstore

// Write records one MemStore write.
type Write struct {
	Addr  uint16
	Value byte
}

// MemStore is an in-memory Store for tests. It starts fully erased.
type MemStore struct {
	Cells [Size]byte

	// Writes records every successful write in order.
	Writes []Write

	// ReadError and WriteError, if set, are returned by every read or write.
	ReadError  error
	WriteError error
}

// NewMemStore creates an erased MemStore.
func NewMemStore() *MemStore {
	s := &MemStore{}
	for i := range s.Cells {
		s.Cells[i] = Erased
	}
	return s
}

// ReadCell returns the value at addr.
func (s *MemStore) ReadCell(addr uint16) (byte, error) {
	if s.ReadError != nil {
		return 0, s.ReadError
	}
	if addr >= Size {
		return 0, ErrAddressRange
	}
	return s.Cells[addr], nil
}

// WriteCell stores v at addr.
func (s *MemStore) WriteCell(addr uint16, v byte) error {
	if s.WriteError != nil {
		return s.WriteError
	}
	if addr >= Size {
		return ErrAddressRange
	}
	s.Cells[addr] = v
	s.Writes = append(s.Writes, Write{Addr: addr, Value: v})
	return nil
}
