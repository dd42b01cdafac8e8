package gpio

// FakeWriter is a test double that records output levels.
type FakeWriter struct {
	// Level is the current output level.
	Level bool

	// History contains every level passed to Set, in order.
	History []bool

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// NewFakeWriter creates a FakeWriter that starts low.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Set records the level.
func (f *FakeWriter) Set(on bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Level = on
	f.History = append(f.History, on)
	return nil
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.Closed = true
	return nil
}

// Pulses returns the number of low-to-high transitions in History.
func (f *FakeWriter) Pulses() int {
	n := 0
	prev := false
	for _, v := range f.History {
		if v && !prev {
			n++
		}
		prev = v
	}
	return n
}
