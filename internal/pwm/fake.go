package pwm

// FakeSink is a test double that records output levels.
type FakeSink struct {
	// Level is the last level set.
	Level uint8

	// Changes contains each distinct level in the order it was set.
	Changes []uint8

	// Calls counts SetLevel calls.
	Calls int

	// Closed tracks if Close was called
	Closed bool

	// SetError, if set, will be returned by SetLevel()
	SetError error
}

// NewFakeSink creates a FakeSink at level 0.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// SetLevel records the level.
func (f *FakeSink) SetLevel(level uint8) error {
	f.Calls++
	if f.SetError != nil {
		return f.SetError
	}
	if len(f.Changes) == 0 || level != f.Level {
		f.Changes = append(f.Changes, level)
	}
	f.Level = level
	return nil
}

// Close marks the sink as closed.
func (f *FakeSink) Close() error {
	f.Closed = true
	return nil
}
