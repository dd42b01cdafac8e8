package ir

import "github.com/sweeney/ir-dimmer/internal/logic"

// FakeDecoder is a test double that returns scripted commands.
type FakeDecoder struct {
	// Script contains one entry per Poll call; nil means no event.
	// Once exhausted, Poll reports no event.
	Script []*logic.Command

	// index tracks current position in Script
	index int

	// Closed tracks if Close was called
	Closed bool

	// PollError, if set, will be returned by Poll()
	PollError error
}

// NewFakeDecoder creates a FakeDecoder with the given script.
func NewFakeDecoder(script []*logic.Command) *FakeDecoder {
	return &FakeDecoder{Script: script}
}

// Poll returns the next scripted entry.
func (f *FakeDecoder) Poll() (logic.Command, bool, error) {
	if f.PollError != nil {
		return logic.Command{}, false, f.PollError
	}
	if f.index >= len(f.Script) {
		return logic.Command{}, false, nil
	}

	cmd := f.Script[f.index]
	f.index++
	if cmd == nil {
		return logic.Command{}, false, nil
	}
	return *cmd, true, nil
}

// Close marks the decoder as closed.
func (f *FakeDecoder) Close() error {
	f.Closed = true
	return nil
}
