package ir

import "github.com/sweeney/ir-dimmer/internal/logic"

// QueueDecoder is a Decoder fed from another goroutine, e.g. an MQTT
// subscription acting as a network remote. Push never blocks.
type QueueDecoder struct {
	ch chan logic.Command
}

// NewQueueDecoder creates a decoder buffering up to size commands.
func NewQueueDecoder(size int) *QueueDecoder {
	return &QueueDecoder{ch: make(chan logic.Command, size)}
}

// Push enqueues cmd, returning ErrQueueFull if the buffer is full.
func (q *QueueDecoder) Push(cmd logic.Command) error {
	select {
	case q.ch <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// Poll returns the oldest queued command, if any.
func (q *QueueDecoder) Poll() (logic.Command, bool, error) {
	select {
	case cmd := <-q.ch:
		return cmd, true, nil
	default:
		return logic.Command{}, false, nil
	}
}

// Close is a no-op; pending commands are dropped with the decoder.
func (q *QueueDecoder) Close() error {
	return nil
}
