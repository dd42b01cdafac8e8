package mqtt

import "log"

// message is a serialized MQTT message held for replay after reconnection.
type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable. Once full
// it drops the oldest message. Not safe for concurrent use; caller must synchronize.
type outbox struct {
	msgs    []message
	limit   int
	dropped int
}

func newOutbox(limit int) *outbox {
	return &outbox{msgs: make([]message, 0, limit), limit: limit}
}

func (o *outbox) add(m message) {
	if len(o.msgs) == o.limit {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.limit)
		}
		copy(o.msgs, o.msgs[1:])
		o.msgs = o.msgs[:len(o.msgs)-1]
		o.dropped++
	}
	o.msgs = append(o.msgs, m)
}

// take returns the held messages oldest first, and how many were dropped
// since the last take. The outbox is empty afterwards.
func (o *outbox) take() ([]message, int) {
	if len(o.msgs) == 0 && o.dropped == 0 {
		return nil, 0
	}
	msgs := make([]message, len(o.msgs))
	copy(msgs, o.msgs)
	dropped := o.dropped

	o.msgs = o.msgs[:0]
	o.dropped = 0
	return msgs, dropped
}

func (o *outbox) len() int {
	return len(o.msgs)
}
