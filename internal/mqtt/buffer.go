package mqtt

import "log"

// bufferedMsg is a serialized system event waiting for a connection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer holds system events raised while disconnected. When full the
// oldest event is overwritten; lifecycle events are only interesting in
// their most recent form.
// Not safe for concurrent use; RealPublisher guards it with its mutex.
type ringBuffer struct {
	slots   []bufferedMsg
	next    int // slot the next push writes
	count   int
	dropped int // events overwritten since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{slots: make([]bufferedMsg, max(capacity, 1))}
}

func (r *ringBuffer) push(msg bufferedMsg) {
	if r.count == len(r.slots) {
		if r.dropped == 0 {
			log.Printf("mqtt: %d system events pending, dropping oldest", len(r.slots))
		}
		r.dropped++
	} else {
		r.count++
	}
	r.slots[r.next] = msg
	r.next = (r.next + 1) % len(r.slots)
}

// drainAll returns pending events oldest first and empties the buffer.
func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	out := make([]bufferedMsg, 0, r.count)
	oldest := (r.next - r.count + len(r.slots)) % len(r.slots)
	for i := 0; i < r.count; i++ {
		out = append(out, r.slots[(oldest+i)%len(r.slots)])
	}

	if r.dropped > 0 {
		log.Printf("mqtt: replaying %d system events, %d dropped while offline", r.count, r.dropped)
	}
	clear(r.slots)
	r.next, r.count, r.dropped = 0, 0, 0
	return out
}

func (r *ringBuffer) len() int {
	return r.count
}
