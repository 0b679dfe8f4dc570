package transport

// FrameReassembler buffers the fragments of one binary websocket message
// until the final fragment arrives, then hands the whole message to its
// consumer. It is not safe for concurrent use; each Client owns one and
// only touches it from its read loop.
type FrameReassembler struct {
	consume func(msg []byte) (shouldClose bool)
	parts   [][]byte
	size    int
}

// NewFrameReassembler returns a reassembler delivering complete messages
// to consume. The consumer's return value is passed back from Append.
func NewFrameReassembler(consume func(msg []byte) (shouldClose bool)) *FrameReassembler {
	return &FrameReassembler{consume: consume}
}

// Append adds one fragment. Empty fragments are not buffered but still
// count for the final flag. When final is true the buffered fragments are
// concatenated in arrival order, delivered, and the buffer is reset.
// It returns whether the caller should close the connection.
func (r *FrameReassembler) Append(fragment []byte, final bool) bool {
	if len(fragment) > 0 {
		r.parts = append(r.parts, fragment)
		r.size += len(fragment)
	}

	if !final {
		return false
	}

	return r.consume(r.flush())
}

// Buffered returns the number of bytes waiting for a final fragment.
func (r *FrameReassembler) Buffered() int {
	return r.size
}

func (r *FrameReassembler) flush() []byte {
	msg := make([]byte, 0, r.size)
	for _, p := range r.parts {
		msg = append(msg, p...)
	}

	clear(r.parts)
	r.parts = r.parts[:0]
	r.size = 0

	return msg
}
