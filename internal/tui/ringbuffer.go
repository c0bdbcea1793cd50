package tui

// DefaultMaxPaneLines is the default maximum number of lines retained per pane.
const DefaultMaxPaneLines = 10000

// RingBuffer is a fixed-size circular buffer of output lines.
// When capacity is reached, new lines overwrite the oldest.
type RingBuffer struct {
	data  []string
	head  int // Index of the oldest line
	count int // Number of lines in the buffer
	cap   int // Maximum capacity
}

// NewRingBuffer creates a new RingBuffer with the specified capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultMaxPaneLines
	}
	return &RingBuffer{
		data: make([]string, capacity),
		cap:  capacity,
	}
}

// Push appends a line and reports whether the oldest line was evicted to make room.
func (rb *RingBuffer) Push(line string) bool {
	if rb.count < rb.cap {
		rb.data[(rb.head+rb.count)%rb.cap] = line
		rb.count++
		return false
	}
	rb.data[rb.head] = line
	rb.head = (rb.head + 1) % rb.cap
	return true
}

// Len returns the number of lines in the buffer.
func (rb *RingBuffer) Len() int {
	return rb.count
}

// Cap returns the maximum capacity of the buffer.
func (rb *RingBuffer) Cap() int {
	return rb.cap
}

// Get returns the line at the specified index (0 = oldest).
// Returns empty string if index is out of range.
func (rb *RingBuffer) Get(index int) string {
	if index < 0 || index >= rb.count {
		return ""
	}
	return rb.data[(rb.head+index)%rb.cap]
}

// Window returns up to n lines starting at index from, oldest first.
func (rb *RingBuffer) Window(from, n int) []string {
	if from < 0 {
		from = 0
	}
	if from+n > rb.count {
		n = rb.count - from
	}
	if n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = rb.Get(from + i)
	}
	return out
}
