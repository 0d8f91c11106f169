// ABOUTME: Blocking byte ring buffer between a writer and a device callback
// ABOUTME: Writers wait for space; the callback never blocks and zero-fills on underrun
package output

import (
	"sync"
)

// RingBuffer provides a thread-safe circular buffer of encoded audio bytes.
// Write blocks while the buffer is full; Read never blocks.
type RingBuffer struct {
	buffer   []byte
	readPos  int
	writePos int
	size     int
	count    int // Number of bytes currently in buffer
	closed   bool
	mu       sync.Mutex
	notFull  *sync.Cond
}

// NewRingBuffer creates a ring buffer with given capacity (in bytes)
func NewRingBuffer(capacity int) *RingBuffer {
	rb := &RingBuffer{
		buffer: make([]byte, capacity),
		size:   capacity,
	}
	rb.notFull = sync.NewCond(&rb.mu)
	return rb
}

// Write copies p into the buffer, waiting for the reader to free space as
// needed. It returns early with ok=false if the buffer is closed.
func (rb *RingBuffer) Write(p []byte) (written int, ok bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	for written < len(p) {
		for rb.count == rb.size && !rb.closed {
			rb.notFull.Wait()
		}
		if rb.closed {
			return written, false
		}

		// Copy the largest contiguous run that fits
		n := rb.size - rb.count
		if tail := rb.size - rb.writePos; n > tail {
			n = tail
		}
		if rest := len(p) - written; n > rest {
			n = rest
		}
		copy(rb.buffer[rb.writePos:], p[written:written+n])
		rb.writePos = (rb.writePos + n) % rb.size
		rb.count += n
		written += n
	}

	return written, true
}

// Read fills p from the buffer and zero-fills whatever is missing.
// It returns the number of buffered bytes delivered.
func (rb *RingBuffer) Read(p []byte) int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	read := 0
	for read < len(p) && rb.count > 0 {
		n := rb.count
		if tail := rb.size - rb.readPos; n > tail {
			n = tail
		}
		if rest := len(p) - read; n > rest {
			n = rest
		}
		copy(p[read:read+n], rb.buffer[rb.readPos:rb.readPos+n])
		rb.readPos = (rb.readPos + n) % rb.size
		rb.count -= n
		read += n
	}

	// Zero-fill remaining if underrun
	clear(p[read:])

	if read > 0 {
		rb.notFull.Broadcast()
	}
	return read
}

// Close wakes blocked writers; later writes fail
func (rb *RingBuffer) Close() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.closed = true
	rb.notFull.Broadcast()
}

// Available returns the number of bytes available to read
func (rb *RingBuffer) Available() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.count
}

// Free returns the number of free bytes in the buffer
func (rb *RingBuffer) Free() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	return rb.size - rb.count
}
