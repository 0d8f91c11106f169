// ABOUTME: Fixed-size sample chunking for blocking stream APIs
// ABOUTME: Decodes 16-bit LE frames into a stream buffer and carries partial chunks over
package output

import "github.com/Resonate-Protocol/keepalive-go/pkg/audio"

// sampleChunker fills buf from encoded frames and flushes it only when full.
// Samples that do not complete a chunk stay queued for the next push, so a
// stream with a fixed buffer size never plays padding between writes.
type sampleChunker struct {
	buf []int16
	n   int
}

func newSampleChunker(buf []int16) *sampleChunker {
	return &sampleChunker{buf: buf}
}

// push decodes frame into the buffer, calling flush each time it fills
func (c *sampleChunker) push(frame []byte, flush func() error) error {
	for i := 0; i+1 < len(frame); i += 2 {
		c.buf[c.n] = audio.Int16LE(frame[i:])
		c.n++
		if c.n == len(c.buf) {
			c.n = 0
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// pending returns how many samples wait for the next flush
func (c *sampleChunker) pending() int {
	return c.n
}

// reset drops queued samples
func (c *sampleChunker) reset() {
	c.n = 0
}
