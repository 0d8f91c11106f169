// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for encoding float samples into a sink's wire format
package encode

// Encoder encodes float samples in [-1, 1] into a preallocated byte buffer
type Encoder interface {
	// Encode writes the encoded samples into dst and returns the number of bytes written
	Encode(dst []byte, samples []float64) (int, error)

	// EncodedLen returns the number of bytes needed for n samples
	EncodedLen(n int) int

	// Close releases encoder resources
	Close() error
}
