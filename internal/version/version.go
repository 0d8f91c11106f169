// ABOUTME: Version information for the keep-alive
// ABOUTME: Reported at startup and in the status display
package version

const (
	// Version is the software version
	Version = "0.3.0"

	// Product is the product name
	Product = "Audio Keep-Alive"

	// Manufacturer identifies who builds it
	Manufacturer = "Resonate"
)

// String returns the product and version on one line
func String() string {
	return Product + " " + Version
}
