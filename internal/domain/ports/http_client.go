package ports

import "net/http"

// HTTPClient defines the interface for making HTTP requests to the processor.
// Tests substitute a mock; production wires pkg/http's rate limited client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
