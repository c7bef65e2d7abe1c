package mocks

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// MockHTTPClient is a mock implementation of HTTPClient for testing
type MockHTTPClient struct {
	mu     sync.Mutex
	DoFunc func(req *http.Request) (*http.Response, error)
	Calls  []*http.Request
	Bodies []string
}

// NewMockHTTPClient creates a new mock HTTP client
func NewMockHTTPClient(doFunc func(req *http.Request) (*http.Response, error)) *MockHTTPClient {
	return &MockHTTPClient{
		DoFunc: doFunc,
		Calls:  []*http.Request{},
	}
}

// NewStaticHTTPClient returns a client answering every request with the same
// status and body.
func NewStaticHTTPClient(status int, body string) *MockHTTPClient {
	return NewMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		return Response(status, body), nil
	})
}

// NewSequenceHTTPClient answers successive requests with bodies in order,
// repeating the last one once the list is exhausted.
func NewSequenceHTTPClient(bodies ...string) *MockHTTPClient {
	m := &MockHTTPClient{}
	m.DoFunc = func(req *http.Request) (*http.Response, error) {
		i := len(m.Calls) - 1
		if i >= len(bodies) {
			i = len(bodies) - 1
		}
		return Response(http.StatusOK, bodies[i]), nil
	}
	return m
}

// Response builds an *http.Response with the given status and body
func Response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

// Do executes the mock function and captures the call and its body
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	body := ""
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		req.Body.Close()
		body = string(data)
		req.Body = io.NopCloser(bytes.NewReader(data))
	}
	m.Calls = append(m.Calls, req)
	m.Bodies = append(m.Bodies, body)
	doFunc := m.DoFunc
	m.mu.Unlock()

	if doFunc != nil {
		return doFunc(req)
	}
	// Default success response
	return Response(http.StatusOK, `{"status":"ok"}`), nil
}

// Reset clears captured calls
func (m *MockHTTPClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = []*http.Request{}
	m.Bodies = nil
}
