package mocks

import (
	"context"
	"sync"

	"github.com/user/hemostyle/pkg/ports"
)

// StyleTransformer is a mock implementation of ports.StyleTransformer.
type StyleTransformer struct {
	NameValue     string
	Unavailable   bool
	TransformFunc func(ctx context.Context, req ports.TransformRequest) (ports.TransformResponse, error)

	mu       sync.Mutex
	requests []ports.TransformRequest
}

func (m *StyleTransformer) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

func (m *StyleTransformer) Available() bool {
	return !m.Unavailable
}

func (m *StyleTransformer) Transform(ctx context.Context, req ports.TransformRequest) (ports.TransformResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.TransformFunc != nil {
		return m.TransformFunc(ctx, req)
	}
	return ports.TransformResponse{ImageData: req.ImageData, MIMEType: req.MIMEType}, nil
}

// Calls returns how many times Transform was called.
func (m *StyleTransformer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns the recorded requests.
func (m *StyleTransformer) Requests() []ports.TransformRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.TransformRequest(nil), m.requests...)
}

var _ ports.StyleTransformer = (*StyleTransformer)(nil)
