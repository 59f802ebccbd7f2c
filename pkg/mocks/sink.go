package mocks

import (
	"image"
	"sync"

	"github.com/user/hemostyle/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink that keeps everything in memory.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	LayoutJSON []byte
	Source     image.Image
	Styled     image.Image
	Composed   map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:  enabled,
		Composed: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveLayoutJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON = data
	return nil
}

func (m *DebugSink) SaveSource(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Source = img
	return nil
}

func (m *DebugSink) SaveStyled(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Styled = img
	return nil
}

func (m *DebugSink) SaveComposed(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Composed[index] = img
	return nil
}

// ComposedCount returns how many composed canvases were saved.
func (m *DebugSink) ComposedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Composed)
}

var _ ports.DebugSink = (*DebugSink)(nil)
