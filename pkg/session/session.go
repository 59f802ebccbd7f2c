// Package session tracks the editor flow of one user: upload, style
// selection, processing and the render loop on the styled photo.
package session

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
)

var (
	// ErrInvalidTransition is returned when an event is not allowed in the current state.
	ErrInvalidTransition = errors.New("session: invalid state transition")
	// ErrStaleRender is returned when a completion arrives after a newer
	// request was issued or the session was reset.
	ErrStaleRender = errors.New("session: stale result discarded")
)

// FailureMessage is shown to users when restyling fails.
const FailureMessage = "দুঃখিত, ছবিটি প্রসেস করা সম্ভব হয়নি। অনুগ্রহ করে আবার চেষ্টা করুন।"

// State is a step of the editor flow.
type State int

const (
	Empty State = iota
	Selecting
	Processing
	Ready
	Failed
)

var stateNames = [...]string{"empty", "selecting", "processing", "ready", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Canvas is a committed render.
type Canvas struct {
	Token    uint64
	Data     []byte
	MIMEType string
	Filename string
	Hash     string
	Width    int
	Height   int
}

// RenderRequest is the editor input captured when a render starts.
type RenderRequest struct {
	Token       uint64
	Image       image.Image
	Overlay     pipeline.TextOverlay
	AspectRatio catalog.AspectRatio
}

// Session is one editor flow. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id      string
	state   State
	created time.Time
	updated time.Time

	source *imagesource.RasterImage
	style  catalog.StylePreset
	styled pipeline.TransformResult
	err    error

	// epoch changes on every upload and reset so that late style results
	// from an earlier photo are discarded.
	epoch uint64

	issued    uint64
	committed *Canvas

	now func() time.Time
}

// New creates a session in the Empty state.
func New(id string) *Session {
	s := &Session{id: id, now: time.Now}
	s.created = s.now()
	s.updated = s.created
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Upload stores a new source photo. It is allowed in every state except
// Processing and always discards the previous style result and canvas.
func (s *Session) Upload(src imagesource.RasterImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Processing {
		return s.invalid("upload")
	}
	s.source = &src
	s.style = catalog.StylePreset{}
	s.styled = pipeline.TransformResult{}
	s.err = nil
	s.committed = nil
	s.epoch++
	s.set(Selecting)
	return nil
}

// BeginStyle moves Selecting or Failed to Processing and returns the photo
// to restyle together with the epoch to pass to CompleteStyle. Starting from
// Failed retries with the same photo.
func (s *Session) BeginStyle(style catalog.StylePreset) (imagesource.RasterImage, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Selecting && s.state != Failed {
		return imagesource.RasterImage{}, 0, s.invalid("style")
	}
	s.style = style
	s.err = nil
	s.set(Processing)
	return *s.source, s.epoch, nil
}

// CompleteStyle records the outcome of a style request started with
// BeginStyle: Ready on success, Failed otherwise.
func (s *Session) CompleteStyle(epoch uint64, result pipeline.TransformResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch || s.state != Processing {
		return ErrStaleRender
	}
	if err != nil {
		s.err = err
		s.set(Failed)
		return nil
	}
	s.styled = result
	s.committed = nil
	s.set(Ready)
	return nil
}

// Retry returns a failed session to style selection with the same photo.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Failed {
		return s.invalid("retry")
	}
	s.set(Selecting)
	return nil
}

// Reset returns the session to Empty from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.source = nil
	s.style = catalog.StylePreset{}
	s.styled = pipeline.TransformResult{}
	s.err = nil
	s.committed = nil
	s.epoch++
	s.set(Empty)
}

// BeginRender issues a render token for the styled photo, or the
// original upload when useOriginal is set. Only Ready sessions render.
func (s *Session) BeginRender(overlay pipeline.TextOverlay, aspect catalog.AspectRatio, useOriginal bool) (RenderRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ready {
		return RenderRequest{}, s.invalid("render")
	}
	img := s.styled.Image
	if useOriginal || img == nil {
		img = s.source.Image
	}
	s.issued++
	return RenderRequest{
		Token:       s.issued,
		Image:       img,
		Overlay:     overlay,
		AspectRatio: aspect,
	}, nil
}

// CommitRender stores a finished canvas if its token is still the newest
// issued and the session has not left Ready since.
func (s *Session) CommitRender(c Canvas) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Ready || c.Token != s.issued {
		return ErrStaleRender
	}
	s.committed = &c
	s.updated = s.now()
	return nil
}

// Canvas returns the last committed render.
func (s *Session) Canvas() (Canvas, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed == nil {
		return Canvas{}, false
	}
	return *s.committed, true
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	StyleID   string    `json:"style,omitempty"`
	Backend   string    `json:"backend,omitempty"`
	FellBack  bool      `json:"fell_back,omitempty"`
	Source    *Size     `json:"source,omitempty"`
	Error     string    `json:"error,omitempty"`
	Canvas    *Size     `json:"canvas,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Size is a pixel size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state,
		StyleID:   s.style.ID,
		Backend:   s.styled.Backend,
		FellBack:  s.styled.FellBack,
		CreatedAt: s.created,
		UpdatedAt: s.updated,
	}
	if s.source != nil {
		snap.Source = &Size{Width: s.source.Width, Height: s.source.Height}
	}
	if s.err != nil {
		snap.Error = FailureMessage
	}
	if s.committed != nil {
		snap.Canvas = &Size{Width: s.committed.Width, Height: s.committed.Height}
		snap.Hash = s.committed.Hash
	}
	return snap
}

// Err returns the cause of the last failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// UpdatedAt returns the time of the last transition or commit.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updated
}

func (s *Session) set(state State) {
	s.state = state
	s.updated = s.now()
}

func (s *Session) invalid(event string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, s.state)
}
