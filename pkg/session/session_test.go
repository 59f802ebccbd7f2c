package session

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
)

func testSource(w, h int) imagesource.RasterImage {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return imagesource.RasterImage{Image: img, Width: w, Height: h, Format: "png", Data: []byte{1}}
}

func testStyle(t *testing.T) catalog.StylePreset {
	t.Helper()
	st, err := catalog.StyleByID("corp-suit")
	if err != nil {
		t.Fatal(err)
	}
	return st
}

// readySession drives a new session to Ready.
func readySession(t *testing.T) *Session {
	t.Helper()
	s := New("s1")
	if err := s.Upload(testSource(800, 600)); err != nil {
		t.Fatal(err)
	}
	src, epoch, err := s.BeginStyle(testStyle(t))
	if err != nil {
		t.Fatal(err)
	}
	styled := pipeline.TransformResult{Image: src.Image, Backend: "local", Recipe: catalog.RecipeProfessional}
	if err := s.CompleteStyle(epoch, styled, nil); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Empty:      "empty",
		Selecting:  "selecting",
		Processing: "processing",
		Ready:      "ready",
		Failed:     "failed",
		State(9):   "state(9)",
	}
	for st, want := range tests {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(st), got, want)
		}
	}
}

func TestSession_HappyPath(t *testing.T) {
	s := New("s1")
	if s.State() != Empty {
		t.Fatalf("expected empty, got %s", s.State())
	}

	if err := s.Upload(testSource(800, 600)); err != nil {
		t.Fatal(err)
	}
	if s.State() != Selecting {
		t.Fatalf("expected selecting, got %s", s.State())
	}

	_, epoch, err := s.BeginStyle(testStyle(t))
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != Processing {
		t.Fatalf("expected processing, got %s", s.State())
	}

	if err := s.CompleteStyle(epoch, pipeline.TransformResult{Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Backend: "local"}, nil); err != nil {
		t.Fatal(err)
	}
	if s.State() != Ready {
		t.Fatalf("expected ready, got %s", s.State())
	}

	snap := s.Snapshot()
	if snap.StyleID != "corp-suit" || snap.Backend != "local" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Source == nil || snap.Source.Width != 800 {
		t.Errorf("expected source size in snapshot, got %+v", snap.Source)
	}
}

func TestSession_Failure(t *testing.T) {
	s := New("s1")
	_ = s.Upload(testSource(10, 10))
	_, epoch, _ := s.BeginStyle(testStyle(t))

	cause := &pipeline.UpstreamTransformError{Backend: "gemini", Err: errors.New("quota")}
	if err := s.CompleteStyle(epoch, pipeline.TransformResult{}, cause); err != nil {
		t.Fatal(err)
	}
	if s.State() != Failed {
		t.Fatalf("expected failed, got %s", s.State())
	}
	if !errors.Is(s.Err(), cause) {
		t.Errorf("expected cause to be kept, got %v", s.Err())
	}
	if s.Snapshot().Error != FailureMessage {
		t.Errorf("expected user facing failure message")
	}

	if err := s.Retry(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Selecting {
		t.Fatalf("expected selecting after retry, got %s", s.State())
	}
	if s.Snapshot().Error == "" {
		t.Error("error should stay visible while selecting again")
	}
	if _, _, err := s.BeginStyle(testStyle(t)); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Error != "" {
		t.Error("error should clear when a new style starts")
	}
}

func TestSession_StyleFromFailedRetries(t *testing.T) {
	s := New("s1")
	_ = s.Upload(testSource(12, 9))
	_, epoch, _ := s.BeginStyle(testStyle(t))
	if err := s.CompleteStyle(epoch, pipeline.TransformResult{}, errors.New("quota")); err != nil {
		t.Fatal(err)
	}

	src, next, err := s.BeginStyle(testStyle(t))
	if err != nil {
		t.Fatalf("expected style from failed to start, got %v", err)
	}
	if s.State() != Processing {
		t.Fatalf("expected processing, got %s", s.State())
	}
	if src.Width != 12 || src.Height != 9 {
		t.Errorf("expected the failed photo to be restyled, got %dx%d", src.Width, src.Height)
	}
	if s.Err() != nil {
		t.Errorf("expected error cleared, got %v", s.Err())
	}
	if err := s.CompleteStyle(next, pipeline.TransformResult{}, nil); err != nil {
		t.Fatal(err)
	}
	if s.State() != Ready {
		t.Errorf("expected ready, got %s", s.State())
	}
}

func TestSession_StyleFromFailedConcurrent(t *testing.T) {
	s := New("s1")
	_ = s.Upload(testSource(4, 4))
	_, epoch, _ := s.BeginStyle(testStyle(t))
	_ = s.CompleteStyle(epoch, pipeline.TransformResult{}, errors.New("quota"))

	style := testStyle(t)
	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	started := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := s.BeginStyle(style); err == nil {
				mu.Lock()
				started++
				mu.Unlock()
			} else if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if started != 1 {
		t.Errorf("expected exactly one style to start, got %d", started)
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	style := catalog.StylePreset{ID: "x"}

	tests := []struct {
		name  string
		setup func(t *testing.T) *Session
		event func(s *Session) error
	}{
		{"style from empty", func(t *testing.T) *Session { return New("a") },
			func(s *Session) error { _, _, err := s.BeginStyle(style); return err }},
		{"render from empty", func(t *testing.T) *Session { return New("a") },
			func(s *Session) error { _, err := s.BeginRender(pipeline.TextOverlay{}, catalog.Aspect16x9, false); return err }},
		{"retry from empty", func(t *testing.T) *Session { return New("a") },
			func(s *Session) error { return s.Retry() }},
		{"render from selecting", func(t *testing.T) *Session {
			s := New("a")
			_ = s.Upload(testSource(1, 1))
			return s
		}, func(s *Session) error { _, err := s.BeginRender(pipeline.TextOverlay{}, catalog.Aspect16x9, false); return err }},
		{"upload while processing", func(t *testing.T) *Session {
			s := New("a")
			_ = s.Upload(testSource(1, 1))
			_, _, _ = s.BeginStyle(style)
			return s
		}, func(s *Session) error { return s.Upload(testSource(1, 1)) }},
		{"style while processing", func(t *testing.T) *Session {
			s := New("a")
			_ = s.Upload(testSource(1, 1))
			_, _, _ = s.BeginStyle(style)
			return s
		}, func(s *Session) error { _, _, err := s.BeginStyle(style); return err }},
		{"style from ready", readySession,
			func(s *Session) error { _, _, err := s.BeginStyle(style); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.setup(t)
			before := s.State()
			err := tt.event(s)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if s.State() != before {
				t.Errorf("state changed from %s to %s", before, s.State())
			}
		})
	}
}

func TestSession_UploadFromReadyRestarts(t *testing.T) {
	s := readySession(t)
	req, _ := s.BeginRender(pipeline.DefaultTextOverlay(), catalog.Aspect16x9, false)
	_ = s.CommitRender(Canvas{Token: req.Token, Width: 1200, Height: 675})

	if err := s.Upload(testSource(20, 20)); err != nil {
		t.Fatal(err)
	}
	if s.State() != Selecting {
		t.Fatalf("expected selecting, got %s", s.State())
	}
	if _, ok := s.Canvas(); ok {
		t.Error("canvas should be cleared by a new upload")
	}
	if s.Snapshot().StyleID != "" {
		t.Error("style should be cleared by a new upload")
	}
}

func TestSession_ResetFromAnyState(t *testing.T) {
	setups := map[string]func(t *testing.T) *Session{
		"empty": func(t *testing.T) *Session { return New("a") },
		"selecting": func(t *testing.T) *Session {
			s := New("a")
			_ = s.Upload(testSource(1, 1))
			return s
		},
		"processing": func(t *testing.T) *Session {
			s := New("a")
			_ = s.Upload(testSource(1, 1))
			_, _, _ = s.BeginStyle(testStyle(t))
			return s
		},
		"ready": readySession,
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			s := setup(t)
			s.Reset()
			if s.State() != Empty {
				t.Errorf("expected empty, got %s", s.State())
			}
			if s.Snapshot().Source != nil {
				t.Error("source should be dropped")
			}
		})
	}
}

func TestSession_LateStyleResultDiscarded(t *testing.T) {
	s := New("a")
	_ = s.Upload(testSource(1, 1))
	_, epoch, _ := s.BeginStyle(testStyle(t))

	s.Reset()
	_ = s.Upload(testSource(2, 2))

	err := s.CompleteStyle(epoch, pipeline.TransformResult{Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}, nil)
	if !errors.Is(err, ErrStaleRender) {
		t.Fatalf("expected ErrStaleRender, got %v", err)
	}
	if s.State() != Selecting {
		t.Errorf("stale result must not change state, got %s", s.State())
	}
}

func TestSession_RenderUsesStyledOrOriginal(t *testing.T) {
	s := New("a")
	src := testSource(4, 4)
	_ = s.Upload(src)
	_, epoch, _ := s.BeginStyle(testStyle(t))
	styled := image.NewRGBA(image.Rect(0, 0, 4, 4))
	_ = s.CompleteStyle(epoch, pipeline.TransformResult{Image: styled}, nil)

	req, err := s.BeginRender(pipeline.DefaultTextOverlay(), catalog.Aspect1x1, false)
	if err != nil {
		t.Fatal(err)
	}
	if req.Image != image.Image(styled) {
		t.Error("expected the styled photo")
	}

	req, err = s.BeginRender(pipeline.DefaultTextOverlay(), catalog.Aspect1x1, true)
	if err != nil {
		t.Fatal(err)
	}
	if req.Image != src.Image {
		t.Error("expected the original photo")
	}
}

func TestSession_StaleRenderDiscarded(t *testing.T) {
	s := readySession(t)

	first, _ := s.BeginRender(pipeline.TextOverlay{Content: "a"}, catalog.Aspect16x9, false)
	second, _ := s.BeginRender(pipeline.TextOverlay{Content: "ab"}, catalog.Aspect16x9, false)
	if second.Token <= first.Token {
		t.Fatalf("tokens must increase: %d then %d", first.Token, second.Token)
	}

	if err := s.CommitRender(Canvas{Token: second.Token, Hash: "new"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CommitRender(Canvas{Token: first.Token, Hash: "old"}); !errors.Is(err, ErrStaleRender) {
		t.Fatalf("expected ErrStaleRender, got %v", err)
	}

	c, ok := s.Canvas()
	if !ok || c.Hash != "new" {
		t.Errorf("expected newest canvas to stay committed, got %+v", c)
	}
}

func TestSession_RenderAfterResetDiscarded(t *testing.T) {
	s := readySession(t)
	req, _ := s.BeginRender(pipeline.DefaultTextOverlay(), catalog.Aspect16x9, false)
	s.Reset()

	if err := s.CommitRender(Canvas{Token: req.Token}); !errors.Is(err, ErrStaleRender) {
		t.Fatalf("expected ErrStaleRender, got %v", err)
	}
}

func TestSession_ConcurrentRendersNewestWins(t *testing.T) {
	s := readySession(t)

	const n = 32
	reqs := make([]RenderRequest, n)
	for i := range reqs {
		reqs[i], _ = s.BeginRender(pipeline.DefaultTextOverlay(), catalog.Aspect16x9, false)
	}

	var wg sync.WaitGroup
	for i := n - 1; i >= 0; i-- {
		wg.Add(1)
		go func(r RenderRequest) {
			defer wg.Done()
			_ = s.CommitRender(Canvas{Token: r.Token})
		}(reqs[i])
	}
	wg.Wait()

	c, ok := s.Canvas()
	if !ok || c.Token != reqs[n-1].Token {
		t.Errorf("expected token %d committed, got %+v", reqs[n-1].Token, c)
	}
}

func TestStore(t *testing.T) {
	st := NewStore()
	s := st.Create()

	got, ok := st.Get(s.ID())
	if !ok || got != s {
		t.Fatal("expected to find the created session")
	}
	if _, ok := st.Get("not-a-uuid"); ok {
		t.Error("malformed IDs should not resolve")
	}
	if st.Len() != 1 {
		t.Errorf("expected 1 session, got %d", st.Len())
	}

	st.Delete(s.ID())
	if _, ok := st.Get(s.ID()); ok {
		t.Error("expected session to be deleted")
	}
}

func TestStore_Prune(t *testing.T) {
	st := NewStore()
	old := st.Create()
	fresh := st.Create()

	old.mu.Lock()
	old.updated = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()

	if n := st.Prune(time.Hour); n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	if _, ok := st.Get(old.ID()); ok {
		t.Error("expected idle session to be pruned")
	}
	if _, ok := st.Get(fresh.ID()); !ok {
		t.Error("expected fresh session to stay")
	}
}
