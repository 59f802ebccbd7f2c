package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/session"
	"github.com/user/hemostyle/pkg/stages/export"
)

type errorResponse struct {
	Error string `json:"error"`
}

type uploadRequest struct {
	Image string `json:"image"`
}

type styleRequest struct {
	Style string `json:"style"`
	Mode  string `json:"mode,omitempty"`
}

type renderRequest struct {
	Text        *string  `json:"text"`
	Color       *string  `json:"color"`
	FontSize    *float64 `json:"font_size"`
	AspectRatio *string  `json:"aspect_ratio"`
	Format      *string  `json:"format"`
	UseOriginal bool     `json:"use_original"`
}

type renderResponse struct {
	Token    uint64   `json:"token"`
	DataURI  string   `json:"data_uri"`
	Filename string   `json:"filename"`
	MIMEType string   `json:"mime_type"`
	Hash     string   `json:"hash"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Lines    []string `json:"lines"`
}

func (s *Server) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("Request failed: %v", err)
	}
	s.json(w, code, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) session(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, id)
	}
	return sess, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listStyles(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, catalog.Styles())
}

func (s *Server) listAspectRatios(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, catalog.AspectPresets())
}

func (s *Server) listTitles(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, catalog.SuggestTitles())
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	s.logger.Debug("Created session %s", sess.ID())
	s.json(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.sessions.Delete(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var req uploadRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	src, err := s.pipeline.DecodeDataURI(req.Image)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sess.Upload(src); err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) applyStyle(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var req styleRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}
	style, err := catalog.StyleByID(req.Style)
	if err != nil {
		s.fail(w, fmt.Errorf("%w: %q", err, req.Style))
		return
	}
	mode := s.opts.Mode
	if req.Mode != "" {
		mode = pipeline.TransformMode(req.Mode)
		if mode != pipeline.ModeLocal && mode != pipeline.ModeAPI && mode != pipeline.ModeAuto {
			s.fail(w, fmt.Errorf("%w: mode %q", pipeline.ErrInvalidInput, req.Mode))
			return
		}
	}

	src, epoch, err := sess.BeginStyle(style)
	if err != nil {
		s.fail(w, err)
		return
	}

	result, styleErr := s.pipeline.Style(r.Context(), src, style, mode)
	if err := sess.CompleteStyle(epoch, result, styleErr); err != nil {
		s.fail(w, err)
		return
	}
	if styleErr != nil {
		s.json(w, statusFor(styleErr), sess.Snapshot())
		return
	}
	s.json(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	var req renderRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, err)
		return
	}

	overlay := s.opts.Overlay
	if req.Text != nil {
		overlay.Content = *req.Text
	}
	if req.Color != nil {
		overlay.ColorHex = *req.Color
	}
	if req.FontSize != nil {
		overlay.FontSizePx = *req.FontSize
	}
	aspect := s.opts.AspectRatio
	if req.AspectRatio != nil {
		if aspect, err = catalog.ParseAspectRatio(*req.AspectRatio); err != nil {
			s.fail(w, err)
			return
		}
	}
	format := s.opts.Format
	if req.Format != nil {
		if format, err = export.ParseFormat(*req.Format); err != nil {
			s.fail(w, err)
			return
		}
	}

	job, err := sess.BeginRender(overlay, aspect, req.UseOriginal)
	if err != nil {
		s.fail(w, err)
		return
	}

	out, err := s.pipeline.Render(r.Context(), pipeline.ComposeInput{
		Image:       job.Image,
		Overlay:     job.Overlay,
		AspectRatio: job.AspectRatio,
	}, format)
	if err != nil {
		s.fail(w, err)
		return
	}

	canvas := session.Canvas{
		Token:    job.Token,
		Data:     out.Export.Data,
		MIMEType: out.Export.MIMEType,
		Filename: out.Export.Filename,
		Hash:     out.Export.Hash,
		Width:    out.Compose.Canvas.Width,
		Height:   out.Compose.Canvas.Height,
	}
	if err := sess.CommitRender(canvas); err != nil {
		s.fail(w, err)
		return
	}

	lines := make([]string, 0, len(out.Compose.Layout.Lines))
	for _, l := range out.Compose.Layout.Lines {
		lines = append(lines, l.Text)
	}
	s.json(w, http.StatusOK, renderResponse{
		Token:    job.Token,
		DataURI:  out.Export.DataURI,
		Filename: out.Export.Filename,
		MIMEType: out.Export.MIMEType,
		Hash:     out.Export.Hash,
		Width:    canvas.Width,
		Height:   canvas.Height,
		Lines:    lines,
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	c, ok := sess.Canvas()
	if !ok {
		s.json(w, http.StatusNotFound, errorResponse{Error: "no canvas rendered yet"})
		return
	}
	w.Header().Set("Content-Type", c.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(c.Data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", c.Filename))
	w.Header().Set("ETag", strconv.Quote(c.Hash))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(c.Data)
}

func (s *Server) retry(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := sess.Retry(); err != nil {
		s.fail(w, err)
		return
	}
	s.json(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.fail(w, err)
		return
	}
	sess.Reset()
	s.json(w, http.StatusOK, sess.Snapshot())
}
