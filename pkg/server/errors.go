package server

import (
	"errors"
	"net/http"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/session"
	"github.com/user/hemostyle/pkg/stages/export"
)

var (
	errNotFound   = errors.New("session not found")
	errBadRequest = errors.New("malformed request body")
)

// statusFor maps pipeline and session errors to HTTP status codes.
func statusFor(err error) int {
	var (
		decodeErr   *pipeline.ImageDecodeError
		upstreamErr *pipeline.UpstreamTransformError
		tooLarge    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrStaleRender):
		return http.StatusConflict
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	case errors.As(err, &decodeErr),
		errors.Is(err, imagesource.ErrNotDataURI),
		errors.Is(err, errBadRequest),
		errors.Is(err, pipeline.ErrInvalidInput),
		errors.Is(err, catalog.ErrUnknownStyle),
		errors.Is(err, catalog.ErrUnknownAspectRatio),
		errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
