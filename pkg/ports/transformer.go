package ports

import (
	"context"
)

// StyleTransformer abstracts a generative image service that restyles a photo.
type StyleTransformer interface {
	// Name identifies the backend in logs and errors.
	Name() string

	// Available reports whether the backend is configured (e.g. has credentials).
	Available() bool

	// Transform sends the encoded source photo and a style directive and
	// returns the encoded result and its MIME type.
	Transform(ctx context.Context, req TransformRequest) (TransformResponse, error)
}

// TransformRequest is the payload sent to a StyleTransformer.
type TransformRequest struct {
	ImageData []byte
	MIMEType  string
	Directive string
}

// TransformResponse is the image returned by a StyleTransformer.
type TransformResponse struct {
	ImageData []byte
	MIMEType  string
}
