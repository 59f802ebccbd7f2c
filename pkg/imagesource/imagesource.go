// Package imagesource decodes user supplied photos from data URIs or raw bytes.
package imagesource

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/user/hemostyle/pkg/pipeline"
)

// DefaultMaxPixels bounds the width times height of a decoded image.
const DefaultMaxPixels = 50_000_000

var (
	// ErrNotDataURI is returned when a string lacks the "data:" scheme.
	ErrNotDataURI = errors.New("not a data URI")
	// ErrTooLarge is wrapped by decode errors for images above the pixel limit.
	ErrTooLarge = errors.New("image exceeds pixel limit")
)

// RasterImage is a decoded photo. It is never mutated after decode.
type RasterImage struct {
	Image  image.Image
	Width  int
	Height int
	// Format is the registered decoder name: png, jpeg, gif, webp, bmp or tiff.
	Format string
	// Data is the encoded input the image was decoded from.
	Data []byte
}

// MIMEType returns the media type of the encoded input.
func (r RasterImage) MIMEType() string {
	if r.Format == "" {
		return "application/octet-stream"
	}
	return "image/" + r.Format
}

// ParseDataURI splits a data URI into its payload and media type.
// Both base64 and percent-encoded payloads are accepted.
func ParseDataURI(uri string) ([]byte, string, error) {
	uri = strings.TrimSpace(uri)
	if len(uri) < 5 || !strings.EqualFold(uri[:5], "data:") {
		return nil, "", ErrNotDataURI
	}
	header, payload, ok := strings.Cut(uri[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("data URI has no payload separator")
	}

	params := strings.Split(header, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if mime == "" {
		mime = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	if isBase64 {
		payload = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\n', '\r', '\t':
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("data URI base64: %w", err)
		}
		return data, mime, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("data URI payload: %w", err)
	}
	return []byte(text), mime, nil
}

// EncodeDataURI formats data as a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode decodes encoded image bytes of at most DefaultMaxPixels pixels.
// Every failure is an *pipeline.ImageDecodeError.
func Decode(data []byte) (RasterImage, error) {
	return decode(data, DefaultMaxPixels)
}

// decode reads the image header first so oversized images are rejected
// before their pixel buffer is allocated. maxPixels <= 0 disables the limit.
func decode(data []byte, maxPixels int) (RasterImage, error) {
	if len(data) == 0 {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: errors.New("empty input")}
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: errors.New("image has no pixels")}
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return RasterImage{}, &pipeline.ImageDecodeError{
			Err: fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels),
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: err}
	}
	b := img.Bounds()
	if b.Empty() {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: errors.New("image has no pixels")}
	}
	return RasterImage{
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
		Data:   data,
	}, nil
}

// Decoder decodes images and remembers the most recent result, so repeated
// renders of an unchanged source skip decoding.
// It is safe for concurrent use.
type Decoder struct {
	maxPixels int

	mu     sync.Mutex
	key    uint64
	last   RasterImage
	cached bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxPixels sets the pixel limit. Values <= 0 disable it.
func WithMaxPixels(n int) DecoderOption {
	return func(d *Decoder) {
		d.maxPixels = n
	}
}

// NewDecoder creates a Decoder with an empty cache and DefaultMaxPixels.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes data, returning the cached image when data is unchanged.
func (d *Decoder) Decode(data []byte) (RasterImage, error) {
	key := xxhash.Sum64(data)

	d.mu.Lock()
	if d.cached && d.key == key && bytes.Equal(d.last.Data, data) {
		img := d.last
		d.mu.Unlock()
		return img, nil
	}
	d.mu.Unlock()

	img, err := decode(data, d.maxPixels)
	if err != nil {
		return RasterImage{}, err
	}

	d.mu.Lock()
	d.key, d.last, d.cached = key, img, true
	d.mu.Unlock()
	return img, nil
}

// DecodeDataURI parses uri and decodes its payload through the cache.
// A malformed URI is reported as an *pipeline.ImageDecodeError.
func (d *Decoder) DecodeDataURI(uri string) (RasterImage, error) {
	data, _, err := ParseDataURI(uri)
	if err != nil {
		return RasterImage{}, &pipeline.ImageDecodeError{Err: err}
	}
	return d.Decode(data)
}
