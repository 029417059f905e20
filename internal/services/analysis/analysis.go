// Package analysis hands captured drawing regions to an image-analysis
// backend and returns the distribution boards and circuits it found.
package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// Supported payload types.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
)

var (
	// ErrEmptyImage is returned for a request without image data.
	ErrEmptyImage = errors.New("empty image")
	// ErrUnsupportedMime is returned for payloads that are not PNG or JPEG.
	ErrUnsupportedMime = errors.New("unsupported image type")
	// ErrDisabled is returned by the analyzer used when OCR is turned off.
	ErrDisabled = errors.New("image analysis is disabled")
)

// Request is one captured region.
type Request struct {
	ImageBase64 string `json:"imageBase64"`
	MimeType    string `json:"mimeType"`
}

// Decode validates the request and returns the raw image bytes.
func (r Request) Decode() ([]byte, error) {
	if r.MimeType != MimePNG && r.MimeType != MimeJPEG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMime, r.MimeType)
	}
	if r.ImageBase64 == "" {
		return nil, ErrEmptyImage
	}
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}

// Board is a distribution board and the circuit references read next to it.
type Board struct {
	Name     string   `json:"name"`
	Circuits []string `json:"circuits"`
}

// Result is what an analyzer found in one region.
type Result struct {
	DistributionBoards []Board `json:"distributionBoards"`
	Text               string  `json:"text,omitempty"`
}

// Analyzer extracts boards and circuits from an image.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(ctx context.Context, req Request) (*Result, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*Result, error) {
	return f(ctx, req)
}

// Disabled is the analyzer used when OCR is turned off.
var Disabled Analyzer = AnalyzerFunc(func(context.Context, Request) (*Result, error) {
	return nil, ErrDisabled
})
