package workspace

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/planmark/planmark-go/internal/services/analysis"
	"github.com/planmark/planmark-go/internal/services/pubsub"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/pkg/geometry"
)

// ScanResult is a region scan: where it landed on the drawing and what the
// analyzer read there.
type ScanResult struct {
	Region geometry.Rect    `json:"region"`
	Result *analysis.Result `json:"result"`
}

// ScanRegion maps a screen selection onto src under the current view,
// resamples it and hands it to the analyzer. The document is never changed,
// so a failure leaves the workspace as it was. The analyzer runs without
// holding the workspace lock.
func (w *Workspace) ScanRegion(ctx context.Context, src image.Image, screen geometry.Rect) (*ScanResult, error) {
	w.mu.Lock()
	view := w.view
	mapper := w.mapper
	analyzer := w.analyzer
	w.mu.Unlock()

	capture, err := mapper.Extract(src, screen, view)
	if err != nil {
		return nil, err
	}

	payload, err := region.EncodeBase64PNG(capture.Image)
	if err != nil {
		return nil, err
	}

	result, err := analyzer.Analyze(ctx, analysis.Request{ImageBase64: payload, MimeType: analysis.MimePNG})
	if err != nil {
		log.Printf("Region analysis failed: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
	}

	scan := &ScanResult{Region: capture.Region, Result: result}
	w.publish(pubsub.TopicRegionScanned, scan)
	return scan, nil
}
