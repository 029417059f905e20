// Package tesseract implements the image analyzer with Tesseract OCR.
package tesseract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/planmark/planmark-go/internal/services/analysis"
)

// CircuitChars restricts recognition to what board and circuit labels use.
const CircuitChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ-/"

// Analyzer runs OCR over captured regions. A gosseract client is not safe
// for concurrent use, so calls are serialised.
type Analyzer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates an analyzer for the given Tesseract language (e.g. "eng").
func New(language string) (*Analyzer, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Labels are not dictionary words.
	if err := client.SetVariable("load_system_dawg", "false"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to disable system dictionary: %w", err)
	}
	if err := client.SetVariable("load_freq_dawg", "false"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to disable frequent-word dictionary: %w", err)
	}

	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := client.SetWhitelist(CircuitChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	return &Analyzer{client: client}, nil
}

// Close releases OCR resources.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		err := a.client.Close()
		a.client = nil
		return err
	}
	return nil
}

// Analyze reads the text in req and groups it into boards and circuits.
func (a *Analyzer) Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	data, err := req.Decode()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil, fmt.Errorf("OCR engine is closed")
	}

	if err := a.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := a.client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	text = strings.TrimSpace(text)

	return &analysis.Result{
		DistributionBoards: analysis.ParseCircuitText(text),
		Text:               text,
	}, nil
}
