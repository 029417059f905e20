// Package workspace is the single owner of the open design: its undo
// history, scale calibration and view. Every mutation goes through one
// mutex, so callers on different goroutines see a single logical writer.
package workspace

import (
	"errors"
	"log"
	"math"
	"sync"

	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/internal/services/analysis"
	"github.com/planmark/planmark-go/internal/services/history"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/pubsub"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/scale"
	"github.com/planmark/planmark-go/internal/services/takeoff"
	"github.com/planmark/planmark-go/pkg/geometry"
)

var (
	// ErrScaleNotSet is returned when a measured entity is drawn before the
	// drawing is calibrated.
	ErrScaleNotSet = errors.New("scale is not set")
	// ErrDegenerateGeometry is returned for shapes that would be stored
	// malformed (too few points, zero area).
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	// ErrItemNotFound is returned when no entity carries the requested id.
	ErrItemNotFound = design.ErrItemNotFound
	// ErrCollaborator wraps failures of the image-analysis backend.
	ErrCollaborator = errors.New("collaborator failure")
	// ErrInvalidInput is returned for values outside their allowed set.
	ErrInvalidInput = errors.New("invalid input")
)

// Config holds workspace configuration.
type Config struct {
	HistoryLimit int
	Region       region.Config
}

// State is a point-in-time view of the workspace for the UI shell.
type State struct {
	Document   design.Document  `json:"document"`
	History    history.Status   `json:"history"`
	Scale      scale.Info       `json:"scale"`
	ScaleState scale.State      `json:"scaleState"`
	View       region.ViewState `json:"view"`
	Layers     map[string]bool  `json:"layers,omitempty"`
	DesignID   string           `json:"designId,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// Workspace holds the open design.
type Workspace struct {
	mu       sync.Mutex
	history  *history.Engine
	scale    *scale.Calibration
	view     region.ViewState
	mapper   *region.Mapper
	analyzer analysis.Analyzer
	pubsub   *pubsub.PubSub

	designID string
	name     string
	layers   map[string]bool
}

// New creates a workspace with an empty design. A nil analyzer disables
// region scanning; a nil pubsub disables events.
func New(cfg Config, analyzer analysis.Analyzer, ps *pubsub.PubSub) *Workspace {
	if analyzer == nil {
		analyzer = analysis.Disabled
	}
	w := &Workspace{
		history:  history.NewEngine(cfg.HistoryLimit),
		scale:    scale.NewCalibration(),
		view:     region.DefaultView(),
		mapper:   region.NewMapper(cfg.Region),
		analyzer: analyzer,
		pubsub:   ps,
	}
	w.history.SetChangeCallback(func(s history.Status) {
		w.publish(pubsub.TopicHistoryChanged, s)
	})
	return w
}

func (w *Workspace) publish(topic pubsub.Topic, payload interface{}) {
	if w.pubsub != nil {
		w.pubsub.PublishAll(topic, payload)
	}
}

// State returns a copy of the whole workspace state.
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workspace) stateLocked() State {
	return State{
		Document:   w.history.Current(),
		History:    w.history.Status(),
		Scale:      w.scale.Info(),
		ScaleState: w.scale.State(),
		View:       w.view,
		Layers:     w.copyLayersLocked(),
		DesignID:   w.designID,
		Name:       w.name,
	}
}

// Current returns a copy of the current document.
func (w *Workspace) Current() design.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Current()
}

// HistoryStatus returns the undo/redo position.
func (w *Workspace) HistoryStatus() history.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Status()
}

// Undo steps back one commit. It reports whether anything changed.
func (w *Workspace) Undo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Undo()
}

// Redo steps forward one commit. It reports whether anything changed.
func (w *Workspace) Redo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.history.Redo()
}

// NewDesign discards the open design, its scale and its view. It cannot be
// undone.
func (w *Workspace) NewDesign() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.scale.Reset()
	w.view = region.DefaultView()
	w.designID = ""
	w.name = ""
	w.layers = nil
	w.history.Reset(design.Empty())
	w.publish(pubsub.TopicScaleChanged, w.scale.Info())
	w.publish(pubsub.TopicViewChanged, w.view)
}

// LoadDocument replaces the open design with doc and restores its scale. The
// previous history is discarded. On error nothing changes.
func (w *Workspace) LoadDocument(doc design.Document, info scale.Info) error {
	if err := doc.Validate(); err != nil {
		return wrapDegenerate(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.scale.Restore(info); err != nil {
		return err
	}
	w.history.Reset(doc)
	w.publish(pubsub.TopicScaleChanged, w.scale.Info())
	return nil
}

// TakeOff aggregates the current document.
func (w *Workspace) TakeOff() takeoff.Summary {
	return takeoff.Compute(w.Current())
}

// BeginCalibration measures the reference segment between start and end and
// returns its pixel length.
func (w *Workspace) BeginCalibration(start, end geometry.Point) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.scale.BeginCalibration(start, end)
}

// CompleteCalibration sets the scale from the pending segment. Lengths and
// areas already stored keep the values computed under the old scale.
func (w *Workspace) CompleteCalibration(realDistance float64) (scale.Info, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.scale.CompleteCalibration(realDistance); err != nil {
		return scale.Info{}, err
	}
	info := w.scale.Info()
	log.Printf("Scale calibrated: %.2f px = %.3f (ratio %.6f)", info.PixelDistance, info.RealDistance, *info.Ratio)
	w.publish(pubsub.TopicScaleChanged, info)
	return info, nil
}

// CancelCalibration drops a pending reference segment.
func (w *Workspace) CancelCalibration() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scale.Cancel()
}

// SetView updates the zoom and pan of the drawing. The view is not part of
// the undo history.
func (w *Workspace) SetView(zoom float64, offset geometry.Point) error {
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		return region.ErrInvalidZoom
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.view = region.ViewState{Zoom: zoom, Offset: offset}
	w.publish(pubsub.TopicViewChanged, w.view)
	return nil
}

// View returns the current view.
func (w *Workspace) View() region.ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// SetLayers records which layers the UI shows; they are saved with the design.
func (w *Workspace) SetLayers(layers map[string]bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layers = make(map[string]bool, len(layers))
	for k, v := range layers {
		w.layers[k] = v
	}
}

// Snapshot returns everything needed to save the open design.
func (w *Workspace) Snapshot() persistence.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	layers := w.copyLayersLocked()
	return persistence.Snapshot{
		Document: w.history.Current(),
		Scale:    w.scale.Info(),
		Metadata: persistence.Metadata{
			ID:     w.designID,
			Name:   w.name,
			View:   w.view,
			Layers: layers,
		},
	}
}

func (w *Workspace) copyLayersLocked() map[string]bool {
	if len(w.layers) == 0 {
		return nil
	}
	layers := make(map[string]bool, len(w.layers))
	for k, v := range w.layers {
		layers[k] = v
	}
	return layers
}

// MarkSaved records the id and name the open design was saved under.
func (w *Workspace) MarkSaved(id, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.designID = id
	w.name = name
	w.publish(pubsub.TopicDesignSaved, map[string]string{"id": id, "name": name})
}

// Open replaces the workspace with a saved snapshot. On error nothing
// changes.
func (w *Workspace) Open(snap persistence.Snapshot) error {
	if err := snap.Document.Validate(); err != nil {
		return wrapDegenerate(err)
	}
	view := snap.Metadata.View
	if view.Zoom <= 0 {
		view = region.DefaultView()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.scale.Restore(snap.Scale); err != nil {
		return err
	}
	w.view = view
	w.designID = snap.Metadata.ID
	w.name = snap.Metadata.Name
	w.layers = nil
	for k, v := range snap.Metadata.Layers {
		if w.layers == nil {
			w.layers = make(map[string]bool, len(snap.Metadata.Layers))
		}
		w.layers[k] = v
	}
	w.history.Reset(snap.Document)

	w.publish(pubsub.TopicScaleChanged, w.scale.Info())
	w.publish(pubsub.TopicViewChanged, w.view)
	w.publish(pubsub.TopicDesignLoaded, map[string]string{"id": w.designID, "name": w.name})
	return nil
}
