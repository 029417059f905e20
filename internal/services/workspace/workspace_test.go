package workspace

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/internal/services/analysis"
	"github.com/planmark/planmark-go/internal/services/history"
	"github.com/planmark/planmark-go/internal/services/persistence"
	"github.com/planmark/planmark-go/internal/services/pubsub"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/scale"
	"github.com/planmark/planmark-go/pkg/geometry"
)

func newWorkspace(t *testing.T) *Workspace {
	t.Helper()
	return New(Config{HistoryLimit: 1000}, nil, nil)
}

// calibrated returns a workspace where 200 px = 10 m (ratio 0.05).
func calibrated(t *testing.T) *Workspace {
	t.Helper()
	w := newWorkspace(t)
	px := w.BeginCalibration(geometry.Pt(0, 0), geometry.Pt(200, 0))
	require.Equal(t, 200.0, px)
	_, err := w.CompleteCalibration(10)
	require.NoError(t, err)
	return w
}

func square(size float64) []geometry.Point {
	return []geometry.Point{
		geometry.Pt(0, 0), geometry.Pt(size, 0), geometry.Pt(size, size), geometry.Pt(0, size),
	}
}

func TestMeasuredItemsRequireScale(t *testing.T) {
	w := newWorkspace(t)
	line := []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)}

	_, err := w.AddCable(design.CableSpec{Type: design.LineLV, Points: line})
	assert.ErrorIs(t, err, ErrScaleNotSet)
	_, err = w.AddContainment("tray", "100mm", line)
	assert.ErrorIs(t, err, ErrScaleNotSet)
	_, err = w.AddWalkway(line, 1.2)
	assert.ErrorIs(t, err, ErrScaleNotSet)
	_, err = w.AddZone("Plant", "#f00", square(20))
	assert.ErrorIs(t, err, ErrScaleNotSet)
	_, err = w.AddRoofMask(square(20), 30, 180)
	assert.ErrorIs(t, err, ErrScaleNotSet)

	assert.Equal(t, 0, w.Current().ItemCount())
	assert.False(t, w.HistoryStatus().CanUndo)

	// Equipment needs no scale.
	_, err = w.AddEquipment("socket", geometry.Pt(5, 5), 0, "")
	assert.NoError(t, err)
}

func TestAddCable_DerivesLengths(t *testing.T) {
	w := calibrated(t)

	cable, err := w.AddCable(design.CableSpec{
		Type:        design.LineLV,
		Points:      []geometry.Point{geometry.Pt(0, 0), geometry.Pt(120, 0), geometry.Pt(120, 80)},
		CableType:   "SWA",
		StartHeight: 1,
		EndHeight:   2,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, cable.PathLength, 1e-9)
	assert.InDelta(t, 13.0, cable.Length, 1e-9)

	doc := w.Current()
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, cable.ID, doc.Lines[0].ID)
}

func TestAddCable_Rejects(t *testing.T) {
	w := calibrated(t)

	_, err := w.AddCable(design.CableSpec{Type: design.LineLV, Points: []geometry.Point{geometry.Pt(1, 1)}})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	_, err = w.AddCable(design.CableSpec{Type: "hv", Points: []geometry.Point{geometry.Pt(0, 0), geometry.Pt(1, 1)}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 0, w.Current().ItemCount())
}

func TestAddZone_Area(t *testing.T) {
	w := calibrated(t)

	zone, err := w.AddZone("Plant room", "#00ff00", square(20))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, zone.Area, 1e-9)

	_, err = w.AddZone("Line", "#000", []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0), geometry.Pt(20, 0)})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	_, err = w.AddZone("Two", "#000", []geometry.Point{geometry.Pt(0, 0), geometry.Pt(10, 0)})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)

	assert.Len(t, w.Current().Zones, 1)
}

func TestRoofMaskAndPVArray(t *testing.T) {
	w := calibrated(t)

	roof, err := w.AddRoofMask(square(20), 60, 180)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, roof.Area, 1e-9)

	_, err = w.AddRoofMask(square(20), 90, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	arr, err := w.AddPVArray(roof.ID, 1, 2, 3, 4, "", 0)
	require.NoError(t, err)
	assert.Equal(t, design.PVPortrait, arr.Orientation)

	_, err = w.AddPVArray("missing", 0, 0, 1, 1, design.PVLandscape, 0)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = w.AddPVArray(roof.ID, 0, 0, 0, 1, design.PVLandscape, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = w.AddPVArray(roof.ID, 0, 0, 1, 1, "diagonal", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContainmentAndWalkway(t *testing.T) {
	w := calibrated(t)

	c, err := w.AddContainment("tray", "300mm", []geometry.Point{geometry.Pt(0, 0), geometry.Pt(0, 100)})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, c.Length, 1e-9)

	wk, err := w.AddWalkway([]geometry.Point{geometry.Pt(0, 0), geometry.Pt(40, 0)}, 1.2)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, wk.Length, 1e-9)

	_, err = w.AddWalkway([]geometry.Point{geometry.Pt(0, 0)}, 1.2)
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
}

func TestDeleteItem_CascadesTasks(t *testing.T) {
	w := newWorkspace(t)

	eq, err := w.AddEquipment("DB", geometry.Pt(10, 10), 0, "DB-1")
	require.NoError(t, err)
	linked, err := w.AddTask("Label board", eq.ID, "sam")
	require.NoError(t, err)
	free, err := w.AddTask("Order parts", "", "")
	require.NoError(t, err)

	require.NoError(t, w.DeleteItem(eq.ID))

	doc := w.Current()
	assert.Empty(t, doc.Equipment)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, free.ID, doc.Tasks[0].ID)

	// One undo restores both the item and its task.
	require.True(t, w.Undo())
	doc = w.Current()
	assert.Len(t, doc.Equipment, 1)
	kind, ok := doc.FindItem(linked.ID)
	assert.True(t, ok)
	assert.Equal(t, design.KindTask, kind)

	assert.ErrorIs(t, w.DeleteItem("missing"), ErrItemNotFound)
}

func TestAddTask_RequiresLinkedItem(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.AddTask("Check", "missing", "")
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = w.AddTask("", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSetTaskStatus(t *testing.T) {
	w := newWorkspace(t)

	task, err := w.AddTask("Terminate SWA", "", "")
	require.NoError(t, err)
	assert.Equal(t, design.TaskTodo, task.Status)

	require.NoError(t, w.SetTaskStatus(task.ID, design.TaskDone))
	assert.Equal(t, design.TaskDone, w.Current().Tasks[0].Status)

	assert.ErrorIs(t, w.SetTaskStatus(task.ID, "blocked"), ErrInvalidInput)
	assert.ErrorIs(t, w.SetTaskStatus("missing", design.TaskDone), ErrItemNotFound)

	eq, _ := w.AddEquipment("socket", geometry.Pt(0, 0), 0, "")
	assert.ErrorIs(t, w.SetTaskStatus(eq.ID, design.TaskDone), ErrItemNotFound)
}

func TestDragIsOneUndoStep(t *testing.T) {
	w := newWorkspace(t)

	eq, err := w.AddEquipment("light", geometry.Pt(0, 0), 0, "")
	require.NoError(t, err)
	before := w.HistoryStatus()

	require.NoError(t, w.MoveEquipment(eq.ID, geometry.Pt(5, 5)))
	require.NoError(t, w.DragEquipment(eq.ID, geometry.Pt(10, 10)))
	require.NoError(t, w.DragEquipment(eq.ID, geometry.Pt(15, 15)))

	after := w.HistoryStatus()
	assert.Equal(t, before.Length+1, after.Length)
	assert.Equal(t, geometry.Pt(15, 15), w.Current().Equipment[0].Position)

	require.True(t, w.Undo())
	assert.Equal(t, geometry.Pt(0, 0), w.Current().Equipment[0].Position)

	assert.ErrorIs(t, w.MoveEquipment("missing", geometry.Pt(1, 1)), ErrItemNotFound)
}

func TestScaleLabel(t *testing.T) {
	w := newWorkspace(t)

	w.MoveScaleLabel(geometry.Pt(100, 50))
	w.DragScaleLabel(geometry.Pt(120, 60))

	doc := w.Current()
	require.NotNil(t, doc.ScaleLabelPosition)
	assert.Equal(t, geometry.Pt(120, 60), *doc.ScaleLabelPosition)

	require.True(t, w.Undo())
	assert.Nil(t, w.Current().ScaleLabelPosition)
}

func TestUndoRedo(t *testing.T) {
	w := newWorkspace(t)

	assert.False(t, w.Undo())
	assert.False(t, w.Redo())

	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")
	_, _ = w.AddEquipment("socket", geometry.Pt(2, 2), 0, "")

	require.True(t, w.Undo())
	assert.Len(t, w.Current().Equipment, 1)
	require.True(t, w.Redo())
	assert.Len(t, w.Current().Equipment, 2)

	// New work after undo drops the redo branch.
	require.True(t, w.Undo())
	_, _ = w.AddEquipment("light", geometry.Pt(3, 3), 0, "")
	assert.False(t, w.HistoryStatus().CanRedo)
	assert.Equal(t, "light", w.Current().Equipment[1].Type)
}

func TestRecalibrationKeepsStoredLengths(t *testing.T) {
	w := calibrated(t)

	c, err := w.AddContainment("tray", "", []geometry.Point{geometry.Pt(0, 0), geometry.Pt(200, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 10.0, c.Length, 1e-9)

	w.BeginCalibration(geometry.Pt(0, 0), geometry.Pt(100, 0))
	_, err = w.CompleteCalibration(10)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, w.Current().Containment[0].Length, 1e-9)

	c2, err := w.AddContainment("tray", "", []geometry.Point{geometry.Pt(0, 0), geometry.Pt(200, 0)})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, c2.Length, 1e-9)
}

func TestCalibrationErrors(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.CompleteCalibration(5)
	assert.ErrorIs(t, err, scale.ErrInvalidState)

	w.BeginCalibration(geometry.Pt(0, 0), geometry.Pt(10, 0))
	_, err = w.CompleteCalibration(0)
	assert.ErrorIs(t, err, scale.ErrInvalidDistance)

	w.CancelCalibration()
	assert.Equal(t, scale.StateIdle, w.State().ScaleState)
}

func TestNewDesignIsNotUndoable(t *testing.T) {
	w := calibrated(t)
	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")
	require.NoError(t, w.SetView(2, geometry.Pt(5, 5)))

	w.NewDesign()

	state := w.State()
	assert.Equal(t, 0, state.Document.ItemCount())
	assert.False(t, state.History.CanUndo)
	assert.Nil(t, state.Scale.Ratio)
	assert.Equal(t, region.DefaultView(), state.View)
}

func TestLoadDocument(t *testing.T) {
	w := newWorkspace(t)
	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")

	bad := design.Empty()
	bad.Zones = []design.Zone{{ID: "z", Points: []geometry.Point{geometry.Pt(0, 0)}}}
	err := w.LoadDocument(bad, scale.Info{})
	assert.ErrorIs(t, err, ErrDegenerateGeometry)
	assert.Len(t, w.Current().Equipment, 1, "failed load must not change the document")

	ratio := 0.02
	good := design.Empty()
	good.Equipment = []design.Equipment{{ID: "a", Type: "DB"}, {ID: "b", Type: "DB"}}
	require.NoError(t, w.LoadDocument(good, scale.Info{PixelDistance: 500, RealDistance: 10, Ratio: &ratio}))

	state := w.State()
	assert.Len(t, state.Document.Equipment, 2)
	assert.False(t, state.History.CanUndo)
	require.NotNil(t, state.Scale.Ratio)
	assert.Equal(t, 0.02, *state.Scale.Ratio)
}

func TestLoadDocument_EmptyIDRejected(t *testing.T) {
	w := newWorkspace(t)
	task, err := w.AddTask("general", "", "")
	require.NoError(t, err)

	doc := design.Empty()
	doc.Equipment = []design.Equipment{{ID: "", Type: "socket"}}
	doc.Tasks = []design.Task{task}
	assert.ErrorIs(t, w.LoadDocument(doc, scale.Info{}), ErrDegenerateGeometry)
	assert.Len(t, w.Current().Tasks, 1)
}

func TestLoadDocument_BadScaleKeepsPendingCalibration(t *testing.T) {
	w := newWorkspace(t)
	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")
	w.BeginCalibration(geometry.Pt(0, 0), geometry.Pt(100, 0))

	for _, bad := range []float64{-1, 0, math.NaN()} {
		ratio := bad
		err := w.LoadDocument(design.Empty(), scale.Info{Ratio: &ratio})
		assert.ErrorIs(t, err, scale.ErrInvalidDistance)
		err = w.Open(persistence.Snapshot{Document: design.Empty(), Scale: scale.Info{Ratio: &ratio}})
		assert.ErrorIs(t, err, scale.ErrInvalidDistance)
	}

	state := w.State()
	assert.Equal(t, scale.StateAwaiting, state.ScaleState)
	assert.Len(t, state.Document.Equipment, 1)

	info, err := w.CompleteCalibration(5)
	require.NoError(t, err)
	assert.Equal(t, 0.05, *info.Ratio)
}

func TestSetView(t *testing.T) {
	w := newWorkspace(t)

	assert.ErrorIs(t, w.SetView(0, geometry.Pt(0, 0)), region.ErrInvalidZoom)
	assert.ErrorIs(t, w.SetView(math.NaN(), geometry.Pt(0, 0)), region.ErrInvalidZoom)
	assert.ErrorIs(t, w.SetView(math.Inf(1), geometry.Pt(0, 0)), region.ErrInvalidZoom)
	require.NoError(t, w.SetView(1.5, geometry.Pt(-20, 10)))
	assert.Equal(t, region.ViewState{Zoom: 1.5, Offset: geometry.Pt(-20, 10)}, w.View())

	// The view is not part of the undo history.
	assert.False(t, w.HistoryStatus().CanUndo)
}

func TestTakeOff(t *testing.T) {
	w := calibrated(t)

	for _, px := range []float64{200, 300} {
		_, err := w.AddCable(design.CableSpec{
			Type:      design.LineLV,
			Points:    []geometry.Point{geometry.Pt(0, 0), geometry.Pt(px, 0)},
			CableType: "SWA",
		})
		require.NoError(t, err)
	}
	_, _ = w.AddEquipment("socket", geometry.Pt(0, 0), 0, "")

	summary := w.TakeOff()
	assert.Equal(t, 2, summary.CableTotals["SWA"].Count)
	assert.InDelta(t, 25.0, summary.CableTotals["SWA"].TotalLength, 1e-9)
	assert.Equal(t, 1, summary.EquipmentCounts["socket"])
}

func TestSnapshotAndOpen(t *testing.T) {
	w := calibrated(t)
	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")
	require.NoError(t, w.SetView(2, geometry.Pt(10, 20)))
	w.SetLayers(map[string]bool{"cables": true})
	w.MarkSaved("design-1", "Level 1")

	assert.Equal(t, map[string]bool{"cables": true}, w.State().Layers)

	snap := w.Snapshot()
	assert.Equal(t, "design-1", snap.Metadata.ID)
	assert.Equal(t, "Level 1", snap.Metadata.Name)
	assert.Equal(t, 2.0, snap.Metadata.View.Zoom)
	assert.True(t, snap.Metadata.Layers["cables"])
	require.NotNil(t, snap.Scale.Ratio)

	other := newWorkspace(t)
	require.NoError(t, other.Open(snap))

	state := other.State()
	assert.Equal(t, "design-1", state.DesignID)
	assert.Equal(t, "Level 1", state.Name)
	assert.True(t, design.Equal(snap.Document, state.Document))
	assert.Equal(t, snap.Metadata.View, state.View)
	assert.Equal(t, map[string]bool{"cables": true}, state.Layers)
	require.NotNil(t, state.Scale.Ratio)
	assert.Equal(t, 0.05, *state.Scale.Ratio)
	assert.False(t, state.History.CanUndo)
}

func TestEventsArePublished(t *testing.T) {
	ps := pubsub.New()
	w := New(Config{}, nil, ps)

	historySub := ps.Subscribe(pubsub.TopicHistoryChanged, "", 10)
	defer ps.Unsubscribe(historySub)
	scaleSub := ps.Subscribe(pubsub.TopicScaleChanged, "", 10)
	defer ps.Unsubscribe(scaleSub)

	_, _ = w.AddEquipment("socket", geometry.Pt(0, 0), 0, "")

	select {
	case ev := <-historySub.Channel:
		status, ok := ev.Payload.(history.Status)
		require.True(t, ok)
		assert.Equal(t, history.ReasonCommit, status.Reason)
		assert.True(t, status.CanUndo)
	default:
		t.Fatal("Expected HISTORY_CHANGED event")
	}

	w.BeginCalibration(geometry.Pt(0, 0), geometry.Pt(100, 0))
	_, err := w.CompleteCalibration(5)
	require.NoError(t, err)

	select {
	case ev := <-scaleSub.Channel:
		info, ok := ev.Payload.(scale.Info)
		require.True(t, ok)
		require.NotNil(t, info.Ratio)
		assert.Equal(t, 0.05, *info.Ratio)
	default:
		t.Fatal("Expected SCALE_CHANGED event")
	}
}

func TestConcurrentCommits(t *testing.T) {
	w := newWorkspace(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = w.AddEquipment("socket", geometry.Pt(float64(i), 0), 0, "")
		}(i)
	}
	wg.Wait()

	assert.Len(t, w.Current().Equipment, 50)
	assert.Equal(t, 51, w.HistoryStatus().Length)
}

func drawing(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func TestScanRegion(t *testing.T) {
	var got analysis.Request
	analyzer := analysis.AnalyzerFunc(func(_ context.Context, req analysis.Request) (*analysis.Result, error) {
		got = req
		return &analysis.Result{DistributionBoards: []analysis.Board{{Name: "DB1", Circuits: []string{"L1"}}}}, nil
	})
	w := New(Config{}, analyzer, nil)
	require.NoError(t, w.SetView(2, geometry.Pt(10, 20)))

	scan, err := w.ScanRegion(context.Background(), drawing(400, 300), geometry.Rect{X: 110, Y: 140, Width: 200, Height: 100})
	require.NoError(t, err)

	assert.Equal(t, geometry.Rect{X: 50, Y: 60, Width: 100, Height: 50}, scan.Region)
	require.Len(t, scan.Result.DistributionBoards, 1)
	assert.Equal(t, "DB1", scan.Result.DistributionBoards[0].Name)

	assert.Equal(t, analysis.MimePNG, got.MimeType)
	raw, err := base64.StdEncoding.DecodeString(got.ImageBase64)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, region.DefaultMaxDimension, cfg.Width)
	assert.Equal(t, region.DefaultMaxDimension/2, cfg.Height)
}

func TestScanRegion_FailuresLeaveStateUnchanged(t *testing.T) {
	calls := 0
	failing := analysis.AnalyzerFunc(func(context.Context, analysis.Request) (*analysis.Result, error) {
		calls++
		return nil, errors.New("ocr backend down")
	})
	w := New(Config{}, failing, nil)
	_, _ = w.AddEquipment("socket", geometry.Pt(1, 1), 0, "")
	before := w.State()

	_, err := w.ScanRegion(context.Background(), drawing(400, 300), geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	assert.ErrorIs(t, err, ErrCollaborator)
	assert.Equal(t, 1, calls)

	_, err = w.ScanRegion(context.Background(), drawing(400, 300), geometry.Rect{X: 0, Y: 0, Width: 5, Height: 5})
	assert.ErrorIs(t, err, region.ErrRegionTooSmallOrOutOfBounds)
	assert.Equal(t, 1, calls, "analyzer must not run for a rejected region")

	assert.Equal(t, before, w.State())
}

func TestScanRegion_DisabledAnalyzer(t *testing.T) {
	w := newWorkspace(t)

	_, err := w.ScanRegion(context.Background(), drawing(100, 100), geometry.Rect{X: 0, Y: 0, Width: 50, Height: 50})
	assert.ErrorIs(t, err, analysis.ErrDisabled)
	assert.ErrorIs(t, err, ErrCollaborator)
}
