package workspace

import (
	"errors"
	"fmt"

	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/pkg/geometry"
)

func wrapDegenerate(err error) error {
	if errors.Is(err, design.ErrTooFewPoints) || errors.Is(err, design.ErrDuplicateID) ||
		errors.Is(err, design.ErrEmptyID) {
		return fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
	}
	return err
}

// ratioLocked returns the scale ratio or ErrScaleNotSet.
func (w *Workspace) ratioLocked() (float64, error) {
	ratio, ok := w.scale.Ratio()
	if !ok {
		return 0, ErrScaleNotSet
	}
	return ratio, nil
}

// AddEquipment places an equipment symbol. Equipment needs no scale.
func (w *Workspace) AddEquipment(typ string, position geometry.Point, rotation float64, name string) (design.Equipment, error) {
	if typ == "" {
		return design.Equipment{}, fmt.Errorf("%w: equipment type is required", ErrInvalidInput)
	}
	eq := design.NewEquipment(typ, position, rotation, name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.history.Commit(func(doc design.Document) design.Document {
		doc.Equipment = append(doc.Equipment, eq)
		return doc
	})
	return eq, nil
}

// AddCable draws a cable run and derives its lengths from the current scale.
func (w *Workspace) AddCable(spec design.CableSpec) (design.Cable, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ratio, err := w.ratioLocked()
	if err != nil {
		return design.Cable{}, err
	}
	cable, err := design.NewCable(spec, ratio)
	if err != nil {
		if errors.Is(err, design.ErrInvalidLineKind) {
			return design.Cable{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return design.Cable{}, wrapDegenerate(err)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.Lines = append(doc.Lines, cable)
		return doc
	})
	return cable, nil
}

// AddContainment draws a containment run.
func (w *Workspace) AddContainment(typ, size string, points []geometry.Point) (design.Containment, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ratio, err := w.ratioLocked()
	if err != nil {
		return design.Containment{}, err
	}
	c, err := design.NewContainment(typ, size, points, ratio)
	if err != nil {
		return design.Containment{}, wrapDegenerate(err)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.Containment = append(doc.Containment, c)
		return doc
	})
	return c, nil
}

// AddWalkway draws a walkway.
func (w *Workspace) AddWalkway(points []geometry.Point, width float64) (design.Walkway, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ratio, err := w.ratioLocked()
	if err != nil {
		return design.Walkway{}, err
	}
	wk, err := design.NewWalkway(points, width, ratio)
	if err != nil {
		return design.Walkway{}, wrapDegenerate(err)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.Walkways = append(doc.Walkways, wk)
		return doc
	})
	return wk, nil
}

// AddZone draws a closed zone. Collinear rings are rejected.
func (w *Workspace) AddZone(name, color string, points []geometry.Point) (design.Zone, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ratio, err := w.ratioLocked()
	if err != nil {
		return design.Zone{}, err
	}
	z, err := design.NewZone(name, color, points, ratio)
	if err != nil {
		return design.Zone{}, wrapDegenerate(err)
	}
	if z.Area == 0 {
		return design.Zone{}, fmt.Errorf("%w: zone has no area", ErrDegenerateGeometry)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.Zones = append(doc.Zones, z)
		return doc
	})
	return z, nil
}

// AddRoofMask draws a roof face for the PV workflow.
func (w *Workspace) AddRoofMask(points []geometry.Point, pitch, direction float64) (design.RoofMask, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ratio, err := w.ratioLocked()
	if err != nil {
		return design.RoofMask{}, err
	}
	r, err := design.NewRoofMask(points, pitch, direction, ratio)
	if err != nil {
		if errors.Is(err, design.ErrInvalidPitch) {
			return design.RoofMask{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return design.RoofMask{}, wrapDegenerate(err)
	}
	if r.Area == 0 {
		return design.RoofMask{}, fmt.Errorf("%w: roof mask has no area", ErrDegenerateGeometry)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.RoofMasks = append(doc.RoofMasks, r)
		return doc
	})
	return r, nil
}

// AddPVArray places a panel grid on an existing roof mask.
func (w *Workspace) AddPVArray(roofID string, x, y float64, rows, cols int, orientation design.PVOrientation, rotation float64) (design.PVArray, error) {
	if orientation != "" && orientation != design.PVPortrait && orientation != design.PVLandscape {
		return design.PVArray{}, fmt.Errorf("%w: orientation %q", ErrInvalidInput, orientation)
	}
	arr, err := design.NewPVArray(roofID, x, y, rows, cols, orientation, rotation)
	if err != nil {
		return design.PVArray{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if kind, ok := w.history.Current().FindItem(roofID); !ok || kind != design.KindRoofMask {
		return design.PVArray{}, fmt.Errorf("roof %s: %w", roofID, ErrItemNotFound)
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.PVArrays = append(doc.PVArrays, arr)
		return doc
	})
	return arr, nil
}

// AddTask adds a task, optionally linked to an existing entity.
func (w *Workspace) AddTask(title, linkedItemID, assignedTo string) (design.Task, error) {
	if title == "" {
		return design.Task{}, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	task := design.NewTask(title, linkedItemID, assignedTo)

	w.mu.Lock()
	defer w.mu.Unlock()

	if linkedItemID != "" {
		if _, ok := w.history.Current().FindItem(linkedItemID); !ok {
			return design.Task{}, fmt.Errorf("linked item %s: %w", linkedItemID, ErrItemNotFound)
		}
	}

	w.history.Commit(func(doc design.Document) design.Document {
		doc.Tasks = append(doc.Tasks, task)
		return doc
	})
	return task, nil
}

// SetTaskStatus moves a task through its workflow.
func (w *Workspace) SetTaskStatus(id string, status design.TaskStatus) error {
	switch status {
	case design.TaskTodo, design.TaskInProgress, design.TaskDone:
	default:
		return fmt.Errorf("%w: task status %q", ErrInvalidInput, status)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if kind, ok := w.history.Current().FindItem(id); !ok || kind != design.KindTask {
		return fmt.Errorf("task %s: %w", id, ErrItemNotFound)
	}
	w.history.Commit(func(doc design.Document) design.Document {
		for i := range doc.Tasks {
			if doc.Tasks[i].ID == id {
				doc.Tasks[i].Status = status
			}
		}
		return doc
	})
	return nil
}

// MoveEquipment moves a symbol as a new undo step. A drag calls it once on
// the first movement and DragEquipment for the rest, so the whole drag undoes
// in one step.
func (w *Workspace) MoveEquipment(id string, position geometry.Point) error {
	return w.moveEquipment(id, position, false)
}

// DragEquipment moves a symbol by amending the current undo step.
func (w *Workspace) DragEquipment(id string, position geometry.Point) error {
	return w.moveEquipment(id, position, true)
}

func (w *Workspace) moveEquipment(id string, position geometry.Point, amend bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if kind, ok := w.history.Current().FindItem(id); !ok || kind != design.KindEquipment {
		return fmt.Errorf("equipment %s: %w", id, ErrItemNotFound)
	}
	move := func(doc design.Document) design.Document {
		for i := range doc.Equipment {
			if doc.Equipment[i].ID == id {
				doc.Equipment[i].Position = position
			}
		}
		return doc
	}
	if amend {
		w.history.Amend(move)
	} else {
		w.history.Commit(move)
	}
	return nil
}

// MoveScaleLabel moves the scale annotation as a new undo step.
func (w *Workspace) MoveScaleLabel(position geometry.Point) {
	w.moveScaleLabel(position, false)
}

// DragScaleLabel moves the scale annotation by amending the current undo step.
func (w *Workspace) DragScaleLabel(position geometry.Point) {
	w.moveScaleLabel(position, true)
}

func (w *Workspace) moveScaleLabel(position geometry.Point, amend bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	move := func(doc design.Document) design.Document {
		p := position
		doc.ScaleLabelPosition = &p
		return doc
	}
	if amend {
		w.history.Amend(move)
	} else {
		w.history.Commit(move)
	}
}

// DeleteItem removes the entity with id from whichever list holds it, along
// with any task linked to it.
func (w *Workspace) DeleteItem(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.history.Current().FindItem(id); !ok {
		return fmt.Errorf("%s: %w", id, ErrItemNotFound)
	}
	w.history.Commit(func(doc design.Document) design.Document {
		next, _ := doc.DeleteItem(id)
		return next
	})
	return nil
}
