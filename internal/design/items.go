package design

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID is returned by Validate when an id repeats within a list.
	ErrDuplicateID = errors.New("duplicate item id")
	// ErrTooFewPoints is returned by Validate when a shape has too few points.
	ErrTooFewPoints = errors.New("too few points")
	// ErrEmptyID is returned by Validate for an entity without an id.
	ErrEmptyID = errors.New("empty item id")
	// ErrItemNotFound is returned when no entity carries the requested id.
	ErrItemNotFound = errors.New("item not found")
)

// Kind names the list an entity lives in.
type Kind string

const (
	KindEquipment   Kind = "equipment"
	KindCable       Kind = "line"
	KindContainment Kind = "containment"
	KindWalkway     Kind = "walkway"
	KindZone        Kind = "zone"
	KindRoofMask    Kind = "roofMask"
	KindPVArray     Kind = "pvArray"
	KindTask        Kind = "task"
)

// Minimum point counts for open and closed shapes.
const (
	MinPolylinePoints = 2
	MinPolygonPoints  = 3
)

// FindItem returns the kind of the entity with the given id.
func (d Document) FindItem(id string) (Kind, bool) {
	for _, e := range d.Equipment {
		if e.ID == id {
			return KindEquipment, true
		}
	}
	for _, c := range d.Lines {
		if c.ID == id {
			return KindCable, true
		}
	}
	for _, c := range d.Containment {
		if c.ID == id {
			return KindContainment, true
		}
	}
	for _, w := range d.Walkways {
		if w.ID == id {
			return KindWalkway, true
		}
	}
	for _, z := range d.Zones {
		if z.ID == id {
			return KindZone, true
		}
	}
	for _, r := range d.RoofMasks {
		if r.ID == id {
			return KindRoofMask, true
		}
	}
	for _, p := range d.PVArrays {
		if p.ID == id {
			return KindPVArray, true
		}
	}
	for _, t := range d.Tasks {
		if t.ID == id {
			return KindTask, true
		}
	}
	return "", false
}

// DeleteItem returns a copy of d without the entity id and without any task
// linked to it. The second result is false when nothing carried the id, in
// which case the copy equals d.
func (d Document) DeleteItem(id string) (Document, bool) {
	out := d.Clone()
	if _, ok := out.FindItem(id); !ok {
		return out, false
	}

	out.Equipment = filter(out.Equipment, func(e Equipment) bool { return e.ID != id })
	out.Lines = filter(out.Lines, func(c Cable) bool { return c.ID != id })
	out.Containment = filter(out.Containment, func(c Containment) bool { return c.ID != id })
	out.Walkways = filter(out.Walkways, func(w Walkway) bool { return w.ID != id })
	out.Zones = filter(out.Zones, func(z Zone) bool { return z.ID != id })
	out.RoofMasks = filter(out.RoofMasks, func(r RoofMask) bool { return r.ID != id })
	out.PVArrays = filter(out.PVArrays, func(p PVArray) bool { return p.ID != id })
	// An empty LinkedItemID means the task is unlinked, never a match.
	out.Tasks = filter(out.Tasks, func(t Task) bool {
		return t.ID != id && (t.LinkedItemID == "" || t.LinkedItemID != id)
	})
	return out, true
}

// Validate checks that ids are present and unique per list, and minimum
// point counts.
// Derived lengths and areas are not recomputed here.
func (d Document) Validate() error {
	checks := []struct {
		kind Kind
		ids  []string
	}{
		{KindEquipment, ids(d.Equipment, func(e Equipment) string { return e.ID })},
		{KindCable, ids(d.Lines, func(c Cable) string { return c.ID })},
		{KindContainment, ids(d.Containment, func(c Containment) string { return c.ID })},
		{KindWalkway, ids(d.Walkways, func(w Walkway) string { return w.ID })},
		{KindZone, ids(d.Zones, func(z Zone) string { return z.ID })},
		{KindRoofMask, ids(d.RoofMasks, func(r RoofMask) string { return r.ID })},
		{KindPVArray, ids(d.PVArrays, func(p PVArray) string { return p.ID })},
		{KindTask, ids(d.Tasks, func(t Task) string { return t.ID })},
	}
	for _, c := range checks {
		seen := make(map[string]bool, len(c.ids))
		for _, id := range c.ids {
			if id == "" {
				return fmt.Errorf("%s: %w", c.kind, ErrEmptyID)
			}
			if seen[id] {
				return fmt.Errorf("%s %q: %w", c.kind, id, ErrDuplicateID)
			}
			seen[id] = true
		}
	}

	for _, c := range d.Lines {
		if len(c.Points) < MinPolylinePoints {
			return fmt.Errorf("%s %q: %w", KindCable, c.ID, ErrTooFewPoints)
		}
	}
	for _, c := range d.Containment {
		if len(c.Points) < MinPolylinePoints {
			return fmt.Errorf("%s %q: %w", KindContainment, c.ID, ErrTooFewPoints)
		}
	}
	for _, w := range d.Walkways {
		if len(w.Points) < MinPolylinePoints {
			return fmt.Errorf("%s %q: %w", KindWalkway, w.ID, ErrTooFewPoints)
		}
	}
	for _, z := range d.Zones {
		if len(z.Points) < MinPolygonPoints {
			return fmt.Errorf("%s %q: %w", KindZone, z.ID, ErrTooFewPoints)
		}
	}
	for _, r := range d.RoofMasks {
		if len(r.Points) < MinPolygonPoints {
			return fmt.Errorf("%s %q: %w", KindRoofMask, r.ID, ErrTooFewPoints)
		}
	}
	return nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
