package design

import (
	"reflect"

	"github.com/planmark/planmark-go/pkg/geometry"
)

// Clone returns a deep copy of d. Nil lists come back empty and empty point
// lists come back nil, so two clones of structurally equal documents are
// reflect.DeepEqual.
func (d Document) Clone() Document {
	out := Document{
		Equipment:   append(make([]Equipment, 0, len(d.Equipment)), d.Equipment...),
		Lines:       make([]Cable, len(d.Lines)),
		Containment: make([]Containment, len(d.Containment)),
		Walkways:    make([]Walkway, len(d.Walkways)),
		Zones:       make([]Zone, len(d.Zones)),
		RoofMasks:   make([]RoofMask, len(d.RoofMasks)),
		PVArrays:    append(make([]PVArray, 0, len(d.PVArrays)), d.PVArrays...),
		Tasks:       append(make([]Task, 0, len(d.Tasks)), d.Tasks...),
	}

	for i, c := range d.Lines {
		c.Points = clonePoints(c.Points)
		c.DBCircuitID = cloneString(c.DBCircuitID)
		c.CableEntryID = cloneString(c.CableEntryID)
		out.Lines[i] = c
	}
	for i, c := range d.Containment {
		c.Points = clonePoints(c.Points)
		out.Containment[i] = c
	}
	for i, w := range d.Walkways {
		w.Points = clonePoints(w.Points)
		out.Walkways[i] = w
	}
	for i, z := range d.Zones {
		z.Points = clonePoints(z.Points)
		out.Zones[i] = z
	}
	for i, r := range d.RoofMasks {
		r.Points = clonePoints(r.Points)
		out.RoofMasks[i] = r
	}
	if d.ScaleLabelPosition != nil {
		p := *d.ScaleLabelPosition
		out.ScaleLabelPosition = &p
	}
	return out
}

// Equal reports whether a and b describe the same design.
// Comparison is structural; nil and empty lists are treated alike.
func Equal(a, b Document) bool {
	return reflect.DeepEqual(a.Clone(), b.Clone())
}

func clonePoints(src []geometry.Point) []geometry.Point {
	if len(src) == 0 {
		return nil
	}
	return append([]geometry.Point(nil), src...)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
