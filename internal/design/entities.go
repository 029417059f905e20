package design

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucsky/cuid"

	"github.com/planmark/planmark-go/pkg/geometry"
)

var (
	// ErrInvalidLineKind is returned for cable kinds other than lv, mv or dc.
	ErrInvalidLineKind = errors.New("invalid line kind")
	// ErrInvalidPitch is returned for roof pitches outside [0, 90).
	ErrInvalidPitch = errors.New("roof pitch must be in [0, 90) degrees")
	// ErrInvalidArraySize is returned for PV arrays with no rows or columns.
	ErrInvalidArraySize = errors.New("pv array needs at least one row and column")
)

// NewID returns a fresh entity id.
func NewID() string {
	return cuid.New()
}

// NewEquipment places an equipment symbol.
func NewEquipment(typ string, position geometry.Point, rotation float64, name string) Equipment {
	return Equipment{
		ID:       NewID(),
		Type:     typ,
		Position: position,
		Rotation: rotation,
		Name:     name,
	}
}

// CableSpec describes a cable run before its lengths are derived.
type CableSpec struct {
	Type             LineKind         `json:"type"`
	Points           []geometry.Point `json:"points"`
	From             string           `json:"from"`
	To               string           `json:"to"`
	CableType        string           `json:"cableType"`
	TerminationCount int              `json:"terminationCount"`
	StartHeight      float64          `json:"startHeight"`
	EndHeight        float64          `json:"endHeight"`
	Label            string           `json:"label"`
	DBCircuitID      *string          `json:"dbCircuitId,omitempty"`
	CableEntryID     *string          `json:"cableEntryId,omitempty"`
}

// NewCable builds a cable from spec. PathLength is the scaled polyline length
// and Length adds both vertical rises.
func NewCable(spec CableSpec, ratio float64) (Cable, error) {
	if !spec.Type.Valid() {
		return Cable{}, fmt.Errorf("%q: %w", spec.Type, ErrInvalidLineKind)
	}
	if len(spec.Points) < MinPolylinePoints {
		return Cable{}, fmt.Errorf("cable: %w", ErrTooFewPoints)
	}

	pathLength := geometry.RealLength(spec.Points, ratio)
	return Cable{
		ID:               NewID(),
		Type:             spec.Type,
		Points:           clonePoints(spec.Points),
		Length:           pathLength + spec.StartHeight + spec.EndHeight,
		PathLength:       pathLength,
		From:             spec.From,
		To:               spec.To,
		CableType:        spec.CableType,
		TerminationCount: spec.TerminationCount,
		StartHeight:      spec.StartHeight,
		EndHeight:        spec.EndHeight,
		Label:            spec.Label,
		DBCircuitID:      cloneString(spec.DBCircuitID),
		CableEntryID:     cloneString(spec.CableEntryID),
	}, nil
}

// NewContainment builds a containment run with its scaled length.
func NewContainment(typ, size string, points []geometry.Point, ratio float64) (Containment, error) {
	if len(points) < MinPolylinePoints {
		return Containment{}, fmt.Errorf("containment: %w", ErrTooFewPoints)
	}
	return Containment{
		ID:     NewID(),
		Type:   typ,
		Size:   size,
		Points: clonePoints(points),
		Length: geometry.RealLength(points, ratio),
	}, nil
}

// NewWalkway builds a walkway with its scaled length.
func NewWalkway(points []geometry.Point, width, ratio float64) (Walkway, error) {
	if len(points) < MinPolylinePoints {
		return Walkway{}, fmt.Errorf("walkway: %w", ErrTooFewPoints)
	}
	return Walkway{
		ID:     NewID(),
		Points: clonePoints(points),
		Length: geometry.RealLength(points, ratio),
		Width:  width,
	}, nil
}

// NewZone builds a closed zone with its scaled area.
func NewZone(name, color string, points []geometry.Point, ratio float64) (Zone, error) {
	if len(points) < MinPolygonPoints {
		return Zone{}, fmt.Errorf("zone: %w", ErrTooFewPoints)
	}
	return Zone{
		ID:     NewID(),
		Name:   name,
		Color:  color,
		Points: clonePoints(points),
		Area:   geometry.RealArea(points, ratio),
	}, nil
}

// NewRoofMask builds a roof face. Area is the sloped area: the plan area
// divided by cos(pitch).
func NewRoofMask(points []geometry.Point, pitch, direction, ratio float64) (RoofMask, error) {
	if len(points) < MinPolygonPoints {
		return RoofMask{}, fmt.Errorf("roof mask: %w", ErrTooFewPoints)
	}
	if pitch < 0 || pitch >= 90 {
		return RoofMask{}, fmt.Errorf("%v: %w", pitch, ErrInvalidPitch)
	}
	return RoofMask{
		ID:        NewID(),
		Points:    clonePoints(points),
		Pitch:     pitch,
		Direction: direction,
		Area:      SlopedArea(geometry.RealArea(points, ratio), pitch),
	}, nil
}

// SlopedArea converts a plan area to the true area of a face pitched by
// pitch degrees.
func SlopedArea(planArea, pitch float64) float64 {
	return planArea / math.Cos(pitch*math.Pi/180)
}

// NewPVArray places a panel grid on a roof.
func NewPVArray(roofID string, x, y float64, rows, cols int, orientation PVOrientation, rotation float64) (PVArray, error) {
	if rows < 1 || cols < 1 {
		return PVArray{}, ErrInvalidArraySize
	}
	if orientation == "" {
		orientation = PVPortrait
	}
	return PVArray{
		ID:          NewID(),
		X:           x,
		Y:           y,
		Rows:        rows,
		Cols:        cols,
		Orientation: orientation,
		Rotation:    rotation,
		RoofID:      roofID,
	}, nil
}

// NewTask creates an open task, optionally linked to another entity.
func NewTask(title, linkedItemID, assignedTo string) Task {
	return Task{
		ID:           NewID(),
		Title:        title,
		Status:       TaskTodo,
		LinkedItemID: linkedItemID,
		AssignedTo:   assignedTo,
	}
}
