// Package design contains the floor-plan design document: the aggregate of
// every placed or drawn entity that the history engine snapshots.
// The JSON shape matches what the UI shell and the persistence layer exchange.
package design

import (
	"github.com/planmark/planmark-go/pkg/geometry"
)

// LineKind is the voltage class of a cable run.
type LineKind string

const (
	LineLV LineKind = "lv"
	LineMV LineKind = "mv"
	LineDC LineKind = "dc"
)

// Valid reports whether k is a known line kind.
func (k LineKind) Valid() bool {
	switch k {
	case LineLV, LineMV, LineDC:
		return true
	}
	return false
}

// TaskStatus is the workflow state of a task annotation.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// PVOrientation is the panel orientation of a PV array.
type PVOrientation string

const (
	PVPortrait  PVOrientation = "portrait"
	PVLandscape PVOrientation = "landscape"
)

// Equipment is a placed symbol (socket, light, distribution board...).
type Equipment struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position geometry.Point `json:"position"`
	Rotation float64        `json:"rotation"`
	Name     string         `json:"name,omitempty"`
}

// Cable is a drawn cable run.
// PathLength is the measured horizontal length; Length adds the vertical
// rises at each end (StartHeight + EndHeight).
type Cable struct {
	ID               string           `json:"id"`
	Type             LineKind         `json:"type"`
	Points           []geometry.Point `json:"points"`
	Length           float64          `json:"length"`
	PathLength       float64          `json:"pathLength"`
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

// Containment is a tray, trunking or conduit run.
type Containment struct {
	ID     string           `json:"id"`
	Type   string           `json:"type"`
	Size   string           `json:"size"`
	Points []geometry.Point `json:"points"`
	Length float64          `json:"length"`
}

// Walkway is a drawn access route with a fixed width.
type Walkway struct {
	ID     string           `json:"id"`
	Points []geometry.Point `json:"points"`
	Length float64          `json:"length"`
	Width  float64          `json:"width"`
}

// Zone is a closed named area.
type Zone struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Color  string           `json:"color"`
	Points []geometry.Point `json:"points"`
	Area   float64          `json:"area"`
}

// RoofMask is a closed roof face used by the PV workflow.
// Pitch is in degrees; Direction is the azimuth the face points to.
type RoofMask struct {
	ID        string           `json:"id"`
	Points    []geometry.Point `json:"points"`
	Pitch     float64          `json:"pitch"`
	Direction float64          `json:"direction"`
	Area      float64          `json:"area"`
}

// PVArray is a grid of panels placed on a roof mask.
type PVArray struct {
	ID          string        `json:"id"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Rows        int           `json:"rows"`
	Cols        int           `json:"cols"`
	Orientation PVOrientation `json:"orientation"`
	Rotation    float64       `json:"rotation"`
	RoofID      string        `json:"roofId"`
}

// Task is a free-floating annotation that may point at any other entity.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Status       TaskStatus `json:"status"`
	LinkedItemID string     `json:"linkedItemId,omitempty"`
	AssignedTo   string     `json:"assignedTo,omitempty"`
}

// Document is one snapshot of the whole design.
type Document struct {
	Equipment   []Equipment   `json:"equipment"`
	Lines       []Cable       `json:"lines"`
	Containment []Containment `json:"containment"`
	Walkways    []Walkway     `json:"walkways"`
	Zones       []Zone        `json:"zones"`
	RoofMasks   []RoofMask    `json:"roofMasks"`
	PVArrays    []PVArray     `json:"pvArrays"`
	Tasks       []Task        `json:"tasks"`

	ScaleLabelPosition *geometry.Point `json:"scaleLabelPosition,omitempty"`
}

// Empty returns a document with every list present and empty.
func Empty() Document {
	return Document{
		Equipment:   []Equipment{},
		Lines:       []Cable{},
		Containment: []Containment{},
		Walkways:    []Walkway{},
		Zones:       []Zone{},
		RoofMasks:   []RoofMask{},
		PVArrays:    []PVArray{},
		Tasks:       []Task{},
	}
}

// ItemCount returns the number of entities across every list.
func (d Document) ItemCount() int {
	return len(d.Equipment) + len(d.Lines) + len(d.Containment) + len(d.Walkways) +
		len(d.Zones) + len(d.RoofMasks) + len(d.PVArrays) + len(d.Tasks)
}
