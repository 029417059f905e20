// Package takeoff rolls a design document up into quantity totals.
// It knows nothing about prices or catalogues; the cost-linking step maps
// these totals onto priced items.
package takeoff

import (
	"sort"

	"github.com/planmark/planmark-go/internal/design"
)

// CableTotal is the count and summed length of one cable type.
type CableTotal struct {
	Count       int     `json:"count"`
	TotalLength float64 `json:"totalLength"`
}

// Summary holds every rollup of one document.
type Summary struct {
	EquipmentCounts   map[string]int        `json:"equipmentCounts"`
	ContainmentTotals map[string]float64    `json:"containmentTotals"`
	CableTotals       map[string]CableTotal `json:"cableTotals"`
	ZoneAreas         map[string]float64    `json:"zoneAreas"`
}

// Compute aggregates doc. Cable totals use the full Length, which includes
// vertical rises.
func Compute(doc design.Document) Summary {
	s := Summary{
		EquipmentCounts:   make(map[string]int),
		ContainmentTotals: make(map[string]float64),
		CableTotals:       make(map[string]CableTotal),
		ZoneAreas:         make(map[string]float64),
	}

	for _, e := range doc.Equipment {
		s.EquipmentCounts[e.Type]++
	}
	for _, c := range doc.Containment {
		s.ContainmentTotals[c.Type] += c.Length
	}
	for _, c := range doc.Lines {
		t := s.CableTotals[c.CableType]
		t.Count++
		t.TotalLength += c.Length
		s.CableTotals[c.CableType] = t
	}
	for _, z := range doc.Zones {
		s.ZoneAreas[z.Name] += z.Area
	}
	return s
}

// Row is one flattened rollup line, used by reports and cost linking.
type Row struct {
	Kind     Kind    `json:"kind"`
	Key      string  `json:"key"`
	Count    int     `json:"count"`
	Quantity float64 `json:"quantity"`
}

// Kind identifies which rollup a Row came from.
type Kind string

const (
	KindEquipment   Kind = "equipment"
	KindContainment Kind = "containment"
	KindCable       Kind = "cable"
	KindZone        Kind = "zone"
)

// Rows flattens s into rows ordered by kind then key. Equipment quantity is
// the count; every other quantity is a length or area.
func (s Summary) Rows() []Row {
	var rows []Row
	for _, k := range sortedKeys(s.EquipmentCounts) {
		n := s.EquipmentCounts[k]
		rows = append(rows, Row{Kind: KindEquipment, Key: k, Count: n, Quantity: float64(n)})
	}
	for _, k := range sortedKeys(s.ContainmentTotals) {
		rows = append(rows, Row{Kind: KindContainment, Key: k, Quantity: s.ContainmentTotals[k]})
	}
	for _, k := range sortedKeys(s.CableTotals) {
		t := s.CableTotals[k]
		rows = append(rows, Row{Kind: KindCable, Key: k, Count: t.Count, Quantity: t.TotalLength})
	}
	for _, k := range sortedKeys(s.ZoneAreas) {
		rows = append(rows, Row{Kind: KindZone, Key: k, Quantity: s.ZoneAreas[k]})
	}
	return rows
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
