package takeoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planmark/planmark-go/internal/design"
)

func TestCompute_Empty(t *testing.T) {
	s := Compute(design.Empty())
	assert.Empty(t, s.EquipmentCounts)
	assert.Empty(t, s.ContainmentTotals)
	assert.Empty(t, s.CableTotals)
	assert.Empty(t, s.Rows())
}

func TestCompute_CableTotals(t *testing.T) {
	doc := design.Empty()
	doc.Lines = []design.Cable{
		{ID: "1", CableType: "SWA", Length: 10},
		{ID: "2", CableType: "SWA", Length: 15},
		{ID: "3", CableType: "FP200", Length: 4.5},
	}

	s := Compute(doc)
	assert.Equal(t, CableTotal{Count: 2, TotalLength: 25}, s.CableTotals["SWA"])
	assert.Equal(t, CableTotal{Count: 1, TotalLength: 4.5}, s.CableTotals["FP200"])
}

func TestCompute_EquipmentAndContainment(t *testing.T) {
	doc := design.Empty()
	doc.Equipment = []design.Equipment{
		{ID: "a", Type: "socket"},
		{ID: "b", Type: "socket"},
		{ID: "c", Type: "downlight"},
	}
	doc.Containment = []design.Containment{
		{ID: "t1", Type: "tray", Length: 12.5},
		{ID: "t2", Type: "tray", Length: 7.5},
		{ID: "c1", Type: "conduit", Length: 3},
	}
	doc.Zones = []design.Zone{
		{ID: "z1", Name: "Office", Area: 20},
		{ID: "z2", Name: "Office", Area: 5},
	}

	s := Compute(doc)
	assert.Equal(t, map[string]int{"socket": 2, "downlight": 1}, s.EquipmentCounts)
	assert.Equal(t, map[string]float64{"tray": 20, "conduit": 3}, s.ContainmentTotals)
	assert.Equal(t, 25.0, s.ZoneAreas["Office"])
}

func TestRows_Ordered(t *testing.T) {
	doc := design.Empty()
	doc.Equipment = []design.Equipment{{ID: "a", Type: "socket"}, {ID: "b", Type: "db"}}
	doc.Lines = []design.Cable{{ID: "1", CableType: "SWA", Length: 10}}
	doc.Containment = []design.Containment{{ID: "t", Type: "tray", Length: 2}}

	rows := Compute(doc).Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, Row{Kind: KindEquipment, Key: "db", Count: 1, Quantity: 1}, rows[0])
	assert.Equal(t, Row{Kind: KindEquipment, Key: "socket", Count: 1, Quantity: 1}, rows[1])
	assert.Equal(t, Row{Kind: KindContainment, Key: "tray", Quantity: 2}, rows[2])
	assert.Equal(t, Row{Kind: KindCable, Key: "SWA", Count: 1, Quantity: 10}, rows[3])
}
