// Package models contains the database model definitions for projects,
// saved floor-plan designs and final-account BOQ items.
package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Project groups designs and BOQ items. Designs may exist without one.
// Table: projects
type Project struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string { return "projects" }

// Design is a saved floor-plan markup.
// Document holds the design document JSON; Metadata holds free-form UI state
// saved alongside it (view state, layer toggles).
// Table: designs
type Design struct {
	ID            string         `gorm:"column:id;primaryKey"`
	ProjectID     *string        `gorm:"column:project_id;index"`
	Name          string         `gorm:"column:name"`
	Document      datatypes.JSON `gorm:"column:document"`
	Metadata      datatypes.JSON `gorm:"column:metadata"`
	PixelDistance *float64       `gorm:"column:pixel_distance"`
	RealDistance  *float64       `gorm:"column:real_distance"`
	ScaleRatio    *float64       `gorm:"column:scale_ratio"`
	FileName      *string        `gorm:"column:file_name"`
	FileMime      *string        `gorm:"column:file_mime"`
	FileSize      int64          `gorm:"column:file_size;default:0"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	File *DesignFile `gorm:"foreignKey:DesignID"`
}

func (Design) TableName() string { return "designs" }

// DesignFile is the source drawing (usually a PDF) attached to a design.
// Table: design_files
type DesignFile struct {
	ID        string    `gorm:"column:id;primaryKey"`
	DesignID  string    `gorm:"column:design_id;uniqueIndex"`
	Data      []byte    `gorm:"column:data"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (DesignFile) TableName() string { return "design_files" }

// BOQItem is a priced final-account line.
// Table: boq_items
type BOQItem struct {
	ID          string          `gorm:"column:id;primaryKey"`
	ProjectID   string          `gorm:"column:project_id;index"`
	Code        string          `gorm:"column:code"`
	Description string          `gorm:"column:description"`
	Unit        string          `gorm:"column:unit;default:nr"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:decimal(20,4)"`
	Rate        decimal.Decimal `gorm:"column:rate;type:decimal(20,4)"`
	SourceKind  *string         `gorm:"column:source_kind"` // take-off kind that last set Quantity
	SourceKey   *string         `gorm:"column:source_key"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (BOQItem) TableName() string { return "boq_items" }

// Amount returns Quantity * Rate.
func (b BOQItem) Amount() decimal.Decimal {
	return b.Quantity.Mul(b.Rate)
}

// CostMapping links a take-off key to a BOQ item.
// Table: cost_mappings
type CostMapping struct {
	ID        string    `gorm:"column:id;primaryKey"`
	ProjectID string    `gorm:"column:project_id;uniqueIndex:idx_cost_mapping"`
	Kind      string    `gorm:"column:kind;uniqueIndex:idx_cost_mapping"`
	Key       string    `gorm:"column:key;uniqueIndex:idx_cost_mapping"`
	BOQItemID string    `gorm:"column:boq_item_id;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (CostMapping) TableName() string { return "cost_mappings" }

// Setting represents a system setting.
// Table: settings
type Setting struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Key       string    `gorm:"column:key;uniqueIndex"`
	Value     string    `gorm:"column:value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Setting) TableName() string { return "settings" }

// All returns every model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Project{},
		&Design{},
		&DesignFile{},
		&BOQItem{},
		&CostMapping{},
		&Setting{},
	}
}
