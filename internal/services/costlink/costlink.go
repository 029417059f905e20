// Package costlink writes take-off quantities onto priced BOQ items.
package costlink

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/planmark/planmark-go/internal/database/models"
	"github.com/planmark/planmark-go/internal/database/repositories"
	"github.com/planmark/planmark-go/internal/services/takeoff"
)

// QuantityPlaces is the number of decimal places stored for a quantity.
const QuantityPlaces = 3

// ErrCollaborator wraps every storage failure.
var ErrCollaborator = errors.New("cost link failure")

// Mapping points one take-off key at a BOQ item.
type Mapping struct {
	Kind      takeoff.Kind `json:"kind"`
	Key       string       `json:"key"`
	BOQItemID string       `json:"boqItemId"`
}

// Linked is one BOQ item and the quantity written to it.
type Linked struct {
	BOQItemID string          `json:"boqItemId"`
	Quantity  decimal.Decimal `json:"quantity"`
	Rows      []takeoff.Row   `json:"rows"`
}

// Report describes the outcome of a link run.
type Report struct {
	Linked   []Linked      `json:"linked"`
	Unmapped []takeoff.Row `json:"unmapped"`
}

// Service links take-offs to BOQ items.
type Service struct {
	boqRepo *repositories.BOQRepository
}

// NewService creates a new cost-link service.
func NewService(boqRepo *repositories.BOQRepository) *Service {
	return &Service{boqRepo: boqRepo}
}

// Plan resolves rows against mappings without touching storage. Rows mapped
// to the same item are summed; rows without a mapping are returned as
// unmapped.
func Plan(rows []takeoff.Row, mappings []Mapping) Report {
	targets := make(map[takeoff.Kind]map[string]string)
	for _, m := range mappings {
		if targets[m.Kind] == nil {
			targets[m.Kind] = make(map[string]string)
		}
		targets[m.Kind][m.Key] = m.BOQItemID
	}

	report := Report{Linked: []Linked{}, Unmapped: []takeoff.Row{}}
	byItem := make(map[string]int)
	for _, row := range rows {
		itemID, ok := targets[row.Kind][row.Key]
		if !ok || itemID == "" {
			report.Unmapped = append(report.Unmapped, row)
			continue
		}
		i, seen := byItem[itemID]
		if !seen {
			i = len(report.Linked)
			byItem[itemID] = i
			report.Linked = append(report.Linked, Linked{BOQItemID: itemID, Quantity: decimal.Zero})
		}
		l := &report.Linked[i]
		l.Quantity = l.Quantity.Add(decimal.NewFromFloat(row.Quantity))
		l.Rows = append(l.Rows, row)
	}
	for i := range report.Linked {
		report.Linked[i].Quantity = report.Linked[i].Quantity.Round(QuantityPlaces)
	}
	return report
}

// Link plans rows against mappings and writes every linked quantity in one
// transaction. Nothing is written if any item fails.
func (s *Service) Link(ctx context.Context, rows []takeoff.Row, mappings []Mapping) (*Report, error) {
	report := Plan(rows, mappings)

	updates := make([]repositories.QuantityUpdate, 0, len(report.Linked))
	for _, l := range report.Linked {
		u := repositories.QuantityUpdate{
			BOQItemID:  l.BOQItemID,
			Quantity:   l.Quantity,
			SourceKind: string(l.Rows[0].Kind),
			SourceKey:  l.Rows[0].Key,
		}
		if len(l.Rows) > 1 {
			u.SourceKey = fmt.Sprintf("%d rows", len(l.Rows))
		}
		updates = append(updates, u)
	}

	if len(updates) > 0 {
		if err := s.boqRepo.ApplyQuantities(ctx, updates); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCollaborator, err)
		}
	}

	log.Printf("Cost link: %d items updated, %d rows unmapped", len(report.Linked), len(report.Unmapped))
	return &report, nil
}

// LinkProject links a summary using the mappings stored for a project.
func (s *Service) LinkProject(ctx context.Context, projectID string, summary takeoff.Summary) (*Report, error) {
	stored, err := s.boqRepo.FindMappings(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load mappings: %w", ErrCollaborator, err)
	}
	return s.Link(ctx, summary.Rows(), MappingsFromModels(stored))
}

// SaveMapping stores a mapping for a project.
func (s *Service) SaveMapping(ctx context.Context, projectID string, m Mapping) error {
	err := s.boqRepo.UpsertMapping(ctx, &models.CostMapping{
		ProjectID: projectID,
		Kind:      string(m.Kind),
		Key:       m.Key,
		BOQItemID: m.BOQItemID,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCollaborator, err)
	}
	return nil
}

// MappingsFromModels converts stored mappings.
func MappingsFromModels(stored []models.CostMapping) []Mapping {
	out := make([]Mapping, 0, len(stored))
	for _, m := range stored {
		out = append(out, Mapping{Kind: takeoff.Kind(m.Kind), Key: m.Key, BOQItemID: m.BOQItemID})
	}
	return out
}
