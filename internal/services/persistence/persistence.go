// Package persistence saves and loads designs through the database.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"

	"github.com/planmark/planmark-go/internal/database/models"
	"github.com/planmark/planmark-go/internal/database/repositories"
	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/scale"
)

// FormatVersion is written into every saved snapshot.
const FormatVersion = "1.0"

var (
	// ErrCollaborator wraps every storage failure.
	ErrCollaborator = errors.New("persistence failure")
	// ErrDesignNotFound is returned when loading an unknown design.
	ErrDesignNotFound = errors.New("design not found")
)

// Metadata is the UI state saved next to a document.
type Metadata struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	ProjectID *string          `json:"projectId,omitempty"`
	View      region.ViewState `json:"view"`
	Layers    map[string]bool  `json:"layers,omitempty"`
	Version   string           `json:"version,omitempty"`
	SavedAt   string           `json:"savedAt,omitempty"`
}

// Snapshot is a document plus everything needed to reopen it.
type Snapshot struct {
	Document design.Document `json:"document"`
	Scale    scale.Info      `json:"scale"`
	Metadata Metadata        `json:"metadata"`
}

// File is the source drawing a design was marked up on.
type File struct {
	Name string
	Mime string
	Data []byte
}

// Summary describes a saved design without its document.
type Summary struct {
	ID        string    `json:"id"`
	ProjectID *string   `json:"projectId,omitempty"`
	Name      string    `json:"name"`
	Scaled    bool      `json:"scaled"`
	FileName  *string   `json:"fileName,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service stores designs.
type Service struct {
	designRepo *repositories.DesignRepository
}

// NewService creates a new persistence service.
func NewService(designRepo *repositories.DesignRepository) *Service {
	return &Service{designRepo: designRepo}
}

// Save creates or updates a design and returns its ID. A snapshot whose
// metadata carries an ID updates that design; otherwise a new one is created.
// A nil file keeps any drawing already attached.
func (s *Service) Save(ctx context.Context, name string, snap Snapshot, file *File, projectID *string) (string, error) {
	var record *models.Design
	if snap.Metadata.ID != "" {
		existing, err := s.designRepo.FindByID(ctx, snap.Metadata.ID)
		if err != nil {
			return "", fmt.Errorf("%w: failed to look up design: %v", ErrCollaborator, err)
		}
		record = existing
	}
	if record == nil {
		record = &models.Design{ID: snap.Metadata.ID}
	}

	snap.Metadata.Name = name
	snap.Metadata.ProjectID = projectID
	snap.Metadata.Version = FormatVersion
	snap.Metadata.SavedAt = time.Now().UTC().Format(time.RFC3339)

	docJSON, err := json.Marshal(snap.Document.Clone())
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode document: %v", ErrCollaborator, err)
	}
	metaJSON, err := json.Marshal(snap.Metadata)
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode metadata: %v", ErrCollaborator, err)
	}

	record.Name = name
	record.ProjectID = projectID
	record.Document = datatypes.JSON(docJSON)
	record.Metadata = datatypes.JSON(metaJSON)
	record.PixelDistance = nil
	record.RealDistance = nil
	record.ScaleRatio = nil
	if snap.Scale.Ratio != nil {
		pixels, real, ratio := snap.Scale.PixelDistance, snap.Scale.RealDistance, *snap.Scale.Ratio
		record.PixelDistance = &pixels
		record.RealDistance = &real
		record.ScaleRatio = &ratio
	}

	var fileRecord *models.DesignFile
	if file != nil {
		fileName, fileMime := file.Name, file.Mime
		record.FileName = &fileName
		record.FileMime = &fileMime
		record.FileSize = int64(len(file.Data))
		fileRecord = &models.DesignFile{Data: file.Data}
	}

	if err := s.designRepo.Save(ctx, record, fileRecord); err != nil {
		return "", fmt.Errorf("%w: failed to save design: %v", ErrCollaborator, err)
	}

	log.Printf("Saved design %s (%s, %d items)", record.ID, name, snap.Document.ItemCount())
	return record.ID, nil
}

// Load returns a saved snapshot and its drawing, if one is attached.
func (s *Service) Load(ctx context.Context, designID string) (*Snapshot, *File, error) {
	record, err := s.designRepo.FindByID(ctx, designID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to load design: %v", ErrCollaborator, err)
	}
	if record == nil {
		return nil, nil, fmt.Errorf("%w: %w: %s", ErrCollaborator, ErrDesignNotFound, designID)
	}

	snap, err := snapshotFromRecord(record)
	if err != nil {
		return nil, nil, err
	}

	fileRecord, err := s.designRepo.FindFile(ctx, designID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to load design file: %v", ErrCollaborator, err)
	}
	var file *File
	if fileRecord != nil {
		file = &File{Data: fileRecord.Data}
		if record.FileName != nil {
			file.Name = *record.FileName
		}
		if record.FileMime != nil {
			file.Mime = *record.FileMime
		}
	}

	return snap, file, nil
}

// List returns saved design summaries, most recently updated first. An empty
// projectID lists every design.
func (s *Service) List(ctx context.Context, projectID string) ([]Summary, error) {
	var (
		records []models.Design
		err     error
	)
	if projectID == "" {
		records, err = s.designRepo.FindAll(ctx)
	} else {
		records, err = s.designRepo.FindByProject(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list designs: %v", ErrCollaborator, err)
	}

	summaries := make([]Summary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, Summary{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			Name:      r.Name,
			Scaled:    r.ScaleRatio != nil,
			FileName:  r.FileName,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return summaries, nil
}

// Delete removes a saved design.
func (s *Service) Delete(ctx context.Context, designID string) error {
	if err := s.designRepo.Delete(ctx, designID); err != nil {
		return fmt.Errorf("%w: failed to delete design: %v", ErrCollaborator, err)
	}
	return nil
}

func snapshotFromRecord(record *models.Design) (*Snapshot, error) {
	snap := &Snapshot{Document: design.Empty()}

	if len(record.Document) > 0 {
		var doc design.Document
		if err := json.Unmarshal(record.Document, &doc); err != nil {
			return nil, fmt.Errorf("%w: corrupt document in design %s: %v", ErrCollaborator, record.ID, err)
		}
		snap.Document = doc.Clone()
	}
	if err := snap.Document.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid document in design %s: %v", ErrCollaborator, record.ID, err)
	}

	if len(record.Metadata) > 0 {
		if err := json.Unmarshal(record.Metadata, &snap.Metadata); err != nil {
			// Metadata is UI state only; fall back to defaults.
			log.Printf("Warning: failed to decode metadata for design %s: %v", record.ID, err)
			snap.Metadata = Metadata{}
		}
	}
	if snap.Metadata.View.Zoom <= 0 {
		snap.Metadata.View = region.DefaultView()
	}
	snap.Metadata.ID = record.ID
	snap.Metadata.Name = record.Name
	snap.Metadata.ProjectID = record.ProjectID

	if record.ScaleRatio != nil {
		if !(*record.ScaleRatio > 0) {
			return nil, fmt.Errorf("%w: invalid scale ratio %v in design %s", ErrCollaborator, *record.ScaleRatio, record.ID)
		}
		ratio := *record.ScaleRatio
		snap.Scale.Ratio = &ratio
		if record.PixelDistance != nil {
			snap.Scale.PixelDistance = *record.PixelDistance
		}
		if record.RealDistance != nil {
			snap.Scale.RealDistance = *record.RealDistance
		}
	}

	return snap, nil
}

// ToJSON renders a snapshot as indented JSON.
func (s *Snapshot) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseSnapshot decodes a snapshot written by ToJSON. The document is
// normalised and validated.
func ParseSnapshot(content []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse design: %w", err)
	}
	snap.Document = snap.Document.Clone()
	if err := snap.Document.Validate(); err != nil {
		return nil, fmt.Errorf("invalid design: %w", err)
	}
	if snap.Scale.Ratio != nil && !(*snap.Scale.Ratio > 0) {
		return nil, fmt.Errorf("invalid design: scale ratio %v", *snap.Scale.Ratio)
	}
	if snap.Metadata.View.Zoom <= 0 {
		snap.Metadata.View = region.DefaultView()
	}
	return &snap, nil
}
