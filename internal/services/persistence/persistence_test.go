package persistence

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/planmark/planmark-go/internal/database/models"
	"github.com/planmark/planmark-go/internal/design"
	"github.com/planmark/planmark-go/internal/services/region"
	"github.com/planmark/planmark-go/internal/services/scale"
	"github.com/planmark/planmark-go/internal/services/testutil"
	"github.com/planmark/planmark-go/pkg/geometry"
)

func sampleSnapshot() Snapshot {
	doc := design.Empty()
	doc.Equipment = append(doc.Equipment, design.Equipment{
		ID: "eq-1", Type: "DB", Position: geometry.Pt(10, 20), Name: "DB-1",
	})
	doc.Lines = append(doc.Lines, design.Cable{
		ID: "ln-1", Type: design.LineLV, CableType: "SWA",
		Points:     []geometry.Point{geometry.Pt(0, 0), geometry.Pt(200, 0)},
		PathLength: 10, Length: 10,
	})
	doc.Tasks = append(doc.Tasks, design.Task{
		ID: "tk-1", Title: "Terminate", Status: design.TaskTodo, LinkedItemID: "eq-1",
	})

	ratio := 0.05
	return Snapshot{
		Document: doc,
		Scale:    scale.Info{PixelDistance: 200, RealDistance: 10, Ratio: &ratio},
		Metadata: Metadata{
			View:   region.ViewState{Zoom: 2, Offset: geometry.Pt(10, 20)},
			Layers: map[string]bool{"cables": true, "zones": false},
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	snap := sampleSnapshot()
	file := &File{Name: "level1.pdf", Mime: "application/pdf", Data: []byte("%PDF-1.7")}

	id, err := service.Save(ctx, "Level 1", snap, file, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected design ID")
	}

	loaded, loadedFile, err := service.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !design.Equal(loaded.Document, snap.Document) {
		t.Errorf("Document changed across round trip:\n got %+v\nwant %+v", loaded.Document, snap.Document)
	}
	if loaded.Scale.Ratio == nil || *loaded.Scale.Ratio != 0.05 {
		t.Errorf("Expected ratio 0.05, got %v", loaded.Scale.Ratio)
	}
	if loaded.Scale.PixelDistance != 200 || loaded.Scale.RealDistance != 10 {
		t.Errorf("Scale distances mismatch: %+v", loaded.Scale)
	}
	if loaded.Metadata.ID != id {
		t.Errorf("Expected metadata ID %s, got %s", id, loaded.Metadata.ID)
	}
	if loaded.Metadata.Name != "Level 1" {
		t.Errorf("Expected name 'Level 1', got '%s'", loaded.Metadata.Name)
	}
	if loaded.Metadata.View.Zoom != 2 || loaded.Metadata.View.Offset != geometry.Pt(10, 20) {
		t.Errorf("View mismatch: %+v", loaded.Metadata.View)
	}
	if !loaded.Metadata.Layers["cables"] {
		t.Error("Expected cables layer to be on")
	}
	if loaded.Metadata.Version != FormatVersion {
		t.Errorf("Expected version %s, got %s", FormatVersion, loaded.Metadata.Version)
	}

	if loadedFile == nil {
		t.Fatal("Expected attached file")
	}
	if loadedFile.Name != "level1.pdf" || loadedFile.Mime != "application/pdf" {
		t.Errorf("File metadata mismatch: %+v", loadedFile)
	}
	if string(loadedFile.Data) != "%PDF-1.7" {
		t.Errorf("File data mismatch: %q", loadedFile.Data)
	}
}

func TestSave_UpdatesExistingDesign(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	snap := sampleSnapshot()
	id, err := service.Save(ctx, "Draft", snap, &File{Name: "a.pdf", Data: []byte("a")}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap.Metadata.ID = id
	snap.Document.Equipment = nil
	again, err := service.Save(ctx, "Final", snap, nil, nil)
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if again != id {
		t.Errorf("Expected same design ID %s, got %s", id, again)
	}

	summaries, err := service.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 design, got %d", len(summaries))
	}
	if summaries[0].Name != "Final" {
		t.Errorf("Expected name 'Final', got '%s'", summaries[0].Name)
	}

	loaded, file, err := service.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Document.Equipment) != 0 {
		t.Errorf("Expected equipment to be removed, got %d", len(loaded.Document.Equipment))
	}
	if file == nil || string(file.Data) != "a" {
		t.Errorf("Expected original file to be kept, got %v", file)
	}
}

func TestSave_WithoutScale(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	id, err := service.Save(ctx, "Unscaled", Snapshot{Document: design.Empty()}, nil, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, file, err := service.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Scale.Ratio != nil {
		t.Errorf("Expected no ratio, got %v", *loaded.Scale.Ratio)
	}
	if file != nil {
		t.Error("Expected no file")
	}
	if loaded.Metadata.View != region.DefaultView() {
		t.Errorf("Expected default view, got %+v", loaded.Metadata.View)
	}
}

func TestLoad_NotFound(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)

	_, _, err := service.Load(context.Background(), "missing")
	if !errors.Is(err, ErrDesignNotFound) {
		t.Errorf("Expected ErrDesignNotFound, got %v", err)
	}
	if !errors.Is(err, ErrCollaborator) {
		t.Errorf("Expected ErrCollaborator, got %v", err)
	}
}

func TestLoad_CorruptDocument(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	record := &models.Design{Name: "Broken", Document: datatypes.JSON(`{"equipment":"nope"}`)}
	if err := testDB.DesignRepo.Save(ctx, record, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, _, err := service.Load(ctx, record.ID)
	if !errors.Is(err, ErrCollaborator) {
		t.Errorf("Expected ErrCollaborator, got %v", err)
	}
}

func TestLoad_InvalidScaleRatio(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	ratio := 0.0
	record := &models.Design{Name: "Zero scale", Document: datatypes.JSON(`{}`), ScaleRatio: &ratio}
	if err := testDB.DesignRepo.Save(ctx, record, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, _, err := service.Load(ctx, record.ID)
	if !errors.Is(err, ErrCollaborator) {
		t.Errorf("Expected ErrCollaborator for a zero ratio, got %v", err)
	}
}

func TestList_ByProject(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	project := &models.Project{Name: testutil.UniqueName("Site")}
	if err := testDB.ProjectRepo.Create(ctx, project); err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	if _, err := service.Save(ctx, "Roof", sampleSnapshot(), nil, &project.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := service.Save(ctx, "Loose", Snapshot{Document: design.Empty()}, nil, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	summaries, err := service.List(ctx, project.ID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 design in project, got %d", len(summaries))
	}
	if summaries[0].Name != "Roof" || !summaries[0].Scaled {
		t.Errorf("Unexpected summary: %+v", summaries[0])
	}
}

func TestDelete(t *testing.T) {
	testDB, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	service := NewService(testDB.DesignRepo)
	ctx := context.Background()

	id, err := service.Save(ctx, "Temp", sampleSnapshot(), nil, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := service.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, _, err := service.Load(ctx, id); !errors.Is(err, ErrDesignNotFound) {
		t.Errorf("Expected ErrDesignNotFound after delete, got %v", err)
	}
}

func TestSnapshotJSON(t *testing.T) {
	snap := sampleSnapshot()
	content, err := snap.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := ParseSnapshot([]byte(content))
	if err != nil {
		t.Fatalf("ParseSnapshot failed: %v", err)
	}
	if !design.Equal(parsed.Document, snap.Document) {
		t.Error("Document changed across JSON round trip")
	}
	if parsed.Scale.Ratio == nil || *parsed.Scale.Ratio != 0.05 {
		t.Errorf("Expected ratio 0.05, got %v", parsed.Scale.Ratio)
	}
}

func TestParseSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `{`},
		{"duplicate ids", `{"document":{"equipment":[{"id":"a"},{"id":"a"}]}}`},
		{"short cable", `{"document":{"lines":[{"id":"l","points":[{"x":0,"y":0}]}]}}`},
		{"empty id", `{"document":{"equipment":[{"id":""}]}}`},
		{"negative ratio", `{"document":{},"scale":{"ratio":-0.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSnapshot([]byte(tt.content)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
