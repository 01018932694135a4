package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusvoice/backend/internal/models"
	"github.com/campusvoice/backend/internal/service"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	t.Cleanup(store.Close)

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := store.SeedDepartments(context.Background(), service.DefaultDepartments()); err != nil {
		t.Fatalf("seed departments: %v", err)
	}
	return store
}

func seedGrievance(t *testing.T, store *Store, studentID string) models.Grievance {
	t.Helper()
	now := time.Now().UTC()
	g := models.Grievance{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Text:         "The wifi in the hostel common room keeps dropping",
		Category:     models.CategoryIT,
		Confidence:   0.77,
		DepartmentID: "dept-1",
		Status:       models.StatusPending,
		Priority:     models.PriorityMedium,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	log := models.StatusLog{
		ID:          uuid.NewString(),
		GrievanceID: g.ID,
		Status:      models.StatusPending,
		Remarks:     "Grievance received and acknowledged",
		UpdatedBy:   service.SystemActor,
		UpdatedAt:   now,
	}
	if err := store.CreateGrievance(context.Background(), g, log); err != nil {
		t.Fatalf("create grievance: %v", err)
	}
	return g
}

func TestCreateAndGetGrievanceIntegration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	g := seedGrievance(t, store, "student-"+uuid.NewString())

	got, err := store.GetGrievance(ctx, g.ID)
	if err != nil {
		t.Fatalf("get grievance: %v", err)
	}
	if got.Text != g.Text || got.Category != g.Category || got.DepartmentID != g.DepartmentID {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, g)
	}

	logs, err := store.ListStatusLogs(ctx, g.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Status != models.StatusPending {
		t.Fatalf("expected single Pending log, got %+v", logs)
	}
}

func TestGetGrievanceNotFoundIntegration(t *testing.T) {
	store := testStore(t)

	_, err := store.GetGrievance(context.Background(), uuid.NewString())
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendStatusLogOrderingIntegration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	g := seedGrievance(t, store, "student-"+uuid.NewString())

	for i, st := range []models.Status{models.StatusInProgress, models.StatusResolved} {
		err := store.AppendStatusLog(ctx, models.StatusLog{
			ID:          uuid.NewString(),
			GrievanceID: g.ID,
			Status:      st,
			UpdatedBy:   "admin-1",
			UpdatedAt:   g.CreatedAt.Add(time.Duration(i+1) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %s: %v", st, err)
		}
	}

	logs, err := store.ListStatusLogs(ctx, g.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}
	want := []models.Status{models.StatusPending, models.StatusInProgress, models.StatusResolved}
	for i, st := range want {
		if logs[i].Status != st {
			t.Fatalf("log %d: expected %s, got %s", i, st, logs[i].Status)
		}
	}

	got, err := store.GetGrievance(ctx, g.ID)
	if err != nil {
		t.Fatalf("get grievance: %v", err)
	}
	if got.Status != models.StatusResolved {
		t.Fatalf("expected cached status Resolved, got %s", got.Status)
	}
}

func TestAppendStatusLogMissingGrievanceIntegration(t *testing.T) {
	store := testStore(t)

	err := store.AppendStatusLog(context.Background(), models.StatusLog{
		ID:          uuid.NewString(),
		GrievanceID: uuid.NewString(),
		Status:      models.StatusResolved,
		UpdatedBy:   "admin-1",
		UpdatedAt:   time.Now().UTC(),
	})
	if !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGrievancesFilterIntegration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	studentID := "student-" + uuid.NewString()
	g := seedGrievance(t, store, studentID)

	items, err := store.ListGrievances(ctx, GrievanceFilter{StudentID: studentID})
	if err != nil {
		t.Fatalf("list grievances: %v", err)
	}
	if len(items) != 1 || items[0].ID != g.ID {
		t.Fatalf("expected exactly the seeded grievance, got %+v", items)
	}

	items, err = store.ListGrievances(ctx, GrievanceFilter{StudentID: studentID, Status: string(models.StatusResolved)})
	if err != nil {
		t.Fatalf("list grievances: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no Resolved grievances, got %d", len(items))
	}
}

func TestSaveCategoryCorrectionIntegration(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	g := seedGrievance(t, store, "student-"+uuid.NewString())

	td := models.TrainingData{
		ID:                uuid.NewString(),
		GrievanceText:     g.Text,
		PredictedCategory: g.Category,
		FinalCategory:     models.CategoryInfrastructure,
		Confidence:        g.Confidence,
		CorrectedBy:       "admin-1",
		CreatedAt:         time.Now().UTC(),
	}
	if err := store.SaveCategoryCorrection(ctx, td, g.ID); err != nil {
		t.Fatalf("save correction: %v", err)
	}

	got, err := store.GetGrievance(ctx, g.ID)
	if err != nil {
		t.Fatalf("get grievance: %v", err)
	}
	if got.Category != models.CategoryInfrastructure {
		t.Fatalf("expected corrected category, got %s", got.Category)
	}
	if got.DepartmentID != g.DepartmentID {
		t.Fatalf("department changed on correction: %s", got.DepartmentID)
	}
}
