package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusvoice/backend/internal/ai"
	"github.com/campusvoice/backend/internal/models"
)

// MinTextLength is enforced at the API boundary. The classifier itself
// accepts any non-empty string and falls back to Other on no signal.
const MinTextLength = 20

const initialRemarks = "Grievance received and acknowledged"

// SystemActor is the updated_by identity on automatically created log entries.
const SystemActor = "System"

// Store is the persistence collaborator. Implementations must make
// CreateGrievance and AppendStatusLog atomic, serialize AppendStatusLog
// calls per grievance id, and return ErrNotFound for missing grievances.
type Store interface {
	CreateGrievance(ctx context.Context, g models.Grievance, log models.StatusLog) error
	GetGrievance(ctx context.Context, id string) (models.Grievance, error)
	AppendStatusLog(ctx context.Context, log models.StatusLog) error
	SaveCategoryCorrection(ctx context.Context, td models.TrainingData, grievanceID string) error
	GetDashboardStats(ctx context.Context) (models.DashboardStats, error)
}

type GrievanceService struct {
	Store      Store
	Classifier ai.Classifier
	Logger     zerolog.Logger
}

// Create classifies the text, assigns priority, routes to a department, and
// persists the grievance together with its initial Pending log entry. The
// log's timestamp equals the grievance's created_at.
func (s *GrievanceService) Create(ctx context.Context, studentID, text string) (models.Grievance, error) {
	studentID = strings.TrimSpace(studentID)
	text = strings.TrimSpace(text)
	if studentID == "" {
		return models.Grievance{}, fmt.Errorf("%w: student_id is required", ErrValidation)
	}
	if text == "" {
		return models.Grievance{}, fmt.Errorf("%w: text is required", ErrValidation)
	}

	result, latencyMs, err := s.Classifier.ClassifyGrievance(ctx, text)
	if err != nil {
		return models.Grievance{}, err
	}
	priority := ai.DeterminePriority(text, result.Category)
	departmentID, err := RouteToDepartment(result.Category)
	if err != nil {
		return models.Grievance{}, err
	}

	now := time.Now().UTC()
	g := models.Grievance{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Text:         text,
		Category:     result.Category,
		Confidence:   result.Confidence,
		DepartmentID: departmentID,
		Status:       models.StatusPending,
		Priority:     priority,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	log := models.StatusLog{
		ID:          uuid.NewString(),
		GrievanceID: g.ID,
		Status:      models.StatusPending,
		Remarks:     initialRemarks,
		UpdatedBy:   SystemActor,
		UpdatedAt:   now,
	}

	if err := s.Store.CreateGrievance(ctx, g, log); err != nil {
		return models.Grievance{}, err
	}

	s.Logger.Info().
		Str("grievance_id", g.ID).
		Str("category", string(result.Category)).
		Float64("confidence", result.Confidence).
		Str("priority", string(priority)).
		Str("department_id", departmentID).
		Int64("classify_ms", latencyMs).
		Msg("grievance created")
	return g, nil
}

// UpdateStatus appends one status log entry and updates the grievance's
// cached status. Students may not transition; faculty only within their own
// department. Escalated is reachable only from Pending or In Progress and
// only by an admin; explicit staff transitions out of Resolved or Escalated
// (reopening) are allowed.
func (s *GrievanceService) UpdateStatus(ctx context.Context, actor models.Identity, grievanceID string, newStatus models.Status, remarks string) (models.StatusLog, error) {
	if !validStatus(newStatus) {
		return models.StatusLog{}, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}

	g, err := s.Store.GetGrievance(ctx, grievanceID)
	if err != nil {
		return models.StatusLog{}, err
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleFaculty:
		if actor.DepartmentID != g.DepartmentID {
			return models.StatusLog{}, fmt.Errorf("%w: grievance belongs to another department", ErrForbidden)
		}
	default:
		return models.StatusLog{}, fmt.Errorf("%w: role %q cannot update status", ErrForbidden, actor.Role)
	}

	if newStatus == models.StatusEscalated {
		if actor.Role != models.RoleAdmin {
			return models.StatusLog{}, fmt.Errorf("%w: only admins can escalate", ErrForbidden)
		}
		if g.Status != models.StatusPending && g.Status != models.StatusInProgress {
			return models.StatusLog{}, fmt.Errorf("%w: cannot escalate from %q", ErrInvalidTransition, g.Status)
		}
	}

	log := models.StatusLog{
		ID:          uuid.NewString(),
		GrievanceID: g.ID,
		Status:      newStatus,
		Remarks:     remarks,
		UpdatedBy:   actor.UserID,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.Store.AppendStatusLog(ctx, log); err != nil {
		return models.StatusLog{}, err
	}

	s.Logger.Info().
		Str("grievance_id", g.ID).
		Str("from", string(g.Status)).
		Str("to", string(newStatus)).
		Str("updated_by", actor.UserID).
		Msg("status updated")
	return log, nil
}

// Escalate is the admin action surfaced in the UI; it is UpdateStatus with a
// fixed target state.
func (s *GrievanceService) Escalate(ctx context.Context, actor models.Identity, grievanceID, remarks string) (models.StatusLog, error) {
	return s.UpdateStatus(ctx, actor, grievanceID, models.StatusEscalated, remarks)
}

// CorrectCategory records a staff override of the predicted category as a
// TrainingData row and updates the grievance's category in the same
// transaction. The department assignment made at creation stays as is.
func (s *GrievanceService) CorrectCategory(ctx context.Context, actor models.Identity, grievanceID string, final models.Category) (models.TrainingData, error) {
	if actor.Role != models.RoleAdmin {
		return models.TrainingData{}, fmt.Errorf("%w: only admins can correct categories", ErrForbidden)
	}
	if _, err := RouteToDepartment(final); err != nil {
		return models.TrainingData{}, err
	}

	g, err := s.Store.GetGrievance(ctx, grievanceID)
	if err != nil {
		return models.TrainingData{}, err
	}

	td := models.TrainingData{
		ID:                uuid.NewString(),
		GrievanceText:     g.Text,
		PredictedCategory: g.Category,
		FinalCategory:     final,
		Confidence:        g.Confidence,
		CorrectedBy:       actor.UserID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.Store.SaveCategoryCorrection(ctx, td, g.ID); err != nil {
		return models.TrainingData{}, err
	}

	s.Logger.Info().
		Str("grievance_id", g.ID).
		Str("predicted", string(td.PredictedCategory)).
		Str("final", string(td.FinalCategory)).
		Str("corrected_by", actor.UserID).
		Msg("category corrected")
	return td, nil
}

func (s *GrievanceService) Stats(ctx context.Context) (models.DashboardStats, error) {
	return s.Store.GetDashboardStats(ctx)
}

func validStatus(st models.Status) bool {
	switch st {
	case models.StatusPending, models.StatusInProgress, models.StatusResolved, models.StatusEscalated:
		return true
	}
	return false
}
