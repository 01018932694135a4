package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusvoice/backend/internal/ai"
	"github.com/campusvoice/backend/internal/db"
	"github.com/campusvoice/backend/internal/http/middleware"
	"github.com/campusvoice/backend/internal/models"
	"github.com/campusvoice/backend/internal/service"
)

type Handler struct {
	Store      *db.Store
	Grievances *service.GrievanceService
	Classifier ai.Classifier
	Validator  *validator.Validate
	Logger     zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type ClassifyRequest struct {
	Text string `json:"text" validate:"required"`
}

// @Summary Preview classification
// @Description Classify grievance text without creating a grievance
// @Tags classify
// @Accept json
// @Produce json
// @Param request body ClassifyRequest true "Grievance text"
// @Success 200 {object} models.Classification
// @Failure 400 {object} map[string]any
// @Router /api/classify [post]
func (h *Handler) ClassifyPreview(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if len(strings.TrimSpace(req.Text)) < service.MinTextLength {
		writeError(c, http.StatusBadRequest, "TEXT_TOO_SHORT", "Grievance text must be at least 20 characters", nil)
		return
	}

	result, latencyMs, err := h.Classifier.ClassifyGrievance(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, http.StatusBadGateway, "CLASSIFIER_ERROR", "Classification failed", err.Error())
		return
	}
	priority := ai.DeterminePriority(req.Text, result.Category)
	c.JSON(http.StatusOK, gin.H{
		"category":   result.Category,
		"confidence": result.Confidence,
		"priority":   priority,
		"latency_ms": latencyMs,
	})
}

type SubmitGrievanceRequest struct {
	Text string `json:"text" validate:"required"`
}

// @Summary Submit a grievance
// @Tags grievances
// @Accept json
// @Produce json
// @Param request body SubmitGrievanceRequest true "Grievance text"
// @Success 201 {object} models.Grievance
// @Failure 400 {object} map[string]any
// @Router /api/grievances [post]
func (h *Handler) GrievanceSubmit(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	if ident.Role != models.RoleStudent {
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Only students can submit grievances", nil)
		return
	}

	var req SubmitGrievanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if len(strings.TrimSpace(req.Text)) < service.MinTextLength {
		writeError(c, http.StatusBadRequest, "TEXT_TOO_SHORT", "Grievance text must be at least 20 characters", nil)
		return
	}

	g, err := h.Grievances.Create(c.Request.Context(), ident.UserID, req.Text)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h *Handler) GrievancesList(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := db.GrievanceFilter{
		StudentID:    c.Query("student_id"),
		DepartmentID: c.Query("department_id"),
		Status:       c.Query("status"),
		Priority:     c.Query("priority"),
		Q:            c.Query("q"),
		Limit:        limit,
		Offset:       offset,
	}

	// Non-admin callers only see their own slice.
	switch ident.Role {
	case models.RoleStudent:
		filter.StudentID = ident.UserID
	case models.RoleFaculty:
		filter.DepartmentID = ident.DepartmentID
	}

	items, err := h.Store.ListGrievances(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list grievances", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": filter.Limit, "offset": filter.Offset})
}

// canReadGrievance mirrors the scoping applied to GrievancesList: students see
// their own grievances, faculty their department's, admins everything.
func canReadGrievance(ident models.Identity, g models.Grievance) bool {
	switch ident.Role {
	case models.RoleAdmin:
		return true
	case models.RoleFaculty:
		return ident.DepartmentID == g.DepartmentID
	default:
		return ident.UserID == g.StudentID
	}
}

func (h *Handler) GrievanceDetail(c *gin.Context) {
	id := c.Param("id")
	g, err := h.Store.GetGrievance(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !canReadGrievance(middleware.IdentityFrom(c), g) {
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Grievance belongs to another caller", nil)
		return
	}
	logs, err := h.Store.ListStatusLogs(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load status logs", err.Error())
		return
	}
	dept, err := h.Store.GetDepartment(c.Request.Context(), g.DepartmentID)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load department", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"grievance":   g,
		"status_logs": logs,
		"department":  dept,
	})
}

func (h *Handler) StatusLogsList(c *gin.Context) {
	id := c.Param("id")
	g, err := h.Store.GetGrievance(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !canReadGrievance(middleware.IdentityFrom(c), g) {
		writeError(c, http.StatusForbidden, "FORBIDDEN", "Grievance belongs to another caller", nil)
		return
	}
	logs, err := h.Store.ListStatusLogs(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load status logs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": logs})
}

type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Remarks string `json:"remarks"`
}

// @Summary Update grievance status
// @Tags grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} models.StatusLog
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/grievances/{id}/status [post]
func (h *Handler) StatusUpdate(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ident := middleware.IdentityFrom(c)
	log, err := h.Grievances.UpdateStatus(c.Request.Context(), ident, c.Param("id"), models.Status(req.Status), req.Remarks)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

type EscalateRequest struct {
	Remarks string `json:"remarks"`
}

func (h *Handler) Escalate(c *gin.Context) {
	var req EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}

	ident := middleware.IdentityFrom(c)
	log, err := h.Grievances.Escalate(c.Request.Context(), ident, c.Param("id"), req.Remarks)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

type CorrectCategoryRequest struct {
	Category string `json:"category" validate:"required"`
}

// @Summary Correct predicted category
// @Description Record a staff correction as training data; routing is unchanged
// @Tags grievances
// @Accept json
// @Produce json
// @Param id path string true "Grievance ID"
// @Param request body CorrectCategoryRequest true "Final category"
// @Success 200 {object} models.TrainingData
// @Router /api/grievances/{id}/category [post]
func (h *Handler) CategoryCorrect(c *gin.Context) {
	var req CorrectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ident := middleware.IdentityFrom(c)
	td, err := h.Grievances.CorrectCategory(c.Request.Context(), ident, c.Param("id"), models.Category(req.Category))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, td)
}

func (h *Handler) DepartmentsList(c *gin.Context) {
	items, err := h.Store.ListDepartments(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list departments", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type CreateDepartmentRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (h *Handler) DepartmentCreate(c *gin.Context) {
	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	d := models.Department{
		ID:          strings.TrimSpace(req.ID),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	}
	if d.ID == "" {
		d.ID = "dept-" + uuid.NewString()
	}
	if err := h.Store.CreateDepartment(c.Request.Context(), d); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create department", err.Error())
		return
	}
	c.JSON(http.StatusCreated, d)
}

type CreateUserRequest struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	Role         string  `json:"role" validate:"required,oneof=student faculty admin"`
	DepartmentID *string `json:"department_id"`
}

func (h *Handler) UserCreate(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	u := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Role:         models.Role(req.Role),
		DepartmentID: req.DepartmentID,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create user", err.Error())
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UsersList(c *gin.Context) {
	items, err := h.Store.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list users", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) TrainingDataList(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	items, err := h.Store.ListTrainingData(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list training data", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary Dashboard stats
// @Tags stats
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Router /api/stats [get]
func (h *Handler) StatsGet(c *gin.Context) {
	st, err := h.Grievances.Stats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		writeError(c, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, service.ErrValidation):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, service.ErrUnknownCategory):
		writeError(c, http.StatusBadRequest, "UNKNOWN_CATEGORY", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(c, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	default:
		h.Logger.Error().Err(err).Msg("request failed")
		writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error", nil)
	}
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
