package models

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

type Category string

const (
	CategoryIT             Category = "IT"
	CategoryAcademic       Category = "Academic"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryHostel         Category = "Hostel"
	CategoryLibrary        Category = "Library"
	CategoryTransport      Category = "Transport"
	CategoryFinance        Category = "Finance"
	CategoryAdministration Category = "Administration"
	CategoryOther          Category = "Other"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusEscalated  Status = "Escalated"
)

type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "Low"
	PriorityMedium PriorityLevel = "Medium"
	PriorityHigh   PriorityLevel = "High"
)

// Classification is the classifier's verdict for a grievance text.
type Classification struct {
	Category   Category `json:"category"`
	Confidence float64  `json:"confidence"`
}

type Grievance struct {
	ID           string        `json:"id"`
	StudentID    string        `json:"student_id"`
	Text         string        `json:"text"`
	Category     Category      `json:"category"`
	Confidence   float64       `json:"confidence"`
	DepartmentID string        `json:"department_id"`
	Status       Status        `json:"status"`
	Priority     PriorityLevel `json:"priority"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// StatusLog is one entry in a grievance's append-only audit trail.
type StatusLog struct {
	ID          string    `json:"id"`
	GrievanceID string    `json:"grievance_id"`
	Status      Status    `json:"status"`
	Remarks     string    `json:"remarks"`
	UpdatedBy   string    `json:"updated_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TrainingData records a staff correction of a predicted category. It is
// written for analytics and audit only; routing never reads it back.
type TrainingData struct {
	ID                string    `json:"id"`
	GrievanceText     string    `json:"grievance_text"`
	PredictedCategory Category  `json:"predicted_category"`
	FinalCategory     Category  `json:"final_category"`
	Confidence        float64   `json:"confidence"`
	CorrectedBy       string    `json:"corrected_by"`
	CreatedAt         time.Time `json:"created_at"`
}

type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	DepartmentID *string   `json:"department_id,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the caller as supplied by the auth collaborator. The backend
// never authenticates; it trusts these fields from the gateway.
type Identity struct {
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
}

type DashboardStats struct {
	TotalGrievances    int     `json:"total_grievances"`
	PendingCount       int     `json:"pending_count"`
	InProgressCount    int     `json:"in_progress_count"`
	ResolvedCount      int     `json:"resolved_count"`
	EscalatedCount     int     `json:"escalated_count"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}
