package service

import (
	"fmt"

	"github.com/campusvoice/backend/internal/models"
)

var departmentCatalog = []models.Department{
	{ID: "dept-1", Name: "IT Services", Description: "Technical support and IT infrastructure"},
	{ID: "dept-2", Name: "Academic Affairs", Description: "Academic policies and curriculum"},
	{ID: "dept-3", Name: "Infrastructure", Description: "Buildings and facilities management"},
	{ID: "dept-4", Name: "Hostel Management", Description: "Student housing and accommodation"},
	{ID: "dept-5", Name: "Library Services", Description: "Library resources and access"},
	{ID: "dept-6", Name: "Transport", Description: "Campus transportation services"},
	{ID: "dept-7", Name: "Finance", Description: "Fees and financial matters"},
	{ID: "dept-8", Name: "Administration", Description: "General administrative services"},
}

// Other has no department of its own and lands with Administration.
var categoryToDepartment = map[models.Category]string{
	models.CategoryIT:             "dept-1",
	models.CategoryAcademic:       "dept-2",
	models.CategoryInfrastructure: "dept-3",
	models.CategoryHostel:         "dept-4",
	models.CategoryLibrary:        "dept-5",
	models.CategoryTransport:      "dept-6",
	models.CategoryFinance:        "dept-7",
	models.CategoryAdministration: "dept-8",
	models.CategoryOther:          "dept-8",
}

// RouteToDepartment maps a category to the department that owns it. The
// classifier only emits known categories, so the error path is a guard
// against callers passing arbitrary strings.
func RouteToDepartment(category models.Category) (string, error) {
	id, ok := categoryToDepartment[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return id, nil
}

// DefaultDepartments returns the seed catalog for store initialization.
func DefaultDepartments() []models.Department {
	out := make([]models.Department, len(departmentCatalog))
	copy(out, departmentCatalog)
	return out
}
