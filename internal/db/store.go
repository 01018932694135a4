package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusvoice/backend/internal/models"
	"github.com/campusvoice/backend/internal/service"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS departments (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			department_id TEXT REFERENCES departments(id),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS grievances (
			id TEXT PRIMARY KEY,
			student_id TEXT NOT NULL,
			grievance_text TEXT NOT NULL,
			category TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			department_id TEXT NOT NULL REFERENCES departments(id),
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS status_logs (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			grievance_id TEXT NOT NULL REFERENCES grievances(id) ON DELETE CASCADE,
			status TEXT NOT NULL,
			remarks TEXT NOT NULL DEFAULT '',
			updated_by TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS training_data (
			id TEXT PRIMARY KEY,
			grievance_text TEXT NOT NULL,
			predicted_category TEXT NOT NULL,
			final_category TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			corrected_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_grievances_student ON grievances(student_id)`,
		`CREATE INDEX IF NOT EXISTS idx_grievances_department ON grievances(department_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_logs_grievance ON status_logs(grievance_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) SeedDepartments(ctx context.Context, departments []models.Department) error {
	for _, d := range departments {
		_, err := s.Pool.Exec(ctx, `
			INSERT INTO departments (id, name, description)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING
		`, d.ID, d.Name, d.Description)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateGrievance(ctx context.Context, g models.Grievance, log models.StatusLog) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO grievances (id, student_id, grievance_text, category, confidence, department_id, status, priority, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, g.ID, g.StudentID, g.Text, g.Category, g.Confidence, g.DepartmentID, g.Status, g.Priority, g.CreatedAt, g.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO status_logs (id, grievance_id, status, remarks, updated_by, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, log.ID, log.GrievanceID, log.Status, log.Remarks, log.UpdatedBy, log.UpdatedAt)
		return err
	})
}

func (s *Store) GetGrievance(ctx context.Context, id string) (models.Grievance, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, student_id, grievance_text, category, confidence, department_id, status, priority, created_at, updated_at
		FROM grievances WHERE id = $1
	`, id)
	var g models.Grievance
	if err := row.Scan(&g.ID, &g.StudentID, &g.Text, &g.Category, &g.Confidence, &g.DepartmentID, &g.Status, &g.Priority, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Grievance{}, service.ErrNotFound
		}
		return models.Grievance{}, err
	}
	return g, nil
}

type GrievanceFilter struct {
	StudentID    string
	DepartmentID string
	Status       string
	Priority     string
	Q            string
	Limit        int
	Offset       int
}

func (s *Store) ListGrievances(ctx context.Context, f GrievanceFilter) ([]models.Grievance, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	query := `SELECT id, student_id, grievance_text, category, confidence, department_id, status, priority, created_at, updated_at FROM grievances`
	var args []any
	var wheres []string
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		wheres = append(wheres, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if f.DepartmentID != "" {
		args = append(args, f.DepartmentID)
		wheres = append(wheres, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		wheres = append(wheres, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Q != "" {
		args = append(args, "%"+f.Q+"%")
		wheres = append(wheres, fmt.Sprintf("(grievance_text ILIKE $%d OR id ILIKE $%d)", len(args), len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Grievance
	for rows.Next() {
		var g models.Grievance
		if err := rows.Scan(&g.ID, &g.StudentID, &g.Text, &g.Category, &g.Confidence, &g.DepartmentID, &g.Status, &g.Priority, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// AppendStatusLog inserts one log row and refreshes the grievance's cached
// status in a single transaction. The FOR UPDATE lock serializes concurrent
// appends for the same grievance.
func (s *Store) AppendStatusLog(ctx context.Context, log models.StatusLog) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM grievances WHERE id = $1 FOR UPDATE`, log.GrievanceID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return service.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO status_logs (id, grievance_id, status, remarks, updated_by, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, log.ID, log.GrievanceID, log.Status, log.Remarks, log.UpdatedBy, log.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE grievances SET status = $1, updated_at = $2 WHERE id = $3`, log.Status, log.UpdatedAt, log.GrievanceID)
		return err
	})
}

func (s *Store) ListStatusLogs(ctx context.Context, grievanceID string) ([]models.StatusLog, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, grievance_id, status, remarks, updated_by, updated_at
		FROM status_logs WHERE grievance_id = $1
		ORDER BY updated_at ASC, seq ASC
	`, grievanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StatusLog
	for rows.Next() {
		var l models.StatusLog
		if err := rows.Scan(&l.ID, &l.GrievanceID, &l.Status, &l.Remarks, &l.UpdatedBy, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SaveCategoryCorrection writes the training-data record and the corrected
// category together. The department assignment is deliberately left alone.
func (s *Store) SaveCategoryCorrection(ctx context.Context, td models.TrainingData, grievanceID string) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		var id string
		if err := tx.QueryRow(ctx, `SELECT id FROM grievances WHERE id = $1 FOR UPDATE`, grievanceID).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return service.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO training_data (id, grievance_text, predicted_category, final_category, confidence, corrected_by, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, td.ID, td.GrievanceText, td.PredictedCategory, td.FinalCategory, td.Confidence, td.CorrectedBy, td.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE grievances SET category = $1 WHERE id = $2`, td.FinalCategory, grievanceID)
		return err
	})
}

func (s *Store) ListTrainingData(ctx context.Context, limit, offset int) ([]models.TrainingData, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, grievance_text, predicted_category, final_category, confidence, corrected_by, created_at
		FROM training_data ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TrainingData
	for rows.Next() {
		var td models.TrainingData
		if err := rows.Scan(&td.ID, &td.GrievanceText, &td.PredictedCategory, &td.FinalCategory, &td.Confidence, &td.CorrectedBy, &td.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, td)
	}
	return out, rows.Err()
}

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, description FROM departments ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) GetDepartment(ctx context.Context, id string) (models.Department, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, name, description FROM departments WHERE id = $1`, id)
	var d models.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Department{}, service.ErrNotFound
		}
		return models.Department{}, err
	}
	return d, nil
}

func (s *Store) CreateDepartment(ctx context.Context, d models.Department) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO departments (id, name, description) VALUES ($1, $2, $3)
	`, d.ID, d.Name, d.Description)
	return err
}

func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, department_id, is_active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Name, u.Email, u.Role, u.DepartmentID, u.IsActive, u.CreatedAt)
	return err
}

func (s *Store) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	query := `SELECT id, name, email, role, department_id, is_active, created_at FROM users`
	var args []any
	if role != "" {
		args = append(args, role)
		query += " WHERE role = $1"
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.DepartmentID, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GetDashboardStats(ctx context.Context) (models.DashboardStats, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Pending'),
			COUNT(*) FILTER (WHERE status = 'In Progress'),
			COUNT(*) FILTER (WHERE status = 'Resolved'),
			COUNT(*) FILTER (WHERE status = 'Escalated'),
			COALESCE(AVG(EXTRACT(EPOCH FROM updated_at - created_at)) FILTER (WHERE status = 'Resolved') / 3600, 0)
		FROM grievances
	`)
	var st models.DashboardStats
	if err := row.Scan(&st.TotalGrievances, &st.PendingCount, &st.InProgressCount, &st.ResolvedCount, &st.EscalatedCount, &st.AvgResolutionHours); err != nil {
		return models.DashboardStats{}, err
	}
	return st, nil
}
