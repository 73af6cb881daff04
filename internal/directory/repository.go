package directory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// EmployeeRecord is the joined employee and organization record
type EmployeeRecord struct {
	ID             uuid.UUID      `db:"id"`
	OrganizationID uuid.UUID      `db:"organization_id"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	WorkEmail      sql.NullString `db:"work_email"`
	EmploymentType sql.NullString `db:"employment_type"`
	DepartmentID   *uuid.UUID     `db:"department_id"`
	PositionID     *uuid.UUID     `db:"position_id"`
	ManagerID      *uuid.UUID     `db:"manager_id"`
	CountryCode    sql.NullString `db:"country_code"`
}

type Repository interface {
	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*EmployeeRecord, error)
	UpdateOnboardingStatus(ctx context.Context, employeeID uuid.UUID, status string) (int64, error)
	MarkOnboardingCompleted(ctx context.Context, employeeID uuid.UUID, status string, completedAt time.Time, completedBy *uuid.UUID) (int64, error)
}

// organizations.country holds the display name; templates match on the ISO code
const getEmployeeQuery = `
	SELECT e.id, e.organization_id, e.first_name, e.last_name, e.work_email,
		e.employment_type, e.department_id, e.position_id, e.manager_id,
		o.country_code
	FROM employees e
	JOIN organizations o ON o.id = e.organization_id
	WHERE e.id = $1 AND e.deleted_at IS NULL`

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetEmployee(ctx context.Context, employeeID uuid.UUID) (*EmployeeRecord, error) {
	var row EmployeeRecord
	err := r.db.GetContext(ctx, &row, getEmployeeQuery, employeeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &row, nil
}

func (r *postgresRepository) UpdateOnboardingStatus(ctx context.Context, employeeID uuid.UUID, status string) (int64, error) {
	query := `UPDATE employees SET onboarding_status = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, employeeID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to update onboarding status: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresRepository) MarkOnboardingCompleted(ctx context.Context, employeeID uuid.UUID, status string, completedAt time.Time, completedBy *uuid.UUID) (int64, error) {
	query := `
		UPDATE employees
		SET onboarding_status = $2,
			onboarding_completed_at = $3,
			onboarding_completed_by = $4,
			updated_at = NOW()
		WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, employeeID, status, completedAt, completedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to mark onboarding completed: %w", err)
	}
	return result.RowsAffected()
}
