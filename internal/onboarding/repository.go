package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository defines the persistence operations for onboarding
type Repository interface {
	// WithinTransaction runs fn against a repository bound to one transaction
	WithinTransaction(ctx context.Context, fn func(tx Repository) error) error

	// Templates
	CreateTemplate(ctx context.Context, tmpl *Template) error
	SaveTemplate(ctx context.Context, tmpl *Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	GetTemplateByCode(ctx context.Context, organizationID uuid.UUID, code string) (*Template, error)
	ListTemplates(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Template, error)

	// Progress
	CreateProgress(ctx context.Context, progress *Progress) error
	SaveProgress(ctx context.Context, progress *Progress) error
	GetProgress(ctx context.Context, id uuid.UUID) (*Progress, error)
	GetProgressForUpdate(ctx context.Context, id uuid.UUID) (*Progress, error)
	FindActiveProgress(ctx context.Context, employeeID uuid.UUID) (*Progress, error)
	GetLatestProgressForEmployee(ctx context.Context, employeeID uuid.UUID) (*Progress, error)
	ListProgress(ctx context.Context, organizationID uuid.UUID, status *OverallStatus) ([]Progress, error)
	ListActiveProgressIDs(ctx context.Context) ([]uuid.UUID, error)
	SetCompletionEffectsPending(ctx context.Context, id uuid.UUID, pending bool) error
}

// activeStatuses block a second onboarding for the same employee
var activeStatuses = []OverallStatus{OverallNotStarted, OverallInProgress, OverallOnHold}

// GormRepository implements Repository on PostgreSQL through gorm
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm-backed repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the onboarding tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Template{},
		&TemplateStep{},
		&ChecklistItem{},
		&Progress{},
		&StepStatus{},
	); err != nil {
		return fmt.Errorf("failed to migrate onboarding tables: %w", err)
	}

	// One running onboarding per employee across every process
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_onboarding_progress_one_active
		ON employee_onboarding_progress (employee_id)
		WHERE overall_status IN ('NOT_STARTED', 'IN_PROGRESS', 'ON_HOLD')`).Error; err != nil {
		return fmt.Errorf("failed to create active progress index: %w", err)
	}
	return nil
}

func (r *GormRepository) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

func (r *GormRepository) CreateTemplate(ctx context.Context, tmpl *Template) error {
	if err := r.db.WithContext(ctx).Create(tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return preconditionf(CodeDuplicateTemplateCode, "template code %q already exists", tmpl.TemplateCode)
		}
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// SaveTemplate upserts the template and its steps and replaces checklist items
func (r *GormRepository) SaveTemplate(ctx context.Context, tmpl *Template) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(tmpl).Error; err != nil {
			return fmt.Errorf("failed to save template: %w", err)
		}
		for i := range tmpl.Steps {
			step := &tmpl.Steps[i]
			if err := tx.Omit(clause.Associations).Save(step).Error; err != nil {
				return fmt.Errorf("failed to save step %s: %w", step.StepCode, err)
			}
			if err := tx.Where("step_id = ?", step.ID).Delete(&ChecklistItem{}).Error; err != nil {
				return fmt.Errorf("failed to clear checklist for step %s: %w", step.StepCode, err)
			}
			if len(step.ChecklistItems) > 0 {
				if err := tx.Create(&step.ChecklistItems).Error; err != nil {
					return fmt.Errorf("failed to save checklist for step %s: %w", step.StepCode, err)
				}
			}
		}
		return nil
	})
}

func (r *GormRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	var tmpl Template
	err := r.withSteps(ctx).First(&tmpl, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &tmpl, nil
}

func (r *GormRepository) GetTemplateByCode(ctx context.Context, organizationID uuid.UUID, code string) (*Template, error) {
	var tmpl Template
	err := r.withSteps(ctx).
		Where("organization_id = ? AND template_code = ?", organizationID, code).
		First(&tmpl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template by code: %w", err)
	}
	return &tmpl, nil
}

func (r *GormRepository) ListTemplates(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Template, error) {
	query := r.withSteps(ctx).Where("organization_id = ?", organizationID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var templates []Template
	if err := query.Order("created_at ASC, template_code ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *GormRepository) withSteps(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC, step_code ASC")
		}).
		Preload("Steps.ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		})
}

func (r *GormRepository) CreateProgress(ctx context.Context, progress *Progress) error {
	if err := r.db.WithContext(ctx).Omit("Template").Create(progress).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return preconditionf(CodeOnboardingAlreadyActive, "employee %s already has an active onboarding", progress.EmployeeID)
		}
		return fmt.Errorf("failed to create progress: %w", err)
	}
	return nil
}

// SaveProgress writes the progress row and every step status
func (r *GormRepository) SaveProgress(ctx context.Context, progress *Progress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(progress).Error; err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		for i := range progress.StepStatuses {
			if err := tx.Omit(clause.Associations).Save(&progress.StepStatuses[i]).Error; err != nil {
				return fmt.Errorf("failed to save step status: %w", err)
			}
		}
		return nil
	})
}

func (r *GormRepository) GetProgress(ctx context.Context, id uuid.UUID) (*Progress, error) {
	return r.getProgress(r.withStatuses(ctx), id)
}

// GetProgressForUpdate locks the progress row until the transaction ends
func (r *GormRepository) GetProgressForUpdate(ctx context.Context, id uuid.UUID) (*Progress, error) {
	return r.getProgress(r.withStatuses(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormRepository) getProgress(query *gorm.DB, id uuid.UUID) (*Progress, error) {
	var progress Progress
	err := query.First(&progress, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

func (r *GormRepository) FindActiveProgress(ctx context.Context, employeeID uuid.UUID) (*Progress, error) {
	var progress Progress
	err := r.withStatuses(ctx).
		Where("employee_id = ? AND overall_status IN ?", employeeID, activeStatuses).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active progress: %w", err)
	}
	return &progress, nil
}

func (r *GormRepository) GetLatestProgressForEmployee(ctx context.Context, employeeID uuid.UUID) (*Progress, error) {
	var progress Progress
	err := r.withStatuses(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee progress: %w", err)
	}
	return &progress, nil
}

// ListProgress returns progress rows without their step statuses
func (r *GormRepository) ListProgress(ctx context.Context, organizationID uuid.UUID, status *OverallStatus) ([]Progress, error) {
	query := r.db.WithContext(ctx).Where("organization_id = ?", organizationID)
	if status != nil {
		query = query.Where("overall_status = ?", *status)
	}

	var progress []Progress
	if err := query.Order("started_at DESC").Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return progress, nil
}

func (r *GormRepository) ListActiveProgressIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&Progress{}).
		Where("overall_status IN ?", activeStatuses).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active progress: %w", err)
	}
	return ids, nil
}

func (r *GormRepository) SetCompletionEffectsPending(ctx context.Context, id uuid.UUID, pending bool) error {
	err := r.db.WithContext(ctx).Model(&Progress{}).
		Where("id = ?", id).
		Update("completion_effects_pending", pending).Error
	if err != nil {
		return fmt.Errorf("failed to update completion effects flag: %w", err)
	}
	return nil
}

func (r *GormRepository) withStatuses(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("StepStatuses", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}
