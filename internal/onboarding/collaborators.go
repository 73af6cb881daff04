package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Directory is the employee master-data collaborator
type Directory interface {
	// GetEmployeeProfile returns nil, nil when the employee does not exist
	GetEmployeeProfile(ctx context.Context, employeeID uuid.UUID) (*EmployeeProfile, error)
	SetOnboardingStatus(ctx context.Context, employeeID uuid.UUID, status string) error
	MarkOnboardingCompleted(ctx context.Context, employeeID uuid.UUID, completedAt time.Time, completedBy *uuid.UUID) error
}

// DocumentDispatcher sends an employee's auto-send onboarding documents for signing
type DocumentDispatcher interface {
	SendOnboardingDocuments(ctx context.Context, employeeID, organizationID uuid.UUID, actor *uuid.UUID) (int, error)
}

// Notifier publishes step scheduling facts for reminder and escalation delivery
type Notifier interface {
	PublishStepSchedule(ctx context.Context, notices []StepNotice) error
}
