package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Service adapts the employee tables to the onboarding directory contract
type Service struct {
	repo   Repository
	logger *zap.Logger
}

var _ onboarding.Directory = (*Service)(nil)

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetEmployeeProfile(ctx context.Context, employeeID uuid.UUID) (*onboarding.EmployeeProfile, error) {
	rec, err := s.repo.GetEmployee(ctx, employeeID)
	if err != nil || rec == nil {
		return nil, err
	}

	profile := &onboarding.EmployeeProfile{
		ID:             rec.ID,
		OrganizationID: rec.OrganizationID,
		FullName:       strings.TrimSpace(rec.FirstName + " " + rec.LastName),
		WorkEmail:      rec.WorkEmail.String,
		EmploymentType: strings.ToLower(rec.EmploymentType.String),
		DepartmentID:   rec.DepartmentID,
		PositionID:     rec.PositionID,
		ManagerID:      rec.ManagerID,
		CountryCode:    strings.ToUpper(rec.CountryCode.String),
	}
	return profile, nil
}

func (s *Service) SetOnboardingStatus(ctx context.Context, employeeID uuid.UUID, status string) error {
	rows, err := s.repo.UpdateOnboardingStatus(ctx, employeeID, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEmployeeNotFound
	}

	s.logger.Debug("Employee onboarding status updated",
		zap.String("employee_id", employeeID.String()),
		zap.String("status", status))
	return nil
}

func (s *Service) MarkOnboardingCompleted(ctx context.Context, employeeID uuid.UUID, completedAt time.Time, completedBy *uuid.UUID) error {
	rows, err := s.repo.MarkOnboardingCompleted(ctx, employeeID, onboarding.EmployeeOnboardingCompleted, completedAt, completedBy)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEmployeeNotFound
	}

	s.logger.Info("Employee onboarding completed",
		zap.String("employee_id", employeeID.String()),
		zap.Time("completed_at", completedAt))
	return nil
}
