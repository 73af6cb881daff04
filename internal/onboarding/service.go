package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding/dashboard"
)

// Service provides the onboarding workflow operations
type Service struct {
	repo      Repository
	directory Directory
	documents DocumentDispatcher
	notifier  Notifier
	stats     *dashboard.Aggregator
	locks     *keyedMutex
	now       func() time.Time
	logger    *zap.Logger
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDashboardConfig sets the dashboard cache TTL and recent-completion window
func WithDashboardConfig(config dashboard.AggregatorConfig) Option {
	return func(s *Service) {
		if s.stats != nil {
			s.stats.Close()
		}
		s.stats = dashboard.NewAggregator(snapshotSource{s.repo}, s.logger, config)
	}
}

// NewService creates a new onboarding service
func NewService(repo Repository, directory Directory, documents DocumentDispatcher, notifier Notifier, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		directory: directory,
		documents: documents,
		notifier:  notifier,
		locks:     newKeyedMutex(),
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.stats == nil {
		s.stats = dashboard.NewAggregator(snapshotSource{repo}, logger, dashboard.DefaultAggregatorConfig())
	}
	s.stats.SetClock(s.now)
	return s
}

// Close releases background resources
func (s *Service) Close() {
	s.stats.Close()
}

// =====================================================
// Template Authoring
// =====================================================

// CreateTemplate validates and stores a new template
func (s *Service) CreateTemplate(ctx context.Context, organizationID uuid.UUID, actor *uuid.UUID, req *TemplateRequest) (*Template, error) {
	if err := ValidateTemplateRequest(req); err != nil {
		return nil, s.logged(err, zap.String("template_code", req.TemplateCode))
	}

	existing, err := s.repo.GetTemplateByCode(ctx, organizationID, req.TemplateCode)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, preconditionf(CodeDuplicateTemplateCode, "template code %q already exists", req.TemplateCode)
	}

	tmpl := buildTemplate(organizationID, req, nil, actor, s.now())
	if err := s.repo.CreateTemplate(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding template created",
		zap.String("template_id", tmpl.ID.String()),
		zap.String("template_code", tmpl.TemplateCode),
		zap.String("organization_id", organizationID.String()),
		zap.Int("steps", len(tmpl.Steps)))

	return tmpl, nil
}

// UpdateTemplate replaces a template's definition, keeping step ids stable by code
func (s *Service) UpdateTemplate(ctx context.Context, organizationID, id uuid.UUID, actor *uuid.UUID, req *TemplateRequest) (*Template, error) {
	if err := ValidateTemplateRequest(req); err != nil {
		return nil, s.logged(err, zap.String("template_id", id.String()))
	}

	existing, err := s.GetTemplate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if req.TemplateCode != existing.TemplateCode {
		clash, err := s.repo.GetTemplateByCode(ctx, organizationID, req.TemplateCode)
		if err != nil {
			return nil, err
		}
		if clash != nil {
			return nil, preconditionf(CodeDuplicateTemplateCode, "template code %q already exists", req.TemplateCode)
		}
	}

	tmpl := buildTemplate(organizationID, req, existing, actor, s.now())
	if err := ValidateStepGraph(tmpl.Steps); err != nil {
		return nil, s.logged(err, zap.String("template_id", id.String()))
	}
	if err := s.repo.SaveTemplate(ctx, tmpl); err != nil {
		return nil, err
	}

	s.logger.Info("Onboarding template updated",
		zap.String("template_id", tmpl.ID.String()),
		zap.String("template_code", tmpl.TemplateCode))

	return tmpl, nil
}

// GetTemplate returns an organization's template
func (s *Service) GetTemplate(ctx context.Context, organizationID, id uuid.UUID) (*Template, error) {
	tmpl, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil || !sameTenant(organizationID, tmpl.OrganizationID) {
		return nil, preconditionf(CodeTemplateNotFound, "template %s not found", id)
	}
	return tmpl, nil
}

// ListTemplates returns every template of an organization
func (s *Service) ListTemplates(ctx context.Context, organizationID uuid.UUID) ([]Template, error) {
	return s.repo.ListTemplates(ctx, organizationID, false)
}

// PreviewTemplate reports which template an employee would start with
func (s *Service) PreviewTemplate(ctx context.Context, organizationID, employeeID uuid.UUID) (*Template, error) {
	profile, err := s.loadProfile(ctx, organizationID, employeeID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.ListTemplates(ctx, profile.OrganizationID, true)
	if err != nil {
		return nil, err
	}
	return SelectTemplate(candidates, profile)
}

// =====================================================
// Progress Tracking
// =====================================================

// StartOnboarding creates a progress for an employee from an explicit or matched template
func (s *Service) StartOnboarding(ctx context.Context, organizationID, employeeID uuid.UUID, templateID *uuid.UUID, actor *uuid.UUID) (*ProgressView, error) {
	unlock := s.locks.Lock("employee:" + employeeID.String())
	defer unlock()

	profile, err := s.loadProfile(ctx, organizationID, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var progress *Progress
	var tmpl *Template
	err = s.repo.WithinTransaction(ctx, func(tx Repository) error {
		active, err := tx.FindActiveProgress(ctx, employeeID)
		if err != nil {
			return err
		}
		if active != nil {
			return preconditionf(CodeOnboardingAlreadyActive,
				"employee %s already has onboarding %s in status %s", employeeID, active.ID, active.OverallStatus)
		}

		if templateID != nil {
			tmpl, err = tx.GetTemplate(ctx, *templateID)
			if err != nil {
				return err
			}
			if tmpl == nil || tmpl.OrganizationID != profile.OrganizationID {
				return preconditionf(CodeTemplateNotFound, "template %s not found", *templateID)
			}
		} else {
			candidates, err := tx.ListTemplates(ctx, profile.OrganizationID, true)
			if err != nil {
				return err
			}
			if tmpl, err = SelectTemplate(candidates, profile); err != nil {
				return err
			}
		}

		progress = newProgress(tmpl, profile, now)
		RecomputeMetrics(progress)
		return tx.CreateProgress(ctx, progress)
	})
	if err != nil {
		return nil, err
	}

	s.stats.Invalidate(progress.OrganizationID)
	s.logger.Info("Onboarding started",
		zap.String("progress_id", progress.ID.String()),
		zap.String("employee_id", employeeID.String()),
		zap.String("template_code", tmpl.TemplateCode),
		zap.Int("steps", progress.TotalSteps))

	if err := s.directory.SetOnboardingStatus(ctx, employeeID, EmployeeOnboardingInProgress); err != nil {
		s.logger.Warn("Failed to set employee onboarding status",
			zap.String("employee_id", employeeID.String()),
			zap.Error(err))
	}
	all := make([]*StepStatus, len(progress.StepStatuses))
	for i := range progress.StepStatuses {
		all[i] = &progress.StepStatuses[i]
	}
	s.publish(ctx, tmpl, progress, all)

	view := BuildView(progress, tmpl, now)
	if tmpl.DocumentDispatch == DispatchOnStart {
		if err := s.dispatchDocuments(ctx, progress, actor); err != nil {
			return view, err
		}
	}
	return view, nil
}

// UpdateStepStatus applies an action to one step and recomputes the progress
func (s *Service) UpdateStepStatus(ctx context.Context, organizationID, progressID, stepID uuid.UUID, rawAction, notes string, actor *uuid.UUID) (*ProgressView, error) {
	action, err := ParseAction(rawAction)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(progressID.String())
	defer unlock()

	now := s.now()
	var progress *Progress
	var tmpl *Template
	var touched []*StepStatus
	completedNow := false

	err = s.repo.WithinTransaction(ctx, func(tx Repository) error {
		var err error
		if progress, tmpl, err = s.loadForUpdate(ctx, tx, organizationID, progressID); err != nil {
			return err
		}
		if err := ensureActive(progress); err != nil {
			return err
		}

		st, step, err := resolveStep(progress, tmpl, stepID)
		if err != nil {
			return err
		}
		changed, err := applyAction(progress, st, step, action, notes, actor, now)
		if err != nil {
			return err
		}
		if changed {
			touched = append(touched, st)
		}

		for _, overdue := range refreshOverdue(progress, now) {
			if overdue != st {
				touched = append(touched, overdue)
			}
		}
		RecomputeMetrics(progress)

		if isFinished(progress) && progress.OverallStatus != OverallCompleted {
			if err := markCompleted(progress, actor, now); err != nil {
				return err
			}
			completedNow = true
		} else {
			promote(progress, now)
		}

		if err := VerifyMetrics(progress); err != nil {
			return err
		}
		return tx.SaveProgress(ctx, progress)
	})
	if err != nil {
		return nil, s.logged(err,
			zap.String("progress_id", progressID.String()),
			zap.String("step_id", stepID.String()),
			zap.String("action", string(action)))
	}

	s.stats.Invalidate(progress.OrganizationID)
	s.logger.Info("Onboarding step updated",
		zap.String("progress_id", progressID.String()),
		zap.String("step_id", stepID.String()),
		zap.String("action", string(action)),
		zap.Int("percentage", progress.OverallPercentage))

	s.publish(ctx, tmpl, progress, touched)

	view := BuildView(progress, tmpl, now)
	if completedNow {
		s.logger.Info("Onboarding completed",
			zap.String("progress_id", progressID.String()),
			zap.String("employee_id", progress.EmployeeID.String()))
		if err := s.runCompletionEffects(ctx, progress, tmpl, actor); err != nil {
			view.CompletionEffectsPending = true
			return view, err
		}
		view.CompletionEffectsPending = false
	}
	return view, nil
}

// GetProgress returns a progress view, refreshing overdue flags for display
func (s *Service) GetProgress(ctx context.Context, organizationID, progressID uuid.UUID) (*ProgressView, error) {
	progress, err := s.repo.GetProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}
	if progress == nil || !sameTenant(organizationID, progress.OrganizationID) {
		return nil, preconditionf(CodeProgressNotFound, "onboarding %s not found", progressID)
	}
	return s.view(ctx, progress)
}

// GetEmployeeProgress returns the employee's most recent progress
func (s *Service) GetEmployeeProgress(ctx context.Context, organizationID, employeeID uuid.UUID) (*ProgressView, error) {
	progress, err := s.repo.GetLatestProgressForEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if progress == nil || !sameTenant(organizationID, progress.OrganizationID) {
		return nil, preconditionf(CodeProgressNotFound, "no onboarding found for employee %s", employeeID)
	}
	return s.view(ctx, progress)
}

// ListOrganizationProgress lists an organization's progress rows with the given
// status. Without a status it lists the active ones, not started or in progress.
func (s *Service) ListOrganizationProgress(ctx context.Context, organizationID uuid.UUID, status *OverallStatus) ([]Progress, error) {
	if status != nil {
		return s.repo.ListProgress(ctx, organizationID, status)
	}

	rows, err := s.repo.ListProgress(ctx, organizationID, nil)
	if err != nil {
		return nil, err
	}
	active := make([]Progress, 0, len(rows))
	for _, p := range rows {
		if p.OverallStatus == OverallNotStarted || p.OverallStatus == OverallInProgress {
			active = append(active, p)
		}
	}
	return active, nil
}

// DashboardStats returns cached per-organization stats
func (s *Service) DashboardStats(ctx context.Context, organizationID uuid.UUID) (*dashboard.Stats, error) {
	return s.stats.Stats(ctx, organizationID)
}

func (s *Service) view(ctx context.Context, progress *Progress) (*ProgressView, error) {
	tmpl, err := s.repo.GetTemplate(ctx, progress.TemplateID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	refreshOverdue(progress, now)
	RecomputeMetrics(progress)
	return BuildView(progress, tmpl, now), nil
}

// =====================================================
// Completion
// =====================================================

func markCompleted(p *Progress, actor *uuid.UUID, now time.Time) error {
	if err := setOverallStatus(p, OverallCompleted, now); err != nil {
		return err
	}
	completed := now
	p.CompletedAt = &completed
	p.CompletedBy = actor
	p.OverallPercentage = 100
	p.CompletionEffectsPending = true
	return nil
}

// runCompletionEffects notifies the directory and dispatches documents, then
// clears the pending flag. The progress is already committed as COMPLETED.
func (s *Service) runCompletionEffects(ctx context.Context, progress *Progress, tmpl *Template, actor *uuid.UUID) error {
	completedAt := s.now()
	if progress.CompletedAt != nil {
		completedAt = *progress.CompletedAt
	}

	if err := s.directory.MarkOnboardingCompleted(ctx, progress.EmployeeID, completedAt, actor); err != nil {
		return s.logged(collaborator(CodeCompletionEffectFailed, "failed to mark employee onboarding completed", err),
			zap.String("progress_id", progress.ID.String()))
	}
	if tmpl != nil && tmpl.DocumentDispatch == DispatchOnCompletion {
		if err := s.dispatchDocuments(ctx, progress, actor); err != nil {
			return err
		}
	}

	if err := s.repo.SetCompletionEffectsPending(ctx, progress.ID, false); err != nil {
		return err
	}
	progress.CompletionEffectsPending = false
	return nil
}

// RetryCompletionEffects re-runs completion side effects that failed earlier
func (s *Service) RetryCompletionEffects(ctx context.Context, organizationID, progressID uuid.UUID, actor *uuid.UUID) (*ProgressView, error) {
	unlock := s.locks.Lock(progressID.String())
	defer unlock()

	progress, err := s.repo.GetProgress(ctx, progressID)
	if err != nil {
		return nil, err
	}
	if progress == nil || !sameTenant(organizationID, progress.OrganizationID) {
		return nil, preconditionf(CodeProgressNotFound, "onboarding %s not found", progressID)
	}
	tmpl, err := s.repo.GetTemplate(ctx, progress.TemplateID)
	if err != nil {
		return nil, err
	}

	if progress.OverallStatus == OverallCompleted && progress.CompletionEffectsPending {
		by := progress.CompletedBy
		if by == nil {
			by = actor
		}
		if err := s.runCompletionEffects(ctx, progress, tmpl, by); err != nil {
			return BuildView(progress, tmpl, s.now()), err
		}
		s.logger.Info("Completion effects retried",
			zap.String("progress_id", progressID.String()))
	}
	return BuildView(progress, tmpl, s.now()), nil
}

func (s *Service) dispatchDocuments(ctx context.Context, progress *Progress, actor *uuid.UUID) error {
	sent, err := s.documents.SendOnboardingDocuments(ctx, progress.EmployeeID, progress.OrganizationID, actor)
	if err != nil {
		return s.logged(collaborator(CodeDocumentDispatchFailed, "failed to dispatch onboarding documents", err),
			zap.String("progress_id", progress.ID.String()))
	}
	s.logger.Info("Onboarding documents dispatched",
		zap.String("progress_id", progress.ID.String()),
		zap.Int("documents", sent))
	return nil
}

// =====================================================
// Administrative Lifecycle
// =====================================================

// Hold pauses a running onboarding
func (s *Service) Hold(ctx context.Context, organizationID, progressID uuid.UUID, reason string) (*ProgressView, error) {
	return s.changeOverall(ctx, organizationID, progressID, func(p *Progress, now time.Time) error {
		if p.OverallStatus != OverallNotStarted && p.OverallStatus != OverallInProgress {
			return preconditionf(CodeInvalidTransition, "cannot hold onboarding in status %s", p.OverallStatus)
		}
		if err := setOverallStatus(p, OverallOnHold, now); err != nil {
			return err
		}
		p.HoldReason = reason
		return nil
	})
}

// Resume restarts a held onboarding
func (s *Service) Resume(ctx context.Context, organizationID, progressID uuid.UUID) (*ProgressView, error) {
	return s.changeOverall(ctx, organizationID, progressID, func(p *Progress, now time.Time) error {
		if p.OverallStatus != OverallOnHold {
			return preconditionf(CodeInvalidTransition, "cannot resume onboarding in status %s", p.OverallStatus)
		}
		if err := setOverallStatus(p, OverallInProgress, now); err != nil {
			return err
		}
		p.HoldReason = ""
		return nil
	})
}

// Cancel terminates an onboarding that has not completed
func (s *Service) Cancel(ctx context.Context, organizationID, progressID uuid.UUID, reason string) (*ProgressView, error) {
	view, err := s.changeOverall(ctx, organizationID, progressID, func(p *Progress, now time.Time) error {
		if err := setOverallStatus(p, OverallCancelled, now); err != nil {
			return err
		}
		p.CancelReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.directory.SetOnboardingStatus(ctx, view.EmployeeID, EmployeeOnboardingCancelled); err != nil {
		s.logger.Warn("Failed to set employee onboarding status",
			zap.String("employee_id", view.EmployeeID.String()),
			zap.Error(err))
	}
	return view, nil
}

// AssignParticipants sets the HR assignee and buddy of an onboarding
func (s *Service) AssignParticipants(ctx context.Context, organizationID, progressID uuid.UUID, hrAssigneeID, buddyID *uuid.UUID) (*ProgressView, error) {
	return s.changeOverall(ctx, organizationID, progressID, func(p *Progress, now time.Time) error {
		if p.OverallStatus == OverallCancelled {
			return preconditionf(CodeOnboardingNotActive, "onboarding %s is cancelled", p.ID)
		}
		p.HRAssigneeID = hrAssigneeID
		p.BuddyID = buddyID
		p.UpdatedAt = now
		return nil
	})
}

func (s *Service) changeOverall(ctx context.Context, organizationID, progressID uuid.UUID, change func(*Progress, time.Time) error) (*ProgressView, error) {
	unlock := s.locks.Lock(progressID.String())
	defer unlock()

	now := s.now()
	var progress *Progress
	var tmpl *Template
	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		var err error
		if progress, tmpl, err = s.loadForUpdate(ctx, tx, organizationID, progressID); err != nil {
			return err
		}
		if err := change(progress, now); err != nil {
			return err
		}
		refreshOverdue(progress, now)
		RecomputeMetrics(progress)
		return tx.SaveProgress(ctx, progress)
	})
	if err != nil {
		return nil, s.logged(err, zap.String("progress_id", progressID.String()))
	}

	s.stats.Invalidate(progress.OrganizationID)
	s.logger.Info("Onboarding updated",
		zap.String("progress_id", progressID.String()),
		zap.String("status", string(progress.OverallStatus)))

	return BuildView(progress, tmpl, now), nil
}

// =====================================================
// Overdue Sweep
// =====================================================

// SweepResult summarizes one overdue sweep
type SweepResult struct {
	Scanned      int `json:"scanned"`
	Updated      int `json:"updated"`
	NewlyOverdue int `json:"newly_overdue"`
	Failed       int `json:"failed"`
}

// SweepOverdue refreshes overdue flags on every running progress
func (s *Service) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	ids, err := s.repo.ListActiveProgressIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Scanned++
		updated, newly, err := s.sweepOne(ctx, id)
		if err != nil {
			result.Failed++
			s.logger.Error("Overdue sweep failed for progress",
				zap.String("progress_id", id.String()),
				zap.Error(err))
			continue
		}
		if updated {
			result.Updated++
		}
		result.NewlyOverdue += newly
	}
	return result, nil
}

func (s *Service) sweepOne(ctx context.Context, id uuid.UUID) (bool, int, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	now := s.now()
	var progress *Progress
	var tmpl *Template
	var newly []*StepStatus
	updated := false

	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		var err error
		if progress, tmpl, err = s.loadForUpdate(ctx, tx, uuid.Nil, id); err != nil {
			return err
		}
		if !progress.IsActive() {
			return nil
		}
		before := progress.OverdueSteps
		flagsBefore := overdueFlags(progress)
		newly = refreshOverdue(progress, now)
		RecomputeMetrics(progress)
		if before == progress.OverdueSteps && flagsBefore == overdueFlags(progress) {
			return nil
		}
		updated = true
		return tx.SaveProgress(ctx, progress)
	})
	if err != nil {
		return false, 0, err
	}
	if updated {
		s.stats.Invalidate(progress.OrganizationID)
		s.publish(ctx, tmpl, progress, newly)
	}
	return updated, len(newly), nil
}

func overdueFlags(p *Progress) string {
	b := make([]byte, len(p.StepStatuses))
	for i, st := range p.StepStatuses {
		b[i] = '0'
		if st.IsOverdue {
			b[i] = '1'
		}
	}
	return string(b)
}

// =====================================================
// Helpers
// =====================================================

func (s *Service) loadProfile(ctx context.Context, organizationID, employeeID uuid.UUID) (*EmployeeProfile, error) {
	profile, err := s.directory.GetEmployeeProfile(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load employee profile: %w", err)
	}
	if profile == nil || !sameTenant(organizationID, profile.OrganizationID) {
		return nil, preconditionf(CodeEmployeeNotFound, "employee %s not found", employeeID)
	}
	return profile, nil
}

func (s *Service) loadForUpdate(ctx context.Context, tx Repository, organizationID, progressID uuid.UUID) (*Progress, *Template, error) {
	progress, err := tx.GetProgressForUpdate(ctx, progressID)
	if err != nil {
		return nil, nil, err
	}
	if progress == nil || !sameTenant(organizationID, progress.OrganizationID) {
		return nil, nil, preconditionf(CodeProgressNotFound, "onboarding %s not found", progressID)
	}
	tmpl, err := tx.GetTemplate(ctx, progress.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if tmpl == nil {
		return nil, nil, invariantf(CodeMissingStepDefinition,
			"onboarding %s references missing template %s", progressID, progress.TemplateID)
	}
	return progress, tmpl, nil
}

// publish sends schedule notices; delivery failures never fail the operation
func (s *Service) publish(ctx context.Context, tmpl *Template, progress *Progress, statuses []*StepStatus) {
	var notices []StepNotice
	for _, st := range statuses {
		notice := StepNotice{
			ProgressID:     progress.ID,
			EmployeeID:     progress.EmployeeID,
			OrganizationID: progress.OrganizationID,
			StepID:         st.StepID,
			Status:         st.Status,
			DueDate:        st.DueDate,
			IsOverdue:      st.IsOverdue,
		}
		if step := tmpl.StepByID(st.StepID); step != nil {
			notice.StepCode = step.StepCode
			notice.StepName = step.StepName
			notice.AssignedTo = step.AssignedTo
			notice.ReminderBeforeDays = step.ReminderBeforeDays
			notice.EscalationAfterDays = step.EscalationAfterDays
		}
		notices = append(notices, notice)
	}
	if len(notices) == 0 {
		return
	}
	if err := s.notifier.PublishStepSchedule(ctx, notices); err != nil {
		s.logger.Warn("Failed to publish step schedule",
			zap.String("progress_id", progress.ID.String()),
			zap.Int("notices", len(notices)),
			zap.Error(err))
	}
}

// logged records invariant and collaborator failures with context
func (s *Service) logged(err error, fields ...zap.Field) error {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindInvariant:
			s.logger.Error("Onboarding invariant violated", append(fields, zap.String("code", string(e.Code)), zap.Error(err))...)
		case KindCollaborator:
			s.logger.Error("Onboarding collaborator failed", append(fields, zap.String("code", string(e.Code)), zap.Error(err))...)
		}
	}
	return err
}

// sameTenant treats uuid.Nil as an unscoped caller such as the CLI
func sameTenant(caller, owner uuid.UUID) bool {
	return caller == uuid.Nil || caller == owner
}

// snapshotSource feeds the dashboard from the repository
type snapshotSource struct {
	repo Repository
}

func (s snapshotSource) Snapshots(ctx context.Context, organizationID uuid.UUID) ([]dashboard.Snapshot, error) {
	rows, err := s.repo.ListProgress(ctx, organizationID, nil)
	if err != nil {
		return nil, err
	}
	out := make([]dashboard.Snapshot, len(rows))
	for i, p := range rows {
		out[i] = dashboard.Snapshot{
			Status:       string(p.OverallStatus),
			Percentage:   p.OverallPercentage,
			OverdueSteps: p.OverdueSteps,
			CompletedAt:  p.CompletedAt,
		}
	}
	return out, nil
}
