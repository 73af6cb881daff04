package onboarding

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEngineeringOnboardingScenario(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	hire := h.employee()
	h.directory.On("MarkOnboardingCompleted", mock.Anything, hire.ID, mock.Anything, h.actor).Return(nil).Once()

	view := h.start(hire)
	assert.Equal(t, "ENG-ONBOARD", view.TemplateCode)
	assert.Equal(t, OverallNotStarted, view.OverallStatus)
	assert.Equal(t, StepPending, stepState(t, view, "PERSONAL"))
	assert.Equal(t, StepBlocked, stepState(t, view, "LAPTOP"))
	assert.Equal(t, StepPending, stepState(t, view, "SECURITY"))
	assert.Equal(t, StepPending, stepState(t, view, "TEAM"))
	h.directory.AssertCalled(t, "SetOnboardingStatus", mock.Anything, hire.ID, EmployeeOnboardingInProgress)

	_, err := h.act(view, "LAPTOP", "START")
	assert.ErrorIs(t, err, ErrStepBlocked)

	view, err = h.act(view, "PERSONAL", "COMPLETE")
	require.NoError(t, err)
	assert.Equal(t, OverallInProgress, view.OverallStatus)
	assert.Equal(t, 25, view.OverallPercentage)

	// completing the dependency does not cascade
	assert.Equal(t, StepBlocked, stepState(t, view, "LAPTOP"))
	_, err = h.act(view, "LAPTOP", "START")
	assert.ErrorIs(t, err, ErrStepBlocked)

	view, err = h.act(view, "LAPTOP", "UNBLOCK")
	require.NoError(t, err)
	assert.Equal(t, StepPending, stepState(t, view, "LAPTOP"))

	view, err = h.act(view, "LAPTOP", "START")
	require.NoError(t, err)
	assert.Equal(t, StepInProgress, stepState(t, view, "LAPTOP"))

	for _, code := range []string{"LAPTOP", "SECURITY"} {
		view, err = h.act(view, code, "COMPLETE")
		require.NoError(t, err)
	}
	assert.Equal(t, 75, view.OverallPercentage)

	view, err = h.act(view, "TEAM", "SKIP")
	require.NoError(t, err)
	assert.Equal(t, OverallCompleted, view.OverallStatus)
	assert.Equal(t, 100, view.OverallPercentage)
	assert.Equal(t, 3, view.CompletedSteps)
	assert.Equal(t, 1, view.SkippedSteps)
	assert.False(t, view.CompletionEffectsPending)
	require.NotNil(t, view.CompletedAt)

	stored := h.repo.stored(t, view.ID)
	assert.Equal(t, OverallCompleted, stored.OverallStatus)
	assert.False(t, stored.CompletionEffectsPending)
	h.directory.AssertNumberOfCalls(t, "MarkOnboardingCompleted", 1)
}

func TestCompletionFiresOnce(t *testing.T) {
	h := newHarness(t)
	req := engineeringRequest()
	req.Steps = req.Steps[2:3]
	h.template(req)
	hire := h.employee()
	h.directory.On("MarkOnboardingCompleted", mock.Anything, hire.ID, mock.Anything, mock.Anything).Return(nil)

	view := h.start(hire)
	view, err := h.act(view, "SECURITY", "COMPLETE")
	require.NoError(t, err)
	assert.Equal(t, OverallCompleted, view.OverallStatus)

	_, err = h.act(view, "SECURITY", "COMPLETE")
	assert.ErrorIs(t, err, ErrOnboardingNotActive)
	h.directory.AssertNumberOfCalls(t, "MarkOnboardingCompleted", 1)
}

func TestStartOnboardingTwice(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	hire := h.employee()

	h.start(hire)
	_, err := h.service.StartOnboarding(h.ctx, h.org, hire.ID, nil, h.actor)
	assert.ErrorIs(t, err, ErrOnboardingAlreadyActive)
	assert.Equal(t, 409, HTTPStatus(err))
}

func TestStartOnboardingTemplateResolution(t *testing.T) {
	h := newHarness(t)
	hire := h.employee()

	_, err := h.service.StartOnboarding(h.ctx, h.org, hire.ID, nil, h.actor)
	assert.ErrorIs(t, err, ErrNoTemplateFound)

	_, err = h.service.StartOnboarding(h.ctx, h.org, hire.ID, idPtr(uuid.New()), h.actor)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	other := newHarness(t)
	foreign := other.template(engineeringRequest())
	h.repo.templates[foreign.ID] = *cloneTemplate(*foreign)
	_, err = h.service.StartOnboarding(h.ctx, h.org, hire.ID, &foreign.ID, h.actor)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	stranger := uuid.New()
	h.directory.On("GetEmployeeProfile", mock.Anything, stranger).Return(nil, nil)
	_, err = h.service.StartOnboarding(h.ctx, h.org, stranger, nil, h.actor)
	assert.ErrorIs(t, err, ErrEmployeeNotFound)

	req := engineeringRequest()
	req.TemplateCode = "LEGACY"
	req.IsActive = boolPtr(false)
	legacy := h.template(req)
	view, err := h.service.StartOnboarding(h.ctx, h.org, hire.ID, &legacy.ID, h.actor)
	require.NoError(t, err)
	assert.Equal(t, "LEGACY", view.TemplateCode)
}

func TestStartDispatchesDocumentsOnStart(t *testing.T) {
	h := newHarness(t)
	req := engineeringRequest()
	req.DocumentDispatch = DispatchOnStart
	h.template(req)
	hire := h.employee()

	h.documents.On("SendOnboardingDocuments", mock.Anything, hire.ID, h.org, h.actor).
		Return(0, errors.New("signing service down")).Once()

	view, err := h.service.StartOnboarding(h.ctx, h.org, hire.ID, nil, h.actor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDocumentDispatchFailed)
	assert.Equal(t, 502, HTTPStatus(err))
	require.NotNil(t, view)
	assert.Equal(t, OverallNotStarted, h.repo.stored(t, view.ID).OverallStatus)
	h.documents.AssertExpectations(t)
}

func TestStepTransitionErrors(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	view := h.start(h.employee())

	_, err := h.act(view, "PERSONAL", "SKIP")
	assert.ErrorIs(t, err, ErrStepNotSkippable)
	assert.Equal(t, 422, HTTPStatus(err))

	_, err = h.act(view, "PERSONAL", "approve")
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = h.service.UpdateStepStatus(h.ctx, h.org, view.ID, uuid.New(), "COMPLETE", "", h.actor)
	assert.ErrorIs(t, err, ErrStepNotFound)

	_, err = h.service.UpdateStepStatus(h.ctx, h.org, uuid.New(), uuid.New(), "COMPLETE", "", h.actor)
	assert.ErrorIs(t, err, ErrProgressNotFound)

	_, err = h.service.UpdateStepStatus(h.ctx, uuid.New(), view.ID, stepID(t, view, "PERSONAL"), "COMPLETE", "", h.actor)
	assert.ErrorIs(t, err, ErrProgressNotFound)

	// failed actions leave the stored progress untouched
	stored := h.repo.stored(t, view.ID)
	assert.Equal(t, OverallNotStarted, stored.OverallStatus)
	assert.Equal(t, 0, stored.CompletedSteps)
}

func TestCompleteIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	view := h.start(h.employee())

	first, err := h.act(view, "PERSONAL", "COMPLETE")
	require.NoError(t, err)

	h.now = h.now.Add(3 * time.Hour)
	second, err := h.act(view, "PERSONAL", "COMPLETE")
	require.NoError(t, err)

	assert.Equal(t, first.Steps[0].CompletedAt, second.Steps[0].CompletedAt)
	assert.Equal(t, first.CompletedSteps, second.CompletedSteps)
}

func TestCompletionEffectFailureAndRetry(t *testing.T) {
	h := newHarness(t)
	req := engineeringRequest()
	req.Steps = req.Steps[2:3]
	req.DocumentDispatch = DispatchOnCompletion
	h.template(req)
	hire := h.employee()

	h.directory.On("MarkOnboardingCompleted", mock.Anything, hire.ID, mock.Anything, h.actor).
		Return(errors.New("directory unavailable")).Once()
	h.directory.On("MarkOnboardingCompleted", mock.Anything, hire.ID, mock.Anything, h.actor).Return(nil)
	h.documents.On("SendOnboardingDocuments", mock.Anything, hire.ID, h.org, h.actor).Return(2, nil).Once()

	view := h.start(hire)
	view, err := h.act(view, "SECURITY", "COMPLETE")
	assert.ErrorIs(t, err, ErrCompletionEffectFailed)
	require.NotNil(t, view)
	assert.Equal(t, OverallCompleted, view.OverallStatus)
	assert.True(t, view.CompletionEffectsPending)
	assert.True(t, h.repo.stored(t, view.ID).CompletionEffectsPending)
	h.documents.AssertNotCalled(t, "SendOnboardingDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	view, err = h.service.RetryCompletionEffects(h.ctx, h.org, view.ID, h.actor)
	require.NoError(t, err)
	assert.False(t, view.CompletionEffectsPending)
	assert.False(t, h.repo.stored(t, view.ID).CompletionEffectsPending)
	h.documents.AssertExpectations(t)

	// nothing left to retry
	_, err = h.service.RetryCompletionEffects(h.ctx, h.org, view.ID, h.actor)
	require.NoError(t, err)
	h.directory.AssertNumberOfCalls(t, "MarkOnboardingCompleted", 2)
}

func TestAdministrativeLifecycle(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	hire := h.employee()
	view := h.start(hire)

	held, err := h.service.Hold(h.ctx, h.org, view.ID, "visa pending")
	require.NoError(t, err)
	assert.Equal(t, OverallOnHold, held.OverallStatus)
	assert.Equal(t, "visa pending", held.HoldReason)

	_, err = h.act(view, "PERSONAL", "COMPLETE")
	assert.ErrorIs(t, err, ErrOnboardingNotActive)

	_, err = h.service.StartOnboarding(h.ctx, h.org, hire.ID, nil, h.actor)
	assert.ErrorIs(t, err, ErrOnboardingAlreadyActive)

	_, err = h.service.Hold(h.ctx, h.org, view.ID, "again")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := h.service.Resume(h.ctx, h.org, view.ID)
	require.NoError(t, err)
	assert.Equal(t, OverallInProgress, resumed.OverallStatus)
	assert.Empty(t, resumed.HoldReason)

	_, err = h.service.Resume(h.ctx, h.org, view.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	hr, buddy := uuid.New(), uuid.New()
	assigned, err := h.service.AssignParticipants(h.ctx, h.org, view.ID, &hr, &buddy)
	require.NoError(t, err)
	assert.Equal(t, hr, *assigned.HRAssigneeID)
	assert.Equal(t, buddy, *assigned.BuddyID)

	cancelled, err := h.service.Cancel(h.ctx, h.org, view.ID, "offer withdrawn")
	require.NoError(t, err)
	assert.Equal(t, OverallCancelled, cancelled.OverallStatus)
	h.directory.AssertCalled(t, "SetOnboardingStatus", mock.Anything, hire.ID, EmployeeOnboardingCancelled)

	_, err = h.service.Cancel(h.ctx, h.org, view.ID, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = h.service.AssignParticipants(h.ctx, h.org, view.ID, nil, nil)
	assert.ErrorIs(t, err, ErrOnboardingNotActive)

	// a cancelled onboarding no longer blocks a fresh start
	h.now = h.now.Add(time.Minute)
	again := h.start(hire)
	assert.NotEqual(t, view.ID, again.ID)

	latest, err := h.service.GetEmployeeProgress(h.ctx, h.org, hire.ID)
	require.NoError(t, err)
	assert.Equal(t, again.ID, latest.ID)
}

func TestSweepOverdue(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	view := h.start(h.employee())

	h.now = time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC)
	result, err := h.service.SweepOverdue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, &SweepResult{Scanned: 1, Updated: 1, NewlyOverdue: 1}, result)

	stored := h.repo.stored(t, view.ID)
	assert.Equal(t, 1, stored.OverdueSteps)
	assert.True(t, stored.StepStatuses[0].IsOverdue)

	last := h.notifier.Calls[len(h.notifier.Calls)-1]
	notices := last.Arguments.Get(1).([]StepNotice)
	require.Len(t, notices, 1)
	assert.Equal(t, "PERSONAL", notices[0].StepCode)
	assert.True(t, notices[0].IsOverdue)

	saves := h.repo.saves
	result, err = h.service.SweepOverdue(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, saves, h.repo.saves)

	// completing the overdue step clears the flag
	got, err := h.act(view, "PERSONAL", "COMPLETE")
	require.NoError(t, err)
	assert.Equal(t, 0, got.OverdueSteps)
}

func TestListOrganizationProgressDefaultsToActive(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	started := h.start(h.employee())
	notStarted := h.start(h.employee())
	held := h.start(h.employee())
	cancelled := h.start(h.employee())

	_, err := h.act(started, "PERSONAL", "COMPLETE")
	require.NoError(t, err)
	_, err = h.service.Hold(h.ctx, h.org, held.ID, "visa")
	require.NoError(t, err)
	_, err = h.service.Cancel(h.ctx, h.org, cancelled.ID, "withdrawn")
	require.NoError(t, err)

	rows, err := h.service.ListOrganizationProgress(h.ctx, h.org, nil)
	require.NoError(t, err)
	var ids []uuid.UUID
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{started.ID, notStarted.ID}, ids)

	onHold := OverallOnHold
	rows, err = h.service.ListOrganizationProgress(h.ctx, h.org, &onHold)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, held.ID, rows[0].ID)

	rows, err = h.service.ListOrganizationProgress(h.ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestGetProgressRefreshesOverdueLazily(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	view := h.start(h.employee())

	h.now = time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC)
	got, err := h.service.GetProgress(h.ctx, h.org, view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.OverdueSteps)
	assert.False(t, *got.IsOnTrack)
	assert.Equal(t, -3, *got.DaysRemaining)

	_, err = h.service.GetProgress(h.ctx, uuid.New(), view.ID)
	assert.ErrorIs(t, err, ErrProgressNotFound)
}

func TestTemplateAuthoring(t *testing.T) {
	h := newHarness(t)
	tmpl := h.template(engineeringRequest())

	_, err := h.service.CreateTemplate(h.ctx, h.org, h.actor, engineeringRequest())
	assert.ErrorIs(t, err, ErrDuplicateTemplateCode)

	bad := engineeringRequest()
	bad.TemplateCode = "LOOP"
	bad.Steps[0].DependsOnStepCode = "LAPTOP"
	_, err = h.service.CreateTemplate(h.ctx, h.org, h.actor, bad)
	assert.ErrorIs(t, err, ErrDependencyCycle)
	assert.Equal(t, 500, HTTPStatus(err))

	update := engineeringRequest()
	update.TemplateName = "Engineering onboarding v2"
	update.Steps = update.Steps[:3]
	updated, err := h.service.UpdateTemplate(h.ctx, h.org, tmpl.ID, h.actor, update)
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, updated.ID)
	assert.Len(t, updated.ActiveSteps(), 3)
	assert.Equal(t, tmpl.Steps[0].ID, updated.Steps[0].ID)

	_, err = h.service.GetTemplate(h.ctx, uuid.New(), tmpl.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	templates, err := h.service.ListTemplates(h.ctx, h.org)
	require.NoError(t, err)
	assert.Len(t, templates, 1)

	preview, err := h.service.PreviewTemplate(h.ctx, h.org, h.employee().ID)
	require.NoError(t, err)
	assert.Equal(t, "ENG-ONBOARD", preview.TemplateCode)
}

func TestRemovedStepKeepsRunningProgressValid(t *testing.T) {
	h := newHarness(t)
	tmpl := h.template(engineeringRequest())
	view := h.start(h.employee())

	update := engineeringRequest()
	update.Steps = update.Steps[:3]
	_, err := h.service.UpdateTemplate(h.ctx, h.org, tmpl.ID, h.actor, update)
	require.NoError(t, err)

	got, err := h.act(view, "TEAM", "SKIP")
	require.NoError(t, err)
	assert.Equal(t, 4, got.TotalSteps)
	assert.Equal(t, 1, got.SkippedSteps)
}

func TestDashboardStats(t *testing.T) {
	h := newHarness(t)
	req := engineeringRequest()
	req.Steps = req.Steps[2:4]
	h.template(req)
	h.directory.On("MarkOnboardingCompleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	first := h.start(h.employee())
	second := h.start(h.employee())

	_, err := h.act(first, "SECURITY", "COMPLETE")
	require.NoError(t, err)

	stats, err := h.service.DashboardStats(h.ctx, h.org)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveOnboarding)
	assert.Equal(t, 25, stats.AverageProgress)

	_, err = h.act(second, "SECURITY", "COMPLETE")
	require.NoError(t, err)
	_, err = h.act(second, "TEAM", "SKIP")
	require.NoError(t, err)

	stats, err = h.service.DashboardStats(h.ctx, h.org)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveOnboarding)
	assert.Equal(t, 50, stats.AverageProgress)
	assert.Equal(t, 1, stats.RecentCompletions)
}

func TestConcurrentTransitionsKeepCounters(t *testing.T) {
	h := newHarness(t)
	h.template(engineeringRequest())
	view := h.start(h.employee())

	var wg sync.WaitGroup
	for _, code := range []string{"PERSONAL", "SECURITY", "PERSONAL", "SECURITY"} {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			_, err := h.act(view, code, "COMPLETE")
			assert.NoError(t, err)
		}(code)
	}
	wg.Wait()

	stored := h.repo.stored(t, view.ID)
	assert.Equal(t, 2, stored.CompletedSteps)
	assert.Equal(t, 50, stored.OverallPercentage)
	assert.NoError(t, VerifyMetrics(&stored))
	assert.Zero(t, h.service.locks.size())
}
