package onboarding

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"peoplehub/hr-portal/hr-portal-backend/pkg/workflows"
)

var stepMachine = workflows.NewStateMachine(map[string][]string{
	string(StepPending):       {string(StepInProgress), string(StepCompleted), string(StepSkipped), string(StepBlocked)},
	string(StepInProgress):    {string(StepCompleted), string(StepSkipped), string(StepBlocked)},
	string(StepBlocked):       {string(StepPending), string(StepSkipped), string(StepBlocked)},
	string(StepCompleted):     {},
	string(StepSkipped):       {},
	string(StepNotApplicable): {},
})

var progressMachine = workflows.NewStateMachine(map[string][]string{
	string(OverallNotStarted): {string(OverallInProgress), string(OverallCompleted), string(OverallOnHold), string(OverallCancelled)},
	string(OverallInProgress): {string(OverallCompleted), string(OverallOnHold), string(OverallCancelled)},
	string(OverallOnHold):     {string(OverallInProgress), string(OverallCancelled)},
	string(OverallCompleted):  {},
	string(OverallCancelled):  {},
})

// ParseAction normalizes a caller-supplied action name
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	switch a {
	case ActionComplete, ActionStart, ActionSkip, ActionBlock, ActionUnblock:
		return a, nil
	}
	return "", preconditionf(CodeUnknownAction, "unknown action: %s", raw)
}

// dateOf truncates t to its UTC calendar date
func dateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func addDays(t time.Time, days int) time.Time {
	return dateOf(t).AddDate(0, 0, days)
}

// newProgress instantiates a progress and one step status per active template step
func newProgress(tmpl *Template, profile *EmployeeProfile, now time.Time) *Progress {
	target := addDays(now, tmpl.TargetCompletionDays)
	started := now
	p := &Progress{
		ID:                   uuid.New(),
		EmployeeID:           profile.ID,
		OrganizationID:       profile.OrganizationID,
		TemplateID:           tmpl.ID,
		OverallStatus:        OverallNotStarted,
		StartedAt:            &started,
		TargetCompletionDate: &target,
		ManagerID:            profile.ManagerID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	steps := tmpl.ActiveSteps()
	active := make(map[uuid.UUID]*TemplateStep, len(steps))
	for i := range steps {
		active[steps[i].ID] = &steps[i]
	}

	for i, step := range steps {
		st := StepStatus{
			ID:         uuid.New(),
			ProgressID: p.ID,
			StepID:     step.ID,
			Position:   i,
			Status:     StepPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if step.DueByDays != nil {
			due := addDays(now, *step.DueByDays)
			st.DueDate = &due
		}
		if step.DependsOnStepID != nil {
			if dep, ok := active[*step.DependsOnStepID]; ok {
				depID := dep.ID
				st.Status = StepBlocked
				st.BlockedByStepID = &depID
				st.BlockedReason = "Waiting for: " + dep.StepName
			}
		}
		p.StepStatuses = append(p.StepStatuses, st)
	}
	return p
}

// ensureActive rejects step changes on a progress that is no longer running
func ensureActive(p *Progress) error {
	switch p.OverallStatus {
	case OverallNotStarted, OverallInProgress:
		return nil
	}
	return preconditionf(CodeOnboardingNotActive, "onboarding %s is %s", p.ID, p.OverallStatus)
}

// applyAction mutates one step status. It reports whether anything changed.
func applyAction(p *Progress, st *StepStatus, step *TemplateStep, action Action, notes string, actor *uuid.UUID, now time.Time) (bool, error) {
	switch action {
	case ActionComplete:
		switch st.Status {
		case StepCompleted:
			return false, nil
		case StepBlocked:
			return false, preconditionf(CodeStepBlocked, "step %q is blocked: %s", step.StepName, st.BlockedReason)
		}
		if err := checkStepTransition(st, StepCompleted); err != nil {
			return false, err
		}
		completed := now
		st.Status = StepCompleted
		st.Percentage = 100
		st.CompletedAt = &completed
		st.CompletedBy = actor
		st.IsOverdue = false
		if notes != "" {
			st.CompletionNotes = notes
		}

	case ActionStart:
		switch st.Status {
		case StepBlocked:
			return false, preconditionf(CodeStepBlocked, "step %q is blocked: %s", step.StepName, st.BlockedReason)
		case StepPending:
		default:
			return false, nil
		}
		st.Status = StepInProgress
		if st.StartedAt == nil {
			started := now
			st.StartedAt = &started
		}

	case ActionSkip:
		if !step.CanBeSkipped {
			return false, preconditionf(CodeStepNotSkippable, "step %q cannot be skipped", step.StepName)
		}
		if st.Status == StepSkipped {
			return false, nil
		}
		if err := checkStepTransition(st, StepSkipped); err != nil {
			return false, err
		}
		st.Status = StepSkipped
		st.CompletionNotes = notes
		st.BlockedReason = ""
		st.BlockedByStepID = nil

	case ActionBlock:
		if err := checkStepTransition(st, StepBlocked); err != nil {
			return false, err
		}
		st.Status = StepBlocked
		st.BlockedReason = notes

	case ActionUnblock:
		if st.Status != StepBlocked {
			return false, nil
		}
		if st.BlockedByStepID != nil {
			if dep := p.StatusFor(*st.BlockedByStepID); dep != nil &&
				dep.Status != StepCompleted && dep.Status != StepSkipped {
				return false, preconditionf(CodeDependencyNotMet,
					"step %q is still waiting on its dependency", step.StepName)
			}
		}
		st.Status = StepPending
		st.BlockedReason = ""
		st.BlockedByStepID = nil

	default:
		return false, preconditionf(CodeUnknownAction, "unknown action: %s", action)
	}

	st.UpdatedAt = now
	return true, nil
}

func checkStepTransition(st *StepStatus, to StepState) error {
	if !stepMachine.CanTransition(string(st.Status), string(to)) {
		return preconditionf(CodeInvalidTransition, "cannot move step from %s to %s", st.Status, to)
	}
	return nil
}

// checkOverdue reports whether a step is past its due date on the given day
func checkOverdue(st *StepStatus, today time.Time) bool {
	if st.DueDate == nil {
		return false
	}
	if st.Status == StepCompleted || st.Status == StepSkipped {
		return false
	}
	return dateOf(today).After(dateOf(*st.DueDate))
}

// refreshOverdue recomputes every step's overdue flag and returns the steps
// that became overdue
func refreshOverdue(p *Progress, now time.Time) []*StepStatus {
	var newlyOverdue []*StepStatus
	for i := range p.StepStatuses {
		st := &p.StepStatuses[i]
		overdue := checkOverdue(st, now)
		if overdue && !st.IsOverdue {
			newlyOverdue = append(newlyOverdue, st)
		}
		if overdue != st.IsOverdue {
			st.IsOverdue = overdue
			st.UpdatedAt = now
		}
	}
	return newlyOverdue
}

// setOverallStatus moves the progress through its lifecycle table
func setOverallStatus(p *Progress, to OverallStatus, now time.Time) error {
	if !progressMachine.CanTransition(string(p.OverallStatus), string(to)) {
		return preconditionf(CodeInvalidTransition, "cannot move onboarding from %s to %s", p.OverallStatus, to)
	}
	p.OverallStatus = to
	p.UpdatedAt = now
	return nil
}

// promote moves a freshly touched progress out of NOT_STARTED
func promote(p *Progress, now time.Time) {
	if p.OverallStatus == OverallNotStarted {
		p.OverallStatus = OverallInProgress
		p.UpdatedAt = now
	}
}

// resolveStep locates the status and definition for a step id
func resolveStep(p *Progress, tmpl *Template, stepID uuid.UUID) (*StepStatus, *TemplateStep, error) {
	st := p.StatusFor(stepID)
	if st == nil {
		return nil, nil, preconditionf(CodeStepNotFound, "step %s is not part of onboarding %s", stepID, p.ID)
	}
	step := tmpl.StepByID(stepID)
	if step == nil {
		return nil, nil, invariantf(CodeMissingStepDefinition,
			"step status %s references step %s missing from template %s", st.ID, stepID, tmpl.ID)
	}
	return st, step, nil
}
