package onboarding

import (
	"sort"
	"time"
)

// BuildView joins a progress with its template for API responses
func BuildView(p *Progress, tmpl *Template, now time.Time) *ProgressView {
	view := &ProgressView{Progress: *p}
	view.StepStatuses = nil
	if tmpl != nil {
		view.TemplateCode = tmpl.TemplateCode
		view.TemplateName = tmpl.TemplateName
	}

	if p.TargetCompletionDate != nil && p.OverallStatus != OverallCompleted {
		days := int(dateOf(*p.TargetCompletionDate).Sub(dateOf(now)).Hours() / 24)
		onTrack := days >= 0 && p.OverdueSteps == 0
		view.DaysRemaining = &days
		view.IsOnTrack = &onTrack
	}

	statuses := append([]StepStatus(nil), p.StepStatuses...)
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Position < statuses[j].Position
	})

	for _, st := range statuses {
		sv := StepStatusView{StepStatus: st}
		if tmpl != nil {
			if step := tmpl.StepByID(st.StepID); step != nil {
				sv.StepCode = step.StepCode
				sv.StepName = step.StepName
				sv.StepDescription = step.StepDescription
				sv.Category = step.Category
				sv.StepType = step.StepType
				sv.AssignedTo = step.AssignedTo
				sv.CanBeSkipped = step.CanBeSkipped
				sv.RequiresApproval = step.RequiresApproval
				sv.Icon = step.Icon
				sv.Color = step.Color
			}
			if st.BlockedByStepID != nil {
				if dep := tmpl.StepByID(*st.BlockedByStepID); dep != nil {
					sv.BlockedByStep = dep.StepName
				}
			}
		}
		if view.NextActionRequired == "" && (st.Status == StepPending || st.Status == StepInProgress) {
			view.NextActionRequired = sv.StepName
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}
