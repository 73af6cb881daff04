package onboarding

// Metrics are the derived counters of a progress
type Metrics struct {
	Total      int
	Completed  int
	Pending    int
	Overdue    int
	Skipped    int
	Percentage int
}

// ComputeMetrics aggregates step statuses. Percentage is floored and 0 when empty.
func ComputeMetrics(statuses []StepStatus) Metrics {
	m := Metrics{Total: len(statuses)}
	for _, st := range statuses {
		switch st.Status {
		case StepCompleted:
			m.Completed++
		case StepSkipped:
			m.Skipped++
		case StepPending, StepInProgress:
			m.Pending++
		}
		if st.IsOverdue {
			m.Overdue++
		}
	}
	if m.Total > 0 {
		m.Percentage = m.Completed * 100 / m.Total
	}
	return m
}

// RecomputeMetrics is the only writer of a progress's derived counters.
// A completed progress keeps its 100 percent pin.
func RecomputeMetrics(p *Progress) {
	m := ComputeMetrics(p.StepStatuses)
	p.TotalSteps = m.Total
	p.CompletedSteps = m.Completed
	p.PendingSteps = m.Pending
	p.OverdueSteps = m.Overdue
	p.SkippedSteps = m.Skipped
	p.OverallPercentage = m.Percentage
	if p.OverallStatus == OverallCompleted {
		p.OverallPercentage = 100
	}
}

// VerifyMetrics compares stored counters with a fresh aggregation
func VerifyMetrics(p *Progress) error {
	m := ComputeMetrics(p.StepStatuses)
	pct := m.Percentage
	if p.OverallStatus == OverallCompleted {
		pct = 100
	}
	if p.TotalSteps != m.Total || p.CompletedSteps != m.Completed || p.PendingSteps != m.Pending ||
		p.SkippedSteps != m.Skipped || p.OverallPercentage != pct {
		return invariantf(CodeMetricsInvariant,
			"stored counters total=%d completed=%d pending=%d skipped=%d pct=%d disagree with steps total=%d completed=%d pending=%d skipped=%d pct=%d",
			p.TotalSteps, p.CompletedSteps, p.PendingSteps, p.SkippedSteps, p.OverallPercentage,
			m.Total, m.Completed, m.Pending, m.Skipped, pct)
	}
	return nil
}

// isFinished reports whether every step is completed or skipped
func isFinished(p *Progress) bool {
	return p.TotalSteps > 0 && p.CompletedSteps+p.SkippedSteps == p.TotalSteps
}
