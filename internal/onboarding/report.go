package onboarding

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/pkg/export"
)

var progressColumns = []string{
	"progress_id",
	"employee_id",
	"template_code",
	"template_name",
	"status",
	"percentage",
	"total_steps",
	"completed_steps",
	"skipped_steps",
	"pending_steps",
	"overdue_steps",
	"started_at",
	"target_completion_date",
	"completed_at",
	"completion_effects_pending",
}

// ProgressTable builds the organization progress export table
func (s *Service) ProgressTable(ctx context.Context, organizationID uuid.UUID, status *OverallStatus) (*export.Table, error) {
	rows, err := s.repo.ListProgress(ctx, organizationID, status)
	if err != nil {
		return nil, err
	}
	templates, err := s.repo.ListTemplates(ctx, organizationID, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*Template, len(templates))
	for i := range templates {
		byID[templates[i].ID] = &templates[i]
	}

	table := &export.Table{Name: "Onboarding", Columns: progressColumns}
	for _, p := range rows {
		row := map[string]interface{}{
			"progress_id":                p.ID,
			"employee_id":                p.EmployeeID,
			"status":                     string(p.OverallStatus),
			"percentage":                 p.OverallPercentage,
			"total_steps":                p.TotalSteps,
			"completed_steps":            p.CompletedSteps,
			"skipped_steps":              p.SkippedSteps,
			"pending_steps":              p.PendingSteps,
			"overdue_steps":              p.OverdueSteps,
			"started_at":                 p.StartedAt,
			"target_completion_date":     p.TargetCompletionDate,
			"completed_at":               p.CompletedAt,
			"completion_effects_pending": p.CompletionEffectsPending,
		}
		if tmpl, ok := byID[p.TemplateID]; ok {
			row["template_code"] = tmpl.TemplateCode
			row["template_name"] = tmpl.TemplateName
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// ExportOrganizationProgress writes the organization's progress in the given format
func (s *Service) ExportOrganizationProgress(ctx context.Context, organizationID uuid.UUID, format export.Format, w io.Writer) error {
	table, err := s.ProgressTable(ctx, organizationID, nil)
	if err != nil {
		return err
	}
	if err := export.Write(w, format, table); err != nil {
		return fmt.Errorf("failed to write %s export: %w", format, err)
	}

	s.logger.Info("Onboarding progress exported",
		zap.String("organization_id", organizationID.String()),
		zap.String("format", string(format)),
		zap.Int("rows", len(table.Rows)))
	return nil
}
