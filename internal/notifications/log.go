package notifications

import (
	"context"

	"go.uber.org/zap"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

// LogNotifier writes step notices to the log. Used when no topic is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) PublishStepSchedule(_ context.Context, notices []onboarding.StepNotice) error {
	for _, notice := range notices {
		fields := []zap.Field{
			zap.String("progress_id", notice.ProgressID.String()),
			zap.String("step_code", notice.StepCode),
			zap.String("assigned_to", string(notice.AssignedTo)),
			zap.Bool("overdue", notice.IsOverdue),
		}
		if notice.DueDate != nil {
			fields = append(fields, zap.Time("due_date", *notice.DueDate))
		}
		n.logger.Info("Step scheduled", fields...)
	}
	return nil
}
