package notifications

import (
	"time"

	"peoplehub/hr-portal/hr-portal-backend/internal/onboarding"
)

const (
	EventStepScheduled = "onboarding.step.scheduled"
	EventStepOverdue   = "onboarding.step.overdue"
)

// StepScheduleMessage is the payload published for each step notice
type StepScheduleMessage struct {
	EventType  string                `json:"event_type"`
	OccurredAt time.Time             `json:"occurred_at"`
	Notice     onboarding.StepNotice `json:"notice"`
}

func newStepScheduleMessage(notice onboarding.StepNotice, at time.Time) StepScheduleMessage {
	event := EventStepScheduled
	if notice.IsOverdue {
		event = EventStepOverdue
	}
	return StepScheduleMessage{EventType: event, OccurredAt: at, Notice: notice}
}
