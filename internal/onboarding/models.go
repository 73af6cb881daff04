package onboarding

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OverallStatus is the lifecycle state of an employee's onboarding
type OverallStatus string

const (
	OverallNotStarted OverallStatus = "NOT_STARTED"
	OverallInProgress OverallStatus = "IN_PROGRESS"
	OverallCompleted  OverallStatus = "COMPLETED"
	OverallOnHold     OverallStatus = "ON_HOLD"
	OverallCancelled  OverallStatus = "CANCELLED"
)

// StepState is the live state of one step for one employee
type StepState string

const (
	StepPending       StepState = "PENDING"
	StepInProgress    StepState = "IN_PROGRESS"
	StepCompleted     StepState = "COMPLETED"
	StepSkipped       StepState = "SKIPPED"
	StepBlocked       StepState = "BLOCKED"
	StepNotApplicable StepState = "NOT_APPLICABLE"
)

// Action is an operation an actor performs on a step
type Action string

const (
	ActionComplete Action = "COMPLETE"
	ActionStart    Action = "START"
	ActionSkip     Action = "SKIP"
	ActionBlock    Action = "BLOCK"
	ActionUnblock  Action = "UNBLOCK"
)

// StepCategory determines the priority/requirement level of a step
type StepCategory string

const (
	CategoryRequiredOnboarding StepCategory = "REQUIRED_ONBOARDING"
	CategoryRequiredWeek1      StepCategory = "REQUIRED_WEEK1"
	CategoryRequiredPayroll    StepCategory = "REQUIRED_PAYROLL"
	CategoryCompliance         StepCategory = "COMPLIANCE"
	CategoryITSetup            StepCategory = "IT_SETUP"
	CategoryTraining           StepCategory = "TRAINING"
	CategoryOptional           StepCategory = "OPTIONAL"
)

// Assignee identifies who is responsible for completing a step
type Assignee string

const (
	AssigneeEmployee Assignee = "employee"
	AssigneeHR       Assignee = "hr"
	AssigneeManager  Assignee = "manager"
	AssigneeSystem   Assignee = "system"
)

// ChecklistItemType is the kind of sub-unit inside a step
type ChecklistItemType string

const (
	ItemFormField      ChecklistItemType = "FORM_FIELD"
	ItemDocumentUpload ChecklistItemType = "DOCUMENT_UPLOAD"
	ItemAcknowledgment ChecklistItemType = "ACKNOWLEDGEMENT"
	ItemTask           ChecklistItemType = "TASK"
	ItemVerification   ChecklistItemType = "VERIFICATION"
	ItemInfo           ChecklistItemType = "INFO"
	ItemLink           ChecklistItemType = "LINK"
	ItemVideo          ChecklistItemType = "VIDEO"
)

// DocumentDispatch selects when onboarding documents are sent for signing
type DocumentDispatch string

const (
	DispatchNone         DocumentDispatch = "NONE"
	DispatchOnStart      DocumentDispatch = "ON_START"
	DispatchOnCompletion DocumentDispatch = "ON_COMPLETION"
)

// Employee onboarding status values written to the directory
const (
	EmployeeOnboardingInProgress = "in_progress"
	EmployeeOnboardingCompleted  = "completed"
	EmployeeOnboardingCancelled  = "cancelled"
)

const (
	DefaultTargetCompletionDays = 30
	DefaultStepType             = "task"
)

// Template is a reusable, organization-scoped onboarding workflow definition
type Template struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_template_org_code" json:"organization_id"`
	TemplateCode   string    `gorm:"size:50;not null;uniqueIndex:idx_template_org_code" json:"template_code"`
	TemplateName   string    `gorm:"not null" json:"template_name"`
	Description    string    `gorm:"size:1000" json:"description"`

	// Targeting; nil matches any employee
	EmploymentType *string    `gorm:"size:50" json:"employment_type,omitempty"`
	DepartmentID   *uuid.UUID `gorm:"type:uuid" json:"department_id,omitempty"`
	CountryCode    *string    `gorm:"size:3" json:"country_code,omitempty"`
	PositionID     *uuid.UUID `gorm:"type:uuid" json:"position_id,omitempty"`

	TargetCompletionDays int              `gorm:"not null;default:30" json:"target_completion_days"`
	AutoAssign           bool             `json:"auto_assign"`
	SendWelcomeEmail     bool             `json:"send_welcome_email"`
	AllowSelfService     bool             `json:"allow_self_service"`
	DocumentDispatch     DocumentDispatch `gorm:"size:20;not null;default:'NONE'" json:"document_dispatch"`
	IsActive             bool             `gorm:"not null;index" json:"is_active"`
	IsDefault            bool             `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time  `json:"created_at"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`

	Steps []TemplateStep `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"steps"`
}

func (Template) TableName() string {
	return "onboarding_templates"
}

// Specificity is the number of targeting filters the template sets
func (t *Template) Specificity() int {
	n := 0
	if t.EmploymentType != nil {
		n++
	}
	if t.DepartmentID != nil {
		n++
	}
	if t.CountryCode != nil {
		n++
	}
	if t.PositionID != nil {
		n++
	}
	return n
}

// TemplateStep is one unit of work within a template
type TemplateStep struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	TemplateID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"template_id"`
	DependsOnStepID *uuid.UUID   `gorm:"type:uuid" json:"depends_on_step_id,omitempty"`
	StepNumber      int          `gorm:"not null" json:"step_number"`
	StepCode        string       `gorm:"size:50;not null" json:"step_code"`
	StepName        string       `gorm:"not null" json:"step_name"`
	StepDescription string       `gorm:"size:1000" json:"step_description"`
	Category        StepCategory `gorm:"size:50;not null" json:"category"`
	StepType        string       `gorm:"size:50;not null;default:'task'" json:"step_type"`

	DueByDays           *int `json:"due_by_days,omitempty"`
	ReminderBeforeDays  *int `json:"reminder_before_days,omitempty"`
	EscalationAfterDays *int `json:"escalation_after_days,omitempty"`

	AssignedTo         Assignee `gorm:"size:50;not null;default:'employee'" json:"assigned_to"`
	AssignedRole       string   `gorm:"size:100" json:"assigned_role,omitempty"`
	CanBeSkipped       bool     `json:"can_be_skipped"`
	RequiresApproval   bool     `json:"requires_approval"`
	AutoCompleteOnData bool     `json:"auto_complete_on_data"`
	RelatedTable       string   `gorm:"size:100" json:"related_table,omitempty"`
	RelatedField       string   `gorm:"size:100" json:"related_field,omitempty"`

	Icon     string `gorm:"size:50" json:"icon,omitempty"`
	Color    string `gorm:"size:20" json:"color,omitempty"`
	HelpURL  string `gorm:"size:500" json:"help_url,omitempty"`
	IsActive bool   `gorm:"not null" json:"is_active"`

	ChecklistItems []ChecklistItem `gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE" json:"checklist_items"`
}

func (TemplateStep) TableName() string {
	return "onboarding_template_steps"
}

// ChecklistItem is an ordered, typed sub-unit of a step. Metadata only.
type ChecklistItem struct {
	ID                   uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StepID               uuid.UUID         `gorm:"type:uuid;not null;index" json:"step_id"`
	ItemOrder            int               `gorm:"not null" json:"item_order"`
	ItemName             string            `gorm:"not null" json:"item_name"`
	ItemDescription      string            `gorm:"size:500" json:"item_description,omitempty"`
	ItemType             ChecklistItemType `gorm:"size:50;not null" json:"item_type"`
	RelatedField         string            `gorm:"size:100" json:"related_field,omitempty"`
	RelatedTable         string            `gorm:"size:100" json:"related_table,omitempty"`
	RequiredDocumentType string            `gorm:"size:50" json:"required_document_type,omitempty"`
	AcknowledgementText  string            `gorm:"size:2000" json:"acknowledgement_text,omitempty"`
	RequiresSignature    bool              `json:"requires_signature"`
	IsRequired           bool              `gorm:"not null" json:"is_required"`
	ValidationRule       string            `gorm:"size:500" json:"validation_rule,omitempty"`
	MinValue             string            `gorm:"size:100" json:"min_value,omitempty"`
	MaxValue             string            `gorm:"size:100" json:"max_value,omitempty"`
	RegexPattern         string            `gorm:"size:255" json:"regex_pattern,omitempty"`
	HelpText             string            `gorm:"size:500" json:"help_text,omitempty"`
	ExampleText          string            `gorm:"size:255" json:"example_text,omitempty"`
	HelpURL              string            `gorm:"size:500" json:"help_url,omitempty"`
}

func (ChecklistItem) TableName() string {
	return "onboarding_checklist_items"
}

// Progress is one employee's live instance of a template
type Progress struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EmployeeID     uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	TemplateID     uuid.UUID `gorm:"type:uuid;not null" json:"template_id"`

	OverallStatus     OverallStatus `gorm:"size:50;not null;default:'NOT_STARTED';index" json:"overall_status"`
	OverallPercentage int           `gorm:"not null;default:0" json:"overall_percentage"`

	StartedAt            *time.Time `json:"started_at,omitempty"`
	TargetCompletionDate *time.Time `gorm:"type:date" json:"target_completion_date,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CompletedBy          *uuid.UUID `gorm:"type:uuid" json:"completed_by,omitempty"`

	HRAssigneeID *uuid.UUID `gorm:"type:uuid" json:"hr_assignee_id,omitempty"`
	BuddyID      *uuid.UUID `gorm:"type:uuid" json:"buddy_id,omitempty"`
	ManagerID    *uuid.UUID `gorm:"type:uuid" json:"manager_id,omitempty"`

	// Derived; written only by RecomputeMetrics
	TotalSteps     int `gorm:"not null;default:0" json:"total_steps"`
	CompletedSteps int `gorm:"not null;default:0" json:"completed_steps"`
	PendingSteps   int `gorm:"not null;default:0" json:"pending_steps"`
	OverdueSteps   int `gorm:"not null;default:0" json:"overdue_steps"`
	SkippedSteps   int `gorm:"not null;default:0" json:"skipped_steps"`

	CompletionEffectsPending bool   `gorm:"not null;default:false" json:"completion_effects_pending"`
	HoldReason               string `gorm:"size:500" json:"hold_reason,omitempty"`
	CancelReason             string `gorm:"size:500" json:"cancel_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Template     *Template    `gorm:"foreignKey:TemplateID" json:"-"`
	StepStatuses []StepStatus `gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE" json:"step_statuses,omitempty"`
}

func (Progress) TableName() string {
	return "employee_onboarding_progress"
}

// IsActive reports whether the progress blocks a new onboarding for the employee
func (p *Progress) IsActive() bool {
	switch p.OverallStatus {
	case OverallNotStarted, OverallInProgress, OverallOnHold:
		return true
	}
	return false
}

// StatusFor returns the step status for a template step id
func (p *Progress) StatusFor(stepID uuid.UUID) *StepStatus {
	for i := range p.StepStatuses {
		if p.StepStatuses[i].StepID == stepID {
			return &p.StepStatuses[i]
		}
	}
	return nil
}

// StepStatus is the live state of one template step for one progress
type StepStatus struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgressID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_step_status_progress_step" json:"progress_id"`
	StepID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_step_status_progress_step" json:"step_id"`
	Position   int       `gorm:"not null" json:"position"`

	Status     StepState `gorm:"size:50;not null;default:'PENDING'" json:"status"`
	Percentage int       `gorm:"not null;default:0" json:"percentage"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	DueDate     *time.Time `gorm:"type:date" json:"due_date,omitempty"`
	IsOverdue   bool       `gorm:"not null;default:false" json:"is_overdue"`

	CompletedBy     *uuid.UUID     `gorm:"type:uuid" json:"completed_by,omitempty"`
	CompletionNotes string         `gorm:"size:500" json:"completion_notes,omitempty"`
	CompletionData  datatypes.JSON `json:"completion_data,omitempty"`

	BlockedReason   string     `gorm:"size:500" json:"blocked_reason,omitempty"`
	BlockedByStepID *uuid.UUID `gorm:"type:uuid" json:"blocked_by_step_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Step *TemplateStep `gorm:"foreignKey:StepID" json:"-"`
}

func (StepStatus) TableName() string {
	return "employee_onboarding_step_status"
}

// EmployeeProfile is the directory data the engine needs about a hire
type EmployeeProfile struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	FullName       string
	WorkEmail      string
	EmploymentType string
	DepartmentID   *uuid.UUID
	PositionID     *uuid.UUID
	CountryCode    string
	ManagerID      *uuid.UUID
}

// StepNotice carries the scheduling facts notification delivery needs
type StepNotice struct {
	ProgressID          uuid.UUID  `json:"progress_id"`
	EmployeeID          uuid.UUID  `json:"employee_id"`
	OrganizationID      uuid.UUID  `json:"organization_id"`
	StepID              uuid.UUID  `json:"step_id"`
	StepCode            string     `json:"step_code"`
	StepName            string     `json:"step_name"`
	AssignedTo          Assignee   `json:"assigned_to"`
	Status              StepState  `json:"status"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	IsOverdue           bool       `json:"is_overdue"`
	ReminderBeforeDays  *int       `json:"reminder_before_days,omitempty"`
	EscalationAfterDays *int       `json:"escalation_after_days,omitempty"`
}

// ProgressView is the response shape for a progress and its steps
type ProgressView struct {
	Progress
	TemplateCode       string           `json:"template_code"`
	TemplateName       string           `json:"template_name"`
	DaysRemaining      *int             `json:"days_remaining,omitempty"`
	IsOnTrack          *bool            `json:"is_on_track,omitempty"`
	NextActionRequired string           `json:"next_action_required,omitempty"`
	Steps              []StepStatusView `json:"steps"`
}

// StepStatusView joins a step status with its template step
type StepStatusView struct {
	StepStatus
	StepCode         string       `json:"step_code"`
	StepName         string       `json:"step_name"`
	StepDescription  string       `json:"step_description,omitempty"`
	Category         StepCategory `json:"category"`
	StepType         string       `json:"step_type"`
	AssignedTo       Assignee     `json:"assigned_to"`
	CanBeSkipped     bool         `json:"can_be_skipped"`
	RequiresApproval bool         `json:"requires_approval"`
	BlockedByStep    string       `json:"blocked_by_step_name,omitempty"`
	Icon             string       `json:"icon,omitempty"`
	Color            string       `json:"color,omitempty"`
}
