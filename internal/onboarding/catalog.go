package onboarding

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateRequest is the authoring payload for creating or replacing a template
type TemplateRequest struct {
	TemplateCode         string           `json:"template_code" yaml:"template_code"`
	TemplateName         string           `json:"template_name" yaml:"template_name"`
	Description          string           `json:"description" yaml:"description"`
	EmploymentType       *string          `json:"employment_type" yaml:"employment_type"`
	DepartmentID         *uuid.UUID       `json:"department_id" yaml:"department_id"`
	CountryCode          *string          `json:"country_code" yaml:"country_code"`
	PositionID           *uuid.UUID       `json:"position_id" yaml:"position_id"`
	TargetCompletionDays *int             `json:"target_completion_days" yaml:"target_completion_days"`
	AutoAssign           bool             `json:"auto_assign" yaml:"auto_assign"`
	SendWelcomeEmail     bool             `json:"send_welcome_email" yaml:"send_welcome_email"`
	AllowSelfService     bool             `json:"allow_self_service" yaml:"allow_self_service"`
	DocumentDispatch     DocumentDispatch `json:"document_dispatch" yaml:"document_dispatch"`
	IsActive             *bool            `json:"is_active" yaml:"is_active"`
	IsDefault            bool             `json:"is_default" yaml:"is_default"`
	Steps                []StepRequest    `json:"steps" yaml:"steps"`
}

// StepRequest describes one step; dependencies are expressed by step code
type StepRequest struct {
	StepNumber          int                    `json:"step_number" yaml:"step_number"`
	StepCode            string                 `json:"step_code" yaml:"step_code"`
	StepName            string                 `json:"step_name" yaml:"step_name"`
	StepDescription     string                 `json:"step_description" yaml:"step_description"`
	Category            StepCategory           `json:"category" yaml:"category"`
	StepType            string                 `json:"step_type" yaml:"step_type"`
	DueByDays           *int                   `json:"due_by_days" yaml:"due_by_days"`
	ReminderBeforeDays  *int                   `json:"reminder_before_days" yaml:"reminder_before_days"`
	EscalationAfterDays *int                   `json:"escalation_after_days" yaml:"escalation_after_days"`
	AssignedTo          Assignee               `json:"assigned_to" yaml:"assigned_to"`
	AssignedRole        string                 `json:"assigned_role" yaml:"assigned_role"`
	CanBeSkipped        bool                   `json:"can_be_skipped" yaml:"can_be_skipped"`
	RequiresApproval    bool                   `json:"requires_approval" yaml:"requires_approval"`
	AutoCompleteOnData  bool                   `json:"auto_complete_on_data" yaml:"auto_complete_on_data"`
	RelatedTable        string                 `json:"related_table" yaml:"related_table"`
	RelatedField        string                 `json:"related_field" yaml:"related_field"`
	DependsOnStepCode   string                 `json:"depends_on_step_code" yaml:"depends_on_step_code"`
	Icon                string                 `json:"icon" yaml:"icon"`
	Color               string                 `json:"color" yaml:"color"`
	HelpURL             string                 `json:"help_url" yaml:"help_url"`
	ChecklistItems      []ChecklistItemRequest `json:"checklist_items" yaml:"checklist_items"`
}

// ChecklistItemRequest describes one checklist item of a step
type ChecklistItemRequest struct {
	ItemOrder            int               `json:"item_order" yaml:"item_order"`
	ItemName             string            `json:"item_name" yaml:"item_name"`
	ItemDescription      string            `json:"item_description" yaml:"item_description"`
	ItemType             ChecklistItemType `json:"item_type" yaml:"item_type"`
	RelatedField         string            `json:"related_field" yaml:"related_field"`
	RelatedTable         string            `json:"related_table" yaml:"related_table"`
	RequiredDocumentType string            `json:"required_document_type" yaml:"required_document_type"`
	AcknowledgementText  string            `json:"acknowledgement_text" yaml:"acknowledgement_text"`
	RequiresSignature    bool              `json:"requires_signature" yaml:"requires_signature"`
	IsRequired           *bool             `json:"is_required" yaml:"is_required"`
	ValidationRule       string            `json:"validation_rule" yaml:"validation_rule"`
	MinValue             string            `json:"min_value" yaml:"min_value"`
	MaxValue             string            `json:"max_value" yaml:"max_value"`
	RegexPattern         string            `json:"regex_pattern" yaml:"regex_pattern"`
	HelpText             string            `json:"help_text" yaml:"help_text"`
	ExampleText          string            `json:"example_text" yaml:"example_text"`
	HelpURL              string            `json:"help_url" yaml:"help_url"`
}

var validCategories = map[StepCategory]bool{
	CategoryRequiredOnboarding: true,
	CategoryRequiredWeek1:      true,
	CategoryRequiredPayroll:    true,
	CategoryCompliance:         true,
	CategoryITSetup:            true,
	CategoryTraining:           true,
	CategoryOptional:           true,
}

var validAssignees = map[Assignee]bool{
	AssigneeEmployee: true,
	AssigneeHR:       true,
	AssigneeManager:  true,
	AssigneeSystem:   true,
}

var validItemTypes = map[ChecklistItemType]bool{
	ItemFormField:      true,
	ItemDocumentUpload: true,
	ItemAcknowledgment: true,
	ItemTask:           true,
	ItemVerification:   true,
	ItemInfo:           true,
	ItemLink:           true,
	ItemVideo:          true,
}

// ValidateTemplateRequest checks an authoring request against the catalog rules.
// Uniqueness of the template code within the organization is checked by the service.
func ValidateTemplateRequest(req *TemplateRequest) error {
	if strings.TrimSpace(req.TemplateCode) == "" {
		return preconditionf(CodeInvalidTemplate, "template code is required")
	}
	if len(req.TemplateCode) > 50 {
		return preconditionf(CodeInvalidTemplate, "template code exceeds 50 characters")
	}
	if strings.TrimSpace(req.TemplateName) == "" {
		return preconditionf(CodeInvalidTemplate, "template name is required")
	}
	if req.TargetCompletionDays != nil && *req.TargetCompletionDays < 0 {
		return preconditionf(CodeInvalidTemplate, "target completion days cannot be negative")
	}
	switch req.DocumentDispatch {
	case "", DispatchNone, DispatchOnStart, DispatchOnCompletion:
	default:
		return preconditionf(CodeInvalidTemplate, "unknown document dispatch mode %q", req.DocumentDispatch)
	}

	codes := make(map[string]bool, len(req.Steps))
	for i := range req.Steps {
		step := &req.Steps[i]
		if strings.TrimSpace(step.StepCode) == "" {
			return preconditionf(CodeInvalidTemplate, "step %d: step code is required", i+1)
		}
		if codes[step.StepCode] {
			return preconditionf(CodeDuplicateStepCode, "step code %q is used more than once", step.StepCode)
		}
		codes[step.StepCode] = true
		if err := validateStepRequest(step); err != nil {
			return err
		}
	}

	for i := range req.Steps {
		dep := req.Steps[i].DependsOnStepCode
		if dep != "" && !codes[dep] {
			return preconditionf(CodeInvalidStepDependency,
				"step %q depends on unknown step %q", req.Steps[i].StepCode, dep)
		}
	}

	deps := make(map[string]string, len(req.Steps))
	for _, step := range req.Steps {
		if step.DependsOnStepCode != "" {
			deps[step.StepCode] = step.DependsOnStepCode
		}
	}
	return detectCycle(deps)
}

func validateStepRequest(step *StepRequest) error {
	if strings.TrimSpace(step.StepName) == "" {
		return preconditionf(CodeInvalidTemplate, "step %q: step name is required", step.StepCode)
	}
	if !validCategories[step.Category] {
		return preconditionf(CodeInvalidTemplate, "step %q: unknown category %q", step.StepCode, step.Category)
	}
	if step.AssignedTo != "" && !validAssignees[step.AssignedTo] {
		return preconditionf(CodeInvalidTemplate, "step %q: unknown assignee %q", step.StepCode, step.AssignedTo)
	}
	for name, days := range map[string]*int{
		"due by days":           step.DueByDays,
		"reminder before days":  step.ReminderBeforeDays,
		"escalation after days": step.EscalationAfterDays,
	} {
		if days != nil && *days < 0 {
			return preconditionf(CodeInvalidTemplate, "step %q: %s cannot be negative", step.StepCode, name)
		}
	}
	for _, item := range step.ChecklistItems {
		if strings.TrimSpace(item.ItemName) == "" {
			return preconditionf(CodeInvalidTemplate, "step %q: checklist item name is required", step.StepCode)
		}
		if !validItemTypes[item.ItemType] {
			return preconditionf(CodeInvalidTemplate, "step %q: unknown checklist item type %q", step.StepCode, item.ItemType)
		}
		if item.RegexPattern != "" {
			if _, err := regexp.Compile(item.RegexPattern); err != nil {
				return preconditionf(CodeInvalidTemplate, "step %q: invalid regex pattern for %q", step.StepCode, item.ItemName)
			}
		}
	}
	return nil
}

// detectCycle walks the single-parent dependency map with a three-colour DFS
func detectCycle(deps map[string]string) error {
	const (
		white = iota
		grey
		black
	)
	colour := make(map[string]int, len(deps))

	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, start := range keys {
		var path []string
		node := start
		for node != "" && colour[node] == white {
			colour[node] = grey
			path = append(path, node)
			node = deps[node]
		}
		if node != "" && colour[node] == grey {
			return invariantf(CodeDependencyCycle, "step dependencies form a cycle through %q", node)
		}
		for _, n := range path {
			colour[n] = black
		}
	}
	return nil
}

// ValidateStepGraph checks a persisted template's dependency references by id
func ValidateStepGraph(steps []TemplateStep) error {
	ids := make(map[uuid.UUID]bool, len(steps))
	for _, s := range steps {
		ids[s.ID] = true
	}
	deps := make(map[string]string, len(steps))
	for _, s := range steps {
		if s.DependsOnStepID == nil {
			continue
		}
		if !ids[*s.DependsOnStepID] {
			return preconditionf(CodeInvalidStepDependency, "step %q depends on a step outside its template", s.StepCode)
		}
		deps[s.ID.String()] = s.DependsOnStepID.String()
	}
	return detectCycle(deps)
}

// buildTemplate materializes a validated request. When existing is set, step ids
// are kept stable by step code and steps missing from the request are deactivated.
func buildTemplate(orgID uuid.UUID, req *TemplateRequest, existing *Template, actor *uuid.UUID, now time.Time) *Template {
	tmpl := &Template{
		ID:                   uuid.New(),
		OrganizationID:       orgID,
		TemplateCode:         req.TemplateCode,
		TemplateName:         req.TemplateName,
		Description:          req.Description,
		EmploymentType:       req.EmploymentType,
		DepartmentID:         req.DepartmentID,
		CountryCode:          req.CountryCode,
		PositionID:           req.PositionID,
		TargetCompletionDays: DefaultTargetCompletionDays,
		AutoAssign:           req.AutoAssign,
		SendWelcomeEmail:     req.SendWelcomeEmail,
		AllowSelfService:     req.AllowSelfService,
		DocumentDispatch:     req.DocumentDispatch,
		IsActive:             true,
		IsDefault:            req.IsDefault,
		CreatedAt:            now,
		CreatedBy:            actor,
		UpdatedAt:            now,
		UpdatedBy:            actor,
	}
	if req.TargetCompletionDays != nil {
		tmpl.TargetCompletionDays = *req.TargetCompletionDays
	}
	if tmpl.DocumentDispatch == "" {
		tmpl.DocumentDispatch = DispatchNone
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}

	existingByCode := map[string]TemplateStep{}
	if existing != nil {
		tmpl.ID = existing.ID
		tmpl.CreatedAt = existing.CreatedAt
		tmpl.CreatedBy = existing.CreatedBy
		for _, s := range existing.Steps {
			existingByCode[s.StepCode] = s
		}
	}

	idByCode := make(map[string]uuid.UUID, len(req.Steps))
	for _, sr := range req.Steps {
		if prev, ok := existingByCode[sr.StepCode]; ok {
			idByCode[sr.StepCode] = prev.ID
		} else {
			idByCode[sr.StepCode] = uuid.New()
		}
	}

	for _, sr := range req.Steps {
		step := TemplateStep{
			ID:                  idByCode[sr.StepCode],
			TemplateID:          tmpl.ID,
			StepNumber:          sr.StepNumber,
			StepCode:            sr.StepCode,
			StepName:            sr.StepName,
			StepDescription:     sr.StepDescription,
			Category:            sr.Category,
			StepType:            sr.StepType,
			DueByDays:           sr.DueByDays,
			ReminderBeforeDays:  sr.ReminderBeforeDays,
			EscalationAfterDays: sr.EscalationAfterDays,
			AssignedTo:          sr.AssignedTo,
			AssignedRole:        sr.AssignedRole,
			CanBeSkipped:        sr.CanBeSkipped,
			RequiresApproval:    sr.RequiresApproval,
			AutoCompleteOnData:  sr.AutoCompleteOnData,
			RelatedTable:        sr.RelatedTable,
			RelatedField:        sr.RelatedField,
			Icon:                sr.Icon,
			Color:               sr.Color,
			HelpURL:             sr.HelpURL,
			IsActive:            true,
		}
		if step.StepType == "" {
			step.StepType = DefaultStepType
		}
		if step.AssignedTo == "" {
			step.AssignedTo = AssigneeEmployee
		}
		if sr.DependsOnStepCode != "" {
			depID := idByCode[sr.DependsOnStepCode]
			step.DependsOnStepID = &depID
		}
		for _, ir := range sr.ChecklistItems {
			item := ChecklistItem{
				ID:                   uuid.New(),
				StepID:               step.ID,
				ItemOrder:            ir.ItemOrder,
				ItemName:             ir.ItemName,
				ItemDescription:      ir.ItemDescription,
				ItemType:             ir.ItemType,
				RelatedField:         ir.RelatedField,
				RelatedTable:         ir.RelatedTable,
				RequiredDocumentType: ir.RequiredDocumentType,
				AcknowledgementText:  ir.AcknowledgementText,
				RequiresSignature:    ir.RequiresSignature,
				IsRequired:           true,
				ValidationRule:       ir.ValidationRule,
				MinValue:             ir.MinValue,
				MaxValue:             ir.MaxValue,
				RegexPattern:         ir.RegexPattern,
				HelpText:             ir.HelpText,
				ExampleText:          ir.ExampleText,
				HelpURL:              ir.HelpURL,
			}
			if ir.IsRequired != nil {
				item.IsRequired = *ir.IsRequired
			}
			step.ChecklistItems = append(step.ChecklistItems, item)
		}
		tmpl.Steps = append(tmpl.Steps, step)
	}

	// Removed steps stay so running progress keeps resolving them
	for code, prev := range existingByCode {
		if _, kept := idByCode[code]; kept {
			continue
		}
		prev.IsActive = false
		tmpl.Steps = append(tmpl.Steps, prev)
	}

	sortSteps(tmpl.Steps)
	return tmpl
}

// sortSteps orders steps by step number, then code for a stable layout
func sortSteps(steps []TemplateStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].StepNumber != steps[j].StepNumber {
			return steps[i].StepNumber < steps[j].StepNumber
		}
		return steps[i].StepCode < steps[j].StepCode
	})
}

// ActiveSteps returns the template's active steps in step order
func (t *Template) ActiveSteps() []TemplateStep {
	out := make([]TemplateStep, 0, len(t.Steps))
	for _, s := range t.Steps {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sortSteps(out)
	return out
}

// StepByID finds a step of the template, active or not
func (t *Template) StepByID(id uuid.UUID) *TemplateStep {
	for i := range t.Steps {
		if t.Steps[i].ID == id {
			return &t.Steps[i]
		}
	}
	return nil
}
