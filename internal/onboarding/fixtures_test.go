package onboarding

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================================================
// In-memory repository
// =====================================================

type memoryRepository struct {
	mu        sync.Mutex
	templates map[uuid.UUID]Template
	progress  map[uuid.UUID]Progress
	saves     int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		templates: make(map[uuid.UUID]Template),
		progress:  make(map[uuid.UUID]Progress),
	}
}

func cloneTemplate(t Template) *Template {
	out := t
	out.Steps = make([]TemplateStep, len(t.Steps))
	for i, s := range t.Steps {
		s.ChecklistItems = append([]ChecklistItem(nil), s.ChecklistItems...)
		out.Steps[i] = s
	}
	return &out
}

func cloneProgress(p Progress) *Progress {
	out := p
	out.StepStatuses = append([]StepStatus(nil), p.StepStatuses...)
	return &out
}

func (r *memoryRepository) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	return fn(r)
}

func (r *memoryRepository) CreateTemplate(ctx context.Context, tmpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.OrganizationID == tmpl.OrganizationID && t.TemplateCode == tmpl.TemplateCode {
			return preconditionf(CodeDuplicateTemplateCode, "template code %q already exists", tmpl.TemplateCode)
		}
	}
	r.templates[tmpl.ID] = *cloneTemplate(*tmpl)
	return nil
}

func (r *memoryRepository) SaveTemplate(ctx context.Context, tmpl *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tmpl.ID] = *cloneTemplate(*tmpl)
	return nil
}

func (r *memoryRepository) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	return cloneTemplate(t), nil
}

func (r *memoryRepository) GetTemplateByCode(ctx context.Context, organizationID uuid.UUID, code string) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.templates {
		if t.OrganizationID == organizationID && t.TemplateCode == code {
			return cloneTemplate(t), nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) ListTemplates(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Template
	for _, t := range r.templates {
		if t.OrganizationID != organizationID || (activeOnly && !t.IsActive) {
			continue
		}
		out = append(out, *cloneTemplate(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateCode < out[j].TemplateCode })
	return out, nil
}

func (r *memoryRepository) CreateProgress(ctx context.Context, progress *Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.progress {
		if p.EmployeeID == progress.EmployeeID && p.IsActive() {
			return preconditionf(CodeOnboardingAlreadyActive, "employee %s already has an active onboarding", p.EmployeeID)
		}
	}
	r.progress[progress.ID] = *cloneProgress(*progress)
	return nil
}

func (r *memoryRepository) SaveProgress(ctx context.Context, progress *Progress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.progress[progress.ID] = *cloneProgress(*progress)
	return nil
}

func (r *memoryRepository) GetProgress(ctx context.Context, id uuid.UUID) (*Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[id]
	if !ok {
		return nil, nil
	}
	return cloneProgress(p), nil
}

func (r *memoryRepository) GetProgressForUpdate(ctx context.Context, id uuid.UUID) (*Progress, error) {
	return r.GetProgress(ctx, id)
}

func (r *memoryRepository) FindActiveProgress(ctx context.Context, employeeID uuid.UUID) (*Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.progress {
		if p.EmployeeID == employeeID && p.IsActive() {
			return cloneProgress(p), nil
		}
	}
	return nil, nil
}

func (r *memoryRepository) GetLatestProgressForEmployee(ctx context.Context, employeeID uuid.UUID) (*Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *Progress
	for _, p := range r.progress {
		if p.EmployeeID != employeeID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = cloneProgress(p)
		}
	}
	return latest, nil
}

func (r *memoryRepository) ListProgress(ctx context.Context, organizationID uuid.UUID, status *OverallStatus) ([]Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Progress
	for _, p := range r.progress {
		if p.OrganizationID != organizationID || (status != nil && p.OverallStatus != *status) {
			continue
		}
		p.StepStatuses = nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (r *memoryRepository) ListActiveProgressIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, p := range r.progress {
		if p.IsActive() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r *memoryRepository) SetCompletionEffectsPending(ctx context.Context, id uuid.UUID, pending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[id]
	if !ok {
		return nil
	}
	p.CompletionEffectsPending = pending
	r.progress[id] = p
	return nil
}

func (r *memoryRepository) stored(t *testing.T, id uuid.UUID) Progress {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[id]
	require.True(t, ok, "progress %s not stored", id)
	return p
}

// =====================================================
// Collaborator mocks
// =====================================================

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetEmployeeProfile(ctx context.Context, employeeID uuid.UUID) (*EmployeeProfile, error) {
	args := m.Called(ctx, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EmployeeProfile), args.Error(1)
}

func (m *MockDirectory) SetOnboardingStatus(ctx context.Context, employeeID uuid.UUID, status string) error {
	args := m.Called(ctx, employeeID, status)
	return args.Error(0)
}

func (m *MockDirectory) MarkOnboardingCompleted(ctx context.Context, employeeID uuid.UUID, completedAt time.Time, completedBy *uuid.UUID) error {
	args := m.Called(ctx, employeeID, completedAt, completedBy)
	return args.Error(0)
}

type MockDocumentDispatcher struct {
	mock.Mock
}

func (m *MockDocumentDispatcher) SendOnboardingDocuments(ctx context.Context, employeeID, organizationID uuid.UUID, actor *uuid.UUID) (int, error) {
	args := m.Called(ctx, employeeID, organizationID, actor)
	return args.Int(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishStepSchedule(ctx context.Context, notices []StepNotice) error {
	args := m.Called(ctx, notices)
	return args.Error(0)
}

// =====================================================
// Fixtures
// =====================================================

var testNow = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func idPtr(v uuid.UUID) *uuid.UUID { return &v }

// engineeringRequest is a four step template where step two waits on step one
func engineeringRequest() *TemplateRequest {
	return &TemplateRequest{
		TemplateCode:         "ENG-ONBOARD",
		TemplateName:         "Engineering onboarding",
		EmploymentType:       strPtr("full_time"),
		TargetCompletionDays: intPtr(14),
		Steps: []StepRequest{
			{StepNumber: 1, StepCode: "PERSONAL", StepName: "Personal information", Category: CategoryRequiredOnboarding, DueByDays: intPtr(1)},
			{StepNumber: 2, StepCode: "LAPTOP", StepName: "Laptop setup", Category: CategoryITSetup, AssignedTo: AssigneeSystem, DueByDays: intPtr(3), DependsOnStepCode: "PERSONAL"},
			{StepNumber: 3, StepCode: "SECURITY", StepName: "Security training", Category: CategoryCompliance, DueByDays: intPtr(7),
				ChecklistItems: []ChecklistItemRequest{
					{ItemOrder: 1, ItemName: "Watch video", ItemType: ItemVideo},
					{ItemOrder: 2, ItemName: "Accept policy", ItemType: ItemAcknowledgment, RequiresSignature: true},
				}},
			{StepNumber: 4, StepCode: "TEAM", StepName: "Meet the team", Category: CategoryOptional, AssignedTo: AssigneeManager, CanBeSkipped: true},
		},
	}
}

type harness struct {
	t         *testing.T
	ctx       context.Context
	org       uuid.UUID
	actor     *uuid.UUID
	now       time.Time
	repo      *memoryRepository
	directory *MockDirectory
	documents *MockDocumentDispatcher
	notifier  *MockNotifier
	service   *Service
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		t:         t,
		ctx:       context.Background(),
		org:       uuid.New(),
		actor:     idPtr(uuid.New()),
		now:       testNow,
		repo:      newMemoryRepository(),
		directory: new(MockDirectory),
		documents: new(MockDocumentDispatcher),
		notifier:  new(MockNotifier),
	}
	h.notifier.On("PublishStepSchedule", mock.Anything, mock.Anything).Return(nil).Maybe()
	h.service = NewService(h.repo, h.directory, h.documents, h.notifier, zap.NewNop(),
		WithClock(func() time.Time { return h.now }))
	t.Cleanup(h.service.Close)
	return h
}

// employee registers a full-time hire in the directory
func (h *harness) employee() *EmployeeProfile {
	profile := &EmployeeProfile{
		ID:             uuid.New(),
		OrganizationID: h.org,
		FullName:       "Ada Lovelace",
		EmploymentType: "full_time",
		CountryCode:    "GB",
		ManagerID:      idPtr(uuid.New()),
	}
	h.directory.On("GetEmployeeProfile", mock.Anything, profile.ID).Return(profile, nil).Maybe()
	h.directory.On("SetOnboardingStatus", mock.Anything, profile.ID, mock.Anything).Return(nil).Maybe()
	return profile
}

func (h *harness) template(req *TemplateRequest) *Template {
	tmpl, err := h.service.CreateTemplate(h.ctx, h.org, h.actor, req)
	require.NoError(h.t, err)
	return tmpl
}

func (h *harness) start(profile *EmployeeProfile) *ProgressView {
	view, err := h.service.StartOnboarding(h.ctx, h.org, profile.ID, nil, h.actor)
	require.NoError(h.t, err)
	return view
}

func (h *harness) act(view *ProgressView, code, action string) (*ProgressView, error) {
	return h.service.UpdateStepStatus(h.ctx, h.org, view.ID, stepID(h.t, view, code), action, "", h.actor)
}

func stepID(t *testing.T, view *ProgressView, code string) uuid.UUID {
	t.Helper()
	for _, s := range view.Steps {
		if s.StepCode == code {
			return s.StepID
		}
	}
	t.Fatalf("step %s not in view", code)
	return uuid.Nil
}

func stepState(t *testing.T, view *ProgressView, code string) StepState {
	t.Helper()
	for _, s := range view.Steps {
		if s.StepCode == code {
			return s.Status
		}
	}
	t.Fatalf("step %s not in view", code)
	return ""
}
