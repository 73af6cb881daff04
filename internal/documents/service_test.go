package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListAutoSendTemplates(ctx context.Context, organizationID uuid.UUID) ([]DocumentTemplate, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).([]DocumentTemplate), args.Error(1)
}

func (m *MockRepository) ListRequestedTemplateIDs(ctx context.Context, employeeID uuid.UUID, templateIDs []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, employeeID, templateIDs)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockRepository) CreateDocumentToSign(ctx context.Context, doc *DocumentToSign) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockRepository) ListEmployeeDocuments(ctx context.Context, organizationID, employeeID uuid.UUID) ([]DocumentToSign, error) {
	args := m.Called(ctx, organizationID, employeeID)
	return args.Get(0).([]DocumentToSign), args.Error(1)
}

func newTestDispatcher(repo Repository) *Dispatcher {
	d := NewDispatcher(repo, zap.NewNop())
	d.now = func() time.Time { return time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestSendOnboardingDocuments(t *testing.T) {
	mockRepo := new(MockRepository)
	dispatcher := newTestDispatcher(mockRepo)

	ctx := context.Background()
	org, employee, actor := uuid.New(), uuid.New(), uuid.New()
	both := SignatureFromBoth
	path, fileType := "templates/contract.pdf", "pdf"
	contract := DocumentTemplate{ID: uuid.New(), OrganizationID: org, Name: "Employment contract", DocumentType: "CONTRACT",
		FileStoragePath: &path, FileType: &fileType, SignatureRequiredFrom: &both, SendOrder: 1}
	handbook := DocumentTemplate{ID: uuid.New(), OrganizationID: org, Name: "Handbook", DocumentType: "POLICY", SendOrder: 2}
	nda := DocumentTemplate{ID: uuid.New(), OrganizationID: org, Name: "NDA", DocumentType: "NDA", SendOrder: 3}

	mockRepo.On("ListAutoSendTemplates", ctx, org).Return([]DocumentTemplate{contract, handbook, nda}, nil)
	mockRepo.On("ListRequestedTemplateIDs", ctx, employee, []uuid.UUID{contract.ID, handbook.ID, nda.ID}).
		Return([]uuid.UUID{handbook.ID}, nil)

	var created []*DocumentToSign
	mockRepo.On("CreateDocumentToSign", ctx, mock.AnythingOfType("*documents.DocumentToSign")).
		Run(func(args mock.Arguments) { created = append(created, args.Get(1).(*DocumentToSign)) }).
		Return(nil)

	sent, err := dispatcher.SendOnboardingDocuments(ctx, employee, org, &actor)

	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, created, 2)

	first := created[0]
	assert.Equal(t, "Employment contract", first.DocumentName)
	assert.Equal(t, StatusSent, first.Status)
	assert.Equal(t, contract.ID, *first.TemplateID)
	assert.Equal(t, "templates/contract.pdf", first.FileStoragePath)
	assert.True(t, first.EmployerSignatureRequired)
	assert.Equal(t, time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC), *first.ExpiryDate)
	assert.Equal(t, actor, *first.CreatedBy)

	assert.Equal(t, "NDA", created[1].DocumentName)
	assert.False(t, created[1].EmployerSignatureRequired)

	mockRepo.AssertExpectations(t)
}

func TestSendOnboardingDocumentsWithoutTemplates(t *testing.T) {
	mockRepo := new(MockRepository)
	dispatcher := newTestDispatcher(mockRepo)
	ctx := context.Background()
	org := uuid.New()

	mockRepo.On("ListAutoSendTemplates", ctx, org).Return([]DocumentTemplate{}, nil)

	sent, err := dispatcher.SendOnboardingDocuments(ctx, uuid.New(), org, nil)
	assert.NoError(t, err)
	assert.Zero(t, sent)
	mockRepo.AssertNotCalled(t, "CreateDocumentToSign", mock.Anything, mock.Anything)
}

func TestSendOnboardingDocumentsStopsOnInsertError(t *testing.T) {
	mockRepo := new(MockRepository)
	dispatcher := newTestDispatcher(mockRepo)
	ctx := context.Background()
	org, employee := uuid.New(), uuid.New()
	templates := []DocumentTemplate{
		{ID: uuid.New(), OrganizationID: org, Name: "Contract"},
		{ID: uuid.New(), OrganizationID: org, Name: "Handbook"},
	}

	mockRepo.On("ListAutoSendTemplates", ctx, org).Return(templates, nil)
	mockRepo.On("ListRequestedTemplateIDs", ctx, employee, mock.Anything).Return([]uuid.UUID{}, nil)
	mockRepo.On("CreateDocumentToSign", ctx, mock.Anything).Return(nil).Once()
	mockRepo.On("CreateDocumentToSign", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

	sent, err := dispatcher.SendOnboardingDocuments(ctx, employee, org, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, sent)
}
