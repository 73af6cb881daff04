package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher sends an organization's auto-send templates to new employees for signing
type Dispatcher struct {
	repo   Repository
	now    func() time.Time
	logger *zap.Logger
}

func NewDispatcher(repo Repository, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// SendOnboardingDocuments creates one signature request per auto-send template in
// send order. Templates already sent to the employee are skipped so a retry does
// not duplicate requests. It returns the number of requests created.
func (d *Dispatcher) SendOnboardingDocuments(ctx context.Context, employeeID, organizationID uuid.UUID, actor *uuid.UUID) (int, error) {
	templates, err := d.repo.ListAutoSendTemplates(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(templates))
	for i, t := range templates {
		ids[i] = t.ID
	}
	requested, err := d.repo.ListRequestedTemplateIDs(ctx, employeeID, ids)
	if err != nil {
		return 0, err
	}
	skip := make(map[uuid.UUID]bool, len(requested))
	for _, id := range requested {
		skip[id] = true
	}

	now := d.now()
	sent := 0
	for _, t := range templates {
		if skip[t.ID] {
			continue
		}
		doc := newDocumentToSign(t, employeeID, actor, now)
		if err := d.repo.CreateDocumentToSign(ctx, doc); err != nil {
			return sent, err
		}
		sent++

		d.logger.Info("Auto-sent onboarding document",
			zap.String("document_id", doc.ID.String()),
			zap.String("template", t.Name),
			zap.String("employee_id", employeeID.String()))
	}
	return sent, nil
}

// ListEmployeeDocuments returns the signature requests sent to an employee
func (d *Dispatcher) ListEmployeeDocuments(ctx context.Context, organizationID, employeeID uuid.UUID) ([]DocumentToSign, error) {
	return d.repo.ListEmployeeDocuments(ctx, organizationID, employeeID)
}

func newDocumentToSign(t DocumentTemplate, employeeID uuid.UUID, actor *uuid.UUID, now time.Time) *DocumentToSign {
	templateID := t.ID
	sentAt := now
	expiry := now.Add(DefaultSigningWindow)
	doc := &DocumentToSign{
		ID:                        uuid.New(),
		OrganizationID:            t.OrganizationID,
		EmployeeID:                employeeID,
		TemplateID:                &templateID,
		DocumentName:              t.Name,
		DocumentType:              t.DocumentType,
		Description:               t.Description,
		Status:                    StatusSent,
		SentAt:                    &sentAt,
		ExpiryDate:                &expiry,
		EmployerSignatureRequired: t.RequiresEmployerSignature(),
		CreatedBy:                 actor,
		CreatedAt:                 now,
	}
	if t.FileStoragePath != nil {
		doc.FileStoragePath = *t.FileStoragePath
	}
	if t.FileType != nil {
		doc.FileType = *t.FileType
	}
	return doc
}
