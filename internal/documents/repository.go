package documents

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	ListAutoSendTemplates(ctx context.Context, organizationID uuid.UUID) ([]DocumentTemplate, error)
	ListRequestedTemplateIDs(ctx context.Context, employeeID uuid.UUID, templateIDs []uuid.UUID) ([]uuid.UUID, error)
	CreateDocumentToSign(ctx context.Context, doc *DocumentToSign) error
	ListEmployeeDocuments(ctx context.Context, organizationID, employeeID uuid.UUID) ([]DocumentToSign, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListAutoSendTemplates(ctx context.Context, organizationID uuid.UUID) ([]DocumentTemplate, error) {
	var templates []DocumentTemplate
	query := `
		SELECT id, organization_id, name, description, document_type, file_storage_path,
			file_type, signature_required_from, COALESCE(send_order, 1) AS send_order
		FROM document_templates
		WHERE organization_id = $1
			AND auto_send_on_hire = TRUE
			AND is_active = TRUE
			AND deleted_at IS NULL
		ORDER BY send_order ASC, name ASC`
	if err := r.db.SelectContext(ctx, &templates, query, organizationID); err != nil {
		return nil, fmt.Errorf("failed to list auto-send templates: %w", err)
	}
	return templates, nil
}

// ListRequestedTemplateIDs returns which of the templates were already sent to the employee
func (r *postgresRepository) ListRequestedTemplateIDs(ctx context.Context, employeeID uuid.UUID, templateIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(templateIDs))
	for i, id := range templateIDs {
		ids[i] = id.String()
	}

	var requested []uuid.UUID
	query := `
		SELECT DISTINCT template_id
		FROM employee_documents_to_sign
		WHERE employee_id = $1
			AND template_id = ANY($2::uuid[])
			AND status NOT IN ('DECLINED', 'EXPIRED')`
	if err := r.db.SelectContext(ctx, &requested, query, employeeID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list requested documents: %w", err)
	}
	return requested, nil
}

func (r *postgresRepository) CreateDocumentToSign(ctx context.Context, doc *DocumentToSign) error {
	query := `
		INSERT INTO employee_documents_to_sign (
			id, organization_id, employee_id, template_id, document_name, document_type,
			description, file_storage_path, file_type, status, sent_at, expiry_date,
			employer_signature_required, created_by, created_at
		) VALUES (
			:id, :organization_id, :employee_id, :template_id, :document_name, :document_type,
			:description, :file_storage_path, :file_type, :status, :sent_at, :expiry_date,
			:employer_signature_required, :created_by, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("failed to create document to sign: %w", err)
	}
	return nil
}

func (r *postgresRepository) ListEmployeeDocuments(ctx context.Context, organizationID, employeeID uuid.UUID) ([]DocumentToSign, error) {
	var docs []DocumentToSign
	query := `
		SELECT id, organization_id, employee_id, template_id, document_name, document_type,
			description, file_storage_path, file_type, status, sent_at, expiry_date,
			employer_signature_required, created_by, created_at
		FROM employee_documents_to_sign
		WHERE organization_id = $1 AND employee_id = $2
		ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &docs, query, organizationID, employeeID); err != nil {
		return nil, fmt.Errorf("failed to list employee documents: %w", err)
	}
	return docs, nil
}
