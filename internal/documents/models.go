package documents

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusPending   DocumentStatus = "PENDING"
	StatusSent      DocumentStatus = "SENT"
	StatusViewed    DocumentStatus = "VIEWED"
	StatusSigned    DocumentStatus = "SIGNED"
	StatusCompleted DocumentStatus = "COMPLETED"
	StatusDeclined  DocumentStatus = "DECLINED"
	StatusExpired   DocumentStatus = "EXPIRED"
)

type SignatureRequiredFrom string

const (
	SignatureFromEmployee SignatureRequiredFrom = "EMPLOYEE"
	SignatureFromEmployer SignatureRequiredFrom = "EMPLOYER"
	SignatureFromBoth     SignatureRequiredFrom = "BOTH"
)

// DefaultSigningWindow is how long a sent document stays signable
const DefaultSigningWindow = 30 * 24 * time.Hour

// DocumentTemplate is an organization document that can be sent for signing
type DocumentTemplate struct {
	ID                    uuid.UUID              `json:"id" db:"id"`
	OrganizationID        uuid.UUID              `json:"organization_id" db:"organization_id"`
	Name                  string                 `json:"name" db:"name"`
	Description           *string                `json:"description,omitempty" db:"description"`
	DocumentType          string                 `json:"document_type" db:"document_type"`
	FileStoragePath       *string                `json:"file_storage_path,omitempty" db:"file_storage_path"`
	FileType              *string                `json:"file_type,omitempty" db:"file_type"`
	SignatureRequiredFrom *SignatureRequiredFrom `json:"signature_required_from,omitempty" db:"signature_required_from"`
	SendOrder             int                    `json:"send_order" db:"send_order"`
}

// RequiresEmployerSignature reports whether the employer must countersign
func (t *DocumentTemplate) RequiresEmployerSignature() bool {
	if t.SignatureRequiredFrom == nil {
		return false
	}
	return *t.SignatureRequiredFrom == SignatureFromEmployer || *t.SignatureRequiredFrom == SignatureFromBoth
}

// DocumentToSign is one signature request sent to an employee
type DocumentToSign struct {
	ID                        uuid.UUID      `json:"id" db:"id"`
	OrganizationID            uuid.UUID      `json:"organization_id" db:"organization_id"`
	EmployeeID                uuid.UUID      `json:"employee_id" db:"employee_id"`
	TemplateID                *uuid.UUID     `json:"template_id,omitempty" db:"template_id"`
	DocumentName              string         `json:"document_name" db:"document_name"`
	DocumentType              string         `json:"document_type" db:"document_type"`
	Description               *string        `json:"description,omitempty" db:"description"`
	FileStoragePath           string         `json:"file_storage_path" db:"file_storage_path"`
	FileType                  string         `json:"file_type" db:"file_type"`
	Status                    DocumentStatus `json:"status" db:"status"`
	SentAt                    *time.Time     `json:"sent_at,omitempty" db:"sent_at"`
	ExpiryDate                *time.Time     `json:"expiry_date,omitempty" db:"expiry_date"`
	EmployerSignatureRequired bool           `json:"employer_signature_required" db:"employer_signature_required"`
	CreatedBy                 *uuid.UUID     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt                 time.Time      `json:"created_at" db:"created_at"`
}
