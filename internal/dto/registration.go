package dto

import (
	"time"

	"github.com/tedxecu/registration-api/internal/models"
)

// Submit result statuses. Validation and duplicate failures are reported
// through the error envelope instead.
const (
	SubmitStatusCreated     = "created"
	SubmitStatusWithWarning = "createdWithWarning"
)

// SubmitRegistrationResult is returned on a successful intake.
type SubmitRegistrationResult struct {
	Status       string               `json:"status"`
	Registration *models.Registration `json:"registration"`
	Warning      string               `json:"warning,omitempty"`
	EmailSent    bool                 `json:"email_sent"`
}

// CheckRegistrationRequest looks up an existing registration by email.
type CheckRegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// RegistrationSummary is the public view of an existing registration.
type RegistrationSummary struct {
	Name         string               `json:"name"`
	Email        string               `json:"email"`
	Status       models.PaymentStatus `json:"status"`
	TicketID     *string              `json:"ticket_id"`
	RegisteredAt time.Time            `json:"registered_at"`
}

// CheckRegistrationResponse reports whether an email is already registered.
type CheckRegistrationResponse struct {
	Exists       bool                 `json:"exists"`
	Registration *RegistrationSummary `json:"registration,omitempty"`
}

// UpdateStatusRequest carries the admin review decision.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected"`
}

// TicketEmailResult reports the outcome of the post-decision ticket email as
// a value separate from the status update itself.
type TicketEmailResult struct {
	Attempted bool   `json:"attempted"`
	Sent      bool   `json:"sent"`
	Queued    bool   `json:"queued"`
	Error     string `json:"error,omitempty"`
}

// DecisionResult is returned after a successful review decision.
type DecisionResult struct {
	ID          string               `json:"id"`
	Status      models.PaymentStatus `json:"status"`
	TicketID    *string              `json:"ticket_id"`
	ConfirmedAt *time.Time           `json:"confirmed_at"`
	Email       TicketEmailResult    `json:"email"`
}

// FileCleanupResult reports the best-effort proof deletion alongside a
// registration delete.
type FileCleanupResult struct {
	Attempted bool   `json:"attempted"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
}

// DeleteResult describes a completed single-registration delete.
type DeleteResult struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	FileCleanup FileCleanupResult `json:"file_cleanup"`
}

// BulkDeleteRequest removes many registrations after an explicit confirmation.
type BulkDeleteRequest struct {
	IDs              []string `json:"ids" validate:"required,min=1"`
	ConfirmationText string   `json:"confirmation_text"`
}

// BatchError records a failed batch inside a bulk operation.
type BatchError struct {
	Batch int      `json:"batch"`
	Error string   `json:"error"`
	IDs   []string `json:"ids,omitempty"`
}

// BulkDeleteSummary tallies a bulk delete run. SuccessCount plus ErrorCount
// always accounts for every submitted id.
type BulkDeleteSummary struct {
	TotalAttempted int          `json:"total_attempted"`
	SuccessCount   int          `json:"success_count"`
	ErrorCount     int          `json:"error_count"`
	Errors         []BatchError `json:"errors,omitempty"`
}

// GenerateTestDataRequest controls synthetic data generation.
type GenerateTestDataRequest struct {
	Count int `json:"count"`
}

// TestDataSummary tallies a synthetic-data run.
type TestDataSummary struct {
	TotalAttempted     int            `json:"total_attempted"`
	SuccessCount       int            `json:"success_count"`
	ErrorCount         int            `json:"error_count"`
	StatusDistribution map[string]int `json:"status_distribution"`
}

// ProofLink is a short-lived signed download link for a payment proof.
type ProofLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EmailHealth reports availability of the email collaborator.
type EmailHealth struct {
	Configured bool   `json:"configured"`
	Status     string `json:"status"`
}
