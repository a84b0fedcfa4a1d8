package models

import "time"

// PaymentStatus is the three-valued review state of a registration.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Valid reports whether the status is one of the known values.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusConfirmed, PaymentStatusRejected:
		return true
	}
	return false
}

// PhoneType distinguishes the Egyptian number format from everything else.
type PhoneType string

const (
	PhoneTypeEgyptian      PhoneType = "egyptian"
	PhoneTypeInternational PhoneType = "international"
)

// Registration is one attendee's submitted record.
type Registration struct {
	ID              string        `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	Email           string        `db:"email" json:"email"`
	Phone           string        `db:"phone" json:"phone"`
	PhoneType       PhoneType     `db:"phone_type" json:"phone_type"`
	University      string        `db:"university" json:"university"`
	PaymentProofURL *string       `db:"payment_proof_url" json:"payment_proof_url"`
	PaymentStatus   PaymentStatus `db:"payment_status" json:"payment_status"`
	TicketID        *string       `db:"ticket_id" json:"ticket_id"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	ConfirmedAt     *time.Time    `db:"confirmed_at" json:"confirmed_at"`
	TicketSent      bool          `db:"ticket_sent" json:"ticket_sent"`
}

// RegistrationFilter captures filtering criteria for the admin list.
type RegistrationFilter struct {
	Status    PaymentStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
