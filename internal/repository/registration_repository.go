package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tedxecu/registration-api/internal/models"
)

// ErrDuplicateEmail is returned when an insert trips the unique constraint
// on the email column. The constraint is the authoritative duplicate check;
// the pre-insert lookup only exists for friendlier messages.
var ErrDuplicateEmail = errors.New("email already registered")

// RegistrationRepository manages persistence for registration records.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = "id, name, email, phone, phone_type, university, payment_proof_url, payment_status, ticket_id, created_at, confirmed_at, ticket_sent"

// Create inserts a new registration row.
func (r *RegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	if reg.PaymentStatus == "" {
		reg.PaymentStatus = models.PaymentStatusPending
	}
	const query = `INSERT INTO registrations (id, name, email, phone, phone_type, university, payment_proof_url, payment_status, ticket_id, created_at, confirmed_at, ticket_sent)
        VALUES (:id, :name, :email, :phone, :phone_type, :university, :payment_proof_url, :payment_status, :ticket_id, :created_at, :confirmed_at, :ticket_sent)`
	if _, err := r.db.NamedExecContext(ctx, query, reg); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// FindByEmail fetches a registration by email.
func (r *RegistrationRepository) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE email = $1", registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, email); err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByID fetches a registration by its primary key.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE id = $1", registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, id); err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByTicketID fetches a registration by its assigned ticket identifier.
func (r *RegistrationRepository) FindByTicketID(ctx context.Context, ticketID string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations WHERE ticket_id = $1", registrationColumns)
	var reg models.Registration
	if err := r.db.GetContext(ctx, &reg, query, ticketID); err != nil {
		return nil, err
	}
	return &reg, nil
}

// TicketIDExists reports whether a ticket identifier is already assigned.
func (r *RegistrationRepository) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM registrations WHERE ticket_id = $1 LIMIT 1", ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check ticket id: %w", err)
	}
	return true, nil
}

// List returns registrations matching the provided filters.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	base := "FROM registrations"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(university) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "name",
		"email":      "email",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", registrationColumns, base, column, order, size, offset)

	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return regs, total, nil
}

// All returns every registration ordered newest first, used by exports.
func (r *RegistrationRepository) All(ctx context.Context) ([]models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM registrations ORDER BY created_at DESC", registrationColumns)
	var regs []models.Registration
	if err := r.db.SelectContext(ctx, &regs, query); err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	return regs, nil
}

// ApplyDecision persists a review outcome. Ticket ID and confirmation time
// are written as given, so a reject clears confirmed_at by passing nil.
func (r *RegistrationRepository) ApplyDecision(ctx context.Context, id string, status models.PaymentStatus, ticketID *string, confirmedAt *time.Time) error {
	const query = `UPDATE registrations SET payment_status = $2, ticket_id = $3, confirmed_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, ticketID, confirmedAt); err != nil {
		return fmt.Errorf("apply decision: %w", err)
	}
	return nil
}

// MarkTicketSent records a successful ticket email delivery.
func (r *RegistrationRepository) MarkTicketSent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE registrations SET ticket_sent = true WHERE id = $1", id); err != nil {
		return fmt.Errorf("mark ticket sent: %w", err)
	}
	return nil
}

// Delete removes a single registration and reports affected rows.
func (r *RegistrationRepository) Delete(ctx context.Context, id string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = $1", id)
	if err != nil {
		return 0, fmt.Errorf("delete registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete registration rows: %w", err)
	}
	return affected, nil
}

// DeleteBatch removes the given ids in one statement and reports how many
// rows went away.
func (r *RegistrationRepository) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM registrations WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete registration batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete registration batch rows: %w", err)
	}
	return affected, nil
}

// InsertBatch inserts many registrations in one round trip.
func (r *RegistrationRepository) InsertBatch(ctx context.Context, regs []models.Registration) error {
	if len(regs) == 0 {
		return nil
	}
	for i := range regs {
		if regs[i].ID == "" {
			regs[i].ID = uuid.NewString()
		}
		if regs[i].CreatedAt.IsZero() {
			regs[i].CreatedAt = time.Now().UTC()
		}
	}
	const query = `INSERT INTO registrations (id, name, email, phone, phone_type, university, payment_proof_url, payment_status, ticket_id, created_at, confirmed_at, ticket_sent)
        VALUES (:id, :name, :email, :phone, :phone_type, :university, :payment_proof_url, :payment_status, :ticket_id, :created_at, :confirmed_at, :ticket_sent)`
	if _, err := r.db.NamedExecContext(ctx, query, regs); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert registration batch: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
