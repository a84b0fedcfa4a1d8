package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/pkg/email"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
	"github.com/tedxecu/registration-api/pkg/jobs"
)

// ticketIDAttempts bounds collision retries when drawing a ticket number.
const ticketIDAttempts = 5

type reviewRepo interface {
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	TicketIDExists(ctx context.Context, ticketID string) (bool, error)
	ApplyDecision(ctx context.Context, id string, status models.PaymentStatus, ticketID *string, confirmedAt *time.Time) error
	MarkTicketSent(ctx context.Context, id string) error
}

type ticketQueue interface {
	Enqueue(job jobs.Job) error
}

type emailMetrics interface {
	RecordEmailSent()
	RecordEmailFailed()
}

// ReviewConfig tunes the review workflow.
type ReviewConfig struct {
	Event      models.EventInfo
	AsyncEmail bool
}

// ReviewService applies admin decisions to pending registrations and owns
// ticket issuance and delivery.
type ReviewService struct {
	repo      reviewRepo
	mail      mailSender
	queue     ticketQueue
	cache     listingCache
	metrics   emailMetrics
	validator *validator.Validate
	logger    *zap.Logger
	config    ReviewConfig
}

// NewReviewService constructs a ReviewService.
func NewReviewService(repo reviewRepo, mail mailSender, queue ticketQueue, cache listingCache, metrics emailMetrics, validate *validator.Validate, logger *zap.Logger, config ReviewConfig) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReviewService{repo: repo, mail: mail, queue: queue, cache: cache, metrics: metrics, validator: validate, logger: logger, config: config}
}

// Decide applies a confirm or reject decision to a pending registration.
// Only pending registrations can be decided. A confirm assigns a ticket
// number before the status is written, so a confirmed row always carries
// its ticket. The ticket email runs after the database write and its
// outcome never rolls the decision back.
func (s *ReviewService) Decide(ctx context.Context, id string, req dto.UpdateStatusRequest) (*dto.DecisionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status must be confirmed or rejected")
	}

	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	if reg.PaymentStatus != models.PaymentStatusPending {
		return nil, appErrors.Clone(appErrors.ErrFinalized, fmt.Sprintf("registration is already %s", reg.PaymentStatus))
	}

	status := models.PaymentStatus(req.Status)
	result := &dto.DecisionResult{ID: reg.ID, Status: status}

	switch status {
	case models.PaymentStatusConfirmed:
		ticketID, err := s.newTicketID(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate ticket number")
		}
		confirmedAt := time.Now().UTC()
		if err := s.repo.ApplyDecision(ctx, reg.ID, status, &ticketID, &confirmedAt); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to confirm registration")
		}
		reg.PaymentStatus = status
		reg.TicketID = &ticketID
		reg.ConfirmedAt = &confirmedAt
		result.TicketID = &ticketID
		result.ConfirmedAt = &confirmedAt
		result.Email = s.dispatchTicketEmail(ctx, reg)

	case models.PaymentStatusRejected:
		if err := s.repo.ApplyDecision(ctx, reg.ID, status, nil, nil); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
		}

	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be confirmed or rejected")
	}

	s.invalidate(ctx)
	return result, nil
}

// SendTicket re-sends the ticket email for a confirmed registration.
func (s *ReviewService) SendTicket(ctx context.Context, id string) (*dto.TicketEmailResult, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	if reg.PaymentStatus != models.PaymentStatusConfirmed || reg.TicketID == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "registration has no confirmed ticket")
	}

	if s.mail == nil || !s.mail.Configured() {
		return nil, appErrors.Clone(appErrors.ErrEmailUnavailable, "Email service not configured")
	}

	if err := s.DeliverTicket(ctx, reg.ID); err != nil {
		return &dto.TicketEmailResult{Attempted: true, Error: err.Error()}, nil
	}
	return &dto.TicketEmailResult{Attempted: true, Sent: true}, nil
}

// DeliverTicket renders and sends the ticket email, then marks the row as
// sent. It is the queue handler for asynchronous delivery.
func (s *ReviewService) DeliverTicket(ctx context.Context, id string) error {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load registration %s: %w", id, err)
	}
	if reg.TicketID == nil {
		return fmt.Errorf("registration %s has no ticket", id)
	}

	html, err := renderTicketEmail(reg, s.config.Event, *reg.TicketID)
	if err != nil {
		return err
	}

	if _, err := s.mail.Send(ctx, email.Message{
		To:      reg.Email,
		Subject: subjectTicketReady,
		HTML:    html,
	}); err != nil {
		if s.metrics != nil {
			s.metrics.RecordEmailFailed()
		}
		return fmt.Errorf("send ticket email: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordEmailSent()
	}

	if err := s.repo.MarkTicketSent(ctx, reg.ID); err != nil {
		s.logger.Warn("failed to mark ticket sent", zap.String("id", reg.ID), zap.Error(err))
	}
	s.invalidate(ctx)
	return nil
}

func (s *ReviewService) dispatchTicketEmail(ctx context.Context, reg *models.Registration) dto.TicketEmailResult {
	if s.mail == nil || !s.mail.Configured() {
		s.logger.Warn("ticket email skipped, sender not configured", zap.String("id", reg.ID))
		return dto.TicketEmailResult{}
	}

	if s.config.AsyncEmail && s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Payload: reg.ID})
		if err != nil {
			s.logger.Error("failed to enqueue ticket email", zap.String("id", reg.ID), zap.Error(err))
			return dto.TicketEmailResult{Attempted: true, Error: err.Error()}
		}
		return dto.TicketEmailResult{Attempted: true, Queued: true}
	}

	if err := s.DeliverTicket(ctx, reg.ID); err != nil {
		s.logger.Error("ticket email failed", zap.String("id", reg.ID), zap.Error(err))
		return dto.TicketEmailResult{Attempted: true, Error: err.Error()}
	}
	return dto.TicketEmailResult{Attempted: true, Sent: true}
}

// newTicketID draws a random six digit ticket number, retrying on the rare
// collision with an existing row.
func (s *ReviewService) newTicketID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < ticketIDAttempts; attempt++ {
		candidate := fmt.Sprintf("%d", 100000+rand.Intn(900000))
		exists, err := s.repo.TicketIDExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a free ticket number after %d attempts", ticketIDAttempts)
}

func (s *ReviewService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "registrations:*"); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}
