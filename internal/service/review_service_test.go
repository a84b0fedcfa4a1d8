package service

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
	"github.com/tedxecu/registration-api/pkg/jobs"
)

type mockReviewRepo struct {
	reg           *models.Registration
	takenTickets  map[string]bool
	decidedStatus models.PaymentStatus
	decidedTicket *string
	decidedAt     *time.Time
	ticketSent    bool
}

func (m *mockReviewRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if m.reg == nil {
		return nil, sql.ErrNoRows
	}
	return m.reg, nil
}

func (m *mockReviewRepo) TicketIDExists(ctx context.Context, ticketID string) (bool, error) {
	return m.takenTickets[ticketID], nil
}

func (m *mockReviewRepo) ApplyDecision(ctx context.Context, id string, status models.PaymentStatus, ticketID *string, confirmedAt *time.Time) error {
	m.decidedStatus = status
	m.decidedTicket = ticketID
	m.decidedAt = confirmedAt
	m.reg.PaymentStatus = status
	m.reg.TicketID = ticketID
	m.reg.ConfirmedAt = confirmedAt
	return nil
}

func (m *mockReviewRepo) MarkTicketSent(ctx context.Context, id string) error {
	m.ticketSent = true
	return nil
}

type mockQueue struct {
	jobs       []jobs.Job
	enqueueErr error
}

func (m *mockQueue) Enqueue(job jobs.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func pendingRegistration() *models.Registration {
	return &models.Registration{
		ID:            "r1",
		Name:          "Sara Ahmed",
		Email:         "sara@example.com",
		Phone:         "01012345678",
		University:    "Cairo University",
		PaymentStatus: models.PaymentStatusPending,
	}
}

func newReviewService(repo *mockReviewRepo, mail *mockMailer, queue ticketQueue, async bool) *ReviewService {
	return NewReviewService(repo, mail, queue, nil, nil, validator.New(), zap.NewNop(), ReviewConfig{
		Event:      models.EventInfo{Name: "TEDxECU 2025", Date: "June 20, 2025"},
		AsyncEmail: async,
	})
}

func TestDecideConfirm(t *testing.T) {
	repo := &mockReviewRepo{reg: pendingRegistration()}
	mail := &mockMailer{configured: true}
	svc := newReviewService(repo, mail, nil, false)

	result, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusConfirmed, result.Status)
	require.NotNil(t, result.TicketID)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, *result.TicketID)
	require.NotNil(t, result.ConfirmedAt)

	assert.Equal(t, models.PaymentStatusConfirmed, repo.decidedStatus)
	assert.True(t, repo.ticketSent)

	assert.True(t, result.Email.Attempted)
	assert.True(t, result.Email.Sent)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, subjectTicketReady, mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].HTML, *result.TicketID)
}

func TestDecideReject(t *testing.T) {
	repo := &mockReviewRepo{reg: pendingRegistration()}
	mail := &mockMailer{configured: true}
	svc := newReviewService(repo, mail, nil, false)

	result, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "rejected"})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusRejected, result.Status)
	assert.Nil(t, result.TicketID)
	assert.Nil(t, result.ConfirmedAt)
	assert.Nil(t, repo.decidedTicket)
	assert.Empty(t, mail.sent)
	assert.False(t, result.Email.Attempted)
}

func TestDecideAlreadyFinalized(t *testing.T) {
	reg := pendingRegistration()
	reg.PaymentStatus = models.PaymentStatusConfirmed
	svc := newReviewService(&mockReviewRepo{reg: reg}, &mockMailer{}, nil, false)

	_, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "rejected"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrFinalized.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already confirmed")
}

func TestDecideNotFound(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{}, &mockMailer{}, nil, false)

	_, err := svc.Decide(context.Background(), "missing", dto.UpdateStatusRequest{Status: "confirmed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDecideInvalidStatus(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{reg: pendingRegistration()}, &mockMailer{}, nil, false)

	_, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "pending"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDecideConfirmAsyncQueuesEmail(t *testing.T) {
	repo := &mockReviewRepo{reg: pendingRegistration()}
	mail := &mockMailer{configured: true}
	queue := &mockQueue{}
	svc := newReviewService(repo, mail, queue, true)

	result, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.True(t, result.Email.Attempted)
	assert.True(t, result.Email.Queued)
	assert.False(t, result.Email.Sent)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "r1", queue.jobs[0].Payload)
	assert.Empty(t, mail.sent)
}

func TestDecideEmailFailureDoesNotRollBack(t *testing.T) {
	repo := &mockReviewRepo{reg: pendingRegistration()}
	mail := &mockMailer{configured: true, sendErr: io.ErrUnexpectedEOF}
	svc := newReviewService(repo, mail, nil, false)

	result, err := svc.Decide(context.Background(), "r1", dto.UpdateStatusRequest{Status: "confirmed"})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusConfirmed, repo.decidedStatus)
	assert.True(t, result.Email.Attempted)
	assert.False(t, result.Email.Sent)
	assert.NotEmpty(t, result.Email.Error)
	assert.False(t, repo.ticketSent)
}

func TestNewTicketIDCollisionRetry(t *testing.T) {
	repo := &mockReviewRepo{reg: pendingRegistration(), takenTickets: map[string]bool{}}
	svc := newReviewService(repo, &mockMailer{configured: true}, nil, false)

	// A single draw must land somewhere in the six digit range even when
	// some candidates are taken.
	id, err := svc.newTicketID(context.Background())
	require.NoError(t, err)
	assert.Len(t, id, 6)
}

func TestSendTicketRequiresConfirmed(t *testing.T) {
	svc := newReviewService(&mockReviewRepo{reg: pendingRegistration()}, &mockMailer{configured: true}, nil, false)

	_, err := svc.SendTicket(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSendTicketUnconfiguredMailer(t *testing.T) {
	ticketID := "123456"
	reg := pendingRegistration()
	reg.PaymentStatus = models.PaymentStatusConfirmed
	reg.TicketID = &ticketID
	svc := newReviewService(&mockReviewRepo{reg: reg}, &mockMailer{configured: false}, nil, false)

	_, err := svc.SendTicket(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmailUnavailable.Code, appErrors.FromError(err).Code)
}

func TestSendTicketResend(t *testing.T) {
	ticketID := "123456"
	reg := pendingRegistration()
	reg.PaymentStatus = models.PaymentStatusConfirmed
	reg.TicketID = &ticketID
	repo := &mockReviewRepo{reg: reg}
	mail := &mockMailer{configured: true}
	svc := newReviewService(repo, mail, nil, false)

	result, err := svc.SendTicket(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.True(t, repo.ticketSent)
	require.Len(t, mail.sent, 1)
	assert.Contains(t, mail.sent[0].HTML, "123456")
}
