package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/internal/repository"
	"github.com/tedxecu/registration-api/pkg/email"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

type mockSubmitRepo struct {
	existing  *models.Registration
	created   *models.Registration
	createErr error
}

func (m *mockSubmitRepo) Create(ctx context.Context, reg *models.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	reg.ID = "new-id"
	m.created = reg
	return nil
}

func (m *mockSubmitRepo) FindByEmail(ctx context.Context, email string) (*models.Registration, error) {
	if m.existing == nil {
		return nil, sql.ErrNoRows
	}
	return m.existing, nil
}

type mockProofWriter struct {
	saved   string
	saveErr error
}

func (m *mockProofWriter) NewObjectName(originalName string) string { return "12345-abcdef.jpg" }

func (m *mockProofWriter) SaveStream(filename string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.saved = filename
	return "/tmp/" + filename, nil
}

func (m *mockProofWriter) PublicURL(filename string) string {
	return "http://localhost:8080/files/" + filename
}

type mockMailer struct {
	configured bool
	sendErr    error
	sent       []email.Message
}

func (m *mockMailer) Configured() bool { return m.configured }

func (m *mockMailer) Send(ctx context.Context, msg email.Message) (string, error) {
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.sent = append(m.sent, msg)
	return "msg-id", nil
}

func validInput() SubmitRegistrationInput {
	return SubmitRegistrationInput{
		Name:       "Sara Ahmed",
		Email:      "sara@example.com",
		Phone:      "01012345678",
		PhoneType:  "egyptian",
		University: "Cairo University",
		Proof: &ProofUpload{
			Filename:    "receipt.jpg",
			ContentType: "image/jpeg",
			Size:        1024,
			Content:     strings.NewReader("binary"),
		},
	}
}

func newRegistrationService(repo *mockSubmitRepo, proofs *mockProofWriter, mail *mockMailer) *RegistrationService {
	return NewRegistrationService(repo, proofs, mail, nil, validator.New(), zap.NewNop(), RegistrationConfig{
		AllowedMIMEs:     []string{"image/jpeg", "image/jpg", "image/png", "application/pdf"},
		MaxFileSizeBytes: 10 * 1024 * 1024,
		Event:            models.EventInfo{Name: "TEDxECU 2025"},
	})
}

func TestSubmitSuccess(t *testing.T) {
	repo := &mockSubmitRepo{}
	proofs := &mockProofWriter{}
	mail := &mockMailer{configured: true}
	svc := newRegistrationService(repo, proofs, mail)

	result, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, dto.SubmitStatusCreated, result.Status)
	assert.True(t, result.EmailSent)
	assert.Empty(t, result.Warning)

	require.NotNil(t, repo.created)
	assert.Equal(t, models.PaymentStatusPending, repo.created.PaymentStatus)
	require.NotNil(t, repo.created.PaymentProofURL)
	assert.Contains(t, *repo.created.PaymentProofURL, "12345-abcdef.jpg")

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "sara@example.com", mail.sent[0].To)
	assert.Equal(t, subjectRegistrationReceived, mail.sent[0].Subject)
	assert.Contains(t, mail.sent[0].HTML, "Sara Ahmed")
}

func TestSubmitUploadFailureStillRegisters(t *testing.T) {
	repo := &mockSubmitRepo{}
	proofs := &mockProofWriter{saveErr: io.ErrUnexpectedEOF}
	mail := &mockMailer{configured: true}
	svc := newRegistrationService(repo, proofs, mail)

	result, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, dto.SubmitStatusWithWarning, result.Status)
	assert.Equal(t, uploadFailedWarning, result.Warning)
	require.NotNil(t, repo.created)
	assert.Nil(t, repo.created.PaymentProofURL)
}

func TestSubmitDuplicateMessages(t *testing.T) {
	cases := []struct {
		status  models.PaymentStatus
		message string
	}{
		{models.PaymentStatusPending, "pending payment verification"},
		{models.PaymentStatusConfirmed, "payment has been confirmed"},
		{models.PaymentStatusRejected, "contact support"},
	}

	for _, tc := range cases {
		repo := &mockSubmitRepo{existing: &models.Registration{Email: "sara@example.com", PaymentStatus: tc.status}}
		svc := newRegistrationService(repo, &mockProofWriter{}, &mockMailer{})

		_, err := svc.Submit(context.Background(), validInput())
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErr.Code)
		assert.Contains(t, appErr.Message, "Email already registered.")
		assert.Contains(t, appErr.Message, tc.message)
	}
}

func TestSubmitConstraintRace(t *testing.T) {
	repo := &mockSubmitRepo{createErr: repository.ErrDuplicateEmail}
	svc := newRegistrationService(repo, &mockProofWriter{}, &mockMailer{})

	_, err := svc.Submit(context.Background(), validInput())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "use a different email address")
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*SubmitRegistrationInput)
		message string
	}{
		{
			name:    "short name",
			mutate:  func(in *SubmitRegistrationInput) { in.Name = "Ali" },
			message: "Name must be between 5 and 50 characters",
		},
		{
			name:    "name is all stripped characters",
			mutate:  func(in *SubmitRegistrationInput) { in.Name = "12345678" },
			message: "All fields are required",
		},
		{
			name:    "short university",
			mutate:  func(in *SubmitRegistrationInput) { in.University = "ECU" },
			message: "University name must be between 5 and 50 characters",
		},
		{
			name:    "bad email",
			mutate:  func(in *SubmitRegistrationInput) { in.Email = "not-an-email" },
			message: "Please enter a valid email address",
		},
		{
			name:    "bad egyptian phone",
			mutate:  func(in *SubmitRegistrationInput) { in.Phone = "0212345678" },
			message: "Egyptian phone numbers must start with 01 and be 11 digits",
		},
		{
			name:    "bad mime type",
			mutate:  func(in *SubmitRegistrationInput) { in.Proof.ContentType = "image/gif" },
			message: "Only JPG, PNG, and PDF files are accepted",
		},
		{
			name:    "oversized file",
			mutate:  func(in *SubmitRegistrationInput) { in.Proof.Size = 11 * 1024 * 1024 },
			message: "File size must be less than 10MB",
		},
		{
			name:    "missing proof",
			mutate:  func(in *SubmitRegistrationInput) { in.Proof = nil },
			message: "All fields are required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newRegistrationService(&mockSubmitRepo{}, &mockProofWriter{}, &mockMailer{})
			input := validInput()
			tc.mutate(&input)

			_, err := svc.Submit(context.Background(), input)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestSubmitInternationalPhoneSkipsEgyptianRule(t *testing.T) {
	repo := &mockSubmitRepo{}
	svc := newRegistrationService(repo, &mockProofWriter{}, &mockMailer{})

	input := validInput()
	input.PhoneType = "international"
	input.Phone = "+4915123456789"

	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, models.PhoneTypeInternational, repo.created.PhoneType)
}

func TestSubmitArabicNameCounted(t *testing.T) {
	repo := &mockSubmitRepo{}
	svc := newRegistrationService(repo, &mockProofWriter{}, &mockMailer{})

	input := validInput()
	input.Name = "سارة أحمد محمد"

	_, err := svc.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "سارة أحمد محمد", repo.created.Name)
}

func TestSubmitEmailFailureDoesNotFail(t *testing.T) {
	repo := &mockSubmitRepo{}
	mail := &mockMailer{configured: true, sendErr: io.ErrUnexpectedEOF}
	svc := newRegistrationService(repo, &mockProofWriter{}, mail)

	result, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.Equal(t, dto.SubmitStatusCreated, result.Status)
}

func TestCheckRegistration(t *testing.T) {
	ticketID := "123456"
	repo := &mockSubmitRepo{existing: &models.Registration{
		Name:          "Sara Ahmed",
		Email:         "sara@example.com",
		PaymentStatus: models.PaymentStatusConfirmed,
		TicketID:      &ticketID,
	}}
	svc := newRegistrationService(repo, &mockProofWriter{}, &mockMailer{})

	resp, err := svc.Check(context.Background(), dto.CheckRegistrationRequest{Email: "sara@example.com"})
	require.NoError(t, err)
	assert.True(t, resp.Exists)
	require.NotNil(t, resp.Registration)
	assert.Equal(t, models.PaymentStatusConfirmed, resp.Registration.Status)
	assert.Equal(t, &ticketID, resp.Registration.TicketID)
}

func TestCheckRegistrationNotFound(t *testing.T) {
	svc := newRegistrationService(&mockSubmitRepo{}, &mockProofWriter{}, &mockMailer{})

	resp, err := svc.Check(context.Background(), dto.CheckRegistrationRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.False(t, resp.Exists)
	assert.Nil(t, resp.Registration)
}

func TestCheckRegistrationInvalidEmail(t *testing.T) {
	svc := newRegistrationService(&mockSubmitRepo{}, &mockProofWriter{}, &mockMailer{})

	_, err := svc.Check(context.Background(), dto.CheckRegistrationRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
