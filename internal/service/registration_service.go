package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/internal/repository"
	"github.com/tedxecu/registration-api/pkg/email"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

// Latin letters, Arabic and Hebrew blocks, and basic name punctuation.
// Everything else is stripped before validation.
var nameCharset = regexp.MustCompile(`[^a-zA-Z\s\x{0600}-\x{06FF}\x{0750}-\x{077F}\x{08A0}-\x{08FF}\x{0590}-\x{05FF}.,'-]`)

var (
	emailPattern         = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	egyptianPhonePattern = regexp.MustCompile(`^01[0-9]{9}$`)
)

var duplicateStatusMessages = map[models.PaymentStatus]string{
	models.PaymentStatusPending:   "Your registration is already submitted and pending payment verification.",
	models.PaymentStatusConfirmed: "You are already registered and your payment has been confirmed.",
	models.PaymentStatusRejected:  "Your previous registration was rejected. Please contact support for assistance.",
}

const uploadFailedWarning = "Registration successful, but payment proof upload failed. Admin will contact you for verification."

type submitRegistrationRepo interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByEmail(ctx context.Context, email string) (*models.Registration, error)
}

type proofWriter interface {
	NewObjectName(originalName string) string
	SaveStream(filename string, r io.Reader) (string, error)
	PublicURL(filename string) string
}

type mailSender interface {
	Configured() bool
	Send(ctx context.Context, msg email.Message) (string, error)
}

type listingCache interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ProofUpload carries the uploaded payment proof file.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// SubmitRegistrationInput is the parsed intake form.
type SubmitRegistrationInput struct {
	Name       string
	Email      string
	Phone      string
	PhoneType  string
	University string
	Proof      *ProofUpload
}

// RegistrationConfig tunes the intake rules.
type RegistrationConfig struct {
	AllowedMIMEs     []string
	MaxFileSizeBytes int64
	Event            models.EventInfo
}

// RegistrationService handles the public intake and lookup flows.
type RegistrationService struct {
	repo      submitRegistrationRepo
	proofs    proofWriter
	mail      mailSender
	cache     listingCache
	validator *validator.Validate
	logger    *zap.Logger
	config    RegistrationConfig
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(repo submitRegistrationRepo, proofs proofWriter, mail mailSender, cache listingCache, validate *validator.Validate, logger *zap.Logger, config RegistrationConfig) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RegistrationService{repo: repo, proofs: proofs, mail: mail, cache: cache, validator: validate, logger: logger, config: config}
}

// Submit runs the full intake workflow. The proof upload is best-effort:
// a failed upload still creates the registration with a warning so the
// attendee is never lost, and the admin follows up manually.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitRegistrationInput) (*dto.SubmitRegistrationResult, error) {
	reg, err := s.validateSubmission(&input)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByEmail(ctx, reg.Email); err == nil && existing != nil {
		msg := "Email already registered. " + duplicateStatusMessages[existing.PaymentStatus]
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, msg)
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing registration")
	}

	warning := ""
	objectName := s.proofs.NewObjectName(input.Proof.Filename)
	if _, err := s.proofs.SaveStream(objectName, input.Proof.Content); err != nil {
		s.logger.Error("payment proof upload failed", zap.String("email", reg.Email), zap.Error(err))
		warning = uploadFailedWarning
	} else {
		url := s.proofs.PublicURL(objectName)
		reg.PaymentProofURL = &url
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "This email is already registered. Please use a different email address.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "registration failed")
	}

	s.invalidateListings(ctx)

	emailSent := s.sendConfirmationEmail(ctx, reg)

	result := &dto.SubmitRegistrationResult{
		Status:       dto.SubmitStatusCreated,
		Registration: reg,
		EmailSent:    emailSent,
	}
	if warning != "" {
		result.Status = dto.SubmitStatusWithWarning
		result.Warning = warning
	}
	return result, nil
}

// Check reports whether an email already has a registration and returns a
// trimmed public view of it.
func (s *RegistrationService) Check(ctx context.Context, req dto.CheckRegistrationRequest) (*dto.CheckRegistrationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "a valid email is required")
	}

	reg, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.CheckRegistrationResponse{Exists: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up registration")
	}

	return &dto.CheckRegistrationResponse{
		Exists: true,
		Registration: &dto.RegistrationSummary{
			Name:         reg.Name,
			Email:        reg.Email,
			Status:       reg.PaymentStatus,
			TicketID:     reg.TicketID,
			RegisteredAt: reg.CreatedAt,
		},
	}, nil
}

func (s *RegistrationService) validateSubmission(input *SubmitRegistrationInput) (*models.Registration, error) {
	name := strings.TrimSpace(nameCharset.ReplaceAllString(input.Name, ""))
	university := strings.TrimSpace(nameCharset.ReplaceAllString(input.University, ""))
	emailAddr := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)

	if name == "" || emailAddr == "" || phone == "" || university == "" || input.Proof == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "All fields are required")
	}
	if n := utf8.RuneCountInString(name); n < 5 || n > 50 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Name must be between 5 and 50 characters")
	}
	if n := utf8.RuneCountInString(university); n < 5 || n > 50 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "University name must be between 5 and 50 characters")
	}
	if !emailPattern.MatchString(emailAddr) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Please enter a valid email address")
	}

	phoneType := models.PhoneType(input.PhoneType)
	if phoneType == "" {
		phoneType = models.PhoneTypeEgyptian
	}
	if phoneType != models.PhoneTypeEgyptian && phoneType != models.PhoneTypeInternational {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown phone type")
	}
	if phoneType == models.PhoneTypeEgyptian && !egyptianPhonePattern.MatchString(phone) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Egyptian phone numbers must start with 01 and be 11 digits")
	}

	if !s.mimeAllowed(input.Proof.ContentType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Only JPG, PNG, and PDF files are accepted")
	}
	if input.Proof.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "File size must be less than 10MB")
	}

	return &models.Registration{
		Name:          name,
		Email:         emailAddr,
		Phone:         phone,
		PhoneType:     phoneType,
		University:    university,
		PaymentStatus: models.PaymentStatusPending,
	}, nil
}

func (s *RegistrationService) mimeAllowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range s.config.AllowedMIMEs {
		if ct == allowed {
			return true
		}
	}
	return false
}

func (s *RegistrationService) sendConfirmationEmail(ctx context.Context, reg *models.Registration) bool {
	if s.mail == nil || !s.mail.Configured() {
		s.logger.Warn("confirmation email skipped, sender not configured", zap.String("email", reg.Email))
		return false
	}

	html, err := renderConfirmationEmail(reg, s.config.Event)
	if err != nil {
		s.logger.Error("failed to render confirmation email", zap.Error(err))
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if _, err := s.mail.Send(sendCtx, email.Message{
		To:      reg.Email,
		Subject: subjectRegistrationReceived,
		HTML:    html,
	}); err != nil {
		s.logger.Error("confirmation email failed", zap.String("email", reg.Email), zap.Error(err))
		return false
	}
	return true
}

func (s *RegistrationService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "registrations:*"); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}
