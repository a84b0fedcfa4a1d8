package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/pkg/export"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

var exportHeaders = []string{
	"Name",
	"Email",
	"Phone",
	"University",
	"Payment Status",
	"Ticket ID",
	"Registration Date",
	"Confirmation Date",
	"Ticket Sent",
}

// Pools for synthetic registrations. Names mix Egyptian and western entries
// so the dashboard resembles real traffic during demos.
var (
	testFirstNames = []string{
		"Ahmed", "Mohamed", "Omar", "Ali", "Hassan", "Mahmoud", "Youssef", "Khaled", "Amr", "Tamer",
		"Fatma", "Aisha", "Maryam", "Nour", "Sara", "Dina", "Rana", "Heba", "Yasmin", "Nada",
		"John", "David", "Michael", "James", "Robert", "William", "Richard", "Joseph", "Thomas", "Christopher",
		"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
	}
	testLastNames = []string{
		"Ibrahim", "Hassan", "Mohamed", "Ali", "Mahmoud", "Ahmed", "Omar", "Youssef", "Khaled", "Amr",
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
		"Wilson", "Anderson", "Taylor", "Thomas", "Hernandez", "Moore", "Martin", "Jackson", "Thompson", "White",
	}
	testUniversities = []string{
		"Cairo University", "American University in Cairo", "Ain Shams University", "Alexandria University",
		"Helwan University", "Mansoura University", "Assiut University", "Zagazig University",
		"Tanta University", "Suez Canal University", "Benha University", "Fayoum University",
		"Beni-Suef University", "Minia University", "South Valley University", "Egyptian Chinese University",
		"German University in Cairo", "British University in Egypt", "Future University in Egypt",
		"Modern Sciences and Arts University",
	}
	testEmailDomains  = []string{"gmail.com", "yahoo.com", "hotmail.com", "outlook.com", "student.edu.eg"}
	testPhonePrefixes = []string{"010", "011", "012", "015"}
	testStatuses      = []models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusConfirmed, models.PaymentStatusRejected}
)

type adminRepo interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	All(ctx context.Context) ([]models.Registration, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	Delete(ctx context.Context, id string) (int64, error)
	DeleteBatch(ctx context.Context, ids []string) (int64, error)
	InsertBatch(ctx context.Context, regs []models.Registration) error
}

type listCacheRepo interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type proofRemover interface {
	Delete(filename string) error
	FilenameFromURL(rawURL string) string
}

type proofLinkSigner interface {
	Generate(registrationID, filename string) (string, time.Time, error)
}

// AdminConfig tunes the dashboard operations.
type AdminConfig struct {
	CacheEnabled      bool
	CacheTTL          time.Duration
	DeleteBatchSize   int
	InsertBatchSize   int
	InterBatchDelay   time.Duration
	TestDataDefault   int
	ConfirmationText  string
	ProofURLBase      string
	SignedLinkEnabled bool
}

// AdminService backs the review dashboard listing, cleanup, and export
// operations.
type AdminService struct {
	repo      adminRepo
	cache     listCacheRepo
	proofs    proofRemover
	signer    proofLinkSigner
	mail      mailSender
	validator *validator.Validate
	logger    *zap.Logger
	config    AdminConfig
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminRepo, cache listCacheRepo, proofs proofRemover, signer proofLinkSigner, mail mailSender, validate *validator.Validate, logger *zap.Logger, config AdminConfig) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DeleteBatchSize <= 0 {
		config.DeleteBatchSize = 10
	}
	if config.InsertBatchSize <= 0 {
		config.InsertBatchSize = 50
	}
	if config.TestDataDefault <= 0 {
		config.TestDataDefault = 500
	}
	return &AdminService{repo: repo, cache: cache, proofs: proofs, signer: signer, mail: mail, validator: validate, logger: logger, config: config}
}

type cachedListing struct {
	Items      []models.Registration `json:"items"`
	Pagination models.Pagination     `json:"pagination"`
}

// List returns a filtered page of registrations. Results are cached briefly
// when Redis is wired; every write path invalidates the whole listing
// keyspace.
func (s *AdminService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, models.Pagination{}, appErrors.Clone(appErrors.ErrValidation, "status must be pending, confirmed, or rejected")
	}

	key := s.listingKey(filter)
	if s.config.CacheEnabled && s.cache != nil {
		var cached cachedListing
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Items, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("listing cache read failed", zap.Error(err))
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch registrations")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := models.Pagination{Page: page, PageSize: size, TotalCount: total}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedListing{Items: items, Pagination: pagination}, s.config.CacheTTL); err != nil {
			s.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return items, pagination, nil
}

// Get returns one registration with full details.
func (s *AdminService) Get(ctx context.Context, id string) (*models.Registration, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	return reg, nil
}

// Delete removes one registration and attempts to remove its stored proof.
// File cleanup is best-effort and its outcome is reported, not fatal.
func (s *AdminService) Delete(ctx context.Context, id string) (*dto.DeleteResult, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found - it may have already been deleted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	cleanup := dto.FileCleanupResult{Success: true, Message: "No file to delete"}
	if reg.PaymentProofURL != nil && s.proofs != nil {
		cleanup.Attempted = true
		filename := s.proofs.FilenameFromURL(*reg.PaymentProofURL)
		if filename == "" {
			cleanup.Success = false
			cleanup.Message = "Could not resolve stored file name"
		} else if err := s.proofs.Delete(filename); err != nil {
			s.logger.Warn("payment proof cleanup failed", zap.String("id", id), zap.Error(err))
			cleanup.Success = false
			cleanup.Message = fmt.Sprintf("File deletion failed: %v", err)
		} else {
			cleanup.Message = "File deleted successfully"
		}
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Registration not found - it may have already been deleted")
	}

	s.invalidate(ctx)
	return &dto.DeleteResult{ID: reg.ID, Name: reg.Name, Email: reg.Email, FileCleanup: cleanup}, nil
}

// BulkDelete removes many registrations in fixed-size batches with a short
// pause between batches. It requires the exact confirmation phrase before
// touching anything.
func (s *AdminService) BulkDelete(ctx context.Context, req dto.BulkDeleteRequest) (*dto.BulkDeleteSummary, error) {
	if req.ConfirmationText != s.config.ConfirmationText {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Invalid confirmation text. Please type '%s' to confirm.", s.config.ConfirmationText))
	}
	if len(req.IDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "IDs array is required")
	}

	summary := &dto.BulkDeleteSummary{TotalAttempted: len(req.IDs)}
	batchSize := s.config.DeleteBatchSize

	for i := 0; i < len(req.IDs); i += batchSize {
		end := i + batchSize
		if end > len(req.IDs) {
			end = len(req.IDs)
		}
		batch := req.IDs[i:end]
		batchNum := i/batchSize + 1

		affected, err := s.repo.DeleteBatch(ctx, batch)
		if err != nil {
			s.logger.Error("bulk delete batch failed", zap.Int("batch", batchNum), zap.Error(err))
			summary.ErrorCount += len(batch)
			summary.Errors = append(summary.Errors, dto.BatchError{Batch: batchNum, Error: err.Error(), IDs: batch})
		} else {
			summary.SuccessCount += int(affected)
		}

		if end < len(req.IDs) && s.config.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(s.config.InterBatchDelay):
			}
		}
	}

	s.invalidate(ctx)
	return summary, nil
}

// GenerateTestData seeds synthetic registrations for dashboard testing.
func (s *AdminService) GenerateTestData(ctx context.Context, req dto.GenerateTestDataRequest) (*dto.TestDataSummary, error) {
	count := req.Count
	if count <= 0 {
		count = s.config.TestDataDefault
	}
	if count > 10000 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "count must be 10000 or less")
	}

	regs := s.buildTestRegistrations(count)

	summary := &dto.TestDataSummary{
		TotalAttempted:     count,
		StatusDistribution: map[string]int{},
	}
	for _, reg := range regs {
		summary.StatusDistribution[string(reg.PaymentStatus)]++
	}

	batchSize := s.config.InsertBatchSize
	for i := 0; i < len(regs); i += batchSize {
		end := i + batchSize
		if end > len(regs) {
			end = len(regs)
		}
		batch := regs[i:end]
		if err := s.repo.InsertBatch(ctx, batch); err != nil {
			s.logger.Error("test data batch failed", zap.Int("batch", i/batchSize+1), zap.Error(err))
			summary.ErrorCount += len(batch)
		} else {
			summary.SuccessCount += len(batch)
		}
	}

	s.invalidate(ctx)
	return summary, nil
}

// ExportDataset flattens every registration into the export table shape
// shared by the CSV and PDF renderers.
func (s *AdminService) ExportDataset(ctx context.Context) (export.Dataset, error) {
	regs, err := s.repo.All(ctx)
	if err != nil {
		return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch registrations")
	}

	rows := make([]map[string]string, 0, len(regs))
	for _, reg := range regs {
		ticketID := ""
		if reg.TicketID != nil {
			ticketID = *reg.TicketID
		}
		confirmed := ""
		if reg.ConfirmedAt != nil {
			confirmed = reg.ConfirmedAt.Format("2006-01-02")
		}
		sent := "No"
		if reg.TicketSent {
			sent = "Yes"
		}
		rows = append(rows, map[string]string{
			"Name":              reg.Name,
			"Email":             reg.Email,
			"Phone":             reg.Phone,
			"University":        reg.University,
			"Payment Status":    string(reg.PaymentStatus),
			"Ticket ID":         ticketID,
			"Registration Date": reg.CreatedAt.Format("2006-01-02"),
			"Confirmation Date": confirmed,
			"Ticket Sent":       sent,
		})
	}

	return export.Dataset{Headers: exportHeaders, Rows: rows}, nil
}

// ProofLink issues a short-lived signed download link for a proof file.
func (s *AdminService) ProofLink(ctx context.Context, id string) (*dto.ProofLink, error) {
	reg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.PaymentProofURL == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "registration has no payment proof")
	}
	filename := s.proofs.FilenameFromURL(*reg.PaymentProofURL)
	if filename == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "stored file name could not be resolved")
	}

	token, expiresAt, err := s.signer.Generate(reg.ID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign proof link")
	}

	return &dto.ProofLink{
		URL:       fmt.Sprintf("%s/api/v1/proofs/%s", strings.TrimRight(s.config.ProofURLBase, "/"), token),
		ExpiresAt: expiresAt,
	}, nil
}

// EmailHealth reports whether the outbound email collaborator is usable.
func (s *AdminService) EmailHealth(ctx context.Context) dto.EmailHealth {
	if s.mail == nil || !s.mail.Configured() {
		return dto.EmailHealth{Configured: false, Status: "Email service not configured"}
	}
	return dto.EmailHealth{Configured: true, Status: "ok"}
}

func (s *AdminService) buildTestRegistrations(count int) []models.Registration {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	regs := make([]models.Registration, 0, count)
	for i := 0; i < count; i++ {
		first := testFirstNames[rand.Intn(len(testFirstNames))]
		last := testLastNames[rand.Intn(len(testLastNames))]
		status := testStatuses[rand.Intn(len(testStatuses))]
		createdAt := randomTime(start, now)
		proofURL := fmt.Sprintf("https://example.com/payment-proof-%d.jpg", i+1)

		reg := models.Registration{
			Name:            first + " " + last,
			Email:           randomTestEmail(first, last),
			Phone:           randomTestPhone(),
			PhoneType:       models.PhoneTypeEgyptian,
			University:      testUniversities[rand.Intn(len(testUniversities))],
			PaymentProofURL: &proofURL,
			PaymentStatus:   status,
			CreatedAt:       createdAt,
		}
		if status == models.PaymentStatusConfirmed {
			ticketID := fmt.Sprintf("%d", 100000+rand.Intn(900000))
			confirmedAt := randomTime(createdAt, now)
			reg.TicketID = &ticketID
			reg.ConfirmedAt = &confirmedAt
			reg.TicketSent = rand.Float64() > 0.3
		}
		regs = append(regs, reg)
	}
	return regs
}

func (s *AdminService) listingKey(filter models.RegistrationFilter) string {
	return fmt.Sprintf("registrations:list:%s:%s:%d:%d:%s:%s",
		filter.Status, strings.ToLower(filter.Search), filter.Page, filter.PageSize, filter.SortBy, filter.SortOrder)
}

func (s *AdminService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "registrations:*"); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}

func randomTestEmail(first, last string) string {
	domain := testEmailDomains[rand.Intn(len(testEmailDomains))]
	first = strings.ToLower(first)
	last = strings.ToLower(last)
	variations := []string{
		fmt.Sprintf("%s.%s@%s", first, last, domain),
		fmt.Sprintf("%s%s@%s", first, last, domain),
		fmt.Sprintf("%s%d@%s", first, rand.Intn(1000), domain),
		fmt.Sprintf("%s_%s@%s", first, last, domain),
	}
	return variations[rand.Intn(len(variations))]
}

func randomTestPhone() string {
	prefix := testPhonePrefixes[rand.Intn(len(testPhonePrefixes))]
	return prefix + fmt.Sprintf("%08d", rand.Intn(100000000))
}

func randomTime(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	delta := end.Sub(start)
	return start.Add(time.Duration(rand.Int63n(int64(delta))))
}
