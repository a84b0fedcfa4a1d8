package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
)

type mockAdminRepo struct {
	regs          []models.Registration
	reg           *models.Registration
	deleteBatches [][]string
	insertBatches [][]models.Registration
	deleted       []string
	deleteErr     error
	batchErr      error
}

func (m *mockAdminRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	return m.regs, len(m.regs), nil
}

func (m *mockAdminRepo) All(ctx context.Context) ([]models.Registration, error) {
	return m.regs, nil
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if m.reg == nil {
		return nil, sql.ErrNoRows
	}
	return m.reg, nil
}

func (m *mockAdminRepo) Delete(ctx context.Context, id string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return 1, nil
}

func (m *mockAdminRepo) DeleteBatch(ctx context.Context, ids []string) (int64, error) {
	if m.batchErr != nil {
		return 0, m.batchErr
	}
	m.deleteBatches = append(m.deleteBatches, ids)
	return int64(len(ids)), nil
}

func (m *mockAdminRepo) InsertBatch(ctx context.Context, regs []models.Registration) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	m.insertBatches = append(m.insertBatches, regs)
	return nil
}

type mockProofRemover struct {
	deleted   []string
	deleteErr error
}

func (m *mockProofRemover) Delete(filename string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, filename)
	return nil
}

func (m *mockProofRemover) FilenameFromURL(rawURL string) string {
	return "stored-proof.jpg"
}

type mockSigner struct{}

func (m *mockSigner) Generate(registrationID, filename string) (string, time.Time, error) {
	return "signed-token", time.Now().Add(30 * time.Minute), nil
}

func newAdminService(repo *mockAdminRepo, proofs *mockProofRemover, mail *mockMailer) *AdminService {
	return NewAdminService(repo, nil, proofs, &mockSigner{}, mail, validator.New(), zap.NewNop(), AdminConfig{
		DeleteBatchSize:  10,
		InsertBatchSize:  50,
		InterBatchDelay:  time.Millisecond,
		TestDataDefault:  500,
		ConfirmationText: "DELETE ALL TEST DATA",
		ProofURLBase:     "http://localhost:8080",
	})
}

func TestBulkDeleteRequiresConfirmation(t *testing.T) {
	svc := newAdminService(&mockAdminRepo{}, &mockProofRemover{}, &mockMailer{})

	_, err := svc.BulkDelete(context.Background(), dto.BulkDeleteRequest{
		IDs:              []string{"a"},
		ConfirmationText: "yes please",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "DELETE ALL TEST DATA")
}

func TestBulkDeleteBatches(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	ids := make([]string, 25)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	summary, err := svc.BulkDelete(context.Background(), dto.BulkDeleteRequest{
		IDs:              ids,
		ConfirmationText: "DELETE ALL TEST DATA",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, summary.TotalAttempted)
	assert.Equal(t, 25, summary.SuccessCount)
	assert.Zero(t, summary.ErrorCount)
	require.Len(t, repo.deleteBatches, 3)
	assert.Len(t, repo.deleteBatches[0], 10)
	assert.Len(t, repo.deleteBatches[2], 5)
}

func TestBulkDeleteRecordsBatchErrors(t *testing.T) {
	repo := &mockAdminRepo{batchErr: sql.ErrConnDone}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	summary, err := svc.BulkDelete(context.Background(), dto.BulkDeleteRequest{
		IDs:              []string{"a", "b", "c"},
		ConfirmationText: "DELETE ALL TEST DATA",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ErrorCount)
	assert.Zero(t, summary.SuccessCount)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, 1, summary.Errors[0].Batch)
	assert.Equal(t, []string{"a", "b", "c"}, summary.Errors[0].IDs)
}

func TestGenerateTestData(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	summary, err := svc.GenerateTestData(context.Background(), dto.GenerateTestDataRequest{Count: 120})
	require.NoError(t, err)

	assert.Equal(t, 120, summary.TotalAttempted)
	assert.Equal(t, 120, summary.SuccessCount)
	require.Len(t, repo.insertBatches, 3)

	total := 0
	for _, n := range summary.StatusDistribution {
		total += n
	}
	assert.Equal(t, 120, total)

	for _, batch := range repo.insertBatches {
		for _, reg := range batch {
			if reg.PaymentStatus == models.PaymentStatusConfirmed {
				require.NotNil(t, reg.TicketID)
				assert.Len(t, *reg.TicketID, 6)
				require.NotNil(t, reg.ConfirmedAt)
			} else {
				assert.Nil(t, reg.TicketID)
				assert.False(t, reg.TicketSent)
			}
			assert.Regexp(t, `^01[0125][0-9]{8}$`, reg.Phone)
			assert.Contains(t, reg.Email, "@")
		}
	}
}

func TestGenerateTestDataDefaultsCount(t *testing.T) {
	repo := &mockAdminRepo{}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	summary, err := svc.GenerateTestData(context.Background(), dto.GenerateTestDataRequest{})
	require.NoError(t, err)
	assert.Equal(t, 500, summary.TotalAttempted)
	require.Len(t, repo.insertBatches, 10)
}

func TestDeleteWithProofCleanup(t *testing.T) {
	proofURL := "http://localhost:8080/files/stored-proof.jpg"
	repo := &mockAdminRepo{reg: &models.Registration{
		ID:              "r1",
		Name:            "Sara Ahmed",
		Email:           "sara@example.com",
		PaymentProofURL: &proofURL,
	}}
	proofs := &mockProofRemover{}
	svc := newAdminService(repo, proofs, &mockMailer{})

	result, err := svc.Delete(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, repo.deleted)
	assert.Equal(t, []string{"stored-proof.jpg"}, proofs.deleted)
	assert.True(t, result.FileCleanup.Attempted)
	assert.True(t, result.FileCleanup.Success)
	assert.Equal(t, "File deleted successfully", result.FileCleanup.Message)
}

func TestDeleteFileFailureIsReported(t *testing.T) {
	proofURL := "http://localhost:8080/files/stored-proof.jpg"
	repo := &mockAdminRepo{reg: &models.Registration{ID: "r1", PaymentProofURL: &proofURL}}
	proofs := &mockProofRemover{deleteErr: sql.ErrConnDone}
	svc := newAdminService(repo, proofs, &mockMailer{})

	result, err := svc.Delete(context.Background(), "r1")
	require.NoError(t, err)

	assert.Equal(t, []string{"r1"}, repo.deleted)
	assert.True(t, result.FileCleanup.Attempted)
	assert.False(t, result.FileCleanup.Success)
	assert.Contains(t, result.FileCleanup.Message, "File deletion failed")
}

func TestDeleteNotFound(t *testing.T) {
	svc := newAdminService(&mockAdminRepo{}, &mockProofRemover{}, &mockMailer{})

	_, err := svc.Delete(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportDataset(t *testing.T) {
	ticketID := "123456"
	confirmedAt := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	repo := &mockAdminRepo{regs: []models.Registration{
		{
			Name:          "Sara Ahmed",
			Email:         "sara@example.com",
			Phone:         "01012345678",
			University:    "Cairo University",
			PaymentStatus: models.PaymentStatusConfirmed,
			TicketID:      &ticketID,
			CreatedAt:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
			ConfirmedAt:   &confirmedAt,
			TicketSent:    true,
		},
		{
			Name:          "Omar Hassan",
			Email:         "omar@example.com",
			Phone:         "01187654321",
			University:    "Ain Shams University",
			PaymentStatus: models.PaymentStatusPending,
			CreatedAt:     time.Date(2025, 5, 3, 9, 0, 0, 0, time.UTC),
		},
	}}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	dataset, err := svc.ExportDataset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, exportHeaders, dataset.Headers)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "123456", dataset.Rows[0]["Ticket ID"])
	assert.Equal(t, "2025-05-02", dataset.Rows[0]["Confirmation Date"])
	assert.Equal(t, "Yes", dataset.Rows[0]["Ticket Sent"])
	assert.Equal(t, "", dataset.Rows[1]["Ticket ID"])
	assert.Equal(t, "No", dataset.Rows[1]["Ticket Sent"])
}

func TestProofLink(t *testing.T) {
	proofURL := "http://localhost:8080/files/stored-proof.jpg"
	repo := &mockAdminRepo{reg: &models.Registration{ID: "r1", PaymentProofURL: &proofURL}}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	link, err := svc.ProofLink(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/proofs/signed-token", link.URL)
	assert.True(t, link.ExpiresAt.After(time.Now()))
}

func TestProofLinkWithoutProof(t *testing.T) {
	repo := &mockAdminRepo{reg: &models.Registration{ID: "r1"}}
	svc := newAdminService(repo, &mockProofRemover{}, &mockMailer{})

	_, err := svc.ProofLink(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmailHealth(t *testing.T) {
	svc := newAdminService(&mockAdminRepo{}, &mockProofRemover{}, &mockMailer{configured: true})
	health := svc.EmailHealth(context.Background())
	assert.True(t, health.Configured)
	assert.Equal(t, "ok", health.Status)

	svc = newAdminService(&mockAdminRepo{}, &mockProofRemover{}, &mockMailer{})
	health = svc.EmailHealth(context.Background())
	assert.False(t, health.Configured)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newAdminService(&mockAdminRepo{}, &mockProofRemover{}, &mockMailer{})

	_, _, err := svc.List(context.Background(), models.RegistrationFilter{Status: "archived"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
