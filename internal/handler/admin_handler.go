package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/models"
	"github.com/tedxecu/registration-api/internal/service"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
	"github.com/tedxecu/registration-api/pkg/export"
	"github.com/tedxecu/registration-api/pkg/response"
)

// AdminHandler exposes the review dashboard endpoints.
type AdminHandler struct {
	admin  *service.AdminService
	review *service.ReviewService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(admin *service.AdminService, review *service.ReviewService) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		review: review,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
	}
}

// List godoc
// @Summary List registrations
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by payment status"
// @Param search query string false "Search name, email, or university"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations [get]
func (h *AdminHandler) List(c *gin.Context) {
	var filter models.RegistrationFilter
	filter.Status = models.PaymentStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	items, pagination, err := h.admin.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, &pagination)
}

// Get godoc
// @Summary Get registration detail
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	reg, err := h.admin.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reg, nil)
}

// UpdateStatus godoc
// @Summary Decide a registration
// @Description Confirm or reject a pending registration; confirms assign a ticket and email it
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param payload body dto.UpdateStatusRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registrations/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status must be confirmed or rejected"))
		return
	}

	result, err := h.review.Decide(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SendTicket godoc
// @Summary Re-send a ticket email
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/registrations/{id}/ticket [post]
func (h *AdminHandler) SendTicket(c *gin.Context) {
	result, err := h.review.SendTicket(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Delete a registration
// @Description Remove a registration and its stored payment proof
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/registrations/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	result, err := h.admin.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// BulkDelete godoc
// @Summary Bulk delete registrations
// @Description Delete many registrations in batches, guarded by a confirmation phrase
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkDeleteRequest true "IDs and confirmation"
// @Success 200 {object} response.Envelope
// @Router /admin/registrations/bulk-delete [post]
func (h *AdminHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "IDs array is required"))
		return
	}

	summary, err := h.admin.BulkDelete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// GenerateTestData godoc
// @Summary Generate synthetic registrations
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateTestDataRequest false "Row count"
// @Success 200 {object} response.Envelope
// @Router /admin/test-data [post]
func (h *AdminHandler) GenerateTestData(c *gin.Context) {
	var req dto.GenerateTestDataRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}

	summary, err := h.admin.GenerateTestData(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Export registrations
// @Description Download every registration as CSV or PDF
// @Tags Admin
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /admin/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	dataset, err := h.admin.ExportDataset(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch strings.ToLower(c.DefaultQuery("format", "csv")) {
	case "csv":
		payload, err := h.csv.Render(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tedxecu-registrations-%s.csv"`, stamp))
		c.Data(http.StatusOK, "text/csv", payload)
	case "pdf":
		payload, err := h.pdf.Render(dataset, "TEDxECU Registrations")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tedxecu-registrations-%s.pdf"`, stamp))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

// ProofLink godoc
// @Summary Issue a signed proof link
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/registrations/{id}/proof-link [get]
func (h *AdminHandler) ProofLink(c *gin.Context) {
	link, err := h.admin.ProofLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// EmailHealth godoc
// @Summary Email service health
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/email-health [get]
func (h *AdminHandler) EmailHealth(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.admin.EmailHealth(c.Request.Context()), nil)
}
