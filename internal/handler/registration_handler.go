package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tedxecu/registration-api/internal/dto"
	"github.com/tedxecu/registration-api/internal/service"
	appErrors "github.com/tedxecu/registration-api/pkg/errors"
	"github.com/tedxecu/registration-api/pkg/response"
)

// RegistrationHandler exposes the public intake endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	metrics       *service.MetricsService
	maxBodyBytes  int64
}

// NewRegistrationHandler constructs a RegistrationHandler. maxBodyBytes caps
// the multipart body before the service-level file size check runs.
func NewRegistrationHandler(registrations *service.RegistrationService, metrics *service.MetricsService, maxBodyBytes int64) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, metrics: metrics, maxBodyBytes: maxBodyBytes}
}

// Submit godoc
// @Summary Submit a registration
// @Description Register for the event with a payment proof upload
// @Tags Registrations
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Full name"
// @Param email formData string true "Email address"
// @Param phone formData string true "Phone number"
// @Param phoneType formData string false "egyptian or international"
// @Param university formData string true "University name"
// @Param paymentProof formData file true "Payment proof (JPG, PNG, or PDF)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Submit(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	input := service.SubmitRegistrationInput{
		Name:       c.PostForm("name"),
		Email:      c.PostForm("email"),
		Phone:      c.PostForm("phone"),
		PhoneType:  c.PostForm("phoneType"),
		University: c.PostForm("university"),
	}

	fileHeader, err := c.FormFile("paymentProof")
	if err == nil && fileHeader != nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrValidation.Code, http.StatusBadRequest, "could not read payment proof"))
			return
		}
		defer file.Close()

		input.Proof = &service.ProofUpload{
			Filename:    fileHeader.Filename,
			ContentType: strings.ToLower(fileHeader.Header.Get("Content-Type")),
			Size:        fileHeader.Size,
			Content:     file,
		}
	}

	result, err := h.registrations.Submit(c.Request.Context(), input)
	if err != nil {
		h.metrics.RecordRegistration(registrationOutcome(err))
		response.Error(c, err)
		return
	}

	h.metrics.RecordRegistration("created")
	response.Created(c, result)
}

func registrationOutcome(err error) string {
	switch appErrors.FromError(err).Code {
	case appErrors.ErrDuplicateEmail.Code:
		return "duplicate"
	case appErrors.ErrValidation.Code:
		return "invalid"
	default:
		return "error"
	}
}

// Check godoc
// @Summary Check registration status
// @Description Look up an existing registration by email
// @Tags Registrations
// @Accept json
// @Produce json
// @Param payload body dto.CheckRegistrationRequest true "Email to check"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /registrations/check [post]
func (h *RegistrationHandler) Check(c *gin.Context) {
	var req dto.CheckRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Email is required"))
		return
	}

	result, err := h.registrations.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
