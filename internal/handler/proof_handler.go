package handler

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/tedxecu/registration-api/pkg/errors"
	"github.com/tedxecu/registration-api/pkg/response"
	"github.com/tedxecu/registration-api/pkg/storage"
)

// ProofHandler streams payment proof files behind short-lived signed links.
type ProofHandler struct {
	store  *storage.ProofStore
	signer *storage.SignedURLSigner
	logger *zap.Logger
}

// NewProofHandler constructs a ProofHandler.
func NewProofHandler(store *storage.ProofStore, signer *storage.SignedURLSigner, logger *zap.Logger) *ProofHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProofHandler{store: store, signer: signer, logger: logger}
}

// Download godoc
// @Summary Download a payment proof
// @Description Stream a payment proof using a signed token issued by the admin API
// @Tags Proofs
// @Produce octet-stream
// @Param token path string true "Signed proof token"
// @Success 200 {file} file
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /proofs/{token} [get]
func (h *ProofHandler) Download(c *gin.Context) {
	_, filename, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired proof link"))
		return
	}

	file, err := h.store.Open(filename)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "proof file not found"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat proof file"))
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, map[string]string{
		"Content-Disposition": `inline; filename="` + filename + `"`,
	})
}
