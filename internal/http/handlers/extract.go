package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/researchtrack-backend/internal/domain/extraction"
	"github.com/yungbote/researchtrack-backend/internal/http/response"
	"github.com/yungbote/researchtrack-backend/internal/modules/intake"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

// genericExtractFailure is the only message a failed extraction reports to the client.
const genericExtractFailure = "failed to process message"

type Ingester interface {
	Ingest(ctx context.Context, in intake.IngestInput) (*extraction.Result, error)
}

type ExtractHandler struct {
	log    *logger.Logger
	intake Ingester
}

func NewExtractHandler(log *logger.Logger, ingester Ingester) *ExtractHandler {
	return &ExtractHandler{
		log:    log.With("handler", "ExtractHandler"),
		intake: ingester,
	}
}

type extractRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

// Extract runs one extraction batch for the message and returns what was stored.
func (h *ExtractHandler) Extract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("message and userId are required"))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	req.UserID = strings.TrimSpace(req.UserID)
	if req.Message == "" || req.UserID == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("message and userId are required"))
		return
	}

	res, err := h.intake.Ingest(c.Request.Context(), intake.IngestInput{
		Message: req.Message,
		UserID:  req.UserID,
	})
	if err != nil {
		h.log.Error("Extract failed", "error", err, "user_id", req.UserID, "kind", string(extraction.KindOf(err)))
		response.RespondError(c, http.StatusInternalServerError, "extract_failed", errors.New(genericExtractFailure))
		return
	}
	response.RespondOK(c, res)
}
