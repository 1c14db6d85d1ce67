package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/researchtrack-backend/internal/http/response"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
	"github.com/yungbote/researchtrack-backend/internal/services"
)

// ProgramHandler serves the read path and the two mutations the views perform.
type ProgramHandler struct {
	log      *logger.Logger
	programs services.ProgramService
}

func NewProgramHandler(log *logger.Logger, programService services.ProgramService) *ProgramHandler {
	return &ProgramHandler{
		log:      log.With("handler", "ProgramHandler"),
		programs: programService,
	}
}

func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programs.ListPrograms(c.Request.Context())
	if err != nil {
		h.fail(c, "ListPrograms", err)
		return
	}
	response.RespondOK(c, gin.H{"programs": programs})
}

func (h *ProgramHandler) Overview(c *gin.Context) {
	overview, err := h.programs.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, "Overview", err)
		return
	}
	response.RespondOK(c, overview)
}

func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.programs.DeleteProgram(c.Request.Context(), id); err != nil {
		h.fail(c, "DeleteProgram", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProgramHandler) ListDeadlines(c *gin.Context) {
	deadlines, err := h.programs.ListDeadlines(c.Request.Context())
	if err != nil {
		h.fail(c, "ListDeadlines", err)
		return
	}
	response.RespondOK(c, gin.H{"deadlines": deadlines})
}

type setCompletedRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func (h *ProgramHandler) SetDeadlineCompleted(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req setCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("completed is required"))
		return
	}
	entry, err := h.programs.SetDeadlineCompleted(c.Request.Context(), id, *req.Completed)
	if err != nil {
		h.fail(c, "SetDeadlineCompleted", err)
		return
	}
	response.RespondOK(c, gin.H{"deadline": entry})
}

func (h *ProgramHandler) ListPeople(c *gin.Context) {
	people, err := h.programs.ListPeople(c.Request.Context())
	if err != nil {
		h.fail(c, "ListPeople", err)
		return
	}
	response.RespondOK(c, gin.H{"people": people})
}

func (h *ProgramHandler) ListLinks(c *gin.Context) {
	links, err := h.programs.ListLinks(c.Request.Context())
	if err != nil {
		h.fail(c, "ListLinks", err)
		return
	}
	response.RespondOK(c, gin.H{"links": links})
}

func (h *ProgramHandler) fail(c *gin.Context, op string, err error) {
	h.log.Warn(op+" failed", "error", err)
	response.RespondErr(c, err)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
