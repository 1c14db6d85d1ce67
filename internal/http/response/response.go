package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
	"github.com/yungbote/researchtrack-backend/internal/platform/apierr"
)

// ErrorEnvelope is the body of every non-2xx JSON response.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Success bool   `json:"success"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error:   msg,
		Code:    code,
		Success: false,
	})
}

// RespondErr maps a service error onto a status. Unclassified errors are reported
// with a fixed message so store details never reach the client.
func RespondErr(c *gin.Context, err error) {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		RespondError(c, apierr.StatusOf(err), ae.Code, ae)
	case errors.Is(err, pkgerrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
