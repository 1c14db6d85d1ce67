package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/researchtrack-backend/internal/platform/ctxutil"
)

const HeaderUserID = "X-User-Id"

// AttachRequestUser stores the caller's user id from the X-User-Id header, falling back
// to the userId query parameter. Handlers that need a user reject an empty one.
func AttachRequestUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			userID = strings.TrimSpace(c.Query("userId"))
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
