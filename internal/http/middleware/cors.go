package middleware

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS accepts any origin. Preflights are answered by the cors handler with 204.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:              []string{"Authorization", "Content-Type", "X-Requested-With", "X-User-Id", "X-Request-Id", "X-Client-Info", "Apikey"},
		ExposeHeaders:             []string{"X-Request-Id", "X-Trace-Id"},
		OptionsResponseStatusCode: http.StatusNoContent,
	})
}
