package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/researchtrack-backend/internal/http/handlers"
	httpMW "github.com/yungbote/researchtrack-backend/internal/http/middleware"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Tracing     bool
	Metrics     *observability.Metrics

	ExtractHandler *httpH.ExtractHandler
	ProgramHandler *httpH.ProgramHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.AttachRequestUser())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Extraction
		if cfg.ExtractHandler != nil {
			api.POST("/extract", cfg.ExtractHandler.Extract)
		}

		// Views
		if cfg.ProgramHandler != nil {
			api.GET("/overview", cfg.ProgramHandler.Overview)
			api.GET("/programs", cfg.ProgramHandler.ListPrograms)
			api.DELETE("/programs/:id", cfg.ProgramHandler.DeleteProgram)
			api.GET("/deadlines", cfg.ProgramHandler.ListDeadlines)
			api.PATCH("/deadlines/:id", cfg.ProgramHandler.SetDeadlineCompleted)
			api.GET("/people", cfg.ProgramHandler.ListPeople)
			api.GET("/links", cfg.ProgramHandler.ListLinks)
		}
	}

	return r
}
