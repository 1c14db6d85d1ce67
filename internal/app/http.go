package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/http"
	httpH "github.com/yungbote/researchtrack-backend/internal/http/handlers"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Extract *httpH.ExtractHandler
	Program *httpH.ProgramHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Extract: httpH.NewExtractHandler(log, services.Intake),
		Program: httpH.NewProgramHandler(log, services.Programs),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return http.NewRouter(http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		Tracing:        cfg.OtelEnabled,
		Metrics:        metrics,
		ExtractHandler: handlers.Extract,
		ProgramHandler: handlers.Program,
		HealthHandler:  handlers.Health,
	})
}
