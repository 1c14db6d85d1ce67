package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/modules/intake"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
	"github.com/yungbote/researchtrack-backend/internal/services"
)

type Services struct {
	Intake   intake.Usecases
	Programs services.ProgramService
}

func wireServices(db *gorm.DB, log *logger.Logger, clients Clients, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Intake: intake.New(intake.UsecasesDeps{
			DB:        db,
			Log:       log.With("module", "intake"),
			AI:        clients.OpenAI,
			Programs:  reposet.Program,
			Deadlines: reposet.Deadline,
			People:    reposet.Person,
			Links:     reposet.Link,
			Metrics:   metrics,
		}),
		Programs: services.NewProgramService(db, log, reposet.Program, reposet.Deadline, reposet.Person, reposet.Link),
	}
}
