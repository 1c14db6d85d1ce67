package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/repos"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type Repos struct {
	Program  repos.ProgramRepo
	Deadline repos.DeadlineRepo
	Person   repos.PersonRepo
	Link     repos.LinkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Program:  repos.NewProgramRepo(db, log),
		Deadline: repos.NewDeadlineRepo(db, log),
		Person:   repos.NewPersonRepo(db, log),
		Link:     repos.NewLinkRepo(db, log),
	}
}
