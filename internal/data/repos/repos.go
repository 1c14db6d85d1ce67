package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/researchtrack-backend/internal/data/repos/programs"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type ProgramRepo = programs.ProgramRepo
type DeadlineRepo = programs.DeadlineRepo
type PersonRepo = programs.PersonRepo
type LinkRepo = programs.LinkRepo

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	return programs.NewProgramRepo(db, baseLog)
}

func NewDeadlineRepo(db *gorm.DB, baseLog *logger.Logger) DeadlineRepo {
	return programs.NewDeadlineRepo(db, baseLog)
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return programs.NewPersonRepo(db, baseLog)
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	return programs.NewLinkRepo(db, baseLog)
}
