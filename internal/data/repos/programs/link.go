package programs

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type LinkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, links []*types.Link) ([]*types.Link, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Link, error)
}

type linkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLinkRepo(db *gorm.DB, baseLog *logger.Logger) LinkRepo {
	repoLog := baseLog.With("repo", "LinkRepo")
	return &linkRepo{db: db, log: repoLog}
}

func (r *linkRepo) Create(ctx context.Context, tx *gorm.DB, links []*types.Link) ([]*types.Link, error) {
	transaction := resolve(tx, r.db)

	if len(links) == 0 {
		return []*types.Link{}, nil
	}

	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *linkRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Link, error) {
	transaction := resolve(tx, r.db)

	var results []*types.Link
	if err := transaction.WithContext(ctx).
		Preload("Program").
		Where("program_id IN (?)", ownedProgramIDs(transaction.WithContext(ctx), userID)).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
