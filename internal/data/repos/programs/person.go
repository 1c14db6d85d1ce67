package programs

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type PersonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, people []*types.Person) ([]*types.Person, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Person, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	repoLog := baseLog.With("repo", "PersonRepo")
	return &personRepo{db: db, log: repoLog}
}

func (r *personRepo) Create(ctx context.Context, tx *gorm.DB, people []*types.Person) ([]*types.Person, error) {
	transaction := resolve(tx, r.db)

	if len(people) == 0 {
		return []*types.Person{}, nil
	}

	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&people).Error; err != nil {
		return nil, err
	}
	return people, nil
}

func (r *personRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Person, error) {
	transaction := resolve(tx, r.db)

	var results []*types.Person
	if err := transaction.WithContext(ctx).
		Preload("Program").
		Where("program_id IN (?)", ownedProgramIDs(transaction.WithContext(ctx), userID)).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
