package programs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type ProgramRepo interface {
	Create(ctx context.Context, tx *gorm.DB, programs []*types.Program) ([]*types.Program, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userID string, programIDs []uuid.UUID) ([]*types.Program, error)
	// ListByUser returns the user's programs, newest first, with children preloaded.
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Program, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	// DeleteByIDs removes the programs and every child row; it returns the number of
	// programs removed.
	DeleteByIDs(ctx context.Context, tx *gorm.DB, userID string, programIDs []uuid.UUID) (int64, error)
}

type programRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgramRepo(db *gorm.DB, baseLog *logger.Logger) ProgramRepo {
	repoLog := baseLog.With("repo", "ProgramRepo")
	return &programRepo{db: db, log: repoLog}
}

func (r *programRepo) Create(ctx context.Context, tx *gorm.DB, programs []*types.Program) ([]*types.Program, error) {
	transaction := resolve(tx, r.db)

	if len(programs) == 0 {
		return []*types.Program{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *programRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userID string, programIDs []uuid.UUID) ([]*types.Program, error) {
	transaction := resolve(tx, r.db)

	var results []*types.Program
	if len(programIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, programIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *programRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Program, error) {
	transaction := resolve(tx, r.db)

	var results []*types.Program
	if err := transaction.WithContext(ctx).
		Preload("Deadlines", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}})
		}).
		Preload("People").
		Preload("Links").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *programRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	transaction := resolve(tx, r.db)

	var n int64
	if err := transaction.WithContext(ctx).
		Model(&types.Program{}).
		Where("user_id = ?", userID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *programRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, userID string, programIDs []uuid.UUID) (int64, error) {
	if len(programIDs) == 0 {
		return 0, nil
	}
	if tx != nil {
		return r.deleteOwned(ctx, tx, userID, programIDs)
	}
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(t *gorm.DB) error {
		n, err := r.deleteOwned(ctx, t, userID, programIDs)
		deleted = n
		return err
	})
	return deleted, err
}

// deleteOwned removes children explicitly before the parent so the cascade holds
// even where the store does not enforce foreign keys.
func (r *programRepo) deleteOwned(ctx context.Context, tx *gorm.DB, userID string, programIDs []uuid.UUID) (int64, error) {
	var owned []uuid.UUID
	if err := tx.WithContext(ctx).
		Model(&types.Program{}).
		Where("user_id = ? AND id IN ?", userID, programIDs).
		Pluck("id", &owned).Error; err != nil {
		return 0, err
	}
	if len(owned) == 0 {
		return 0, nil
	}
	for _, child := range []any{&types.Deadline{}, &types.Person{}, &types.Link{}} {
		if err := tx.WithContext(ctx).
			Where("program_id IN ?", owned).
			Delete(child).Error; err != nil {
			return 0, err
		}
	}
	res := tx.WithContext(ctx).
		Where("id IN ?", owned).
		Delete(&types.Program{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.log.Debug("Programs deleted", "user_id", userID, "count", res.RowsAffected)
	return res.RowsAffected, nil
}
