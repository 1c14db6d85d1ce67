package programs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
	pkgerrors "github.com/yungbote/researchtrack-backend/internal/pkg/errors"
	"github.com/yungbote/researchtrack-backend/internal/platform/logger"
)

type DeadlineRepo interface {
	Create(ctx context.Context, tx *gorm.DB, deadlines []*types.Deadline) ([]*types.Deadline, error)
	// ListByUser returns every deadline of the user's programs, earliest first, with
	// Program preloaded.
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Deadline, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID string, deadlineID uuid.UUID) (*types.Deadline, error)
	SetCompleted(ctx context.Context, tx *gorm.DB, userID string, deadlineID uuid.UUID, completed bool) (*types.Deadline, error)
}

type deadlineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeadlineRepo(db *gorm.DB, baseLog *logger.Logger) DeadlineRepo {
	repoLog := baseLog.With("repo", "DeadlineRepo")
	return &deadlineRepo{db: db, log: repoLog}
}

func (r *deadlineRepo) Create(ctx context.Context, tx *gorm.DB, deadlines []*types.Deadline) ([]*types.Deadline, error) {
	transaction := resolve(tx, r.db)

	if len(deadlines) == 0 {
		return []*types.Deadline{}, nil
	}

	if err := transaction.WithContext(ctx).Omit(clause.Associations).Create(&deadlines).Error; err != nil {
		return nil, err
	}
	return deadlines, nil
}

func (r *deadlineRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.Deadline, error) {
	transaction := resolve(tx, r.db)

	var results []*types.Deadline
	if err := transaction.WithContext(ctx).
		Preload("Program").
		Where("program_id IN (?)", ownedProgramIDs(transaction.WithContext(ctx), userID)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}}).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *deadlineRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string, deadlineID uuid.UUID) (*types.Deadline, error) {
	transaction := resolve(tx, r.db)

	var d types.Deadline
	err := transaction.WithContext(ctx).
		Preload("Program").
		Where("id = ? AND program_id IN (?)", deadlineID, ownedProgramIDs(transaction.WithContext(ctx), userID)).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deadlineRepo) SetCompleted(ctx context.Context, tx *gorm.DB, userID string, deadlineID uuid.UUID, completed bool) (*types.Deadline, error) {
	transaction := resolve(tx, r.db)

	res := transaction.WithContext(ctx).
		Model(&types.Deadline{}).
		Where("id = ? AND program_id IN (?)", deadlineID, ownedProgramIDs(transaction.WithContext(ctx), userID)).
		Update("completed", completed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return r.GetByID(ctx, transaction, userID, deadlineID)
}
