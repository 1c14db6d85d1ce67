package programs

import (
	"gorm.io/gorm"

	types "github.com/yungbote/researchtrack-backend/internal/domain"
)

// ownedProgramIDs is a subquery selecting the ids of programs owned by userID. Child
// tables carry no user column; ownership is always resolved through the parent.
func ownedProgramIDs(db *gorm.DB, userID string) *gorm.DB {
	return db.Model(&types.Program{}).Select("id").Where("user_id = ?", userID)
}

func resolve(tx, fallback *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return fallback
}
