package programs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Link struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID   uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	Program     *Program  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	LinkType    string    `gorm:"column:link_type" json:"link_type"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Link) TableName() string { return "link" }

func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
