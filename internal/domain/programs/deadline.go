package programs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Deadline struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID    uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	Program      *Program  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Date         time.Time `gorm:"column:date;not null;index" json:"date"`
	DeadlineType string    `gorm:"column:deadline_type" json:"deadline_type"`
	Description  string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Completed    bool      `gorm:"column:completed;not null;default:false" json:"completed"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Deadline) TableName() string { return "deadline" }

func (d *Deadline) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
