package programs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Person struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProgramID   uuid.UUID `gorm:"type:uuid;not null;index" json:"program_id"`
	Program     *Program  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProgramID;references:ID" json:"program,omitempty"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	ProfileURL  string    `gorm:"column:profile_url" json:"profile_url,omitempty"`
	Role        string    `gorm:"column:role" json:"role"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Person) TableName() string { return "person" }

func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
