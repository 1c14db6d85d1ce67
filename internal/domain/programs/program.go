package programs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultStatus = "active"

// Program is a research opportunity tracked by one user. It is the root of the
// deadline/person/link fan-out; children are removed with it.
type Program struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"column:user_id;not null;index" json:"user_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	University  string         `gorm:"column:university;not null" json:"university"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	ProgramType string         `gorm:"column:program_type" json:"program_type"`
	Status      string         `gorm:"column:status;not null;default:'active'" json:"status"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	Deadlines []*Deadline `gorm:"foreignKey:ProgramID;references:ID;constraint:OnDelete:CASCADE" json:"deadlines,omitempty"`
	People    []*Person   `gorm:"foreignKey:ProgramID;references:ID;constraint:OnDelete:CASCADE" json:"people,omitempty"`
	Links     []*Link     `gorm:"foreignKey:ProgramID;references:ID;constraint:OnDelete:CASCADE" json:"links,omitempty"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Program) TableName() string { return "program" }

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = DefaultStatus
	}
	return nil
}

// ProgramMetadata is the shape stored in Program.Metadata for extracted programs.
type ProgramMetadata struct {
	BatchID uuid.UUID `json:"batch_id"`
	Source  string    `json:"source"`
	Model   string    `json:"model,omitempty"`
}
