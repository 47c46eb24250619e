package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// InstructorApplication is one row per submission. At most one PENDING row
// per user, enforced by query-then-create in the service, not by the store.
// swagger:model InstructorApplication
type InstructorApplication struct {
	BaseModel
	UserID       uint              `gorm:"not null;index" json:"userId"`
	User         *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Headline     string            `gorm:"size:120;not null" json:"headline"`
	Bio          string            `gorm:"type:text;not null" json:"bio"`
	Status       ApplicationStatus `gorm:"size:20;default:'PENDING';index" json:"status"`
	AdminNote    string            `gorm:"type:text" json:"adminNote"`
	ReviewedByID *uint             `json:"reviewedById"`
	ReviewedBy   *User             `gorm:"foreignKey:ReviewedByID" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewedAt"`
}

func (InstructorApplication) TableName() string {
	return "instructor_applications"
}
