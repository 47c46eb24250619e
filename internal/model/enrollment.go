package model

import "time"

// Enrollment grants a user access to a course. The composite unique index on
// (user_id, course_id) is the idempotency guard for fulfillment: once a row
// exists it is never removed by marketplace flows.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID         uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID       uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"courseId"`
	Course         *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress       int        `gorm:"default:0" json:"progress"` // 0-100
	CompletedAt    *time.Time `json:"completedAt"`
	LastAccessedAt time.Time  `gorm:"autoCreateTime" json:"lastAccessedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
