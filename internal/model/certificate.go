package model

// Certificate is issued once per (user, course) on first full completion and
// is immutable afterwards.
// swagger:model Certificate
type Certificate struct {
	BaseModel
	Code           string `gorm:"size:40;uniqueIndex;not null" json:"code"`
	UserID         uint   `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"userId"`
	CourseID       uint   `gorm:"not null;uniqueIndex:idx_certificate_user_course" json:"courseId"`
	CourseName     string `gorm:"size:200;not null" json:"courseName"`
	InstructorName string `gorm:"size:100" json:"instructorName"`
}

func (Certificate) TableName() string {
	return "certificates"
}
