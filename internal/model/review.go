package model

// swagger:model Review
type Review struct {
	BaseModel
	UserID     uint    `gorm:"not null;uniqueIndex:idx_review_user_course" json:"userId"`
	User       *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CourseID   uint    `gorm:"not null;uniqueIndex:idx_review_user_course" json:"courseId"`
	Rating     int     `gorm:"not null" json:"rating"` // 1-5
	Comment    *string `gorm:"type:text" json:"comment"`
	IsApproved bool    `gorm:"default:true" json:"isApproved"`
}

func (Review) TableName() string {
	return "reviews"
}
