package model

// swagger:model CartItem
type CartItem struct {
	BaseModel
	UserID   uint    `gorm:"not null;uniqueIndex:idx_cart_user_course" json:"userId"`
	CourseID uint    `gorm:"not null;uniqueIndex:idx_cart_user_course" json:"courseId"`
	Course   *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
