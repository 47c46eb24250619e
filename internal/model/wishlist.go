package model

// Wishlist rows are toggled, not merely inserted: a second toggle on the same
// (user, course) pair deletes the row.
// swagger:model Wishlist
type Wishlist struct {
	BaseModel
	UserID   uint    `gorm:"not null;uniqueIndex:idx_wishlist_user_course" json:"userId"`
	CourseID uint    `gorm:"not null;uniqueIndex:idx_wishlist_user_course" json:"courseId"`
	Course   *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Wishlist) TableName() string {
	return "wishlists"
}
