package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type WishlistRepository struct {
	DB *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) *WishlistRepository {
	return &WishlistRepository{DB: db}
}

func (r *WishlistRepository) Create(item *model.Wishlist) error {
	return r.DB.Create(item).Error
}

func (r *WishlistRepository) Find(userID, courseID uint) (*model.Wishlist, error) {
	var item model.Wishlist
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&item).Error
	return &item, err
}

func (r *WishlistRepository) ListByUser(userID uint) ([]model.Wishlist, error) {
	var items []model.Wishlist
	err := r.DB.
		Preload("Course").
		Preload("Course.Instructor").
		Preload("Course.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Hard delete so the unique (user_id, course_id) index does not trip over a
// soft-deleted row when the pair is favourited again.
func (r *WishlistRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Wishlist{}, id).Error
}
