package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{DB: db}
}

func (r *CartRepository) Create(item *model.CartItem) error {
	return r.DB.Create(item).Error
}

func (r *CartRepository) Find(userID, courseID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&item).Error
	return &item, err
}

func (r *CartRepository) ListByUser(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.DB.
		Preload("Course").
		Preload("Course.Instructor").
		Preload("Course.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *CartRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CartItem{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *CartRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.CartItem{}, id).Error
}

func (r *CartRepository) ClearByUser(userID uint) error {
	return r.DB.Unscoped().Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
