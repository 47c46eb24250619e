package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) ListByUser(userID uint) ([]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) CountBySession(sessionID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("payment_session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// InstructorEarnings sums earnings over completed purchases of the
// instructor's courses.
func (r *PurchaseRepository) InstructorEarnings(instructorID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Purchase{}).
		Joins("JOIN courses ON courses.id = purchases.course_id").
		Where("courses.instructor_id = ? AND purchases.status = ?", instructorID, model.PurchaseCompleted).
		Select("COALESCE(SUM(purchases.instructor_earn), 0)").
		Scan(&total).Error
	return total, err
}
