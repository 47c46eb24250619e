package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Find(userID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

// EnrolledCourseIDs returns the subset of courseIDs the user already owns.
func (r *EnrollmentRepository) EnrolledCourseIDs(userID uint, courseIDs []uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Pluck("course_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) ListByUser(userID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.
		Preload("Course").
		Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("last_accessed_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}
