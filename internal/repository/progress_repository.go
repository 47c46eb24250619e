package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID, lectureID uint) (*model.LectureProgress, error) {
	var progress model.LectureProgress
	err := r.DB.Where("user_id = ? AND lecture_id = ?", userID, lectureID).First(&progress).Error
	return &progress, err
}

// CountCompleted counts the user's completed lectures across the whole
// course.
func (r *ProgressRepository) CountCompleted(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LectureProgress{}).
		Joins("JOIN lectures ON lectures.id = lecture_progress.lecture_id").
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("lecture_progress.user_id = ? AND lecture_progress.is_completed = ? AND sections.course_id = ?",
			userID, true, courseID).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) ListByCourse(userID, courseID uint) ([]model.LectureProgress, error) {
	var rows []model.LectureProgress
	err := r.DB.
		Joins("JOIN lectures ON lectures.id = lecture_progress.lecture_id").
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("lecture_progress.user_id = ? AND sections.course_id = ?", userID, courseID).
		Find(&rows).Error
	return rows, err
}
