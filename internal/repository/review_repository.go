package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) Create(review *model.Review) error {
	return r.DB.Create(review).Error
}

func (r *ReviewRepository) Update(review *model.Review) error {
	return r.DB.Save(review).Error
}

// Hard delete; a soft-deleted row would block the author from ever reviewing
// the course again through the unique (user_id, course_id) index.
func (r *ReviewRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Review{}, id).Error
}

func (r *ReviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.First(&review, id).Error
	return &review, err
}

func (r *ReviewRepository) FindByUserAndCourse(userID, courseID uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&review).Error
	return &review, err
}

type ReviewSort string

const (
	SortNewest  ReviewSort = "newest"
	SortHighest ReviewSort = "highest"
	SortLowest  ReviewSort = "lowest"
)

func (r *ReviewRepository) ListApproved(courseID uint, sort ReviewSort, page, limit int) ([]model.Review, int64, error) {
	query := r.DB.Model(&model.Review{}).
		Where("course_id = ? AND is_approved = ?", courseID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var order string
	switch sort {
	case SortHighest:
		order = "rating DESC"
	case SortLowest:
		order = "rating ASC"
	default:
		order = "created_at DESC"
	}

	if page < 1 {
		page = 1
	}

	var reviews []model.Review
	err := r.DB.
		Preload("User").
		Where("course_id = ? AND is_approved = ?", courseID, true).
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

// Aggregate recomputes the average rating and count over approved reviews.
func (r *ReviewRepository) Aggregate(courseID uint) (avg float64, count int64, err error) {
	type result struct {
		Avg   *float64
		Count int64
	}
	var res result
	err = r.DB.Model(&model.Review{}).
		Where("course_id = ? AND is_approved = ?", courseID, true).
		Select("AVG(rating) as avg, COUNT(rating) as count").
		Scan(&res).Error
	if err != nil {
		return 0, 0, err
	}
	if res.Avg != nil {
		avg = *res.Avg
	}
	return avg, res.Count, nil
}

// Distribution counts approved reviews per star rating.
func (r *ReviewRepository) Distribution(courseID uint) (map[int]int64, error) {
	type bucket struct {
		Rating int
		Count  int64
	}
	var buckets []bucket
	err := r.DB.Model(&model.Review{}).
		Where("course_id = ? AND is_approved = ?", courseID, true).
		Select("rating, COUNT(*) as count").
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, b := range buckets {
		dist[b.Rating] = b.Count
	}
	return dist, nil
}
