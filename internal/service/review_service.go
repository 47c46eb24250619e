package service

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"errors"
	"math"

	"gorm.io/gorm"
)

type ReviewService struct {
	ReviewRepo     *repository.ReviewRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	DB             *gorm.DB
}

func NewReviewService(
	reviewRepo *repository.ReviewRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	db *gorm.DB,
) *ReviewService {
	return &ReviewService{
		ReviewRepo:     reviewRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		DB:             db,
	}
}

type ReviewRequest struct {
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment"`
}

type ReviewListResult struct {
	Reviews       []model.Review `json:"reviews"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"pageSize"`
	TotalPages    int            `json:"totalPages"`
	Distribution  map[int]int64  `json:"ratingDistribution"`
	AverageRating float64        `json:"averageRating"`
	TotalReviews  int            `json:"totalReviews"`
}

// Create adds the caller's review after the guard checks: course published,
// not the caller's own course, caller enrolled, no prior review.
func (s *ReviewService) Create(userID, courseID uint, req ReviewRequest) (*model.Review, error) {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if course.InstructorID == userID {
		return nil, util.ErrSelfReview
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	if _, err := s.ReviewRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyReviewed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &model.Review{
		UserID:     userID,
		CourseID:   courseID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: true,
	}
	if err := s.ReviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyReviewed
		}
		return nil, err
	}

	if err := s.RecalculateCourseRating(courseID); err != nil {
		return nil, err
	}

	return review, nil
}

// Update edits the author's own review and triggers a rating recompute.
func (s *ReviewService) Update(userID, reviewID uint, req ReviewRequest) (*model.Review, error) {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrReviewNotFound
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, util.ErrNotReviewOwner
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	if err := s.ReviewRepo.Update(review); err != nil {
		return nil, err
	}

	if err := s.RecalculateCourseRating(review.CourseID); err != nil {
		return nil, err
	}

	return review, nil
}

// Delete removes the author's own review and triggers a rating recompute.
func (s *ReviewService) Delete(userID, reviewID uint) error {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrReviewNotFound
		}
		return err
	}

	if review.UserID != userID {
		return util.ErrNotReviewOwner
	}

	if err := s.ReviewRepo.Delete(review.ID); err != nil {
		return err
	}

	return s.RecalculateCourseRating(review.CourseID)
}

// List returns one public page of approved reviews with the star histogram
// and the course's stored aggregate.
func (s *ReviewService) List(courseID uint, sort repository.ReviewSort, page int) (*ReviewListResult, error) {
	reviews, total, err := s.ReviewRepo.ListApproved(courseID, sort, page, util.ReviewsPerPage)
	if err != nil {
		return nil, err
	}

	dist, err := s.ReviewRepo.Distribution(courseID)
	if err != nil {
		return nil, err
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := &ReviewListResult{
		Reviews:      reviews,
		Total:        total,
		Page:         page,
		PageSize:     util.ReviewsPerPage,
		TotalPages:   int(math.Ceil(float64(total) / float64(util.ReviewsPerPage))),
		Distribution: dist,
	}
	if course != nil && course.ID != 0 {
		result.AverageRating = course.AverageRating
		result.TotalReviews = course.TotalReviews
	}
	return result, nil
}

// RecalculateCourseRating recomputes the course's aggregate from the full
// approved-review set. Always a full recompute, never an incremental patch.
func (s *ReviewService) RecalculateCourseRating(courseID uint) error {
	avg, count, err := s.ReviewRepo.Aggregate(courseID)
	if err != nil {
		return err
	}

	averageRating := math.Round(avg*10) / 10

	return s.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"average_rating": averageRating,
			"total_reviews":  count,
		}).Error
}
