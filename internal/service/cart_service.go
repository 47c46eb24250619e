package service

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type CartService struct {
	CartRepo       *repository.CartRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewCartService(
	cartRepo *repository.CartRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *CartService {
	return &CartService{
		CartRepo:       cartRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

// Add puts a published course in the user's cart. Each guard failure is a
// distinct condition so the client can react specifically.
func (s *CartService) Add(userID, courseID uint) error {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	if course.InstructorID == userID {
		return util.ErrOwnCourse
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return err
	}
	if enrolled {
		return util.ErrAlreadyEnrolled
	}

	if _, err := s.CartRepo.Find(userID, courseID); err == nil {
		return util.ErrAlreadyInCart
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := s.CartRepo.Create(&model.CartItem{UserID: userID, CourseID: courseID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return util.ErrAlreadyInCart
		}
		return err
	}
	return nil
}

// Remove deletes one item by course.
func (s *CartService) Remove(userID, courseID uint) error {
	item, err := s.CartRepo.Find(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotInCart
		}
		return err
	}
	return s.CartRepo.Delete(item.ID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(userID uint) error {
	return s.CartRepo.ClearByUser(userID)
}

func (s *CartService) List(userID uint) ([]model.CartItem, error) {
	return s.CartRepo.ListByUser(userID)
}

func (s *CartService) Count(userID uint) (int64, error) {
	return s.CartRepo.CountByUser(userID)
}
