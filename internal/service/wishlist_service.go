package service

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type WishlistService struct {
	WishlistRepo *repository.WishlistRepository
	CourseRepo   *repository.CourseRepository
}

func NewWishlistService(
	wishlistRepo *repository.WishlistRepository,
	courseRepo *repository.CourseRepository,
) *WishlistService {
	return &WishlistService{
		WishlistRepo: wishlistRepo,
		CourseRepo:   courseRepo,
	}
}

// Toggle flips the favourite state for (user, course) and reports the new
// state. There are no separate add/remove operations.
func (s *WishlistService) Toggle(userID, courseID uint) (favourited bool, err error) {
	if _, err := s.CourseRepo.FindPublishedByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, util.ErrCourseNotFound
		}
		return false, err
	}

	existing, err := s.WishlistRepo.Find(userID, courseID)
	if err == nil {
		if err := s.WishlistRepo.Delete(existing.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := s.WishlistRepo.Create(&model.Wishlist{UserID: userID, CourseID: courseID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *WishlistService) List(userID uint) ([]model.Wishlist, error) {
	return s.WishlistRepo.ListByUser(userID)
}

// IsFavourited reports presence for one course.
func (s *WishlistService) IsFavourited(userID, courseID uint) (bool, error) {
	_, err := s.WishlistRepo.Find(userID, courseID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
