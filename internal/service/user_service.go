package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo       *repository.UserRepository
	PurchaseRepo   *repository.PurchaseRepository
	StorageService *StorageService
}

func NewUserService(
	userRepo *repository.UserRepository,
	purchaseRepo *repository.PurchaseRepository,
	storageService *StorageService,
) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		PurchaseRepo:   purchaseRepo,
		StorageService: storageService,
	}
}

func (s *UserService) GetByID(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type ProfileUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Headline *string `json:"headline" binding:"omitempty,max=120"`
	Bio      *string `json:"bio"`
}

// UpdateProfile applies a merge patch to the caller's own profile.
func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Headline != nil {
		user.Headline = *req.Headline
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

func (s *UserService) ChangePassword(userID uint, req PasswordChangeRequest) error {
	user, err := s.GetByID(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return util.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return s.UserRepo.Update(user)
}

// UploadAvatar replaces the user's avatar image.
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, file *multipart.FileHeader) (string, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeImage}); err != nil {
		return "", fmt.Errorf("invalid avatar: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := "avatars/" + time.Now().Format("20060102150405") + "-" + uuid.New().String()[:8] + ext

	url, err := s.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// PurchaseHistory lists the caller's completed purchases, newest first.
func (s *UserService) PurchaseHistory(userID uint) ([]model.Purchase, error) {
	return s.PurchaseRepo.ListByUser(userID)
}

// InstructorEarnings sums the instructor's share of completed purchases, in
// minor currency units.
func (s *UserService) InstructorEarnings(instructorID uint) (int64, error) {
	return s.PurchaseRepo.InstructorEarnings(instructorID)
}
