package service

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
)

type ApplicationService struct {
	ApplicationRepo *repository.ApplicationRepository
	UserRepo        *repository.UserRepository
	DB              *gorm.DB
}

func NewApplicationService(
	applicationRepo *repository.ApplicationRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
) *ApplicationService {
	return &ApplicationService{
		ApplicationRepo: applicationRepo,
		UserRepo:        userRepo,
		DB:              db,
	}
}

type ApplicationRequest struct {
	Headline string `json:"headline" binding:"required,min=10,max=120"`
	Bio      string `json:"bio" binding:"required,min=50"`
}

type ApplicationDecision struct {
	Status    model.ApplicationStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	AdminNote string                  `json:"adminNote"`
}

// Submit files a new application. Only students may apply; admins get no
// bypass here because approval would rewrite their role. A user may hold at
// most one PENDING application; the check is query-then-create, not a store
// constraint.
func (s *ApplicationService) Submit(userID uint, role model.UserRole, req ApplicationRequest) (*model.InstructorApplication, error) {
	if role != model.Student {
		return nil, util.ErrRoleForbidden
	}

	if _, err := s.ApplicationRepo.FindPending(userID); err == nil {
		return nil, util.ErrAlreadyPending
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	app := &model.InstructorApplication{
		UserID:   userID,
		Headline: req.Headline,
		Bio:      req.Bio,
		Status:   model.ApplicationPending,
	}
	if err := s.ApplicationRepo.Create(app); err != nil {
		return nil, err
	}
	return app, nil
}

// Latest returns the user's most recent application, or nil if none exists.
func (s *ApplicationService) Latest(userID uint) (*model.InstructorApplication, error) {
	app, err := s.ApplicationRepo.FindLatestByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

func (s *ApplicationService) List(status model.ApplicationStatus) ([]model.InstructorApplication, error) {
	return s.ApplicationRepo.List(status)
}

// Review decides a pending application. Approval promotes the applicant to
// instructor and copies headline/bio onto the user, atomically with the
// status change.
func (s *ApplicationService) Review(adminID, applicationID uint, decision ApplicationDecision) (*model.InstructorApplication, error) {
	app, err := s.ApplicationRepo.FindByID(applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrApplicationNotFound
		}
		return nil, err
	}

	if app.Status != model.ApplicationPending {
		return nil, util.ErrAlreadyReviewedApp
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		app.Status = decision.Status
		app.AdminNote = decision.AdminNote
		app.ReviewedByID = &adminID
		app.ReviewedAt = &now
		if err := tx.Save(app).Error; err != nil {
			return err
		}

		if decision.Status == model.ApplicationApproved {
			return tx.Model(&model.User{}).
				Where("id = ?", app.UserID).
				Updates(map[string]interface{}{
					"role":     model.Instructor,
					"headline": app.Headline,
					"bio":      app.Bio,
				}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return app, nil
}
