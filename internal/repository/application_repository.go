package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

func (r *ApplicationRepository) Create(app *model.InstructorApplication) error {
	return r.DB.Create(app).Error
}

func (r *ApplicationRepository) FindByID(id uint) (*model.InstructorApplication, error) {
	var app model.InstructorApplication
	err := r.DB.First(&app, id).Error
	return &app, err
}

// FindPending returns the user's pending application, if one exists.
func (r *ApplicationRepository) FindPending(userID uint) (*model.InstructorApplication, error) {
	var app model.InstructorApplication
	err := r.DB.
		Where("user_id = ? AND status = ?", userID, model.ApplicationPending).
		First(&app).Error
	return &app, err
}

func (r *ApplicationRepository) FindLatestByUser(userID uint) (*model.InstructorApplication, error) {
	var app model.InstructorApplication
	err := r.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&app).Error
	return &app, err
}

func (r *ApplicationRepository) List(status model.ApplicationStatus) ([]model.InstructorApplication, error) {
	query := r.DB.
		Preload("User").
		Preload("ReviewedBy").
		Order("status ASC, created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []model.InstructorApplication
	err := query.Find(&apps).Error
	return apps, err
}
