package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Certificate{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *CertificateRepository) FindByCode(code string) (*model.Certificate, error) {
	var cert model.Certificate
	err := r.DB.Where("code = ?", code).First(&cert).Error
	return &cert, err
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&certs).Error
	return certs, err
}
