package service

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProgressService records per-lecture watch state and rolls it up into the
// enrollment's course progress, issuing a certificate on first completion.
type ProgressService struct {
	CourseRepo      *repository.CourseRepository
	EnrollmentRepo  *repository.EnrollmentRepository
	ProgressRepo    *repository.ProgressRepository
	CertificateRepo *repository.CertificateRepository
	UserRepo        *repository.UserRepository
	DB              *gorm.DB
}

func NewProgressService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	certificateRepo *repository.CertificateRepository,
	userRepo *repository.UserRepository,
	db *gorm.DB,
) *ProgressService {
	return &ProgressService{
		CourseRepo:      courseRepo,
		EnrollmentRepo:  enrollmentRepo,
		ProgressRepo:    progressRepo,
		CertificateRepo: certificateRepo,
		UserRepo:        userRepo,
		DB:              db,
	}
}

// ProgressUpdate is a merge patch: nil fields are left unchanged.
type ProgressUpdate struct {
	IsCompleted     *bool `json:"isCompleted"`
	WatchedDuration *int  `json:"watchedDuration"`
	LastPosition    *int  `json:"lastPosition"`
}

type ProgressResult struct {
	Progress             *model.LectureProgress `json:"progress"`
	CourseProgress       int                    `json:"courseProgress"`
	CourseCompleted      bool                   `json:"courseCompleted"`
	CertificateGenerated bool                   `json:"certificateGenerated"`
}

// UpdateLectureProgress upserts the lecture's watch state, recomputes the
// course completion percentage from the full progress set, and on first
// reaching 100% stamps the enrollment and issues one certificate. All writes
// commit in a single transaction.
func (s *ProgressService) UpdateLectureProgress(userID, lectureID uint, update ProgressUpdate) (*ProgressResult, error) {
	lecture, err := s.CourseRepo.FindLectureByID(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}
	if lecture.Section == nil {
		return nil, util.ErrLectureNotFound
	}
	courseID := lecture.Section.CourseID

	enrollment, err := s.EnrollmentRepo.Find(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	result := &ProgressResult{}
	now := time.Now()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Upsert the per-lecture row, patching only supplied fields.
		var progress model.LectureProgress
		findErr := tx.Where("user_id = ? AND lecture_id = ?", userID, lectureID).First(&progress).Error
		switch {
		case findErr == nil:
			if update.IsCompleted != nil {
				progress.IsCompleted = *update.IsCompleted
				if *update.IsCompleted {
					progress.CompletedAt = &now
				} else {
					progress.CompletedAt = nil
				}
			}
			if update.WatchedDuration != nil {
				progress.WatchedDuration = *update.WatchedDuration
			}
			if update.LastPosition != nil {
				progress.LastPosition = *update.LastPosition
			}
			if err := tx.Save(&progress).Error; err != nil {
				return err
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			progress = model.LectureProgress{
				UserID:    userID,
				LectureID: lectureID,
			}
			if update.IsCompleted != nil && *update.IsCompleted {
				progress.IsCompleted = true
				progress.CompletedAt = &now
			}
			if update.WatchedDuration != nil {
				progress.WatchedDuration = *update.WatchedDuration
			}
			if update.LastPosition != nil {
				progress.LastPosition = *update.LastPosition
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		default:
			return findErr
		}
		result.Progress = &progress

		// Full recount rather than an incremental counter; drift-free at the
		// cost of one aggregate query per update.
		var totalLectures int64
		if err := tx.Model(&model.Lecture{}).
			Joins("JOIN sections ON sections.id = lectures.section_id").
			Where("sections.course_id = ?", courseID).
			Count(&totalLectures).Error; err != nil {
			return err
		}

		var completedCount int64
		if err := tx.Model(&model.LectureProgress{}).
			Joins("JOIN lectures ON lectures.id = lecture_progress.lecture_id").
			Joins("JOIN sections ON sections.id = lectures.section_id").
			Where("lecture_progress.user_id = ? AND lecture_progress.is_completed = ? AND sections.course_id = ?",
				userID, true, courseID).
			Count(&completedCount).Error; err != nil {
			return err
		}

		newProgress := 0
		if totalLectures > 0 {
			newProgress = int(math.Round(float64(completedCount) / float64(totalLectures) * 100))
		}
		result.CourseProgress = newProgress

		justCompleted := newProgress == 100 && enrollment.CompletedAt == nil
		result.CourseCompleted = justCompleted

		updates := map[string]interface{}{
			"progress":         newProgress,
			"last_accessed_at": now,
		}
		if justCompleted {
			updates["completed_at"] = now
		}
		if err := tx.Model(&model.Enrollment{}).
			Where("id = ?", enrollment.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if justCompleted {
			var certCount int64
			if err := tx.Model(&model.Certificate{}).
				Where("user_id = ? AND course_id = ?", userID, courseID).
				Count(&certCount).Error; err != nil {
				return err
			}
			if certCount == 0 {
				course, err := s.CourseRepo.FindByID(courseID)
				if err != nil {
					return err
				}
				instructorName := "Instructor"
				if instructor, err := s.UserRepo.FindByID(course.InstructorID); err == nil {
					instructorName = instructor.Name
				}
				cert := &model.Certificate{
					Code:           util.GenerateCertificateCode(),
					UserID:         userID,
					CourseID:       courseID,
					CourseName:     course.Title,
					InstructorName: instructorName,
				}
				if err := tx.Create(cert).Error; err != nil {
					return err
				}
				result.CertificateGenerated = true
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.CertificateGenerated {
		monitoring.CertificatesIssued.Inc()
		logger.Log.Info("certificate issued",
			zap.Uint("userId", userID),
			zap.Uint("courseId", courseID),
		)
	}

	return result, nil
}

// CourseProgress reports the caller's per-lecture rows for one course.
func (s *ProgressService) CourseProgress(userID, courseID uint) ([]model.LectureProgress, error) {
	if _, err := s.EnrollmentRepo.Find(userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return s.ProgressRepo.ListByCourse(userID, courseID)
}

func (s *ProgressService) ListCertificates(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.ListByUser(userID)
}

// LookupCertificate is public verification by code.
func (s *ProgressService) LookupCertificate(code string) (*model.Certificate, error) {
	cert, err := s.CertificateRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}
