package service

import (
	"context"
	"course_market_backend/internal/config"
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	catalogCacheKeyPrefix = "catalog:"
	courseCacheKeyPrefix  = "course:"
	catalogCacheTTL       = 5 * time.Minute
)

// CourseService serves the public catalog and the instructor-side course
// authoring flows.
type CourseService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	StorageService *StorageService
	Cfg            *config.Config
	Redis          *redis.Client
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	storageService *StorageService,
	cfg *config.Config,
	rdb *redis.Client,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		StorageService: storageService,
		Cfg:            cfg,
		Redis:          rdb,
	}
}

type CatalogPage struct {
	Courses []model.Course `json:"courses"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// Catalog lists published courses. Pages are cached briefly in Redis; the
// short TTL bounds staleness so writes do not need to invalidate.
func (s *CourseService) Catalog(ctx context.Context, filter repository.CourseFilter) (*CatalogPage, error) {
	cacheKey := fmt.Sprintf("%s%s:%s:%s:%t:%d:%d",
		catalogCacheKeyPrefix, filter.CategorySlug, filter.Search, filter.Level, filter.FreeOnly, filter.Page, filter.Limit)

	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var page CatalogPage
			if err := json.Unmarshal([]byte(val), &page); err == nil {
				return &page, nil
			}
		}
	}

	courses, total, err := s.CourseRepo.ListPublished(filter)
	if err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 12
	}
	page := &CatalogPage{Courses: courses, Total: total, Page: filter.Page, Limit: filter.Limit}

	if s.Redis != nil {
		if data, err := json.Marshal(page); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}

	return page, nil
}

// CourseBySlug returns a course's full detail. Drafts and archived courses
// are visible only to their instructor and to admins. Anonymous reads of
// published courses are served from Redis when possible.
func (s *CourseService) CourseBySlug(ctx context.Context, slug string, viewer *util.Claims) (*model.Course, error) {
	if viewer == nil && s.Redis != nil {
		if val, err := s.Redis.Get(ctx, courseCacheKeyPrefix+slug).Result(); err == nil {
			var cached model.Course
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if course.Status != model.CoursePublished {
		if viewer == nil || (viewer.UserID != course.InstructorID && viewer.Role != model.Admin) {
			return nil, util.ErrCourseNotFound
		}
	}

	if viewer == nil && s.Redis != nil && course.Status == model.CoursePublished {
		if data, err := json.Marshal(course); err == nil {
			s.Redis.Set(ctx, courseCacheKeyPrefix+slug, data, catalogCacheTTL)
		}
	}

	return course, nil
}

// ResolveSlug maps a course slug to its id for slug-keyed routes.
func (s *CourseService) ResolveSlug(slug string) (uint, error) {
	id, err := s.CourseRepo.IDBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, util.ErrCourseNotFound
		}
		return 0, err
	}
	return id, nil
}

func (s *CourseService) Categories() ([]model.Category, error) {
	return s.CourseRepo.ListCategories()
}

// EnrolledCourses lists the caller's enrollments with the course preloaded,
// most recently accessed first.
func (s *CourseService) EnrolledCourses(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

type CourseRequest struct {
	Title         string   `json:"title" binding:"required,min=5,max=200"`
	Subtitle      string   `json:"subtitle" binding:"max=255"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" binding:"min=0"`
	DiscountPrice *float64 `json:"discountPrice"`
	IsFree        bool     `json:"isFree"`
	Level         string   `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all_levels"`
	Language      string   `json:"language"`
	CategorySlug  string   `json:"categorySlug"`
}

func (s *CourseService) CreateCourse(instructorID uint, req CourseRequest) (*model.Course, error) {
	slug := util.Slugify(req.Title)
	if taken, err := s.CourseRepo.SlugExists(slug); err != nil {
		return nil, err
	} else if taken {
		slug = slug + "-" + uuid.New().String()[:8]
	}

	course := &model.Course{
		Title:         req.Title,
		Slug:          slug,
		Subtitle:      req.Subtitle,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		IsFree:        req.IsFree,
		Status:        model.CourseDraft,
		Language:      req.Language,
		InstructorID:  instructorID,
	}
	if req.Level != "" {
		course.Level = model.CourseLevel(req.Level)
	}
	if req.Language == "" {
		course.Language = "English"
	}

	if req.CategorySlug != "" {
		category, err := s.CourseRepo.FindCategoryBySlug(req.CategorySlug)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else {
			course.CategoryID = &category.ID
		}
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

type CourseUpdateRequest struct {
	Title         *string  `json:"title" binding:"omitempty,min=5,max=200"`
	Subtitle      *string  `json:"subtitle" binding:"omitempty,max=255"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" binding:"omitempty,min=0"`
	DiscountPrice *float64 `json:"discountPrice"`
	IsFree        *bool    `json:"isFree"`
	Level         *string  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced all_levels"`
	Language      *string  `json:"language"`
	CategorySlug  *string  `json:"categorySlug"`
	Status        *string  `json:"status" binding:"omitempty,oneof=draft published archived"`
}

// UpdateCourse applies a merge patch. Only the owning instructor or an admin
// may edit; the slug never changes after creation.
func (s *CourseService) UpdateCourse(courseID uint, claims *util.Claims, req CourseUpdateRequest) (*model.Course, error) {
	course, err := s.courseForOwner(courseID, claims)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Subtitle != nil {
		course.Subtitle = *req.Subtitle
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		course.DiscountPrice = req.DiscountPrice
	}
	if req.IsFree != nil {
		course.IsFree = *req.IsFree
	}
	if req.Level != nil {
		course.Level = model.CourseLevel(*req.Level)
	}
	if req.Language != nil {
		course.Language = *req.Language
	}
	if req.Status != nil {
		course.Status = model.CourseStatus(*req.Status)
	}
	if req.CategorySlug != nil {
		if *req.CategorySlug == "" {
			course.CategoryID = nil
		} else {
			category, err := s.CourseRepo.FindCategoryBySlug(*req.CategorySlug)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, err
				}
			} else {
				course.CategoryID = &category.ID
			}
		}
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.dropCourseCache(course.Slug)
	return course, nil
}

func (s *CourseService) MyCourses(instructorID uint) ([]model.Course, error) {
	return s.CourseRepo.FindByInstructor(instructorID)
}

type SectionRequest struct {
	Title string `json:"title" binding:"required,min=1,max=200"`
	Order int    `json:"order"`
}

func (s *CourseService) AddSection(courseID uint, claims *util.Claims, req SectionRequest) (*model.Section, error) {
	if _, err := s.courseForOwner(courseID, claims); err != nil {
		return nil, err
	}

	section := &model.Section{
		Title:    req.Title,
		Order:    req.Order,
		CourseID: courseID,
	}
	if err := s.CourseRepo.CreateSection(section); err != nil {
		return nil, err
	}
	return section, nil
}

type LectureRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Type      string `json:"type" binding:"omitempty,oneof=video text quiz"`
	Order     int    `json:"order"`
	Content   string `json:"content"`
	IsPreview bool   `json:"isPreview"`
}

func (s *CourseService) AddLecture(sectionID uint, claims *util.Claims, req LectureRequest) (*model.Lecture, error) {
	section, err := s.CourseRepo.FindSectionByID(sectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if _, err := s.courseForOwner(section.CourseID, claims); err != nil {
		return nil, err
	}

	lecture := &model.Lecture{
		Title:     req.Title,
		Order:     req.Order,
		Content:   req.Content,
		IsPreview: req.IsPreview,
		SectionID: sectionID,
	}
	if req.Type != "" {
		lecture.Type = model.LectureType(req.Type)
	}
	if err := s.CourseRepo.CreateLecture(lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

// UploadThumbnail replaces the course's cover image.
func (s *CourseService) UploadThumbnail(ctx context.Context, courseID uint, claims *util.Claims, file *multipart.FileHeader) (string, error) {
	course, err := s.courseForOwner(courseID, claims)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeImage}); err != nil {
		return "", fmt.Errorf("invalid thumbnail: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	filename := "thumbnails/" + time.Now().Format("20060102150405") + "-" + uuid.New().String()[:8] + ext

	url, err := s.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	course.Thumbnail = url
	if err := s.CourseRepo.Update(course); err != nil {
		return "", err
	}
	s.dropCourseCache(course.Slug)
	return url, nil
}

// UploadLectureVideo stores a lecture's video, probes its duration and rolls
// the new total up into the course.
func (s *CourseService) UploadLectureVideo(ctx context.Context, lectureID uint, claims *util.Claims, file *multipart.FileHeader) (*model.Lecture, error) {
	lecture, err := s.CourseRepo.FindLectureByID(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}
	course, err := s.courseForOwner(lecture.Section.CourseID, claims)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	valid := false
	for _, e := range util.AllowedVideoExtensions {
		if ext == e {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unsupported video extension: %s", ext)
	}

	// Spool to disk first so ffprobe can read it.
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, err
	}
	videoPath := filepath.Join(tempDir, fmt.Sprintf("lecture_%d_%d%s", lectureID, time.Now().UnixNano(), ext))
	defer os.Remove(videoPath)

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if _, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream}); err != nil {
		return nil, fmt.Errorf("invalid video: %v", err)
	}
	if seeker, ok := src.(io.Seeker); ok {
		seeker.Seek(0, io.SeekStart)
	}

	dst, err := os.Create(videoPath)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, err
	}
	dst.Close()

	videoFilename := "videos/" + time.Now().Format("20060102150405") + "-" + uuid.New().String()[:8] + ext
	videoURL, err := s.StorageService.UploadFile(ctx, videoFilename, videoPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	duration := 0
	if info, err := util.GetVideoInfo(videoPath); err != nil {
		logger.Log.Warn("video probe failed", zap.Uint("lectureID", lectureID), zap.Error(err))
	} else {
		duration = int(info.Duration)
	}

	lecture.VideoURL = videoURL
	lecture.Duration = duration
	lecture.Type = model.LectureVideo
	if err := s.CourseRepo.UpdateLecture(lecture); err != nil {
		return nil, err
	}

	if total, err := s.CourseRepo.SumLectureDuration(course.ID); err == nil {
		course.TotalDuration = int(total)
		if err := s.CourseRepo.Update(course); err != nil {
			logger.Log.Warn("course duration rollup failed", zap.Uint("courseID", course.ID), zap.Error(err))
		}
	}

	// Fill in a thumbnail from the video if the course has none yet.
	if course.Thumbnail == "" {
		s.thumbnailFromVideo(ctx, course, videoPath)
	}

	s.dropCourseCache(course.Slug)
	return lecture, nil
}

func (s *CourseService) thumbnailFromVideo(ctx context.Context, course *model.Course, videoPath string) {
	thumbDir := filepath.Join(s.Cfg.Storage.LocalPath, "thumbnails")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return
	}
	thumbPath := filepath.Join(thumbDir, fmt.Sprintf("course_%d.jpg", course.ID))
	defer os.Remove(thumbPath)

	if err := util.GenerateThumbnail(videoPath, thumbPath, "3"); err != nil {
		logger.Log.Warn("thumbnail generation failed", zap.Uint("courseID", course.ID), zap.Error(err))
		return
	}

	thumbFilename := "thumbnails/" + time.Now().Format("20060102150405") + "-" + uuid.New().String()[:8] + ".jpg"
	url, err := s.StorageService.UploadFile(ctx, thumbFilename, thumbPath, "image/jpeg")
	if err != nil {
		return
	}
	course.Thumbnail = url
	s.CourseRepo.Update(course)
}

// courseForOwner loads the course and checks the caller may modify it.
func (s *CourseService) courseForOwner(courseID uint, claims *util.Claims) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if claims == nil || (course.InstructorID != claims.UserID && claims.Role != model.Admin) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) dropCourseCache(slug string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), courseCacheKeyPrefix+slug).Err(); err != nil && err != redis.Nil {
		logger.Log.Warn("course cache invalidation failed", zap.String("slug", slug), zap.Error(err))
	}
}
