package repository

import (
	"course_market_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// FindPublishedByID returns the course only if it is publicly visible.
func (r *CourseRepository) FindPublishedByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ? AND status = ?", id, model.CoursePublished).First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Instructor").
		Preload("Category").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("sections.`order` ASC")
		}).
		Preload("Sections.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("lectures.`order` ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindByIDs(ids []uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByInstructor(instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("instructor_id = ?", instructorID).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

type CourseFilter struct {
	CategorySlug string
	Search       string
	Level        string
	FreeOnly     bool
	Page         int
	Limit        int
}

// ListPublished browses the public catalog.
func (r *CourseRepository) ListPublished(f CourseFilter) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{}).
		Where("courses.status = ?", model.CoursePublished)

	if f.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = courses.category_id").
			Where("categories.slug = ?", f.CategorySlug)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("courses.title LIKE ? OR courses.subtitle LIKE ?", like, like)
	}
	if f.Level != "" {
		query = query.Where("courses.level = ?", f.Level)
	}
	if f.FreeOnly {
		query = query.Where("courses.is_free = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 12
	}

	var courses []model.Course
	err := query.
		Preload("Instructor").
		Preload("Category").
		Order("courses.created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&courses).Error
	return courses, total, err
}

// CountLectures counts all lectures belonging to a course across sections.
func (r *CourseRepository) CountLectures(courseID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Lecture{}).
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("sections.course_id = ?", courseID).
		Count(&total).Error
	return total, err
}

func (r *CourseRepository) FindLectureByID(id uint) (*model.Lecture, error) {
	var lecture model.Lecture
	err := r.DB.Preload("Section").First(&lecture, id).Error
	return &lecture, err
}

func (r *CourseRepository) FindSectionByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	return &section, err
}

func (r *CourseRepository) CreateSection(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *CourseRepository) CreateLecture(lecture *model.Lecture) error {
	return r.DB.Create(lecture).Error
}

func (r *CourseRepository) UpdateLecture(lecture *model.Lecture) error {
	return r.DB.Save(lecture).Error
}

// SumLectureDuration totals lecture durations for a course, in seconds.
func (r *CourseRepository) SumLectureDuration(courseID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.Lecture{}).
		Joins("JOIN sections ON sections.id = lectures.section_id").
		Where("sections.course_id = ?", courseID).
		Select("COALESCE(SUM(lectures.duration), 0)").
		Scan(&total).Error
	return total, err
}

// IDBySlug resolves a course slug without loading the row's relations.
func (r *CourseRepository) IDBySlug(slug string) (uint, error) {
	var course model.Course
	err := r.DB.Select("id").Where("slug = ?", slug).First(&course).Error
	return course.ID, err
}

func (r *CourseRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) FindCategoryBySlug(slug string) (*model.Category, error) {
	var category model.Category
	err := r.DB.Where("slug = ?", slug).First(&category).Error
	return &category, err
}

func (r *CourseRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	err := r.DB.Order("name ASC").Find(&categories).Error
	return categories, err
}
