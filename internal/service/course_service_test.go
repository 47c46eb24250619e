package service

import (
	"context"
	"testing"

	"course_market_backend/internal/config"
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseFixture(t *testing.T) *CourseService {
	db := newTestDB(t)
	repos := newTestRepos(db)
	return NewCourseService(repos.course, repos.enrollment, nil, &config.Config{}, nil)
}

func instructorClaims(user *model.User) *util.Claims {
	return &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email}
}

func TestCreateCourseSlugs(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)

	course, err := svc.CreateCourse(instructor.ID, CourseRequest{
		Title: "Mastering Go: Concurrency & Channels",
		Price: 59.99,
	})
	require.NoError(t, err)
	assert.Equal(t, "mastering-go-concurrency-channels", course.Slug)
	assert.Equal(t, model.CourseDraft, course.Status)
	assert.Equal(t, "English", course.Language)

	t.Run("title collision gets a suffix", func(t *testing.T) {
		twin, err := svc.CreateCourse(instructor.ID, CourseRequest{
			Title: "Mastering Go: Concurrency & Channels",
			Price: 59.99,
		})
		require.NoError(t, err)
		assert.NotEqual(t, course.Slug, twin.Slug)
		assert.Contains(t, twin.Slug, "mastering-go-concurrency-channels-")
	})
}

func TestCourseVisibility(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB
	ctx := context.Background()

	owner := seedUser(t, db, "owner", model.Instructor)
	other := seedUser(t, db, "other", model.Instructor)
	admin := seedUser(t, db, "admin", model.Admin)

	draft, err := svc.CreateCourse(owner.ID, CourseRequest{Title: "Hidden Draft Course"})
	require.NoError(t, err)

	t.Run("draft hidden from anonymous", func(t *testing.T) {
		_, err := svc.CourseBySlug(ctx, draft.Slug, nil)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	t.Run("draft hidden from other instructors", func(t *testing.T) {
		_, err := svc.CourseBySlug(ctx, draft.Slug, instructorClaims(other))
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	t.Run("draft visible to owner", func(t *testing.T) {
		found, err := svc.CourseBySlug(ctx, draft.Slug, instructorClaims(owner))
		require.NoError(t, err)
		assert.Equal(t, draft.ID, found.ID)
	})

	t.Run("draft visible to admin", func(t *testing.T) {
		found, err := svc.CourseBySlug(ctx, draft.Slug, instructorClaims(admin))
		require.NoError(t, err)
		assert.Equal(t, draft.ID, found.ID)
	})

	published := "published"
	_, err = svc.UpdateCourse(draft.ID, instructorClaims(owner), CourseUpdateRequest{Status: &published})
	require.NoError(t, err)

	t.Run("published visible to anonymous", func(t *testing.T) {
		found, err := svc.CourseBySlug(ctx, draft.Slug, nil)
		require.NoError(t, err)
		assert.Equal(t, model.CoursePublished, found.Status)
	})
}

func TestUpdateCoursePatch(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB

	owner := seedUser(t, db, "owner", model.Instructor)
	intruder := seedUser(t, db, "intruder", model.Instructor)

	course, err := svc.CreateCourse(owner.ID, CourseRequest{
		Title:    "Practical Go Patterns",
		Subtitle: "From zero to production",
		Price:    79.99,
	})
	require.NoError(t, err)

	t.Run("non-owner rejected", func(t *testing.T) {
		title := "Hijacked Title"
		_, err := svc.UpdateCourse(course.ID, instructorClaims(intruder), CourseUpdateRequest{Title: &title})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	newPrice := 49.99
	discount := 29.99
	updated, err := svc.UpdateCourse(course.ID, instructorClaims(owner), CourseUpdateRequest{
		Price:         &newPrice,
		DiscountPrice: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, 49.99, updated.Price)
	require.NotNil(t, updated.DiscountPrice)
	assert.Equal(t, 29.99, *updated.DiscountPrice)

	// Untouched fields survive the patch, and the slug never moves.
	assert.Equal(t, "Practical Go Patterns", updated.Title)
	assert.Equal(t, "From zero to production", updated.Subtitle)
	assert.Equal(t, course.Slug, updated.Slug)
	assert.Equal(t, 29.99, updated.CurrentPrice())
}

func TestCatalogFilters(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB
	ctx := context.Background()

	instructor := seedUser(t, db, "instructor", model.Instructor)

	category := &model.Category{Name: "Programming", Slug: "programming"}
	require.NoError(t, db.Create(category).Error)

	courses := []*model.Course{
		{Title: "Go for Beginners", Slug: "go-for-beginners", Status: model.CoursePublished,
			Level: model.LevelBeginner, IsFree: true, InstructorID: instructor.ID, CategoryID: &category.ID},
		{Title: "Advanced Go Internals", Slug: "advanced-go-internals", Status: model.CoursePublished,
			Level: model.LevelAdvanced, Price: 99.99, InstructorID: instructor.ID, CategoryID: &category.ID},
		{Title: "Watercolour Painting", Slug: "watercolour-painting", Status: model.CoursePublished,
			Level: model.LevelBeginner, Price: 19.99, InstructorID: instructor.ID},
		{Title: "Unpublished Course", Slug: "unpublished-course", Status: model.CourseDraft,
			InstructorID: instructor.ID},
	}
	for _, c := range courses {
		require.NoError(t, db.Create(c).Error)
	}

	t.Run("drafts excluded", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("category filter", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{CategorySlug: "programming"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("search matches title", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{Search: "Internals"})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, "Advanced Go Internals", page.Courses[0].Title)
	})

	t.Run("free only", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{FreeOnly: true})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.True(t, page.Courses[0].IsFree)
	})

	t.Run("level filter", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{Level: "beginner"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.Catalog(ctx, repository.CourseFilter{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Courses, 1)
		assert.Equal(t, 2, page.Page)
	})
}

func TestSectionsAndLectures(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB
	ctx := context.Background()

	owner := seedUser(t, db, "owner", model.Instructor)
	intruder := seedUser(t, db, "intruder", model.Instructor)

	course, err := svc.CreateCourse(owner.ID, CourseRequest{Title: "Structured Go Course"})
	require.NoError(t, err)

	t.Run("non-owner cannot add sections", func(t *testing.T) {
		_, err := svc.AddSection(course.ID, instructorClaims(intruder), SectionRequest{Title: "Sneaky"})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	section, err := svc.AddSection(course.ID, instructorClaims(owner), SectionRequest{Title: "Getting Started", Order: 1})
	require.NoError(t, err)

	lecture, err := svc.AddLecture(section.ID, instructorClaims(owner), LectureRequest{
		Title: "Installing the toolchain",
		Type:  "text",
		Order: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LectureText, lecture.Type)

	t.Run("non-owner cannot add lectures", func(t *testing.T) {
		_, err := svc.AddLecture(section.ID, instructorClaims(intruder), LectureRequest{Title: "Sneaky"})
		assert.ErrorIs(t, err, util.ErrPermissionDenied)
	})

	published := "published"
	_, err = svc.UpdateCourse(course.ID, instructorClaims(owner), CourseUpdateRequest{Status: &published})
	require.NoError(t, err)

	detail, err := svc.CourseBySlug(ctx, course.Slug, nil)
	require.NoError(t, err)
	require.Len(t, detail.Sections, 1)
	require.Len(t, detail.Sections[0].Lectures, 1)
	assert.Equal(t, lecture.ID, detail.Sections[0].Lectures[0].ID)
}

func TestResolveSlug(t *testing.T) {
	svc := newCourseFixture(t)
	db := svc.CourseRepo.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	id, err := svc.ResolveSlug(course.Slug)
	require.NoError(t, err)
	assert.Equal(t, course.ID, id)

	_, err = svc.ResolveSlug("does-not-exist")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}
