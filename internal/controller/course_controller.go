package controller

import (
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService   *service.CourseService
	CheckoutService *service.CheckoutService
}

func NewCourseController(courseService *service.CourseService, checkoutService *service.CheckoutService) *CourseController {
	return &CourseController{
		CourseService:   courseService,
		CheckoutService: checkoutService,
	}
}

// Catalog godoc
// @Summary Browse the catalog
// @Description Lists published courses with optional category, search, level and free filters
// @Tags courses
// @Produce json
// @Param category query string false "Category slug"
// @Param search query string false "Title or subtitle search"
// @Param level query string false "beginner, intermediate, advanced or all_levels"
// @Param free query bool false "Free courses only"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response{data=service.CatalogPage}
// @Router /api/courses [get]
func (c *CourseController) Catalog(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "12"))

	filter := repository.CourseFilter{
		CategorySlug: ctx.Query("category"),
		Search:       ctx.Query("search"),
		Level:        ctx.Query("level"),
		FreeOnly:     ctx.Query("free") == "true",
		Page:         page,
		Limit:        limit,
	}

	result, err := c.CourseService.Catalog(ctx, filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// CourseDetail godoc
// @Summary Course detail
// @Description Full course page with sections, lectures, instructor and category
// @Tags courses
// @Produce json
// @Param slug path string true "Course slug"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) CourseDetail(ctx *gin.Context) {
	viewer := util.GetUserFromContext(ctx)

	course, err := c.CourseService.CourseBySlug(ctx, ctx.Param("slug"), viewer)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, course)
}

// Categories godoc
// @Summary List categories
// @Tags courses
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Category}
// @Router /api/categories [get]
func (c *CourseController) Categories(ctx *gin.Context) {
	categories, err := c.CourseService.Categories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// MyEnrollments godoc
// @Summary My enrollments
// @Description Lists the caller's enrollments with course and progress, most recently accessed first
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Failure 401 {object} util.Response
// @Router /api/enrollments [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	enrollments, err := c.CourseService.EnrolledCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// EnrollFree godoc
// @Summary Enroll in a free course
// @Description Grants immediate access to a published free course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} util.Response{data=service.FulfillmentResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/enroll [post]
func (c *CourseController) EnrollFree(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID, err := c.CourseService.ResolveSlug(ctx.Param("slug"))
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	result, err := c.CheckoutService.EnrollFree(claims.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		case errors.Is(err, util.ErrCourseNotFree):
			util.Fail(ctx, 400, util.CodeCourseNotFree, "Course is not free")
		case errors.Is(err, util.ErrOwnCourse):
			util.Fail(ctx, 400, util.CodeOwnCourse, "You cannot enroll in your own course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// CreateCourse godoc
// @Summary Create a course
// @Description Creates a draft course owned by the calling instructor
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "Course payload"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary Update a course
// @Description Merge-patches course fields, including status transitions
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param body body service.CourseUpdateRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/courses/{id} [patch]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.CourseUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(util.MustParseUint(ctx.Param("id")), claims, req)
	if err != nil {
		c.ownershipError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// MyCourses godoc
// @Summary My courses
// @Description Lists every course owned by the calling instructor
// @Tags instructor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Failure 401 {object} util.Response
// @Router /api/instructor/courses [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CourseService.MyCourses(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// AddSection godoc
// @Summary Add a section
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param body body service.SectionRequest true "Section payload"
// @Success 201 {object} util.Response{data=model.Section}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/courses/{id}/sections [post]
func (c *CourseController) AddSection(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	section, err := c.CourseService.AddSection(util.MustParseUint(ctx.Param("id")), claims, req)
	if err != nil {
		c.ownershipError(ctx, err)
		return
	}
	util.Created(ctx, section)
}

// AddLecture godoc
// @Summary Add a lecture
// @Tags instructor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section id"
// @Param body body service.LectureRequest true "Lecture payload"
// @Success 201 {object} util.Response{data=model.Lecture}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/sections/{id}/lectures [post]
func (c *CourseController) AddLecture(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.LectureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lecture, err := c.CourseService.AddLecture(util.MustParseUint(ctx.Param("id")), claims, req)
	if err != nil {
		c.ownershipError(ctx, err)
		return
	}
	util.Created(ctx, lecture)
}

// UploadThumbnail godoc
// @Summary Upload a course thumbnail
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course id"
// @Param thumbnail formData file true "Cover image"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	file, err := ctx.FormFile("thumbnail")
	if err != nil {
		util.BadRequest(ctx, "thumbnail file is required")
		return
	}

	url, err := c.CourseService.UploadThumbnail(ctx, util.MustParseUint(ctx.Param("id")), claims, file)
	if err != nil {
		c.ownershipError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"thumbnail": url})
}

// UploadLectureVideo godoc
// @Summary Upload a lecture video
// @Description Stores the video, probes its duration and updates the course's total duration
// @Tags instructor
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecture id"
// @Param video formData file true "Lecture video"
// @Success 200 {object} util.Response{data=model.Lecture}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/instructor/lectures/{id}/video [post]
func (c *CourseController) UploadLectureVideo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	file, err := ctx.FormFile("video")
	if err != nil {
		util.BadRequest(ctx, "video file is required")
		return
	}

	lecture, err := c.CourseService.UploadLectureVideo(ctx, util.MustParseUint(ctx.Param("id")), claims, file)
	if err != nil {
		c.ownershipError(ctx, err)
		return
	}
	util.Success(ctx, lecture)
}

func (c *CourseController) ownershipError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound):
		util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
	case errors.Is(err, util.ErrLectureNotFound):
		util.Fail(ctx, 404, util.CodeLectureNotFound, "Lecture not found")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.BadRequest(ctx, err.Error())
	}
}
