package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
	CourseService   *service.CourseService
}

func NewProgressController(progressService *service.ProgressService, courseService *service.CourseService) *ProgressController {
	return &ProgressController{
		ProgressService: progressService,
		CourseService:   courseService,
	}
}

// UpdateProgress godoc
// @Summary Update lecture progress
// @Description Merge-patches the lecture's watch state and returns the rolled-up course progress. A certificate is issued the first time the course reaches 100%.
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lecture id"
// @Param body body service.ProgressUpdate true "Fields to change"
// @Success 200 {object} util.Response{data=service.ProgressResult}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/lectures/{id}/progress [post]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var update service.ProgressUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.UpdateLectureProgress(claims.UserID, util.MustParseUint(ctx.Param("id")), update)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLectureNotFound):
			util.Fail(ctx, 404, util.CodeLectureNotFound, "Lecture not found")
		case errors.Is(err, util.ErrNotEnrolled):
			util.Fail(ctx, 403, util.CodeNotEnrolled, "You are not enrolled in this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// CourseProgress godoc
// @Summary Course progress detail
// @Description Every lecture progress row the caller has for the course
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Success 200 {object} util.Response{data=[]model.LectureProgress}
// @Failure 403 {object} util.Response
// @Router /api/courses/{slug}/progress [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
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

	rows, err := c.ProgressService.CourseProgress(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrNotEnrolled) {
			util.Fail(ctx, 403, util.CodeNotEnrolled, "You are not enrolled in this course")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rows)
}

// MyCertificates godoc
// @Summary My certificates
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *ProgressController) MyCertificates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.ProgressService.ListCertificates(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// LookupCertificate godoc
// @Summary Verify a certificate
// @Description Public lookup of a certificate by its code
// @Tags progress
// @Produce json
// @Param code path string true "Certificate code"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response
// @Router /api/certificates/{code} [get]
func (c *ProgressController) LookupCertificate(ctx *gin.Context) {
	cert, err := c.ProgressService.LookupCertificate(ctx.Param("code"))
	if err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			util.Fail(ctx, 404, util.CodeNotFound, "Certificate not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cert)
}
