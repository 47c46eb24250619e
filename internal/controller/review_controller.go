package controller

import (
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
	CourseService *service.CourseService
}

func NewReviewController(reviewService *service.ReviewService, courseService *service.CourseService) *ReviewController {
	return &ReviewController{
		ReviewService: reviewService,
		CourseService: courseService,
	}
}

// Create godoc
// @Summary Review a course
// @Description Adds the caller's review; requires enrollment, one review per course
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Course slug"
// @Param body body service.ReviewRequest true "Rating and optional comment"
// @Success 201 {object} util.Response{data=model.Review}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/reviews [post]
func (c *ReviewController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
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

	review, err := c.ReviewService.Create(claims.UserID, courseID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		case errors.Is(err, util.ErrSelfReview):
			util.Fail(ctx, 400, util.CodeSelfReview, "You cannot review your own course")
		case errors.Is(err, util.ErrNotEnrolled):
			util.Fail(ctx, 400, util.CodeNotEnrolled, "You must be enrolled to review this course")
		case errors.Is(err, util.ErrAlreadyReviewed):
			util.Fail(ctx, 400, util.CodeAlreadyReviewed, "You have already reviewed this course")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, review)
}

// Update godoc
// @Summary Edit a review
// @Description Edits the caller's own review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review id"
// @Param body body service.ReviewRequest true "New rating and comment"
// @Success 200 {object} util.Response{data=model.Review}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/reviews/{id} [patch]
func (c *ReviewController) Update(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.ReviewService.Update(claims.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		c.reviewError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// Delete godoc
// @Summary Delete a review
// @Description Deletes the caller's own review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/reviews/{id} [delete]
func (c *ReviewController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ReviewService.Delete(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		c.reviewError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary List course reviews
// @Description One public page of approved reviews with the rating histogram
// @Tags reviews
// @Produce json
// @Param slug path string true "Course slug"
// @Param sort query string false "newest, highest or lowest"
// @Param page query int false "Page number"
// @Success 200 {object} util.Response{data=service.ReviewListResult}
// @Router /api/courses/{slug}/reviews [get]
func (c *ReviewController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	sort := repository.ReviewSort(ctx.DefaultQuery("sort", "newest"))
	switch sort {
	case repository.SortNewest, repository.SortHighest, repository.SortLowest:
	default:
		sort = repository.SortNewest
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

	result, err := c.ReviewService.List(courseID, sort, page)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

func (c *ReviewController) reviewError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrReviewNotFound):
		util.Fail(ctx, 404, util.CodeReviewNotFound, "Review not found")
	case errors.Is(err, util.ErrNotReviewOwner):
		util.Fail(ctx, 403, util.CodeNotReviewOwner, "You can only modify your own review")
	default:
		util.LogInternalError(ctx, err)
	}
}
