package controller

import (
	"course_market_backend/internal/model"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type ApplicationController struct {
	ApplicationService *service.ApplicationService
}

func NewApplicationController(applicationService *service.ApplicationService) *ApplicationController {
	return &ApplicationController{ApplicationService: applicationService}
}

// Submit godoc
// @Summary Apply to become an instructor
// @Description Files an instructor application; only one may be pending at a time
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ApplicationRequest true "Headline and bio"
// @Success 201 {object} util.Response{data=model.InstructorApplication}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/instructor-applications [post]
func (c *ApplicationController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	app, err := c.ApplicationService.Submit(claims.UserID, claims.Role, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrRoleForbidden):
			util.Fail(ctx, 403, util.CodeRoleForbidden, "Only students may apply to become instructors")
		case errors.Is(err, util.ErrAlreadyPending):
			util.Fail(ctx, 409, util.CodeAlreadyPending, "You already have a pending application")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, app)
}

// Mine godoc
// @Summary My latest application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.InstructorApplication}
// @Router /api/instructor-applications/mine [get]
func (c *ApplicationController) Mine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	app, err := c.ApplicationService.Latest(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, app)
}

// List godoc
// @Summary List applications
// @Description Admin view of instructor applications, optionally filtered by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING, APPROVED or REJECTED"
// @Success 200 {object} util.Response{data=[]model.InstructorApplication}
// @Failure 403 {object} util.Response
// @Router /api/admin/instructor-applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	status := model.ApplicationStatus(ctx.Query("status"))

	apps, err := c.ApplicationService.List(status)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, apps)
}

// Review godoc
// @Summary Decide an application
// @Description Approves or rejects a pending application; approval promotes the applicant to instructor
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Param body body service.ApplicationDecision true "Decision"
// @Success 200 {object} util.Response{data=model.InstructorApplication}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/admin/instructor-applications/{id} [patch]
func (c *ApplicationController) Review(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var decision service.ApplicationDecision
	if err := ctx.ShouldBindJSON(&decision); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	app, err := c.ApplicationService.Review(claims.UserID, util.MustParseUint(ctx.Param("id")), decision)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrApplicationNotFound):
			util.Fail(ctx, 404, util.CodeNotFound, "Application not found")
		case errors.Is(err, util.ErrAlreadyReviewedApp):
			util.Fail(ctx, 409, util.CodeStateConflict, "Application has already been decided")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, app)
}
