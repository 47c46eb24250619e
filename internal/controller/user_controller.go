package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Applies a merge patch to the caller's profile fields
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/users/me [patch]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.PasswordChangeRequest true "Current and new password"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/users/me/password [put]
func (c *UserController) ChangePassword(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PasswordChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.ChangePassword(claims.UserID, req); err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Fail(ctx, 400, util.CodeValidation, "Current password is incorrect")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/users/me/avatar [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	url, err := c.UserService.UploadAvatar(ctx, claims.UserID, file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"avatar": url})
}

// PurchaseHistory godoc
// @Summary Purchase history
// @Description Lists the caller's completed purchases, newest first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Purchase}
// @Failure 401 {object} util.Response
// @Router /api/users/me/purchases [get]
func (c *UserController) PurchaseHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	purchases, err := c.UserService.PurchaseHistory(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, purchases)
}

// Earnings godoc
// @Summary Instructor earnings
// @Description Total earnings in minor currency units across completed sales
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Failure 401 {object} util.Response
// @Router /api/instructor/earnings [get]
func (c *UserController) Earnings(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	total, err := c.UserService.InstructorEarnings(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"totalEarnings": total})
}
