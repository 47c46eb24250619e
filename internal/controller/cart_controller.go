package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	CartService *service.CartService
}

func NewCartController(cartService *service.CartService) *CartController {
	return &CartController{CartService: cartService}
}

type cartAddRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// Add godoc
// @Summary Add a course to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body cartAddRequest true "Course to add"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/cart [post]
func (c *CartController) Add(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req cartAddRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CartService.Add(claims.UserID, req.CourseID); err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		case errors.Is(err, util.ErrOwnCourse):
			util.Fail(ctx, 400, util.CodeOwnCourse, "You cannot buy your own course")
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Fail(ctx, 409, util.CodeAlreadyEnrolled, "You already own this course")
		case errors.Is(err, util.ErrAlreadyInCart):
			util.Fail(ctx, 409, util.CodeAlreadyInCart, "Course is already in your cart")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, nil)
}

// Remove godoc
// @Summary Remove a course from the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/cart/{courseId} [delete]
func (c *CartController) Remove(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	if err := c.CartService.Remove(claims.UserID, courseID); err != nil {
		if errors.Is(err, util.ErrNotInCart) {
			util.Fail(ctx, 404, util.CodeNotInCart, "Course is not in your cart")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Clear godoc
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/cart [delete]
func (c *CartController) Clear(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.CartService.Clear(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// List godoc
// @Summary List cart items
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.CartItem}
// @Router /api/cart [get]
func (c *CartController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	items, err := c.CartService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

// Count godoc
// @Summary Cart item count
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=object}
// @Router /api/cart/count [get]
func (c *CartController) Count(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.CartService.Count(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}
