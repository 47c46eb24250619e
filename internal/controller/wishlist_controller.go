package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type WishlistController struct {
	WishlistService *service.WishlistService
}

func NewWishlistController(wishlistService *service.WishlistService) *WishlistController {
	return &WishlistController{WishlistService: wishlistService}
}

// Toggle godoc
// @Summary Toggle a favourite
// @Description Adds the course to favourites, or removes it if already there
// @Tags favourites
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course id"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/favourites/{courseId} [post]
func (c *WishlistController) Toggle(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("courseId"))
	favourited, err := c.WishlistService.Toggle(claims.UserID, courseID)
	if err != nil {
		if errors.Is(err, util.ErrCourseNotFound) {
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"favourited": favourited})
}

// List godoc
// @Summary List favourites
// @Description Without a courseId query it lists all favourites; with one it reports presence for that course
// @Tags favourites
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Report presence for one course instead of listing"
// @Success 200 {object} util.Response{data=[]model.Wishlist}
// @Router /api/favourites [get]
func (c *WishlistController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if courseIDStr := ctx.Query("courseId"); courseIDStr != "" {
		favourited, err := c.WishlistService.IsFavourited(claims.UserID, util.MustParseUint(courseIDStr))
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		util.Success(ctx, gin.H{"favourited": favourited})
		return
	}

	items, err := c.WishlistService.List(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}
