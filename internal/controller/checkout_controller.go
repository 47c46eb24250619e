package controller

import (
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	CheckoutService *service.CheckoutService
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{CheckoutService: checkoutService}
}

type checkoutRequest struct {
	CourseID uint `json:"courseId"`
	Cart     bool `json:"cart"`
}

// CreateSession godoc
// @Summary Start a checkout
// @Description Opens a payment session for one course, or for the whole cart when cart=true
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body checkoutRequest true "Checkout target"
// @Success 200 {object} util.Response{data=service.CheckoutSession}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/checkout [post]
func (c *CheckoutController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var session *service.CheckoutSession
	var err error
	if req.Cart {
		session, err = c.CheckoutService.CreateCartSession(ctx, claims.UserID)
	} else {
		if req.CourseID == 0 {
			util.BadRequest(ctx, "courseId is required")
			return
		}
		session, err = c.CheckoutService.CreateSession(ctx, claims.UserID, req.CourseID)
	}
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCourseNotFound):
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		case errors.Is(err, util.ErrOwnCourse):
			util.Fail(ctx, 400, util.CodeOwnCourse, "You cannot buy your own course")
		case errors.Is(err, util.ErrCourseNotFree):
			util.Fail(ctx, 400, util.CodeValidation, "Free courses are enrolled directly, not purchased")
		case errors.Is(err, util.ErrAlreadyEnrolled):
			util.Fail(ctx, 409, util.CodeAlreadyEnrolled, "You already own this course")
		case errors.Is(err, util.ErrNotInCart):
			util.Fail(ctx, 400, util.CodeNotInCart, "Your cart is empty")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, session)
}

type verifyRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// Verify godoc
// @Summary Verify a checkout
// @Description Confirms the payment with the provider and fulfills the enrollment. Safe to call repeatedly for the same session.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body verifyRequest true "Provider session id"
// @Success 200 {object} util.Response{data=service.FulfillmentResult}
// @Failure 400 {object} util.Response
// @Failure 402 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/checkout/verify [post]
func (c *CheckoutController) Verify(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.CheckoutService.VerifyCheckout(ctx, claims.UserID, req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPaymentNotCompleted):
			util.Fail(ctx, 402, util.CodePaymentNotPaid, "Payment has not completed")
		case errors.Is(err, util.ErrSessionOwnership):
			util.Fail(ctx, 403, util.CodeSessionOwnership, "Session does not belong to you")
		case errors.Is(err, util.ErrNoCourseMetadata):
			util.Fail(ctx, 400, util.CodeNoCourseMetadata, "Session has no course information")
		case errors.Is(err, util.ErrCourseNotFound):
			util.Fail(ctx, 404, util.CodeCourseNotFound, "Course not found")
		default:
			logger.Log.Error("checkout verification failed",
				zap.String("sessionId", req.SessionID),
				zap.Error(err),
			)
			util.Fail(ctx, 502, util.CodeUpstreamFailure, "Could not verify the payment")
		}
		return
	}
	util.Success(ctx, result)
}
