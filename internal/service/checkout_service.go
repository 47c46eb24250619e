package service

import (
	"context"
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"errors"
	"fmt"
	"math"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CheckoutService converts confirmed payments into enrollments and ledger
// rows. Every fulfillment path commits its whole write set in one
// transaction and is safe to invoke repeatedly for the same session.
type CheckoutService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	CartRepo       *repository.CartRepository
	Gateway        PaymentGateway
	DB             *gorm.DB
}

func NewCheckoutService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	cartRepo *repository.CartRepository,
	gateway PaymentGateway,
	db *gorm.DB,
) *CheckoutService {
	return &CheckoutService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		CartRepo:       cartRepo,
		Gateway:        gateway,
		DB:             db,
	}
}

type FulfillmentResult struct {
	Success         bool   `json:"success"`
	AlreadyEnrolled bool   `json:"alreadyEnrolled,omitempty"`
	CourseIDs       []uint `json:"courseIds,omitempty"`
}

// minorUnits converts a display price to minor currency units.
func minorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

// feeSplit applies the marketplace cut to an amount in minor units.
func feeSplit(amount int64) (platformFee, instructorEarn int64) {
	platformFee = int64(math.Round(float64(amount) * util.PlatformFeeRate))
	return platformFee, amount - platformFee
}

// CreateSession opens a payment session for a single course purchase.
func (s *CheckoutService) CreateSession(ctx context.Context, userID, courseID uint) (*CheckoutSession, error) {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if course.InstructorID == userID {
		return nil, util.ErrOwnCourse
	}
	if course.IsFree {
		return nil, util.ErrCourseNotFree
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}

	return s.Gateway.CreateCheckoutSession(ctx, CreateSessionRequest{
		Lines: []CheckoutLine{{
			Name:   course.Title,
			Amount: minorUnits(course.CurrentPrice()),
		}},
		Metadata: map[string]string{
			"userId":   strconv.FormatUint(uint64(userID), 10),
			"courseId": strconv.FormatUint(uint64(courseID), 10),
		},
	})
}

// CreateCartSession opens a payment session covering every course currently
// in the user's cart.
func (s *CheckoutService) CreateCartSession(ctx context.Context, userID uint) (*CheckoutSession, error) {
	items, err := s.CartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, util.ErrNotInCart
	}

	lines := make([]CheckoutLine, 0, len(items))
	courseIDs := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Course == nil {
			continue
		}
		lines = append(lines, CheckoutLine{
			Name:   item.Course.Title,
			Amount: minorUnits(item.Course.CurrentPrice()),
		})
		courseIDs = append(courseIDs, item.CourseID)
	}
	if len(lines) == 0 {
		return nil, util.ErrNotInCart
	}

	return s.Gateway.CreateCheckoutSession(ctx, CreateSessionRequest{
		Lines: lines,
		Metadata: map[string]string{
			"userId":       strconv.FormatUint(uint64(userID), 10),
			"courseIds":    util.JoinIDs(courseIDs),
			"cartCheckout": "true",
		},
	})
}

// VerifyCheckout retrieves the payment session from the provider, validates
// that the charge completed and belongs to the caller, then dispatches
// single or cart fulfillment based on the session's metadata.
func (s *CheckoutService) VerifyCheckout(ctx context.Context, userID uint, sessionID string) (*FulfillmentResult, error) {
	session, err := s.Gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment session: %w", err)
	}

	if !session.Paid() {
		return nil, util.ErrPaymentNotCompleted
	}

	if session.Metadata["userId"] != strconv.FormatUint(uint64(userID), 10) {
		return nil, util.ErrSessionOwnership
	}

	if session.Metadata["cartCheckout"] == "true" && session.Metadata["courseIds"] != "" {
		return s.fulfillCart(userID, session)
	}

	if courseIDStr := session.Metadata["courseId"]; courseIDStr != "" {
		courseID := util.MustParseUint(courseIDStr)
		if courseID != 0 {
			return s.fulfillSingle(userID, courseID, session)
		}
	}

	return nil, util.ErrNoCourseMetadata
}

// fulfillSingle grants one course. The charged amount comes straight from
// the session total.
func (s *CheckoutService) fulfillSingle(userID, courseID uint, session *CheckoutSession) (*FulfillmentResult, error) {
	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		monitoring.FulfillmentCounter.WithLabelValues("already_enrolled").Inc()
		return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: []uint{courseID}}, nil
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	amount := session.AmountTotal
	platformFee, instructorEarn := feeSplit(amount)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Enrollment{UserID: userID, CourseID: courseID}).Error; err != nil {
			return err
		}
		purchase := &model.Purchase{
			UserID:           userID,
			CourseID:         courseID,
			Amount:           amount,
			PlatformFee:      platformFee,
			InstructorEarn:   instructorEarn,
			Status:           model.PurchaseCompleted,
			PaymentSessionID: session.ID,
			PaymentIntentID:  session.PaymentIntentID,
			CourseName:       course.Title,
			CoursePrice:      course.Price,
		}
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			Update("total_students", gorm.Expr("total_students + 1")).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&model.CartItem{}).Error
	})
	if err != nil {
		// A concurrent fulfillment of the same session may commit first; the
		// enrollment unique index turns the loser into the idempotent path.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			monitoring.FulfillmentCounter.WithLabelValues("already_enrolled").Inc()
			return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: []uint{courseID}}, nil
		}
		return nil, err
	}

	monitoring.FulfillmentCounter.WithLabelValues("fulfilled").Inc()
	logger.Log.Info("checkout fulfilled",
		zap.Uint("userId", userID),
		zap.Uint("courseId", courseID),
		zap.String("sessionId", session.ID),
	)

	return &FulfillmentResult{Success: true, CourseIDs: []uint{courseID}}, nil
}

// fulfillCart grants every not-yet-owned course from the session's id list.
// Each line's amount is derived from the course's current discount or list
// price, not apportioned from the session total; the two can diverge if a
// price changed between cart-add and checkout.
func (s *CheckoutService) fulfillCart(userID uint, session *CheckoutSession) (*FulfillmentResult, error) {
	courseIDs := util.ParseIDList(session.Metadata["courseIds"])
	if len(courseIDs) == 0 {
		return nil, util.ErrNoCourseMetadata
	}

	enrolledIDs, err := s.EnrollmentRepo.EnrolledCourseIDs(userID, courseIDs)
	if err != nil {
		return nil, err
	}
	enrolledSet := make(map[uint]bool, len(enrolledIDs))
	for _, id := range enrolledIDs {
		enrolledSet[id] = true
	}

	newCourseIDs := make([]uint, 0, len(courseIDs))
	for _, id := range courseIDs {
		if !enrolledSet[id] {
			newCourseIDs = append(newCourseIDs, id)
		}
	}

	if len(newCourseIDs) == 0 {
		monitoring.FulfillmentCounter.WithLabelValues("already_enrolled").Inc()
		return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: courseIDs}, nil
	}

	courses, err := s.CourseRepo.FindByIDs(newCourseIDs)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, util.ErrCourseNotFound
	}

	fulfilledIDs := make([]uint, 0, len(courses))

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, course := range courses {
			amount := minorUnits(course.CurrentPrice())
			platformFee, instructorEarn := feeSplit(amount)

			if err := tx.Create(&model.Enrollment{UserID: userID, CourseID: course.ID}).Error; err != nil {
				return err
			}

			paymentIntentID := ""
			if session.PaymentIntentID != "" {
				paymentIntentID = fmt.Sprintf("%s_%d", session.PaymentIntentID, course.ID)
			}

			purchase := &model.Purchase{
				UserID:           userID,
				CourseID:         course.ID,
				Amount:           amount,
				PlatformFee:      platformFee,
				InstructorEarn:   instructorEarn,
				Status:           model.PurchaseCompleted,
				PaymentSessionID: session.ID,
				PaymentIntentID:  paymentIntentID,
				CourseName:       course.Title,
				CoursePrice:      course.Price,
			}
			if err := tx.Create(purchase).Error; err != nil {
				return err
			}

			if err := tx.Model(&model.Course{}).
				Where("id = ?", course.ID).
				Update("total_students", gorm.Expr("total_students + 1")).Error; err != nil {
				return err
			}

			fulfilledIDs = append(fulfilledIDs, course.ID)
		}

		// Cart checkout clears the whole cart.
		return tx.Unscoped().
			Where("user_id = ?", userID).
			Delete(&model.CartItem{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			monitoring.FulfillmentCounter.WithLabelValues("already_enrolled").Inc()
			return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: courseIDs}, nil
		}
		return nil, err
	}

	monitoring.FulfillmentCounter.WithLabelValues("fulfilled").Inc()
	logger.Log.Info("cart checkout fulfilled",
		zap.Uint("userId", userID),
		zap.Uints("courseIds", fulfilledIDs),
		zap.String("sessionId", session.ID),
	)

	return &FulfillmentResult{Success: true, CourseIDs: fulfilledIDs}, nil
}

// EnrollFree grants a free course directly, with the same idempotency and
// counter contract as paid fulfillment minus the ledger row.
func (s *CheckoutService) EnrollFree(userID, courseID uint) (*FulfillmentResult, error) {
	course, err := s.CourseRepo.FindPublishedByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	if !course.IsFree {
		return nil, util.ErrCourseNotFree
	}
	if course.InstructorID == userID {
		return nil, util.ErrOwnCourse
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: []uint{courseID}}, nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.Enrollment{UserID: userID, CourseID: courseID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Course{}).
			Where("id = ?", courseID).
			Update("total_students", gorm.Expr("total_students + 1")).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("user_id = ? AND course_id = ?", userID, courseID).
			Delete(&model.CartItem{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &FulfillmentResult{Success: true, AlreadyEnrolled: true, CourseIDs: []uint{courseID}}, nil
		}
		return nil, err
	}

	return &FulfillmentResult{Success: true, CourseIDs: []uint{courseID}}, nil
}
