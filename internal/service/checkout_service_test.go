package service

import (
	"context"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *testRepos, *fakeGateway) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	gateway := newFakeGateway()
	svc := NewCheckoutService(repos.course, repos.enrollment, repos.cart, gateway, db)
	return svc, repos, gateway
}

func TestCreateSessionGuards(t *testing.T) {
	svc, _, _ := newCheckoutFixture(t)
	db := svc.DB
	ctx := context.Background()

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	paid := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	free := seedCourse(t, db, instructor.ID, "go-intro", 0)

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, student.ID, 9999)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	t.Run("own course", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, instructor.ID, paid.ID)
		assert.ErrorIs(t, err, util.ErrOwnCourse)
	})

	t.Run("free course", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, student.ID, free.ID)
		assert.ErrorIs(t, err, util.ErrCourseNotFree)
	})

	t.Run("already enrolled", func(t *testing.T) {
		enroll(t, db, student.ID, paid.ID)
		_, err := svc.CreateSession(ctx, student.ID, paid.ID)
		assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)
	})
}

func TestSingleCheckoutFulfillment(t *testing.T) {
	svc, repos, gateway := newCheckoutFixture(t)
	db := svc.DB
	ctx := context.Background()

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	session, err := svc.CreateSession(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4999), session.AmountTotal)
	assert.NotEmpty(t, session.URL)

	t.Run("unpaid session rejected", func(t *testing.T) {
		_, err := svc.VerifyCheckout(ctx, student.ID, session.ID)
		assert.ErrorIs(t, err, util.ErrPaymentNotCompleted)
	})

	gateway.markPaid(session.ID)

	t.Run("foreign user rejected", func(t *testing.T) {
		other := seedUser(t, db, "other", model.Student)
		_, err := svc.VerifyCheckout(ctx, other.ID, session.ID)
		assert.ErrorIs(t, err, util.ErrSessionOwnership)
	})

	result, err := svc.VerifyCheckout(ctx, student.ID, session.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.AlreadyEnrolled)
	assert.Equal(t, []uint{course.ID}, result.CourseIDs)

	enrolled, err := repos.enrollment.Exists(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	var purchase model.Purchase
	require.NoError(t, db.Where("payment_session_id = ?", session.ID).First(&purchase).Error)
	assert.Equal(t, int64(4999), purchase.Amount)
	assert.Equal(t, int64(1500), purchase.PlatformFee)
	assert.Equal(t, int64(3499), purchase.InstructorEarn)
	assert.Equal(t, model.PurchaseCompleted, purchase.Status)
	assert.Equal(t, "go-basics", purchase.CourseName)

	var refreshed model.Course
	require.NoError(t, db.First(&refreshed, course.ID).Error)
	assert.Equal(t, 1, refreshed.TotalStudents)

	t.Run("re-verify is idempotent", func(t *testing.T) {
		again, err := svc.VerifyCheckout(ctx, student.ID, session.ID)
		require.NoError(t, err)
		assert.True(t, again.Success)
		assert.True(t, again.AlreadyEnrolled)

		var purchases int64
		require.NoError(t, db.Model(&model.Purchase{}).
			Where("user_id = ?", student.ID).Count(&purchases).Error)
		assert.Equal(t, int64(1), purchases)

		require.NoError(t, db.First(&refreshed, course.ID).Error)
		assert.Equal(t, 1, refreshed.TotalStudents)
	})
}

func TestCartCheckoutFulfillment(t *testing.T) {
	svc, repos, gateway := newCheckoutFixture(t)
	db := svc.DB
	ctx := context.Background()

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	first := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	second := seedCourse(t, db, instructor.ID, "go-advanced", 89.99)
	discount := 19.99
	second.DiscountPrice = &discount
	require.NoError(t, db.Save(second).Error)

	require.NoError(t, db.Create(&model.CartItem{UserID: student.ID, CourseID: first.ID}).Error)
	require.NoError(t, db.Create(&model.CartItem{UserID: student.ID, CourseID: second.ID}).Error)

	session, err := svc.CreateCartSession(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4999+1999), session.AmountTotal)
	assert.Equal(t, "true", session.Metadata["cartCheckout"])

	gateway.markPaid(session.ID)

	result, err := svc.VerifyCheckout(ctx, student.ID, session.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, result.CourseIDs)

	var purchases []model.Purchase
	require.NoError(t, db.Where("user_id = ?", student.ID).Order("course_id").Find(&purchases).Error)
	require.Len(t, purchases, 2)
	assert.Equal(t, int64(4999), purchases[0].Amount)
	assert.Equal(t, int64(1999), purchases[1].Amount)
	assert.Equal(t, int64(600), purchases[1].PlatformFee)
	assert.Contains(t, purchases[0].PaymentIntentID, session.PaymentIntentID)

	count, err := repos.cart.CountByUser(student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	t.Run("empty cart rejected", func(t *testing.T) {
		_, err := svc.CreateCartSession(ctx, student.ID)
		assert.ErrorIs(t, err, util.ErrNotInCart)
	})
}

func TestCartCheckoutSkipsOwnedCourses(t *testing.T) {
	svc, _, gateway := newCheckoutFixture(t)
	db := svc.DB
	ctx := context.Background()

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	owned := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	fresh := seedCourse(t, db, instructor.ID, "go-advanced", 89.99)

	require.NoError(t, db.Create(&model.CartItem{UserID: student.ID, CourseID: owned.ID}).Error)
	require.NoError(t, db.Create(&model.CartItem{UserID: student.ID, CourseID: fresh.ID}).Error)

	session, err := svc.CreateCartSession(ctx, student.ID)
	require.NoError(t, err)
	gateway.markPaid(session.ID)

	// Enrollment lands between session creation and verification.
	enroll(t, db, student.ID, owned.ID)

	result, err := svc.VerifyCheckout(ctx, student.ID, session.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []uint{fresh.ID}, result.CourseIDs)

	var purchases int64
	require.NoError(t, db.Model(&model.Purchase{}).
		Where("user_id = ?", student.ID).Count(&purchases).Error)
	assert.Equal(t, int64(1), purchases)
}

func TestVerifyCheckoutWithoutMetadata(t *testing.T) {
	svc, _, gateway := newCheckoutFixture(t)
	db := svc.DB
	ctx := context.Background()

	student := seedUser(t, db, "student", model.Student)

	session, err := gateway.CreateCheckoutSession(ctx, CreateSessionRequest{
		Lines:    []CheckoutLine{{Name: "orphan", Amount: 1000}},
		Metadata: map[string]string{"userId": "1"},
	})
	require.NoError(t, err)
	gateway.markPaid(session.ID)

	_, err = svc.VerifyCheckout(ctx, student.ID, session.ID)
	assert.ErrorIs(t, err, util.ErrNoCourseMetadata)
}

func TestEnrollFree(t *testing.T) {
	svc, repos, _ := newCheckoutFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	free := seedCourse(t, db, instructor.ID, "go-intro", 0)
	paid := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	t.Run("paid course rejected", func(t *testing.T) {
		_, err := svc.EnrollFree(student.ID, paid.ID)
		assert.ErrorIs(t, err, util.ErrCourseNotFree)
	})

	t.Run("own course rejected", func(t *testing.T) {
		_, err := svc.EnrollFree(instructor.ID, free.ID)
		assert.ErrorIs(t, err, util.ErrOwnCourse)
	})

	result, err := svc.EnrollFree(student.ID, free.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	enrolled, err := repos.enrollment.Exists(student.ID, free.ID)
	require.NoError(t, err)
	assert.True(t, enrolled)

	// No ledger row for a free enrollment.
	var purchases int64
	require.NoError(t, db.Model(&model.Purchase{}).
		Where("user_id = ?", student.ID).Count(&purchases).Error)
	assert.Equal(t, int64(0), purchases)

	t.Run("repeat enrollment is idempotent", func(t *testing.T) {
		again, err := svc.EnrollFree(student.ID, free.ID)
		require.NoError(t, err)
		assert.True(t, again.AlreadyEnrolled)

		var refreshed model.Course
		require.NoError(t, db.First(&refreshed, free.ID).Error)
		assert.Equal(t, 1, refreshed.TotalStudents)
	})
}
