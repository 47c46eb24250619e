package service

import (
	"fmt"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReviewFixture(t *testing.T) *ReviewService {
	db := newTestDB(t)
	repos := newTestRepos(db)
	return NewReviewService(repos.review, repos.course, repos.enrollment, db)
}

func strPtr(s string) *string { return &s }

func TestReviewCreateGuards(t *testing.T) {
	svc := newReviewFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	req := ReviewRequest{Rating: 5, Comment: strPtr("Great course")}

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.Create(student.ID, 9999, req)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	t.Run("instructor cannot review own course", func(t *testing.T) {
		_, err := svc.Create(instructor.ID, course.ID, req)
		assert.ErrorIs(t, err, util.ErrSelfReview)
	})

	t.Run("must be enrolled", func(t *testing.T) {
		_, err := svc.Create(student.ID, course.ID, req)
		assert.ErrorIs(t, err, util.ErrNotEnrolled)
	})

	enroll(t, db, student.ID, course.ID)

	_, err := svc.Create(student.ID, course.ID, req)
	require.NoError(t, err)

	t.Run("one review per course", func(t *testing.T) {
		_, err := svc.Create(student.ID, course.ID, req)
		assert.ErrorIs(t, err, util.ErrAlreadyReviewed)
	})
}

func TestReviewAggregateRecompute(t *testing.T) {
	svc := newReviewFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	ratings := []int{5, 5, 4, 3, 1}
	var lastReview *model.Review
	for i, rating := range ratings {
		student := seedUser(t, db, fmt.Sprintf("student%d", i), model.Student)
		enroll(t, db, student.ID, course.ID)
		review, err := svc.Create(student.ID, course.ID, ReviewRequest{Rating: rating})
		require.NoError(t, err)
		lastReview = review
	}

	var refreshed model.Course
	require.NoError(t, db.First(&refreshed, course.ID).Error)
	assert.Equal(t, 3.6, refreshed.AverageRating)
	assert.Equal(t, 5, refreshed.TotalReviews)

	t.Run("delete triggers recompute", func(t *testing.T) {
		require.NoError(t, svc.Delete(lastReview.UserID, lastReview.ID))

		require.NoError(t, db.First(&refreshed, course.ID).Error)
		assert.Equal(t, 4.3, refreshed.AverageRating)
		assert.Equal(t, 4, refreshed.TotalReviews)
	})

	t.Run("update triggers recompute", func(t *testing.T) {
		var review model.Review
		require.NoError(t, db.Where("course_id = ? AND rating = ?", course.ID, 3).First(&review).Error)

		_, err := svc.Update(review.UserID, review.ID, ReviewRequest{Rating: 5})
		require.NoError(t, err)

		require.NoError(t, db.First(&refreshed, course.ID).Error)
		assert.Equal(t, 4.8, refreshed.AverageRating)
		assert.Equal(t, 4, refreshed.TotalReviews)
	})
}

func TestReviewOwnership(t *testing.T) {
	svc := newReviewFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	author := seedUser(t, db, "author", model.Student)
	other := seedUser(t, db, "other", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	enroll(t, db, author.ID, course.ID)

	review, err := svc.Create(author.ID, course.ID, ReviewRequest{Rating: 4})
	require.NoError(t, err)

	t.Run("update by non-author", func(t *testing.T) {
		_, err := svc.Update(other.ID, review.ID, ReviewRequest{Rating: 1})
		assert.ErrorIs(t, err, util.ErrNotReviewOwner)
	})

	t.Run("delete by non-author", func(t *testing.T) {
		err := svc.Delete(other.ID, review.ID)
		assert.ErrorIs(t, err, util.ErrNotReviewOwner)
	})

	t.Run("unknown review", func(t *testing.T) {
		err := svc.Delete(author.ID, 9999)
		assert.ErrorIs(t, err, util.ErrReviewNotFound)
	})
}

func TestReviewListing(t *testing.T) {
	svc := newReviewFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	ratings := []int{5, 4, 4, 2}
	for i, rating := range ratings {
		student := seedUser(t, db, fmt.Sprintf("student%d", i), model.Student)
		enroll(t, db, student.ID, course.ID)
		_, err := svc.Create(student.ID, course.ID, ReviewRequest{Rating: rating})
		require.NoError(t, err)
	}

	result, err := svc.List(course.ID, repository.SortHighest, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.Total)
	assert.Equal(t, 1, result.TotalPages)
	require.Len(t, result.Reviews, 4)
	assert.Equal(t, 5, result.Reviews[0].Rating)
	assert.Equal(t, 2, result.Reviews[3].Rating)

	assert.Equal(t, int64(1), result.Distribution[5])
	assert.Equal(t, int64(2), result.Distribution[4])
	assert.Equal(t, int64(1), result.Distribution[2])
	assert.Equal(t, int64(0), result.Distribution[1])

	assert.Equal(t, 3.8, result.AverageRating)
	assert.Equal(t, 4, result.TotalReviews)
}
