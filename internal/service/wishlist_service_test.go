package service

import (
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWishlistFixture(t *testing.T) *WishlistService {
	db := newTestDB(t)
	repos := newTestRepos(db)
	return NewWishlistService(repos.wishlist, repos.course)
}

func TestWishlistToggle(t *testing.T) {
	svc := newWishlistFixture(t)
	db := svc.WishlistRepo.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.Toggle(student.ID, 9999)
		assert.ErrorIs(t, err, util.ErrCourseNotFound)
	})

	favourited, err := svc.Toggle(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, favourited)

	state, err := svc.IsFavourited(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, state)

	favourited, err = svc.Toggle(student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, favourited)

	// Third toggle lands back on favourited; no unique-index ghost from the
	// removed row.
	favourited, err = svc.Toggle(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, favourited)
}

func TestWishlistListing(t *testing.T) {
	svc := newWishlistFixture(t)
	db := svc.WishlistRepo.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	first := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	second := seedCourse(t, db, instructor.ID, "go-advanced", 89.99)

	_, err := svc.Toggle(student.ID, first.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(student.ID, second.ID)
	require.NoError(t, err)

	items, err := svc.List(student.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].Course)
	assert.NotEmpty(t, items[0].Course.Title)

	state, err := svc.IsFavourited(student.ID, 9999)
	require.NoError(t, err)
	assert.False(t, state)
}
