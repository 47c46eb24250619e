package service

import (
	"strings"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressFixture(t *testing.T) *ProgressService {
	db := newTestDB(t)
	repos := newTestRepos(db)
	return NewProgressService(repos.course, repos.enrollment, repos.progress, repos.certificate, repos.user, db)
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestUpdateLectureProgressGuards(t *testing.T) {
	svc := newProgressFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	lectures := seedLectures(t, db, course.ID, 2)

	t.Run("unknown lecture", func(t *testing.T) {
		_, err := svc.UpdateLectureProgress(student.ID, 9999, ProgressUpdate{IsCompleted: boolPtr(true)})
		assert.ErrorIs(t, err, util.ErrLectureNotFound)
	})

	t.Run("not enrolled", func(t *testing.T) {
		_, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{IsCompleted: boolPtr(true)})
		assert.ErrorIs(t, err, util.ErrNotEnrolled)
	})
}

func TestUpdateLectureProgressRollup(t *testing.T) {
	svc := newProgressFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	lectures := seedLectures(t, db, course.ID, 3)
	enrollment := enroll(t, db, student.ID, course.ID)

	result, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{
		IsCompleted:     boolPtr(true),
		WatchedDuration: intPtr(120),
		LastPosition:    intPtr(118),
	})
	require.NoError(t, err)
	assert.Equal(t, 33, result.CourseProgress)
	assert.False(t, result.CourseCompleted)
	assert.False(t, result.CertificateGenerated)
	require.NotNil(t, result.Progress)
	assert.True(t, result.Progress.IsCompleted)
	assert.NotNil(t, result.Progress.CompletedAt)
	assert.Equal(t, 120, result.Progress.WatchedDuration)

	t.Run("patch leaves other fields untouched", func(t *testing.T) {
		result, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{
			LastPosition: intPtr(240),
		})
		require.NoError(t, err)
		assert.True(t, result.Progress.IsCompleted)
		assert.Equal(t, 120, result.Progress.WatchedDuration)
		assert.Equal(t, 240, result.Progress.LastPosition)
		assert.Equal(t, 33, result.CourseProgress)
	})

	t.Run("unmarking drops the percentage", func(t *testing.T) {
		result, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{
			IsCompleted: boolPtr(false),
		})
		require.NoError(t, err)
		assert.False(t, result.Progress.IsCompleted)
		assert.Nil(t, result.Progress.CompletedAt)
		assert.Equal(t, 0, result.CourseProgress)
	})

	var refreshed model.Enrollment
	require.NoError(t, db.First(&refreshed, enrollment.ID).Error)
	assert.Equal(t, 0, refreshed.Progress)
	assert.Nil(t, refreshed.CompletedAt)
}

func TestCourseCompletionIssuesOneCertificate(t *testing.T) {
	svc := newProgressFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	lectures := seedLectures(t, db, course.ID, 2)
	enrollment := enroll(t, db, student.ID, course.ID)

	_, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	result, err := svc.UpdateLectureProgress(student.ID, lectures[1], ProgressUpdate{IsCompleted: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, 100, result.CourseProgress)
	assert.True(t, result.CourseCompleted)
	assert.True(t, result.CertificateGenerated)

	var refreshed model.Enrollment
	require.NoError(t, db.First(&refreshed, enrollment.ID).Error)
	assert.Equal(t, 100, refreshed.Progress)
	assert.NotNil(t, refreshed.CompletedAt)

	var cert model.Certificate
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&cert).Error)
	assert.True(t, strings.HasPrefix(cert.Code, "CERT-"))
	assert.Equal(t, "go-basics", cert.CourseName)
	assert.Equal(t, "instructor", cert.InstructorName)

	t.Run("re-marking does not mint a second certificate", func(t *testing.T) {
		result, err := svc.UpdateLectureProgress(student.ID, lectures[1], ProgressUpdate{IsCompleted: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, 100, result.CourseProgress)
		assert.False(t, result.CourseCompleted)
		assert.False(t, result.CertificateGenerated)

		var certs int64
		require.NoError(t, db.Model(&model.Certificate{}).
			Where("user_id = ?", student.ID).Count(&certs).Error)
		assert.Equal(t, int64(1), certs)
	})
}

func TestCourseProgressListing(t *testing.T) {
	svc := newProgressFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 49.99)
	lectures := seedLectures(t, db, course.ID, 3)

	t.Run("not enrolled", func(t *testing.T) {
		_, err := svc.CourseProgress(student.ID, course.ID)
		assert.ErrorIs(t, err, util.ErrNotEnrolled)
	})

	enroll(t, db, student.ID, course.ID)
	_, err := svc.UpdateLectureProgress(student.ID, lectures[1], ProgressUpdate{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	rows, err := svc.CourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, lectures[1], rows[0].LectureID)
}

func TestCertificateLookup(t *testing.T) {
	svc := newProgressFixture(t)
	db := svc.DB

	instructor := seedUser(t, db, "instructor", model.Instructor)
	student := seedUser(t, db, "student", model.Student)
	course := seedCourse(t, db, instructor.ID, "go-basics", 0)
	lectures := seedLectures(t, db, course.ID, 1)
	enroll(t, db, student.ID, course.ID)

	_, err := svc.UpdateLectureProgress(student.ID, lectures[0], ProgressUpdate{IsCompleted: boolPtr(true)})
	require.NoError(t, err)

	certs, err := svc.ListCertificates(student.ID)
	require.NoError(t, err)
	require.Len(t, certs, 1)

	found, err := svc.LookupCertificate(certs[0].Code)
	require.NoError(t, err)
	assert.Equal(t, student.ID, found.UserID)
	assert.Equal(t, course.ID, found.CourseID)

	_, err = svc.LookupCertificate("CERT-NOPE")
	assert.ErrorIs(t, err, util.ErrCertificateNotFound)
}
