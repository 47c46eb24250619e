package service

import (
	"strings"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApplicationFixture(t *testing.T) *ApplicationService {
	db := newTestDB(t)
	repos := newTestRepos(db)
	return NewApplicationService(repos.application, repos.user, db)
}

var applicationReq = ApplicationRequest{
	Headline: "Senior Go engineer and trainer",
	Bio:      strings.Repeat("I have taught Go in production teams for a decade. ", 2),
}

func TestApplicationSubmit(t *testing.T) {
	svc := newApplicationFixture(t)
	db := svc.DB

	student := seedUser(t, db, "student", model.Student)

	app, err := svc.Submit(student.ID, model.Student, applicationReq)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.Equal(t, applicationReq.Headline, app.Headline)

	t.Run("one pending application at a time", func(t *testing.T) {
		_, err := svc.Submit(student.ID, model.Student, applicationReq)
		assert.ErrorIs(t, err, util.ErrAlreadyPending)
	})

	t.Run("only students may apply", func(t *testing.T) {
		admin := seedUser(t, db, "gatekeeper", model.Admin)
		_, err := svc.Submit(admin.ID, model.Admin, applicationReq)
		assert.ErrorIs(t, err, util.ErrRoleForbidden)

		instructor := seedUser(t, db, "teacher1", model.Instructor)
		_, err = svc.Submit(instructor.ID, model.Instructor, applicationReq)
		assert.ErrorIs(t, err, util.ErrRoleForbidden)

		// An approval can therefore never rewrite a non-student's role.
		var count int64
		require.NoError(t, db.Model(&model.InstructorApplication{}).
			Where("user_id IN ?", []uint{admin.ID, instructor.ID}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	latest, err := svc.Latest(student.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, app.ID, latest.ID)

	t.Run("latest is nil without any application", func(t *testing.T) {
		other := seedUser(t, db, "other", model.Student)
		latest, err := svc.Latest(other.ID)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})
}

func TestApplicationApproval(t *testing.T) {
	svc := newApplicationFixture(t)
	db := svc.DB

	admin := seedUser(t, db, "admin", model.Admin)
	student := seedUser(t, db, "student", model.Student)

	app, err := svc.Submit(student.ID, model.Student, applicationReq)
	require.NoError(t, err)

	reviewed, err := svc.Review(admin.ID, app.ID, ApplicationDecision{
		Status:    model.ApplicationApproved,
		AdminNote: "Strong background",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedByID)
	assert.Equal(t, admin.ID, *reviewed.ReviewedByID)
	assert.NotNil(t, reviewed.ReviewedAt)

	var promoted model.User
	require.NoError(t, db.First(&promoted, student.ID).Error)
	assert.Equal(t, model.Instructor, promoted.Role)
	assert.Equal(t, applicationReq.Headline, promoted.Headline)
	assert.Equal(t, applicationReq.Bio, promoted.Bio)

	t.Run("decided application cannot be reviewed again", func(t *testing.T) {
		_, err := svc.Review(admin.ID, app.ID, ApplicationDecision{Status: model.ApplicationRejected})
		assert.ErrorIs(t, err, util.ErrAlreadyReviewedApp)
	})
}

func TestApplicationRejection(t *testing.T) {
	svc := newApplicationFixture(t)
	db := svc.DB

	admin := seedUser(t, db, "admin", model.Admin)
	student := seedUser(t, db, "student", model.Student)

	app, err := svc.Submit(student.ID, model.Student, applicationReq)
	require.NoError(t, err)

	reviewed, err := svc.Review(admin.ID, app.ID, ApplicationDecision{
		Status:    model.ApplicationRejected,
		AdminNote: "Needs more teaching samples",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationRejected, reviewed.Status)

	var unchanged model.User
	require.NoError(t, db.First(&unchanged, student.ID).Error)
	assert.Equal(t, model.Student, unchanged.Role)

	t.Run("rejected applicant may resubmit", func(t *testing.T) {
		_, err := svc.Submit(student.ID, model.Student, applicationReq)
		assert.NoError(t, err)
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := svc.Review(admin.ID, 9999, ApplicationDecision{Status: model.ApplicationApproved})
		assert.ErrorIs(t, err, util.ErrApplicationNotFound)
	})
}

func TestApplicationList(t *testing.T) {
	svc := newApplicationFixture(t)
	db := svc.DB

	admin := seedUser(t, db, "admin", model.Admin)
	first := seedUser(t, db, "first", model.Student)
	second := seedUser(t, db, "second", model.Student)

	appOne, err := svc.Submit(first.ID, model.Student, applicationReq)
	require.NoError(t, err)
	_, err = svc.Submit(second.ID, model.Student, applicationReq)
	require.NoError(t, err)

	_, err = svc.Review(admin.ID, appOne.ID, ApplicationDecision{Status: model.ApplicationApproved})
	require.NoError(t, err)

	pending, err := svc.List(model.ApplicationPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].UserID)

	all, err := svc.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
