package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"course_market_backend/internal/middleware"
	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

// submitRouter mounts the application submit route behind the student role
// gate, authenticated as a fresh user with the given role. The pre-attached
// claims stand in for JWT auth.
func submitRouter(t *testing.T, role model.UserRole) (*gin.Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	user := &model.User{
		Name:     fmt.Sprintf("%s-user", role),
		Email:    fmt.Sprintf("%s@example.com", role),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	claims := &util.Claims{UserID: user.ID, Role: user.Role, Email: user.Email}

	svc := service.NewApplicationService(
		repository.NewApplicationRepository(db),
		repository.NewUserRepository(db),
		db,
	)
	ctrl := NewApplicationController(svc)

	router := gin.New()
	router.POST("/api/instructor-applications",
		func(c *gin.Context) { c.Set("user", claims); c.Next() },
		middleware.RoleMiddleware(model.Student),
		ctrl.Submit,
	)
	return router, db
}

func submitApplication(t *testing.T, router *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(service.ApplicationRequest{
		Headline: "Senior Go engineer and trainer",
		Bio:      strings.Repeat("I have taught Go in production teams for a decade. ", 2),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/instructor-applications", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitApplicationRoleGate(t *testing.T) {
	t.Run("student passes", func(t *testing.T) {
		router, db := submitRouter(t, model.Student)
		rec := submitApplication(t, router)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var count int64
		require.NoError(t, db.Model(&model.InstructorApplication{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("admin is rejected despite passing the middleware gate", func(t *testing.T) {
		router, db := submitRouter(t, model.Admin)
		rec := submitApplication(t, router)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), util.CodeRoleForbidden)

		var count int64
		require.NoError(t, db.Model(&model.InstructorApplication{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("instructor is rejected at the gate", func(t *testing.T) {
		router, _ := submitRouter(t, model.Instructor)
		rec := submitApplication(t, router)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
