package service

import (
	"context"
	"fmt"
	"testing"

	"course_market_backend/internal/model"
	"course_market_backend/internal/repository"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

type testRepos struct {
	user        *repository.UserRepository
	course      *repository.CourseRepository
	enrollment  *repository.EnrollmentRepository
	purchase    *repository.PurchaseRepository
	cart        *repository.CartRepository
	wishlist    *repository.WishlistRepository
	progress    *repository.ProgressRepository
	review      *repository.ReviewRepository
	application *repository.ApplicationRepository
	certificate *repository.CertificateRepository
}

func newTestRepos(db *gorm.DB) *testRepos {
	return &testRepos{
		user:        repository.NewUserRepository(db),
		course:      repository.NewCourseRepository(db),
		enrollment:  repository.NewEnrollmentRepository(db),
		purchase:    repository.NewPurchaseRepository(db),
		cart:        repository.NewCartRepository(db),
		wishlist:    repository.NewWishlistRepository(db),
		progress:    repository.NewProgressRepository(db),
		review:      repository.NewReviewRepository(db),
		application: repository.NewApplicationRepository(db),
		certificate: repository.NewCertificateRepository(db),
	}
}

func seedUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, instructorID uint, title string, price float64) *model.Course {
	t.Helper()
	course := &model.Course{
		Title:        title,
		Slug:         fmt.Sprintf("%s-%d", title, instructorID),
		Price:        price,
		IsFree:       price == 0,
		Status:       model.CoursePublished,
		InstructorID: instructorID,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

// seedLectures builds one section with n lectures and returns the lecture ids.
func seedLectures(t *testing.T, db *gorm.DB, courseID uint, n int) []uint {
	t.Helper()
	section := &model.Section{Title: "Section 1", Order: 1, CourseID: courseID}
	require.NoError(t, db.Create(section).Error)

	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		lecture := &model.Lecture{
			Title:     fmt.Sprintf("Lecture %d", i+1),
			Order:     i + 1,
			SectionID: section.ID,
		}
		require.NoError(t, db.Create(lecture).Error)
		ids = append(ids, lecture.ID)
	}
	return ids
}

func enroll(t *testing.T, db *gorm.DB, userID, courseID uint) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{UserID: userID, CourseID: courseID}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

// fakeGateway is an in-memory PaymentGateway; tests flip sessions to paid.
type fakeGateway struct {
	sessions map[string]*CheckoutSession
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*CheckoutSession{}}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	var total int64
	for _, line := range req.Lines {
		total += line.Amount
	}
	id := fmt.Sprintf("cs_test_%d", len(g.sessions)+1)
	session := &CheckoutSession{
		ID:              id,
		PaymentStatus:   "unpaid",
		AmountTotal:     total,
		PaymentIntentID: "pi_" + id,
		URL:             "https://pay.example.test/" + id,
		Metadata:        req.Metadata,
	}
	g.sessions[id] = session
	return session, nil
}

func (g *fakeGateway) RetrieveSession(_ context.Context, sessionID string) (*CheckoutSession, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("no such session %q", sessionID)
	}
	return session, nil
}

func (g *fakeGateway) markPaid(sessionID string) {
	g.sessions[sessionID].PaymentStatus = "paid"
}
