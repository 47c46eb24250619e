package app

import (
	"context"
	"course_market_backend/internal/config"
	"course_market_backend/internal/controller"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"course_market_backend/pkg/security"
	"course_market_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
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

type services struct {
	storage     *service.StorageService
	payment     *service.PaymentService
	auth        *service.AuthService
	user        *service.UserService
	course      *service.CourseService
	checkout    *service.CheckoutService
	progress    *service.ProgressService
	review      *service.ReviewService
	cart        *service.CartService
	wishlist    *service.WishlistService
	application *service.ApplicationService
}

type controllers struct {
	auth        *controller.AuthController
	user        *controller.UserController
	course      *controller.CourseController
	checkout    *controller.CheckoutController
	progress    *controller.ProgressController
	review      *controller.ReviewController
	cart        *controller.CartController
	wishlist    *controller.WishlistController
	application *controller.ApplicationController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
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

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.payment = service.NewPaymentService(&cfg.Payment)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.purchase, s.storage)
	s.course = service.NewCourseService(repos.course, repos.enrollment, s.storage, cfg, rdb)
	s.checkout = service.NewCheckoutService(repos.course, repos.enrollment, repos.cart, s.payment, db)
	s.progress = service.NewProgressService(repos.course, repos.enrollment, repos.progress, repos.certificate, repos.user, db)
	s.review = service.NewReviewService(repos.review, repos.course, repos.enrollment, db)
	s.cart = service.NewCartService(repos.cart, repos.course, repos.enrollment)
	s.wishlist = service.NewWishlistService(repos.wishlist, repos.course)
	s.application = service.NewApplicationService(repos.application, repos.user, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		user:        controller.NewUserController(s.user),
		course:      controller.NewCourseController(s.course, s.checkout),
		checkout:    controller.NewCheckoutController(s.checkout),
		progress:    controller.NewProgressController(s.progress, s.course),
		review:      controller.NewReviewController(s.review, s.course),
		cart:        controller.NewCartController(s.cart),
		wishlist:    controller.NewWishlistController(s.wishlist),
		application: controller.NewApplicationController(s.application),
		health:      controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("course-marketplace", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
