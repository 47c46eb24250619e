package database

import (
	"course_market_backend/internal/config"
	"course_market_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
		cfg.Database.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Info),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	// Release deployments migrate only when asked to, via the migrate flags.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
		seedCategories(db)
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Course{},
		&model.Section{},
		&model.Lecture{},
		&model.Enrollment{},
		&model.Purchase{},
		&model.CartItem{},
		&model.Wishlist{},
		&model.LectureProgress{},
		&model.Review{},
		&model.InstructorApplication{},
		&model.Certificate{},
	)
}

// Default browse categories, inserted once on an empty database.
func seedCategories(db *gorm.DB) {
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Category{
		{Name: "Development", Slug: "development"},
		{Name: "Business", Slug: "business"},
		{Name: "Design", Slug: "design"},
		{Name: "Marketing", Slug: "marketing"},
		{Name: "IT & Software", Slug: "it-software"},
		{Name: "Personal Development", Slug: "personal-development"},
	}
	for _, c := range defaults {
		db.Create(&c)
	}
}
