package store

import (
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenDB(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.New(log.New(os.Stderr, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Quiz{},
		&QuizQuestion{},
		&Attempt{},
		&AttemptAnswer{},
	)
}

func IsQuizTableEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Quiz{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
