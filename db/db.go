package db

import (
	"college_library_backend/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Department{}, &models.Batch{},
		&models.Genre{}, &models.Book{}, &models.BookCopy{},
		&models.LibraryCard{}, &models.BookCopyIssue{}, &models.Fine{},
		&models.CardEvent{},
	); err != nil {
		return err
	}

	// 一本实体书同一时间最多一条未归还借阅
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_copy
	  ON %s (book_copy_id)
	  WHERE return_date IS NULL;
	`, models.IssueTable, models.IssueTable)).Error; err != nil {
		return err
	}

	// 查某张卡当前借了几本更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_card_issuedat_desc
	  ON %s (library_card_id, issue_date DESC)
	  WHERE return_date IS NULL;
	`, models.IssueTable, models.IssueTable)).Error; err != nil {
		return err
	}

	return nil
}
