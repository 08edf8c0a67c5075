package db

import (
	"Gin_postgres_redis_clearance_tool/models"
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

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{}, &models.Credential{}, &models.Invite{},
		&models.Equipment{}, &models.IssuedItem{},
		&models.Clearance{}, &models.ClearanceAudit{}, &models.Notification{},
	); err != nil {
		return err
	}

	// 快速筛选仍在审核流程里的发放记录
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_clearance
	  ON %s (damage_clearance_status, date_issued DESC)
	  WHERE damage_clearance_status IN ('Pending', 'Needs Review', 'Escalated');
	`, models.IssuedItemTable, models.IssuedItemTable)).Error; err != nil {
		return err
	}

	// 未读通知按角色查询更快
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_unread_by_role
	  ON %s (recipient_role, created_at DESC)
	  WHERE is_read = FALSE;
	`, models.NotificationTable, models.NotificationTable)).Error; err != nil {
		return err
	}

	return nil
}
