package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"smartstart-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

func resolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := envOrDefault("DB_PASS", "")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "smartstart_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	)
	return dsn, nil
}

// SeedDatabase ensures the default admin account and the baseline set of
// required legal documents exist. Safe to call on every startup.
func SeedDatabase() {
	var userCount int64
	DB.Model(&models.User{}).Count(&userCount)
	if userCount == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("warning: failed to hash default admin password: %v", err)
		} else {
			admin := models.User{
				FullName: "Admin User",
				Email:    "admin@smartstart.local",
				Password: string(hash),
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("warning: failed to create default admin: %v", err)
			} else {
				log.Println("Default admin seeded")
			}
		}
	}

	var docCount int64
	DB.Model(&models.LegalDocument{}).Count(&docCount)
	if docCount > 0 {
		log.Println("Legal documents already seeded")
		return
	}

	now := time.Now()
	docs := []models.LegalDocument{
		{
			Slug:          "terms",
			Title:         "Terms of Service",
			Content:       "These Terms of Service govern your use of the SmartStart platform...",
			IsRequired:    true,
			Version:       "1.0",
			EffectiveFrom: &now,
		},
		{
			Slug:          "privacy",
			Title:         "Privacy Policy",
			Content:       "This Privacy Policy describes how SmartStart collects and processes personal data...",
			IsRequired:    true,
			Version:       "1.0",
			EffectiveFrom: &now,
		},
		{
			Slug:          "nda",
			Title:         "Non-Disclosure Agreement",
			Content:       "This Non-Disclosure Agreement protects confidential information shared between ventures...",
			IsRequired:    true,
			Version:       "1.0",
			EffectiveFrom: &now,
		},
		{
			Slug:          "contributor",
			Title:         "Contributor Agreement",
			Content:       "This Contributor Agreement covers intellectual property created within a venture...",
			IsRequired:    true,
			Version:       "1.0",
			EffectiveFrom: &now,
		},
	}

	if err := DB.Create(&docs).Error; err != nil {
		log.Fatalf("Failed to seed legal documents: %v", err)
	}
	log.Println("Legal documents seeded successfully")
}

func ConnectDatabase() error {
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	DB = db

	// AutoMigrate in parent->child order
	if err := DB.AutoMigrate(
		&models.User{},
		&models.LegalDocument{},
		&models.Signature{},
		&models.AuditEvent{},
	); err != nil {
		return err
	}

	SeedDatabase()
	return nil
}
