package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-backend/models"
	"travel-backend/pricing"
)

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
		q.Set("loc", "UTC")
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
	dbName := envOrDefault("DB_NAME", "travel_db")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	), nil
}

func dialector(cfg Config) (gorm.Dialector, error) {
	if cfg.DBDriver == "postgres" {
		return postgres.Open(cfg.PostgresDSN), nil
	}
	dsn, err := resolveMySQLDSN()
	if err != nil {
		return nil, err
	}
	return mysql.Open(dsn), nil
}

// ConnectDatabase opens the configured database, migrates the schema and seeds
// the default meal plan catalog.
func ConnectDatabase(cfg Config, log *slog.Logger) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Env == "dev" {
		level = logger.Info
	}
	gormLogger := logger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             cfg.DBSlowThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedMealPlans {
		if err := SeedMealPlans(db); err != nil {
			log.Warn("meal plan seed failed", "error", err)
		}
	}
	return db, nil
}

// Migrate creates the schema in parent->child order.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Hotel{},
		&models.MealPlan{},
		&models.Room{},
		&models.CalendarDate{},
		&models.CalendarPrice{},
		&models.Application{},
	)
}

// SeedMealPlans ensures one zero-surcharge plan per category exists.
func SeedMealPlans(db *gorm.DB) error {
	names := map[pricing.Category]string{
		pricing.NoMeals:           "No meals",
		pricing.BreakfastOnly:     "Breakfast",
		pricing.HalfBoard:         "Half board",
		pricing.FullBoard:         "Full board",
		pricing.AllInclusive:      "All inclusive",
		pricing.UltraAllInclusive: "Ultra all inclusive",
	}
	for _, c := range pricing.Categories {
		plan := models.MealPlan{Name: names[c], Category: string(c), PricePerPerson: decimal.Zero}
		if err := db.Where(models.MealPlan{Name: plan.Name}).FirstOrCreate(&plan).Error; err != nil {
			return fmt.Errorf("seed meal plan %s: %w", plan.Name, err)
		}
	}
	return nil
}
