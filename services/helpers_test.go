package services

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-backend/config"
	"travel-backend/models"
	"travel-backend/pricing"
)

var discardLog = slog.New(slog.DiscardHandler)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func createRoom(t *testing.T, db *gorm.DB, capacity int, base string) models.Room {
	t.Helper()
	room := models.Room{Name: "Room", Capacity: capacity}
	if base != "" {
		room.BasePrice = decimal.NullDecimal{Decimal: dec(base), Valid: true}
	}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

type testEnv struct {
	db       *gorm.DB
	calendar *CalendarService
	rooms    *RoomService
	agg      *pricing.Aggregator
}

func newTestEnv(t *testing.T) testEnv {
	db := newTestDB(t)
	cal := NewCalendarService(db, nil, nil, discardLog)
	return testEnv{
		db:       db,
		calendar: cal,
		rooms:    NewRoomService(db, nil, nil, discardLog),
		agg:      pricing.NewAggregator(cal, pricing.FallbackNone, discardLog),
	}
}

func periodInput(start, end, price string) PeriodInput {
	return PeriodInput{StartDate: day(start), EndDate: day(end), Price: dec(price)}
}
