package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travel-backend/models"
	"travel-backend/pricing"
)

// PeriodInput prices a room over a date interval. CalendarDateID reuses an
// existing interval (and its flags) instead of creating a new one.
type PeriodInput struct {
	CalendarDateID      uint
	StartDate           time.Time
	EndDate             time.Time
	Price               decimal.Decimal
	AvailableForBooking *bool
	Stock               bool
	DiscountFraction    decimal.NullDecimal
	DiscountAbsolute    decimal.NullDecimal
	DiscountAmount      *string
}

// CalendarService owns calendar_dates/calendar_prices and is the pricing.Store
// the aggregator reads from.
type CalendarService struct {
	DB     *gorm.DB
	Cache  *QuoteCache
	Events *EventPublisher
	Log    *slog.Logger
}

func NewCalendarService(db *gorm.DB, cache *QuoteCache, events *EventPublisher, log *slog.Logger) *CalendarService {
	return &CalendarService{DB: db, Cache: cache, Events: events, Log: log}
}

var _ pricing.Store = (*CalendarService)(nil)

// WithDB returns a copy of the service reading and writing through db,
// typically an open transaction.
func (s *CalendarService) WithDB(db *gorm.DB) *CalendarService {
	cp := *s
	cp.DB = db
	return &cp
}

func (s *CalendarService) Room(ctx context.Context, roomID uint) (pricing.RoomRates, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Preload("MealPlans").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.RoomRates{}, pricing.ErrRoomNotFound
		}
		return pricing.RoomRates{}, fmt.Errorf("load room %d: %w", roomID, err)
	}
	return roomRatesFromModel(room), nil
}

// Calendar loads every period of the room. The whole calendar is read, not
// just the stay, so legacy overlaps resolve the same way for every query.
func (s *CalendarService) Calendar(ctx context.Context, roomID uint, _ pricing.Stay) (*pricing.Calendar, error) {
	return s.loadFullCalendar(s.DB.WithContext(ctx), roomID)
}

func (s *CalendarService) loadFullCalendar(tx *gorm.DB, roomID uint) (*pricing.Calendar, error) {
	var prices []models.CalendarPrice
	if err := tx.Preload("CalendarDate").Where("room_id = ?", roomID).Order("id").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("load calendar prices: %w", err)
	}
	return s.buildCalendar(roomID, prices), nil
}

// buildCalendar tolerates rows written before overlaps were rejected: the
// oldest period keeps the days, later overlapping rows are skipped.
func (s *CalendarService) buildCalendar(roomID uint, prices []models.CalendarPrice) *pricing.Calendar {
	periods := make([]pricing.Period, 0, len(prices))
	for _, cp := range prices {
		periods = append(periods, periodFromModel(cp, s.Log))
	}
	cal, rejected := pricing.LoadCalendar(roomID, periods)
	for id, err := range rejected {
		s.Log.Warn("skipping conflicting calendar price", "calendar_price_id", id, "room_id", roomID, "error", err)
	}
	return cal
}

func (s *CalendarService) validateInput(in PeriodInput) error {
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: negative price", pricing.ErrInvalidPeriod)
	}
	if in.CalendarDateID != 0 {
		return nil
	}
	if _, err := pricing.NewInterval(in.StartDate, in.EndDate); err != nil {
		return err
	}
	_, err := discountFromModel(models.CalendarDate{
		DiscountFraction: in.DiscountFraction,
		DiscountAbsolute: in.DiscountAbsolute,
		DiscountAmount:   in.DiscountAmount,
	})
	return err
}

func (s *CalendarService) resolveDate(tx *gorm.DB, in PeriodInput) (models.CalendarDate, error) {
	if in.CalendarDateID != 0 {
		var existing models.CalendarDate
		if err := tx.First(&existing, in.CalendarDateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.CalendarDate{}, ErrNotFound
			}
			return models.CalendarDate{}, err
		}
		return existing, nil
	}
	available := true
	if in.AvailableForBooking != nil {
		available = *in.AvailableForBooking
	}
	return models.CalendarDate{
		StartDate:           toDate(in.StartDate),
		EndDate:             toDate(in.EndDate),
		AvailableForBooking: available,
		Stock:               in.Stock,
		DiscountFraction:    in.DiscountFraction,
		DiscountAbsolute:    in.DiscountAbsolute,
		DiscountAmount:      in.DiscountAmount,
	}, nil
}

// InsertPeriod prices the room over a new interval. The room row is locked so
// concurrent inserts for the same room serialize on the overlap check.
func (s *CalendarService) InsertPeriod(ctx context.Context, roomID uint, in PeriodInput) (models.CalendarPrice, error) {
	if err := s.validateInput(in); err != nil {
		return models.CalendarPrice{}, err
	}

	var created models.CalendarPrice
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pricing.ErrRoomNotFound
			}
			return fmt.Errorf("lock room %d: %w", roomID, err)
		}

		date, err := s.resolveDate(tx, in)
		if err != nil {
			return err
		}
		cal, err := s.loadFullCalendar(tx, roomID)
		if err != nil {
			return err
		}
		candidate := models.CalendarPrice{RoomID: roomID, Price: in.Price, CalendarDate: date}
		if err := cal.Insert(periodFromModel(candidate, s.Log)); err != nil {
			return err
		}

		if date.ID == 0 {
			if err := tx.Create(&date).Error; err != nil {
				return fmt.Errorf("create calendar date: %w", err)
			}
		}
		created = models.CalendarPrice{RoomID: roomID, CalendarDateID: date.ID, Price: in.Price}
		if err := tx.Omit("CalendarDate").Create(&created).Error; err != nil {
			return fmt.Errorf("create calendar price: %w", err)
		}
		created.CalendarDate = date
		return nil
	})
	if err != nil {
		return models.CalendarPrice{}, err
	}

	s.Cache.Invalidate(ctx, roomID)
	s.Events.Publish(ctx, EventPeriodCreated, roomID, created)
	return created, nil
}

func (s *CalendarService) ListPeriods(ctx context.Context, roomID uint) ([]models.CalendarPrice, error) {
	var prices []models.CalendarPrice
	err := s.DB.WithContext(ctx).
		Preload("CalendarDate").
		Joins("JOIN calendar_dates ON calendar_dates.id = calendar_prices.calendar_date_id").
		Where("calendar_prices.room_id = ?", roomID).
		Order("calendar_dates.start_date").
		Find(&prices).Error
	return prices, err
}

// DeletePeriod removes the room's price for one interval. The shared
// CalendarDate row is kept for the other rooms priced on it.
func (s *CalendarService) DeletePeriod(ctx context.Context, roomID, calendarPriceID uint) error {
	res := s.DB.WithContext(ctx).
		Where("id = ? AND room_id = ?", calendarPriceID, roomID).
		Delete(&models.CalendarPrice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.Cache.Invalidate(ctx, roomID)
	s.Events.Publish(ctx, EventPeriodDeleted, roomID, map[string]uint{"calendar_price_id": calendarPriceID})
	return nil
}

// LookupPrice returns the calendar entry covering day, if any.
func (s *CalendarService) LookupPrice(ctx context.Context, roomID uint, day time.Time) (pricing.PricedNight, bool, error) {
	day = pricing.Day(day)
	stay := pricing.Stay{CheckIn: day, CheckOut: day.AddDate(0, 0, 1)}
	cal, err := s.Calendar(ctx, roomID, stay)
	if err != nil {
		return pricing.PricedNight{}, false, err
	}
	night, ok := cal.Lookup(day)
	return night, ok, nil
}

// LookupRange resolves every night of [checkIn, checkOut) against the calendar.
func (s *CalendarService) LookupRange(ctx context.Context, roomID uint, checkIn, checkOut time.Time) ([]pricing.NightLookup, bool, error) {
	stay, err := pricing.NewStay(checkIn, checkOut)
	if err != nil {
		return nil, false, err
	}
	cal, err := s.Calendar(ctx, roomID, stay)
	if err != nil {
		return nil, false, err
	}
	nights, fully := cal.Nights(stay)
	return nights, fully, nil
}
