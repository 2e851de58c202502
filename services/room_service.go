package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"travel-backend/models"
	"travel-backend/pricing"
)

type RoomInput struct {
	HotelID     *uint
	Name        string
	Category    string
	Capacity    int
	BasePrice   decimal.NullDecimal
	Description string
	MealPlanIDs []uint
}

// RoomPatch holds the fields of a partial update; nil fields are left alone.
type RoomPatch struct {
	HotelID     *uint
	Name        *string
	Category    *string
	Capacity    *int
	BasePrice   *decimal.NullDecimal
	Description *string
}

type RoomService struct {
	DB     *gorm.DB
	Cache  *QuoteCache
	Events *EventPublisher
	Log    *slog.Logger
}

func NewRoomService(db *gorm.DB, cache *QuoteCache, events *EventPublisher, log *slog.Logger) *RoomService {
	return &RoomService{DB: db, Cache: cache, Events: events, Log: log}
}

func validateRoomFields(capacity int, base decimal.NullDecimal) error {
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput)
	}
	if base.Valid && base.Decimal.IsNegative() {
		return fmt.Errorf("%w: base_price must not be negative", ErrInvalidInput)
	}
	return nil
}

func ensureHotel(tx *gorm.DB, hotelID *uint) error {
	if hotelID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Hotel{}).Where("id = ?", *hotelID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: hotel_id %d not found", ErrInvalidInput, *hotelID)
	}
	return nil
}

func loadMealPlans(tx *gorm.DB, ids []uint) ([]models.MealPlan, error) {
	if len(ids) == 0 {
		return []models.MealPlan{}, nil
	}
	var plans []models.MealPlan
	if err := tx.Where("id IN ?", ids).Find(&plans).Error; err != nil {
		return nil, err
	}
	if len(plans) != len(uniqueIDs(ids)) {
		return nil, fmt.Errorf("%w: unknown meal plan id", ErrInvalidInput)
	}
	return plans, nil
}

func uniqueIDs(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *RoomService) Create(ctx context.Context, in RoomInput) (models.Room, error) {
	if in.Capacity == 0 {
		in.Capacity = 1
	}
	if err := validateRoomFields(in.Capacity, in.BasePrice); err != nil {
		return models.Room{}, err
	}

	var room models.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureHotel(tx, in.HotelID); err != nil {
			return err
		}
		plans, err := loadMealPlans(tx, in.MealPlanIDs)
		if err != nil {
			return err
		}
		room = models.Room{
			HotelID:     in.HotelID,
			Name:        in.Name,
			Category:    in.Category,
			Capacity:    in.Capacity,
			BasePrice:   in.BasePrice,
			Description: in.Description,
		}
		if err := tx.Create(&room).Error; err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		if len(plans) > 0 {
			if err := tx.Model(&room).Association("MealPlans").Replace(plans); err != nil {
				return fmt.Errorf("attach meal plans: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return models.Room{}, err
	}
	return s.RecomputeMealPrices(ctx, room.ID)
}

func (s *RoomService) Get(ctx context.Context, id uint) (models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Preload("MealPlans").First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Room{}, ErrNotFound
		}
		return models.Room{}, err
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context, hotelID *uint) ([]models.Room, error) {
	q := s.DB.WithContext(ctx).Preload("MealPlans").Order("id")
	if hotelID != nil {
		q = q.Where("hotel_id = ?", *hotelID)
	}
	var rooms []models.Room
	err := q.Find(&rooms).Error
	return rooms, err
}

func (s *RoomService) Update(ctx context.Context, id uint, patch RoomPatch) (models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return models.Room{}, err
	}

	updates := map[string]interface{}{}
	if patch.HotelID != nil {
		if err := ensureHotel(s.DB.WithContext(ctx), patch.HotelID); err != nil {
			return models.Room{}, err
		}
		updates["hotel_id"] = *patch.HotelID
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	capacity, base := room.Capacity, room.BasePrice
	if patch.Capacity != nil {
		capacity = *patch.Capacity
		updates["capacity"] = capacity
	}
	if patch.BasePrice != nil {
		base = *patch.BasePrice
		updates["base_price"] = base
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if err := validateRoomFields(capacity, base); err != nil {
		return models.Room{}, err
	}
	if len(updates) == 0 {
		return room, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return models.Room{}, fmt.Errorf("update room %d: %w", id, err)
	}
	return s.RecomputeMealPrices(ctx, id)
}

// SetMealPlans replaces the plans the room offers and recomputes its prices.
func (s *RoomService) SetMealPlans(ctx context.Context, id uint, planIDs []uint) (models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		plans, err := loadMealPlans(tx, planIDs)
		if err != nil {
			return err
		}
		return tx.Model(&room).Association("MealPlans").Replace(plans)
	})
	if err != nil {
		return models.Room{}, err
	}
	return s.RecomputeMealPrices(ctx, id)
}

// RecomputeMealPrices rewrites the room's composed meal prices from its base
// price, capacity and plans. Running it twice yields the same row. The row is
// only written, and the event only sent, when a price changed; cached quotes
// are dropped either way since capacity and plan changes affect them too.
func (s *RoomService) RecomputeMealPrices(ctx context.Context, id uint) (models.Room, error) {
	room, err := s.Get(ctx, id)
	if err != nil {
		return models.Room{}, err
	}
	base := decimal.Zero
	if room.BasePrice.Valid {
		base = room.BasePrice.Decimal
	}
	set := pricing.ComposeMealPrices(base, room.Capacity, mealPlansFromModels(room.MealPlans))
	s.Cache.Invalidate(ctx, id)
	if mealPricesFromModel(room.MealPrices).Equal(set) {
		return room, nil
	}
	prices := mealPricesToModel(set)

	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(map[string]interface{}{
		"price_no_meals":            prices.NoMeals,
		"price_ultra_all_inclusive": prices.UltraAllInclusive,
		"price_all_inclusive":       prices.AllInclusive,
		"price_full_board":          prices.FullBoard,
		"price_half_board":          prices.HalfBoard,
		"price_breakfast_only":      prices.BreakfastOnly,
	}).Error; err != nil {
		return models.Room{}, fmt.Errorf("store meal prices for room %d: %w", id, err)
	}
	room.MealPrices = prices

	s.Events.Publish(ctx, EventMealPricesRecomputed, id, prices)
	return room, nil
}

// RecomputeForMealPlan refreshes every room offering the plan.
func (s *RoomService) RecomputeForMealPlan(ctx context.Context, planID uint) error {
	var roomIDs []uint
	if err := s.DB.WithContext(ctx).Table("room_meal_plans").
		Where("meal_plan_id = ?", planID).
		Pluck("room_id", &roomIDs).Error; err != nil {
		return fmt.Errorf("rooms for meal plan %d: %w", planID, err)
	}
	for _, id := range roomIDs {
		if _, err := s.RecomputeMealPrices(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// Delete soft-deletes the room and drops its calendar prices.
func (s *RoomService) Delete(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Room{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("room_id = ?", id).Delete(&models.CalendarPrice{}).Error
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, id)
	return nil
}
