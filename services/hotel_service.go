package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"travel-backend/models"
)

type HotelService struct {
	DB *gorm.DB
}

func NewHotelService(db *gorm.DB) *HotelService {
	return &HotelService{DB: db}
}

func (s *HotelService) Create(ctx context.Context, h models.Hotel) (models.Hotel, error) {
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return models.Hotel{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if h.Stars < 0 || h.Stars > 5 {
		return models.Hotel{}, fmt.Errorf("%w: stars must be between 0 and 5", ErrInvalidInput)
	}
	h.ID = 0
	h.Rooms = nil
	if err := s.DB.WithContext(ctx).Create(&h).Error; err != nil {
		return models.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	return h, nil
}

func (s *HotelService) Get(ctx context.Context, id uint) (models.Hotel, error) {
	var h models.Hotel
	if err := s.DB.WithContext(ctx).Preload("Rooms").First(&h, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Hotel{}, ErrNotFound
		}
		return models.Hotel{}, err
	}
	return h, nil
}

func (s *HotelService) List(ctx context.Context, city string) ([]models.Hotel, error) {
	q := s.DB.WithContext(ctx).Order("name")
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	var hotels []models.Hotel
	err := q.Find(&hotels).Error
	return hotels, err
}

// Delete removes the hotel. Its rooms stay bookable with no hotel; the
// detach happens here too, so it does not depend on the FK action.
func (s *HotelService) Delete(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Room{}).Where("hotel_id = ?", id).Update("hotel_id", nil).Error; err != nil {
			return fmt.Errorf("detach rooms of hotel %d: %w", id, err)
		}
		res := tx.Delete(&models.Hotel{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
