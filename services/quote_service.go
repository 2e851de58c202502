package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"travel-backend/models"
	"travel-backend/pricing"
)

// QuoteService answers price questions through the aggregator, with the
// Redis cache in front.
type QuoteService struct {
	DB         *gorm.DB
	Aggregator *pricing.Aggregator
	Cache      *QuoteCache
	Log        *slog.Logger
}

func NewQuoteService(db *gorm.DB, agg *pricing.Aggregator, cache *QuoteCache, log *slog.Logger) *QuoteService {
	return &QuoteService{DB: db, Aggregator: agg, Cache: cache, Log: log}
}

func (s *QuoteService) Quote(ctx context.Context, req pricing.StayRequest) (pricing.StayPriceResult, error) {
	req.CheckIn = pricing.Day(req.CheckIn)
	req.CheckOut = pricing.Day(req.CheckOut)
	if req.Category == "" {
		req.Category = pricing.NoMeals
	}

	cached, version, ok := s.Cache.Get(ctx, req)
	if ok {
		return cached, nil
	}
	res, err := s.Aggregator.PriceStay(ctx, req)
	if err != nil {
		return pricing.StayPriceResult{}, err
	}
	s.Cache.Set(ctx, version, req, res)
	return res, nil
}

type SearchRequest struct {
	HotelID       *uint
	CheckIn       time.Time
	CheckOut      time.Time
	Category      pricing.Category
	Guests        int
	OnlyAvailable bool
}

// SearchResult is one candidate room. A room that could not be priced is
// still listed with PriceUnavailable set.
type SearchResult struct {
	Room             models.Room              `json:"room"`
	Quote            *pricing.StayPriceResult `json:"quote,omitempty"`
	PriceUnavailable bool                     `json:"price_unavailable"`
	Reason           string                   `json:"reason,omitempty"`
}

// Search prices every room that fits the party. One broken room never fails
// the whole listing.
func (s *QuoteService) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	if _, err := pricing.NewStay(req.CheckIn, req.CheckOut); err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Preload("MealPlans").Order("id")
	if req.HotelID != nil {
		q = q.Where("hotel_id = ?", *req.HotelID)
	}
	if req.Guests > 0 {
		q = q.Where("capacity >= ?", req.Guests)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(rooms))
	for _, room := range rooms {
		res, err := s.Quote(ctx, pricing.StayRequest{
			RoomID:   room.ID,
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
			Category: req.Category,
			Guests:   req.Guests,
		})
		item := SearchResult{Room: room}
		switch {
		case errors.Is(err, pricing.ErrMealPlanNotOffered):
			item.PriceUnavailable = true
			item.Reason = "meal_plan_not_offered"
		case err != nil:
			s.Log.WarnContext(ctx, "search: pricing failed", "room_id", room.ID, "error", err)
			item.PriceUnavailable = true
			item.Reason = "pricing_error"
		case !res.FullyAvailable:
			item.Quote = &res
			item.PriceUnavailable = true
			item.Reason = "not_fully_available"
		default:
			item.Quote = &res
		}
		if req.OnlyAvailable && item.PriceUnavailable {
			continue
		}
		results = append(results, item)
	}
	return results, nil
}
