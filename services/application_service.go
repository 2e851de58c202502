package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travel-backend/models"
	"travel-backend/pricing"
	"travel-backend/utils"
)

type CreateApplicationInput struct {
	RoomID       uint
	CheckIn      time.Time
	CheckOut     time.Time
	Category     pricing.Category
	Guests       int
	ContactName  string
	ContactEmail string
}

// ApplicationService books rooms at the price the aggregator computes at
// booking time. Quotes are never read from the cache here.
type ApplicationService struct {
	DB         *gorm.DB
	Aggregator *pricing.Aggregator
	Events     *EventPublisher
	Log        *slog.Logger

	NewReference func() (string, error)
}

func NewApplicationService(db *gorm.DB, agg *pricing.Aggregator, events *EventPublisher, log *slog.Logger) *ApplicationService {
	return &ApplicationService{
		DB:           db,
		Aggregator:   agg,
		Events:       events,
		Log:          log,
		NewReference: utils.GenerateReferenceCode,
	}
}

func (in CreateApplicationInput) validate() (CreateApplicationInput, error) {
	in.ContactName = strings.TrimSpace(in.ContactName)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	if in.ContactName == "" {
		return in, fmt.Errorf("%w: contact_name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.ContactEmail); err != nil {
		return in, fmt.Errorf("%w: contact_email is invalid", ErrInvalidInput)
	}
	if in.Guests < 0 {
		return in, fmt.Errorf("%w: guests must not be negative", ErrInvalidInput)
	}
	return in, nil
}

// aggregatorFor prices through tx when the store is the gorm calendar, so the
// quote sees the same rows the booking is checked against.
func (s *ApplicationService) aggregatorFor(tx *gorm.DB) *pricing.Aggregator {
	if cal, ok := s.Aggregator.Store.(*CalendarService); ok {
		return s.Aggregator.WithStore(cal.WithDB(tx))
	}
	return s.Aggregator
}

// Create prices and books the stay in one transaction. The room row is locked
// first so calendar or meal plan changes cannot slip in between pricing and
// the insert. A party larger than the room fails with pricing.ErrOverCapacity.
func (s *ApplicationService) Create(ctx context.Context, in CreateApplicationInput) (models.Application, error) {
	in, err := in.validate()
	if err != nil {
		return models.Application{}, err
	}

	var app models.Application
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&room, in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pricing.ErrRoomNotFound
			}
			return err
		}

		quote, err := s.aggregatorFor(tx).PriceStay(ctx, pricing.StayRequest{
			RoomID:   in.RoomID,
			CheckIn:  in.CheckIn,
			CheckOut: in.CheckOut,
			Category: in.Category,
			Guests:   in.Guests,
		})
		if err != nil {
			return err
		}
		if quote.Nights == 0 {
			return ErrEmptyStay
		}
		if !quote.FullyAvailable {
			return ErrNotBookable
		}
		details, err := json.Marshal(quote.Breakdown)
		if err != nil {
			return fmt.Errorf("encode breakdown: %w", err)
		}

		var clash int64
		if err := tx.Model(&models.Application{}).
			Where("room_id = ? AND status = ? AND check_in_date < ? AND check_out_date > ?",
				in.RoomID, models.ApplicationStatusConfirmed, quote.CheckOut, quote.CheckIn).
			Count(&clash).Error; err != nil {
			return fmt.Errorf("check existing applications: %w", err)
		}
		if clash > 0 {
			return ErrRoomAlreadyBooked
		}

		app = models.Application{
			RoomID:               in.RoomID,
			Status:               models.ApplicationStatusConfirmed,
			CheckInDate:          datatypes.Date(quote.CheckIn),
			CheckOutDate:         datatypes.Date(quote.CheckOut),
			Nights:               quote.Nights,
			MealPlan:             string(quote.Category),
			Guests:               quote.Guests,
			ContactName:          in.ContactName,
			ContactEmail:         in.ContactEmail,
			TotalWithoutDiscount: quote.TotalWithoutDiscount,
			TotalPrice:           quote.TotalWithDiscount,
			Details:              datatypes.JSON(details),
		}
		return s.insertWithReference(ctx, tx, &app)
	})
	if err != nil {
		return models.Application{}, err
	}

	s.Events.Publish(ctx, EventApplicationCreated, app.RoomID, map[string]interface{}{
		"application_id": app.ID,
		"reference_code": app.ReferenceCode,
		"total_price":    app.TotalPrice,
	})
	return app, nil
}

// insertWithReference retries on reference code collision. Each attempt runs
// in a nested transaction (a savepoint) so a failed insert does not abort the
// outer transaction on Postgres.
func (s *ApplicationService) insertWithReference(ctx context.Context, tx *gorm.DB, app *models.Application) error {
	const maxRetries = 5
	var createErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		code, err := s.NewReference()
		if err != nil {
			return fmt.Errorf("generate reference code: %w", err)
		}
		app.ID = 0
		app.ReferenceCode = code
		createErr = tx.Transaction(func(sp *gorm.DB) error {
			return sp.Omit("Room").Create(app).Error
		})
		if createErr == nil || !isDuplicateKey(createErr) {
			break
		}
		s.Log.WarnContext(ctx, "reference code collision, retrying", "attempt", attempt+1)
	}
	if createErr != nil {
		return fmt.Errorf("create application: %w", createErr)
	}
	return nil
}

func (s *ApplicationService) Get(ctx context.Context, id uint) (models.Application, error) {
	var app models.Application
	if err := s.DB.WithContext(ctx).Preload("Room").First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrNotFound
		}
		return models.Application{}, err
	}
	return app, nil
}

func (s *ApplicationService) GetByReference(ctx context.Context, code string) (models.Application, error) {
	var app models.Application
	err := s.DB.WithContext(ctx).Preload("Room").
		Where("reference_code = ?", utils.NormalizeReferenceCode(code)).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Application{}, ErrNotFound
		}
		return models.Application{}, err
	}
	return app, nil
}

// Cancel is idempotent: cancelling a cancelled application is a no-op.
func (s *ApplicationService) Cancel(ctx context.Context, id uint) (models.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return models.Application{}, err
	}
	if app.Status == models.ApplicationStatusCancelled {
		return app, nil
	}
	if err := s.DB.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).
		Update("status", models.ApplicationStatusCancelled).Error; err != nil {
		return models.Application{}, fmt.Errorf("cancel application %d: %w", id, err)
	}
	app.Status = models.ApplicationStatusCancelled
	s.Events.Publish(ctx, EventApplicationCancelled, app.RoomID, map[string]uint{"application_id": app.ID})
	return app, nil
}
