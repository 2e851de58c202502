package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"travel-backend/models"
	"travel-backend/pricing"
)

type MealPlanInput struct {
	Name           string
	Category       pricing.Category
	PricePerPerson decimal.Decimal
}

type MealPlanService struct {
	DB    *gorm.DB
	Rooms *RoomService
}

func NewMealPlanService(db *gorm.DB, rooms *RoomService) *MealPlanService {
	return &MealPlanService{DB: db, Rooms: rooms}
}

func (in MealPlanInput) validate() (MealPlanInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !in.Category.Valid() {
		return in, fmt.Errorf("%w: unknown meal plan category %q", ErrInvalidInput, in.Category)
	}
	if in.PricePerPerson.IsNegative() {
		return in, fmt.Errorf("%w: price_per_person must not be negative", ErrInvalidInput)
	}
	return in, nil
}

func (s *MealPlanService) List(ctx context.Context) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	err := s.DB.WithContext(ctx).Order("id").Find(&plans).Error
	return plans, err
}

func (s *MealPlanService) Get(ctx context.Context, id uint) (models.MealPlan, error) {
	var plan models.MealPlan
	if err := s.DB.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MealPlan{}, ErrNotFound
		}
		return models.MealPlan{}, err
	}
	return plan, nil
}

// Create inserts a new plan and fails with ErrMealPlanExists on a taken name.
func (s *MealPlanService) Create(ctx context.Context, in MealPlanInput) (models.MealPlan, error) {
	in, err := in.validate()
	if err != nil {
		return models.MealPlan{}, err
	}
	plan := models.MealPlan{Name: in.Name, Category: string(in.Category), PricePerPerson: in.PricePerPerson}
	if err := s.DB.WithContext(ctx).Create(&plan).Error; err != nil {
		if isDuplicateKey(err) {
			return models.MealPlan{}, ErrMealPlanExists
		}
		return models.MealPlan{}, fmt.Errorf("create meal plan: %w", err)
	}
	return plan, nil
}

// GetOrCreate is the only way to change an existing plan: a differing
// category or price is written back and every room offering the plan is
// recomputed. created reports whether the plan was new.
func (s *MealPlanService) GetOrCreate(ctx context.Context, in MealPlanInput) (plan models.MealPlan, created bool, err error) {
	in, err = in.validate()
	if err != nil {
		return models.MealPlan{}, false, err
	}
	db := s.DB.WithContext(ctx)

	plan = models.MealPlan{Name: in.Name, Category: string(in.Category), PricePerPerson: in.PricePerPerson}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&plan)
	if res.Error != nil {
		return models.MealPlan{}, false, fmt.Errorf("create meal plan: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return plan, true, nil
	}

	plan = models.MealPlan{}
	if err := db.Where("name = ?", in.Name).First(&plan).Error; err != nil {
		return models.MealPlan{}, false, fmt.Errorf("load meal plan %q: %w", in.Name, err)
	}

	if plan.Category == string(in.Category) && plan.PricePerPerson.Equal(in.PricePerPerson) {
		return plan, false, nil
	}
	if err := db.Model(&plan).Updates(map[string]interface{}{
		"category":         string(in.Category),
		"price_per_person": in.PricePerPerson,
	}).Error; err != nil {
		return models.MealPlan{}, false, fmt.Errorf("update meal plan %d: %w", plan.ID, err)
	}
	plan.Category = string(in.Category)
	plan.PricePerPerson = in.PricePerPerson
	if s.Rooms != nil {
		if err := s.Rooms.RecomputeForMealPlan(ctx, plan.ID); err != nil {
			return plan, false, err
		}
	}
	return plan, false, nil
}
