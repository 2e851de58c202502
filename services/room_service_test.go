package services

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"

	"travel-backend/models"
	"travel-backend/pricing"
)

func createPlan(t *testing.T, svc *MealPlanService, name string, cat pricing.Category, price string) models.MealPlan {
	t.Helper()
	plan, err := svc.Create(context.Background(), MealPlanInput{Name: name, Category: cat, PricePerPerson: dec(price)})
	if err != nil {
		t.Fatalf("create meal plan %s: %v", name, err)
	}
	return plan
}

func TestCreateRoomComposesMealPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plans := NewMealPlanService(env.db, env.rooms)
	hb := createPlan(t, plans, "Half board", pricing.HalfBoard, "50")
	bb := createPlan(t, plans, "Breakfast", pricing.BreakfastOnly, "20")

	room, err := env.rooms.Create(ctx, RoomInput{
		Name:        "Sea view",
		Capacity:    2,
		BasePrice:   decimal.NewNullDecimal(dec("1000")),
		MealPlanIDs: []uint{hb.ID, bb.ID},
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	var stored models.Room
	if err := env.db.First(&stored, room.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	p := stored.MealPrices
	if !p.NoMeals.Equal(dec("1000")) || !p.HalfBoard.Equal(dec("1100")) || !p.BreakfastOnly.Equal(dec("1040")) {
		t.Fatalf("unexpected composed prices: %+v", p)
	}
	if !p.FullBoard.IsZero() || !p.AllInclusive.IsZero() || !p.UltraAllInclusive.IsZero() {
		t.Fatalf("tiers the room does not offer must be zero: %+v", p)
	}
}

func TestCreateRoomValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.rooms.Create(ctx, RoomInput{Name: "x", Capacity: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for capacity, got %v", err)
	}
	if _, err := env.rooms.Create(ctx, RoomInput{Name: "x", BasePrice: decimal.NewNullDecimal(dec("-5"))}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for base price, got %v", err)
	}
	missing := uint(77)
	if _, err := env.rooms.Create(ctx, RoomInput{Name: "x", HotelID: &missing}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown hotel, got %v", err)
	}
	if _, err := env.rooms.Create(ctx, RoomInput{Name: "x", MealPlanIDs: []uint{42}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown meal plan, got %v", err)
	}

	room, err := env.rooms.Create(ctx, RoomInput{Name: "x"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if room.Capacity != 1 || !room.MealPrices.NoMeals.IsZero() {
		t.Fatalf("expected capacity 1 and zero prices without a base price, got %d %s", room.Capacity, room.MealPrices.NoMeals)
	}
}

func TestRecomputeMealPricesIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plans := NewMealPlanService(env.db, env.rooms)
	fb := createPlan(t, plans, "Full board", pricing.FullBoard, "35.50")

	room, err := env.rooms.Create(ctx, RoomInput{Name: "a", Capacity: 3, BasePrice: decimal.NewNullDecimal(dec("800")), MealPlanIDs: []uint{fb.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := env.rooms.RecomputeMealPrices(ctx, room.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	second, err := env.rooms.RecomputeMealPrices(ctx, room.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !first.MealPrices.FullBoard.Equal(dec("906.5")) || !first.MealPrices.FullBoard.Equal(second.MealPrices.FullBoard) {
		t.Fatalf("expected 906.5 twice, got %s and %s", first.MealPrices.FullBoard, second.MealPrices.FullBoard)
	}
}

func TestUpdateRoomRecomputes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plans := NewMealPlanService(env.db, env.rooms)
	hb := createPlan(t, plans, "Half board", pricing.HalfBoard, "50")

	room, err := env.rooms.Create(ctx, RoomInput{Name: "a", Capacity: 2, BasePrice: decimal.NewNullDecimal(dec("1000")), MealPlanIDs: []uint{hb.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	capacity := 4
	base := decimal.NewNullDecimal(dec("500"))
	updated, err := env.rooms.Update(ctx, room.ID, RoomPatch{Capacity: &capacity, BasePrice: &base})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.MealPrices.HalfBoard.Equal(dec("700")) || !updated.MealPrices.NoMeals.Equal(dec("500")) {
		t.Fatalf("expected 500/700, got %+v", updated.MealPrices)
	}

	zero := 0
	if _, err := env.rooms.Update(ctx, room.ID, RoomPatch{Capacity: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSetMealPlansReplacesSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plans := NewMealPlanService(env.db, env.rooms)
	hb := createPlan(t, plans, "Half board", pricing.HalfBoard, "50")
	ai := createPlan(t, plans, "All inclusive", pricing.AllInclusive, "120")

	room, err := env.rooms.Create(ctx, RoomInput{Name: "a", Capacity: 2, BasePrice: decimal.NewNullDecimal(dec("1000")), MealPlanIDs: []uint{hb.ID}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	room, err = env.rooms.SetMealPlans(ctx, room.ID, []uint{ai.ID})
	if err != nil {
		t.Fatalf("set meal plans: %v", err)
	}
	if len(room.MealPlans) != 1 || room.MealPlans[0].ID != ai.ID {
		t.Fatalf("expected only the all inclusive plan, got %+v", room.MealPlans)
	}
	if !room.MealPrices.HalfBoard.IsZero() || !room.MealPrices.AllInclusive.Equal(dec("1240")) {
		t.Fatalf("unexpected prices after replace: %+v", room.MealPrices)
	}

	if _, err := env.rooms.SetMealPlans(ctx, 999, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMealPlanUpsertRecomputesRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plans := NewMealPlanService(env.db, env.rooms)

	hb, created, err := plans.GetOrCreate(ctx, MealPlanInput{Name: "Half board", Category: pricing.HalfBoard, PricePerPerson: dec("50")})
	if err != nil || !created {
		t.Fatalf("expected a new plan, got created=%v err=%v", created, err)
	}
	room, err := env.rooms.Create(ctx, RoomInput{Name: "a", Capacity: 2, BasePrice: decimal.NewNullDecimal(dec("1000")), MealPlanIDs: []uint{hb.ID}})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	same, created, err := plans.GetOrCreate(ctx, MealPlanInput{Name: "Half board", Category: pricing.HalfBoard, PricePerPerson: dec("50")})
	if err != nil || created || same.ID != hb.ID {
		t.Fatalf("expected the existing plan, got %+v created=%v err=%v", same, created, err)
	}

	if _, _, err := plans.GetOrCreate(ctx, MealPlanInput{Name: "Half board", Category: pricing.HalfBoard, PricePerPerson: dec("60")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	reloaded, err := env.rooms.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.MealPrices.HalfBoard.Equal(dec("1120")) {
		t.Fatalf("expected 1120 after the plan price change, got %s", reloaded.MealPrices.HalfBoard)
	}

	if _, err := plans.Create(ctx, MealPlanInput{Name: "Half board", Category: pricing.HalfBoard}); !errors.Is(err, ErrMealPlanExists) {
		t.Fatalf("expected ErrMealPlanExists, got %v", err)
	}
	if _, err := plans.Create(ctx, MealPlanInput{Name: "Odd", Category: "brunch"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteRoomRemovesCalendarPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room := createRoom(t, env.db, 2, "")
	if _, err := env.calendar.InsertPeriod(ctx, room.ID, periodInput("2025-07-01", "2025-07-10", "1000")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := env.rooms.Delete(ctx, room.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var count int64
	env.db.Model(&models.CalendarPrice{}).Where("room_id = ?", room.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected calendar prices to be removed, %d left", count)
	}
	if err := env.rooms.Delete(ctx, room.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteHotelOrphansRooms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hotels := NewHotelService(env.db)

	hotel, err := hotels.Create(ctx, models.Hotel{Name: "Azure", City: "Antalya", Stars: 5})
	if err != nil {
		t.Fatalf("create hotel: %v", err)
	}
	room, err := env.rooms.Create(ctx, RoomInput{Name: "a", Capacity: 2, HotelID: &hotel.ID})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	got, err := hotels.Get(ctx, hotel.ID)
	if err != nil || len(got.Rooms) != 1 {
		t.Fatalf("expected hotel with one room, got %+v err=%v", got, err)
	}

	if err := hotels.Delete(ctx, hotel.ID); err != nil {
		t.Fatalf("delete hotel: %v", err)
	}
	orphan, err := env.rooms.Get(ctx, room.ID)
	if err != nil {
		t.Fatalf("room must survive its hotel: %v", err)
	}
	if orphan.HotelID != nil {
		t.Fatalf("expected hotel_id to be cleared, got %d", *orphan.HotelID)
	}
	if _, err := hotels.Get(ctx, hotel.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := hotels.Create(ctx, models.Hotel{Name: " "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecomputeMealPricesWritesOnlyOnChange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndSucceed()
	rooms := NewRoomService(db, nil, NewEventPublisher(producer, "travel.pricing", discardLog), discardLog)

	room := createRoom(t, db, 2, "100")
	first, err := rooms.RecomputeMealPrices(ctx, room.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !first.MealPrices.NoMeals.Equal(dec("100")) {
		t.Fatalf("expected no_meals 100, got %s", first.MealPrices.NoMeals)
	}
	// unchanged prices: no second event
	if _, err := rooms.RecomputeMealPrices(ctx, room.ID); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
