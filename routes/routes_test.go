package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-backend/config"
	"travel-backend/controllers"
	"travel-backend/middleware"
	"travel-backend/pricing"
	"travel-backend/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := slog.New(slog.DiscardHandler)
	cal := services.NewCalendarService(db, nil, nil, log)
	agg := pricing.NewAggregator(cal, pricing.FallbackBasePrice, log)
	rooms := services.NewRoomService(db, nil, nil, log)

	return SetupRouter(Controllers{
		Health:       controllers.NewHealthController(db, nil),
		Hotels:       controllers.NewHotelController(services.NewHotelService(db)),
		Rooms:        controllers.NewRoomController(rooms),
		MealPlans:    controllers.NewMealPlanController(services.NewMealPlanService(db, rooms)),
		Calendar:     controllers.NewCalendarController(cal),
		Quotes:       controllers.NewQuoteController(services.NewQuoteService(db, agg, nil, log)),
		Applications: controllers.NewApplicationController(services.NewApplicationService(db, agg, nil, log)),
	}, []string{"*"}, limiter, log)
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func createRoom(t *testing.T, r *gin.Engine, body map[string]any) uint {
	t.Helper()
	code, env := do(t, r, http.MethodPost, "/api/rooms", body)
	if code != http.StatusCreated {
		t.Fatalf("create room: %d %+v", code, env.Error)
	}
	var room struct {
		ID uint `json:"ID"`
	}
	if err := json.Unmarshal(env.Data, &room); err != nil || room.ID == 0 {
		t.Fatalf("decode room: %v %s", err, env.Data)
	}
	return room.ID
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestCalendarInsertAndOverlap(t *testing.T) {
	r := setupRouter(t, nil)
	roomID := createRoom(t, r, map[string]any{"name": "Deluxe", "capacity": 2})
	path := fmt.Sprintf("/api/rooms/%d/calendar", roomID)

	code, env := do(t, r, http.MethodPost, path, map[string]any{"start_date": "2025-07-01", "end_date": "2025-07-10", "price": "1000"})
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodPost, path, map[string]any{"start_date": "2025-07-05", "end_date": "2025-07-12", "price": 1200})
	if code != http.StatusConflict || env.Error.Code != "error.periodOverlap" {
		t.Fatalf("expected 409 periodOverlap, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodPost, path, map[string]any{"start_date": "2025-07-20", "end_date": "2025-07-15", "price": 1})
	if code != http.StatusBadRequest || env.Error.Code != "error.invalidPeriod" {
		t.Fatalf("expected 400 invalidPeriod, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodPost, "/api/rooms/999/calendar", map[string]any{"start_date": "2025-07-01", "end_date": "2025-07-02", "price": 1})
	if code != http.StatusNotFound || env.Error.Code != "error.roomNotFound" {
		t.Fatalf("expected 404 roomNotFound, got %d %+v", code, env.Error)
	}

	code, env = do(t, r, http.MethodGet, path+"/lookup?date=2025-07-03", nil)
	if code != http.StatusOK {
		t.Fatalf("lookup: %d %+v", code, env.Error)
	}
	var night struct {
		Covered bool   `json:"covered"`
		Price   string `json:"price"`
	}
	_ = json.Unmarshal(env.Data, &night)
	if !night.Covered || night.Price != "1000" {
		t.Fatalf("unexpected lookup result: %s", env.Data)
	}
}

func TestQuoteEndpoint(t *testing.T) {
	r := setupRouter(t, nil)
	roomID := createRoom(t, r, map[string]any{"name": "Deluxe", "capacity": 2, "base_price": "700"})
	do(t, r, http.MethodPost, fmt.Sprintf("/api/rooms/%d/calendar", roomID),
		map[string]any{"start_date": "2025-07-01", "end_date": "2025-07-01", "price": "1000", "stock": true, "discount_fraction": "0.5"})

	code, env := do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-01&check_out=2025-07-03", roomID), nil)
	if code != http.StatusOK {
		t.Fatalf("quote: %d %+v", code, env.Error)
	}
	var quote struct {
		Nights         int    `json:"nights"`
		FullyAvailable bool   `json:"fully_available"`
		Without        string `json:"total_price_without_discount"`
		With           string `json:"total_price_with_discount"`
	}
	if err := json.Unmarshal(env.Data, &quote); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// night 1 from the calendar at half price, night 2 from the base price
	if quote.Nights != 2 || !quote.FullyAvailable || quote.Without != "1700" || quote.With != "1200" {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-03&check_out=2025-07-01", roomID), nil)
	if code != http.StatusBadRequest || env.Error.Code != "error.invalidRange" {
		t.Fatalf("expected 400 invalidRange, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-01&check_out=2025-07-03&meal=hb", roomID), nil)
	if code != http.StatusUnprocessableEntity || env.Error.Code != "error.mealPlanNotOffered" {
		t.Fatalf("expected 422 mealPlanNotOffered, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-01&check_out=2025-07-03&meal=brunch", roomID), nil)
	if code != http.StatusBadRequest || env.Error.Code != "error.invalidMealPlan" {
		t.Fatalf("expected 400 invalidMealPlan, got %d %+v", code, env.Error)
	}
	code, _ = do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-01&check_out=2025-07-01", roomID), nil)
	if code != http.StatusOK {
		t.Fatalf("expected a zero-night quote to succeed, got %d", code)
	}
	code, env = do(t, r, http.MethodGet, "/api/rooms/99999/quote?check_in=2025-07-01&check_out=2025-07-01", nil)
	if code != http.StatusNotFound || env.Error.Code != "error.roomNotFound" {
		t.Fatalf("expected 404 for a zero-night quote on an unknown room, got %d %+v", code, env.Error)
	}
	code, env = do(t, r, http.MethodGet, fmt.Sprintf("/api/rooms/%d/quote?check_in=2025-07-01&check_out=2025-07-03&guests=7", roomID), nil)
	if code != http.StatusBadRequest || env.Error.Code != "error.overCapacity" {
		t.Fatalf("expected 400 overCapacity, got %d %+v", code, env.Error)
	}
}

func TestApplicationEndpoint(t *testing.T) {
	r := setupRouter(t, nil)
	roomID := createRoom(t, r, map[string]any{"name": "Deluxe", "capacity": 2})
	do(t, r, http.MethodPost, fmt.Sprintf("/api/rooms/%d/calendar", roomID),
		map[string]any{"start_date": "2025-07-01", "end_date": "2025-07-05", "price": "1000"})

	body := map[string]any{
		"room_id":       roomID,
		"check_in":      "2025-07-04",
		"check_out":     "2025-07-08",
		"contact_name":  "Jane Roe",
		"contact_email": "jane@example.com",
	}
	code, env := do(t, r, http.MethodPost, "/api/applications", body)
	if code != http.StatusConflict || env.Error.Code != "error.notBookable" {
		t.Fatalf("expected 409 notBookable, got %d %+v", code, env.Error)
	}

	body["check_out"] = "2025-07-06"
	code, env = do(t, r, http.MethodPost, "/api/applications", body)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %+v", code, env.Error)
	}
	var app struct {
		ID         uint   `json:"id"`
		TotalPrice string `json:"total_price"`
	}
	_ = json.Unmarshal(env.Data, &app)
	if app.TotalPrice != "2000" {
		t.Fatalf("expected total 2000, got %s", app.TotalPrice)
	}

	code, _ = do(t, r, http.MethodPost, fmt.Sprintf("/api/applications/%d/cancel", app.ID), nil)
	if code != http.StatusOK {
		t.Fatalf("cancel: %d", code)
	}
	code, env = do(t, r, http.MethodGet, "/api/applications/abc", nil)
	if code != http.StatusBadRequest || env.Error.Code != "error.invalidId" {
		t.Fatalf("expected 400 invalidId, got %d %+v", code, env.Error)
	}
}

func TestSearchIsRateLimited(t *testing.T) {
	r := setupRouter(t, middleware.NewRateLimiter(0.001, 1))
	path := "/api/search?check_in=2025-07-01&check_out=2025-07-02"

	if code, env := do(t, r, http.MethodGet, path, nil); code != http.StatusOK {
		t.Fatalf("first search: %d %+v", code, env.Error)
	}
	code, env := do(t, r, http.MethodGet, path, nil)
	if code != http.StatusTooManyRequests || env.Error.Code != "error.rateLimited" {
		t.Fatalf("expected 429, got %d %+v", code, env.Error)
	}
}
