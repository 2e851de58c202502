package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel-backend/services"
	"travel-backend/utils"
)

type CreateRoomRequest struct {
	HotelID     *uint            `json:"hotel_id"`
	Name        string           `json:"name" binding:"required"`
	Category    string           `json:"category"`
	Capacity    int              `json:"capacity"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	Description string           `json:"description"`
	MealPlanIDs []uint           `json:"meal_plan_ids"`
}

type UpdateRoomRequest struct {
	HotelID     *uint            `json:"hotel_id"`
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Capacity    *int             `json:"capacity"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	// null and absent look the same in JSON; clearing needs its own flag
	ClearBasePrice bool    `json:"clear_base_price"`
	Description    *string `json:"description"`
}

type SetMealPlansRequest struct {
	MealPlanIDs []uint `json:"meal_plan_ids"`
}

type RoomController struct {
	Svc *services.RoomService
}

func NewRoomController(svc *services.RoomService) *RoomController {
	return &RoomController{Svc: svc}
}

// POST /api/rooms
func (rc *RoomController) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}
	room, err := rc.Svc.Create(c.Request.Context(), services.RoomInput{
		HotelID:     req.HotelID,
		Name:        req.Name,
		Category:    req.Category,
		Capacity:    req.Capacity,
		BasePrice:   nullDecimal(req.BasePrice),
		Description: req.Description,
		MealPlanIDs: req.MealPlanIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

// GET /api/rooms?hotel_id=
func (rc *RoomController) List(c *gin.Context) {
	hotelID, err := parseOptionalID(c.Query("hotel_id"))
	if err != nil {
		respondBadRequest(c, "invalid hotel_id", err)
		return
	}
	rooms, err := rc.Svc.List(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/rooms/:id
func (rc *RoomController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := rc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// PATCH /api/rooms/:id
func (rc *RoomController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}
	patch := services.RoomPatch{
		HotelID:     req.HotelID,
		Name:        req.Name,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	switch {
	case req.ClearBasePrice:
		patch.BasePrice = &decimal.NullDecimal{}
	case req.BasePrice != nil:
		base := nullDecimal(req.BasePrice)
		patch.BasePrice = &base
	}
	room, err := rc.Svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// DELETE /api/rooms/:id
func (rc *RoomController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := rc.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/rooms/:id/meal-plans
func (rc *RoomController) SetMealPlans(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SetMealPlansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}
	room, err := rc.Svc.SetMealPlans(c.Request.Context(), id, req.MealPlanIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// POST /api/rooms/:id/meal-prices/recompute
func (rc *RoomController) RecomputeMealPrices(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	room, err := rc.Svc.RecomputeMealPrices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room.MealPrices)
}
