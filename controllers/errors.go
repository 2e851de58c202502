package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel-backend/pricing"
	"travel-backend/services"
	"travel-backend/utils"
)

// respondError maps service and pricing errors onto the JSON error envelope.
func respondError(c *gin.Context, err error) {
	var overlap *pricing.OverlapError
	switch {
	case errors.As(err, &overlap):
		utils.JSONErrorDetails(c, http.StatusConflict, "error.periodOverlap", err.Error(), gin.H{
			"existing_period_id": overlap.Existing.ID,
			"start_date":         overlap.Existing.Start.Format(time.DateOnly),
			"end_date":           overlap.Existing.End.Format(time.DateOnly),
		})
	case errors.Is(err, pricing.ErrOverlap):
		utils.JSONError(c, http.StatusConflict, "error.periodOverlap", err.Error())
	case errors.Is(err, pricing.ErrInvalidRange):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidRange", "check_out must not be before check_in")
	case errors.Is(err, pricing.ErrInvalidPeriod):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidPeriod", err.Error())
	case errors.Is(err, pricing.ErrInvalidDiscount):
		utils.JSONError(c, http.StatusBadRequest, "error.invalidDiscount", err.Error())
	case errors.Is(err, pricing.ErrOverCapacity):
		utils.JSONError(c, http.StatusBadRequest, "error.overCapacity", err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		utils.JSONError(c, http.StatusBadRequest, "error.validation", err.Error())
	case errors.Is(err, services.ErrEmptyStay):
		utils.JSONError(c, http.StatusBadRequest, "error.emptyStay", "a booking needs at least one night")
	case errors.Is(err, pricing.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.roomNotFound", "room not found")
	case errors.Is(err, services.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "error.notFound", "resource not found")
	case errors.Is(err, pricing.ErrMealPlanNotOffered):
		utils.JSONError(c, http.StatusUnprocessableEntity, "error.mealPlanNotOffered", err.Error())
	case errors.Is(err, services.ErrMealPlanExists):
		utils.JSONError(c, http.StatusConflict, "error.mealPlanExists", "a meal plan with this name already exists")
	case errors.Is(err, services.ErrNotBookable):
		utils.JSONError(c, http.StatusConflict, "error.notBookable", "the stay is not fully available")
	case errors.Is(err, services.ErrRoomAlreadyBooked):
		utils.JSONError(c, http.StatusConflict, "error.roomAlreadyBooked", "the room is already booked for these dates")
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		utils.JSONError(c, http.StatusInternalServerError, "error.internal", "internal server error")
	}
}

func respondBadRequest(c *gin.Context, message string, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	utils.JSONErrorDetails(c, http.StatusBadRequest, "error.badRequest", message, details)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidId", "invalid "+name+": "+raw)
		return 0, false
	}
	return uint(id), true
}

func parseOptionalID(raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	v := uint(id)
	return &v, nil
}

func parseCategory(c *gin.Context, raw string) (pricing.Category, bool) {
	cat, ok := pricing.ParseCategory(raw)
	if !ok {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidMealPlan", "unknown meal plan category: "+raw)
		return "", false
	}
	return cat, true
}

func parseGuests(c *gin.Context, raw string) (int, bool) {
	if strings.TrimSpace(raw) == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidGuests", "guests must be a non-negative integer")
		return 0, false
	}
	return n, true
}

// parseStayDates reads check_in/check_out. Ordering is left to the pricing
// layer so every endpoint reports reversed ranges the same way.
func parseStayDates(c *gin.Context, checkIn, checkOut string) (time.Time, time.Time, bool) {
	ci, err := utils.ParseDate(checkIn)
	if err != nil {
		respondBadRequest(c, "invalid check_in", err)
		return time.Time{}, time.Time{}, false
	}
	co, err := utils.ParseDate(checkOut)
	if err != nil {
		respondBadRequest(c, "invalid check_out", err)
		return time.Time{}, time.Time{}, false
	}
	return ci, co, true
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
