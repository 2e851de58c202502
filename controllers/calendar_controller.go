package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel-backend/pricing"
	"travel-backend/services"
	"travel-backend/utils"
)

type InsertPeriodRequest struct {
	CalendarDateID      uint             `json:"calendar_date_id"`
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	Price               decimal.Decimal  `json:"price"`
	AvailableForBooking *bool            `json:"available_for_booking"`
	Stock               bool             `json:"stock"`
	DiscountFraction    *decimal.Decimal `json:"discount_fraction"`
	DiscountAbsolute    *decimal.Decimal `json:"discount_absolute"`
	DiscountAmount      *string          `json:"discount_amount"`
}

type nightView struct {
	Date        string          `json:"date"`
	Covered     bool            `json:"covered"`
	PeriodID    uint            `json:"period_id,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	Promotional bool            `json:"promotional"`
	Discount    string          `json:"discount_kind"`
	Value       decimal.Decimal `json:"discount_value"`
}

func viewNight(n pricing.PricedNight, covered bool) nightView {
	return nightView{
		Date:        n.Date.Format(time.DateOnly),
		Covered:     covered,
		PeriodID:    n.PeriodID,
		Price:       n.Price,
		Available:   n.Available,
		Promotional: n.Promotional,
		Discount:    n.Discount.Kind.String(),
		Value:       n.Discount.Value,
	}
}

type CalendarController struct {
	Svc *services.CalendarService
}

func NewCalendarController(svc *services.CalendarService) *CalendarController {
	return &CalendarController{Svc: svc}
}

// POST /api/rooms/:id/calendar
func (cc *CalendarController) InsertPeriod(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req InsertPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}

	in := services.PeriodInput{
		CalendarDateID:      req.CalendarDateID,
		Price:               req.Price,
		AvailableForBooking: req.AvailableForBooking,
		Stock:               req.Stock,
		DiscountFraction:    nullDecimal(req.DiscountFraction),
		DiscountAbsolute:    nullDecimal(req.DiscountAbsolute),
		DiscountAmount:      req.DiscountAmount,
	}
	if req.CalendarDateID == 0 {
		start, err := utils.ParseDate(req.StartDate)
		if err != nil {
			respondBadRequest(c, "invalid start_date", err)
			return
		}
		end, err := utils.ParseDate(req.EndDate)
		if err != nil {
			respondBadRequest(c, "invalid end_date", err)
			return
		}
		in.StartDate, in.EndDate = start, end
	}

	created, err := cc.Svc.InsertPeriod(c.Request.Context(), roomID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, created)
}

// GET /api/rooms/:id/calendar
func (cc *CalendarController) ListPeriods(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	periods, err := cc.Svc.ListPeriods(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, periods)
}

// DELETE /api/rooms/:id/calendar/:priceId
func (cc *CalendarController) DeletePeriod(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	priceID, ok := parseIDParam(c, "priceId")
	if !ok {
		return
	}
	if err := cc.Svc.DeletePeriod(c.Request.Context(), roomID, priceID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/rooms/:id/calendar/lookup?date=
func (cc *CalendarController) LookupDay(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	day, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		respondBadRequest(c, "invalid date", err)
		return
	}
	night, found, err := cc.Svc.LookupPrice(c.Request.Context(), roomID, day)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		night.Date = day
	}
	utils.JSONSuccess(c, http.StatusOK, viewNight(night, found))
}

// GET /api/rooms/:id/calendar/range?check_in=&check_out=
func (cc *CalendarController) LookupRange(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	checkIn, checkOut, ok := parseStayDates(c, c.Query("check_in"), c.Query("check_out"))
	if !ok {
		return
	}
	nights, fully, err := cc.Svc.LookupRange(c.Request.Context(), roomID, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]nightView, 0, len(nights))
	for _, n := range nights {
		out = append(out, viewNight(n.PricedNight, n.Covered))
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"fully_covered": fully,
		"nights":        out,
	})
}
