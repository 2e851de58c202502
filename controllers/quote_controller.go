package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travel-backend/pricing"
	"travel-backend/services"
	"travel-backend/utils"
)

type QuoteController struct {
	Svc *services.QuoteService
}

func NewQuoteController(svc *services.QuoteService) *QuoteController {
	return &QuoteController{Svc: svc}
}

// GET /api/rooms/:id/quote?check_in=&check_out=&meal=&guests=
func (qc *QuoteController) Quote(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	checkIn, checkOut, ok := parseStayDates(c, c.Query("check_in"), c.Query("check_out"))
	if !ok {
		return
	}
	category, ok := parseCategory(c, c.Query("meal"))
	if !ok {
		return
	}
	guests, ok := parseGuests(c, c.Query("guests"))
	if !ok {
		return
	}

	res, err := qc.Svc.Quote(c.Request.Context(), pricing.StayRequest{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Category: category,
		Guests:   guests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}

// GET /api/search?hotel_id=&check_in=&check_out=&meal=&guests=&only_available=
func (qc *QuoteController) Search(c *gin.Context) {
	hotelID, err := parseOptionalID(c.Query("hotel_id"))
	if err != nil {
		respondBadRequest(c, "invalid hotel_id", err)
		return
	}
	checkIn, checkOut, ok := parseStayDates(c, c.Query("check_in"), c.Query("check_out"))
	if !ok {
		return
	}
	category, ok := parseCategory(c, c.Query("meal"))
	if !ok {
		return
	}
	guests, ok := parseGuests(c, c.Query("guests"))
	if !ok {
		return
	}
	onlyAvailable := false
	if raw := c.Query("only_available"); raw != "" {
		if onlyAvailable, err = strconv.ParseBool(raw); err != nil {
			respondBadRequest(c, "invalid only_available", err)
			return
		}
	}

	results, err := qc.Svc.Search(c.Request.Context(), services.SearchRequest{
		HotelID:       hotelID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Category:      category,
		Guests:        guests,
		OnlyAvailable: onlyAvailable,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, results)
}
