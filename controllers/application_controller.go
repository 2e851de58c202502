package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-backend/services"
	"travel-backend/utils"
)

type CreateApplicationRequest struct {
	RoomID       uint   `json:"room_id" binding:"required"`
	CheckIn      string `json:"check_in" binding:"required"`
	CheckOut     string `json:"check_out" binding:"required"`
	MealPlan     string `json:"meal_plan"`
	Guests       int    `json:"guests"`
	ContactName  string `json:"contact_name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required"`
}

type ApplicationController struct {
	Svc *services.ApplicationService
}

func NewApplicationController(svc *services.ApplicationService) *ApplicationController {
	return &ApplicationController{Svc: svc}
}

// POST /api/applications
func (ac *ApplicationController) Create(c *gin.Context) {
	var req CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}
	checkIn, checkOut, ok := parseStayDates(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}
	category, ok := parseCategory(c, req.MealPlan)
	if !ok {
		return
	}
	if req.Guests < 0 {
		utils.JSONError(c, http.StatusBadRequest, "error.invalidGuests", "guests must be a non-negative integer")
		return
	}

	app, err := ac.Svc.Create(c.Request.Context(), services.CreateApplicationInput{
		RoomID:       req.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		Category:     category,
		Guests:       req.Guests,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, app)
}

// GET /api/applications/:id
func (ac *ApplicationController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	app, err := ac.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, app)
}

// GET /api/applications?reference=
func (ac *ApplicationController) FindByReference(c *gin.Context) {
	code := c.Query("reference")
	if code == "" {
		utils.JSONError(c, http.StatusBadRequest, "error.missingReference", "reference query parameter is required")
		return
	}
	app, err := ac.Svc.GetByReference(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, app)
}

// POST /api/applications/:id/cancel
func (ac *ApplicationController) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	app, err := ac.Svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, app)
}
