package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-backend/models"
	"travel-backend/services"
	"travel-backend/utils"
)

type CreateHotelRequest struct {
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	Address string `json:"address"`
	Stars   int    `json:"stars"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type HotelController struct {
	Svc *services.HotelService
}

func NewHotelController(svc *services.HotelService) *HotelController {
	return &HotelController{Svc: svc}
}

// POST /api/hotels
func (hc *HotelController) Create(c *gin.Context) {
	var req CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return
	}
	hotel, err := hc.Svc.Create(c.Request.Context(), models.Hotel{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Stars:   req.Stars,
		Phone:   req.Phone,
		Email:   req.Email,
		Website: req.Website,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hotel)
}

// GET /api/hotels?city=
func (hc *HotelController) List(c *gin.Context) {
	hotels, err := hc.Svc.List(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotels)
}

// GET /api/hotels/:id
func (hc *HotelController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	hotel, err := hc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// DELETE /api/hotels/:id
func (hc *HotelController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := hc.Svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
