package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"travel-backend/services"
	"travel-backend/utils"
)

type MealPlanRequest struct {
	Name           string          `json:"name" binding:"required"`
	Category       string          `json:"category" binding:"required"`
	PricePerPerson decimal.Decimal `json:"price_per_person"`
}

type MealPlanController struct {
	Svc *services.MealPlanService
}

func NewMealPlanController(svc *services.MealPlanService) *MealPlanController {
	return &MealPlanController{Svc: svc}
}

func (mc *MealPlanController) bind(c *gin.Context) (services.MealPlanInput, bool) {
	var req MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request payload", err)
		return services.MealPlanInput{}, false
	}
	cat, ok := parseCategory(c, req.Category)
	if !ok {
		return services.MealPlanInput{}, false
	}
	return services.MealPlanInput{Name: req.Name, Category: cat, PricePerPerson: req.PricePerPerson}, true
}

// GET /api/meal-plans
func (mc *MealPlanController) List(c *gin.Context) {
	plans, err := mc.Svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, plans)
}

// GET /api/meal-plans/:id
func (mc *MealPlanController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plan, err := mc.Svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, plan)
}

// POST /api/meal-plans
func (mc *MealPlanController) Create(c *gin.Context) {
	in, ok := mc.bind(c)
	if !ok {
		return
	}
	plan, err := mc.Svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, plan)
}

// PUT /api/meal-plans
func (mc *MealPlanController) Upsert(c *gin.Context) {
	in, ok := mc.bind(c)
	if !ok {
		return
	}
	plan, created, err := mc.Svc.GetOrCreate(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	utils.JSONSuccess(c, status, plan)
}
