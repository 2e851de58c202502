package routes

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travel-backend/controllers"
	"travel-backend/middleware"
)

// Controllers groups the handlers SetupRouter mounts.
type Controllers struct {
	Health       *controllers.HealthController
	Hotels       *controllers.HotelController
	Rooms        *controllers.RoomController
	MealPlans    *controllers.MealPlanController
	Calendar     *controllers.CalendarController
	Quotes       *controllers.QuoteController
	Applications *controllers.ApplicationController
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter wires every endpoint. limiter guards the pricing reads and may be nil.
func SetupRouter(
	ctrl Controllers,
	corsOrigins []string,
	limiter *middleware.RateLimiter,
	log *slog.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(log))
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", ctrl.Health.Health)
	r.GET("/readyz", ctrl.Health.Ready)

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{limiter.Limit(), h}
	}

	api := r.Group("/api")
	{
		hotels := api.Group("/hotels")
		{
			hotels.GET("", ctrl.Hotels.List)
			hotels.POST("", ctrl.Hotels.Create)
			hotels.GET("/:id", ctrl.Hotels.Get)
			hotels.DELETE("/:id", ctrl.Hotels.Delete)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", ctrl.Rooms.List)
			rooms.POST("", ctrl.Rooms.Create)
			rooms.GET("/:id", ctrl.Rooms.Get)
			rooms.PATCH("/:id", ctrl.Rooms.Update)
			rooms.DELETE("/:id", ctrl.Rooms.Delete)
			rooms.PUT("/:id/meal-plans", ctrl.Rooms.SetMealPlans)
			rooms.POST("/:id/meal-prices/recompute", ctrl.Rooms.RecomputeMealPrices)

			rooms.GET("/:id/calendar", ctrl.Calendar.ListPeriods)
			rooms.POST("/:id/calendar", ctrl.Calendar.InsertPeriod)
			rooms.GET("/:id/calendar/lookup", ctrl.Calendar.LookupDay)
			rooms.GET("/:id/calendar/range", ctrl.Calendar.LookupRange)
			rooms.DELETE("/:id/calendar/:priceId", ctrl.Calendar.DeletePeriod)

			rooms.GET("/:id/quote", limited(ctrl.Quotes.Quote)...)
		}

		api.GET("/search", limited(ctrl.Quotes.Search)...)

		mealPlans := api.Group("/meal-plans")
		{
			mealPlans.GET("", ctrl.MealPlans.List)
			mealPlans.POST("", ctrl.MealPlans.Create)
			mealPlans.PUT("", ctrl.MealPlans.Upsert)
			mealPlans.GET("/:id", ctrl.MealPlans.Get)
		}

		applications := api.Group("/applications")
		{
			applications.GET("", ctrl.Applications.FindByReference)
			applications.POST("", ctrl.Applications.Create)
			applications.GET("/:id", ctrl.Applications.Get)
			applications.POST("/:id/cancel", ctrl.Applications.Cancel)
		}
	}

	return r
}
