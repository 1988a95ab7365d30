package routes

import (
	"contravento/internal/controllers"
	"contravento/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TripRoutes(r *gin.Engine) {
	traveler := r.Group("/traveler")
	traveler.Use(middleware.RequireAuthWithRole("traveler"))
	{
		traveler.POST("/trips", controllers.CreateTrip)
		traveler.GET("/trips", controllers.ListTrips)
		traveler.GET("/trips/:id", controllers.GetTrip)
		traveler.GET("/trips/:id/track", controllers.GetTripTrack)
		traveler.PATCH("/trips/:id/publish", controllers.PublishTrip)
		traveler.DELETE("/trips/:id", controllers.DeleteTrip)
		traveler.POST("/trips/:id/pois", controllers.AddPOI)
		traveler.GET("/trips/:id/pois", controllers.ListPOIs)
	}
}
