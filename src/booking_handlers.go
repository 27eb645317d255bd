package main

import (
	"hms/src/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup, c *controllers.BookingsController) *gin.RouterGroup {
	g.DELETE("/bookings/:id", func(ctx *gin.Context) {
		summary, status, err := c.Remove(ctx)
		if err != nil {
			errorResponse(ctx, "RemoveBooking", status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": summary})
	})
	return g
}
