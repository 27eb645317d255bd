package main

import (
	"hms/src/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

func reservationHandlers(g *gin.RouterGroup, c *controllers.BookingsController) *gin.RouterGroup {
	g.GET("/huespedes/:id/reservas", func(ctx *gin.Context) {
		reservas, status, err := c.GuestReservas(ctx)
		if err != nil {
			errorResponse(ctx, "GuestReservas", status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": reservas, "count": len(reservas)})
	})
	return g
}
