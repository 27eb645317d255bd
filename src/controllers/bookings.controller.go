package controllers

import (
	"hms/src/models"
	"hms/src/services"
	"hms/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type BookingsController struct {
	Reversal *services.ReversalService
	Guests   *services.GuestService
	Trail    *services.TrailService
}

func NewBookingsController(reversal *services.ReversalService, guests *services.GuestService, trail *services.TrailService) *BookingsController {
	return &BookingsController{Reversal: reversal, Guests: guests, Trail: trail}
}

// Remove undoes the booking made through the link with the given id.
func (c *BookingsController) Remove(ctx *gin.Context) (*services.RemoveBookingSummary, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	summary, err := c.Reversal.Remove(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	log.Printf("Booking of link %d removed by %s\n", params.ID, ctx.GetString("username"))
	c.Trail.Record(ctx.Request.Context(), models.TRAIL_BOOKING_REMOVED, ctx.GetString("username"), params.ID)
	return summary, http.StatusOK, nil
}

func (c *BookingsController) GuestReservas(ctx *gin.Context) ([]models.Reserva, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	reservas, err := c.Guests.ListReservas(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	return reservas, http.StatusOK, nil
}
