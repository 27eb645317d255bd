package controllers

import (
	"hms/src/models"
	"hms/src/services"
	"hms/src/types"
	"hms/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FormulariosController struct {
	Registration *services.RegistrationService
	Tra          *services.TraService
	Trail        *services.TrailService
}

func NewFormulariosController(registration *services.RegistrationService, tra *services.TraService, trail *services.TrailService) *FormulariosController {
	return &FormulariosController{Registration: registration, Tra: tra, Trail: trail}
}

// Create expects the link id to be set by the invitation token middleware.
func (c *FormulariosController) Create(ctx *gin.Context) (*services.CreateFormularioResult, int, error) {
	linkID := ctx.GetUint("link_id")
	if linkID == 0 {
		return nil, http.StatusUnauthorized, types.NewUnauthorized("missing invitation")
	}
	var body types.CreateFormularioRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	in, err := utils.ToCreateFormularioInput(&body)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	result, err := c.Registration.Create(ctx.Request.Context(), in, linkID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	c.Trail.Record(ctx.Request.Context(), models.TRAIL_BOOKING_CREATED, models.TRAIL_INITIATOR_HUESPED, linkID)
	return result, http.StatusCreated, nil
}

func (c *FormulariosController) RegisterInTra(ctx *gin.Context) (int64, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return 0, http.StatusBadRequest, err
	}
	traID, err := c.Tra.RegisterFormularioInTra(ctx.Request.Context(), params.ID)
	if err != nil {
		return 0, types.StatusOf(err), err
	}
	log.Printf("Formulario %d registered in tra as %d by %s\n", params.ID, traID, ctx.GetString("username"))
	return traID, http.StatusOK, nil
}
