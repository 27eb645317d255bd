package controllers

import (
	"hms/src/config"
	"hms/src/models"
	"hms/src/services"
	"hms/src/types"
	"hms/src/utils"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LinksController struct {
	Links *services.LinkService
	Trail *services.TrailService
}

func NewLinksController(links *services.LinkService, trail *services.TrailService) *LinksController {
	return &LinksController{Links: links, Trail: trail}
}

func (c *LinksController) Issue(ctx *gin.Context) (*models.LinkFormulario, int, error) {
	var body types.CreateLinkRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	inicio, err := utils.ParseFecha(body.FechaInicio)
	if err != nil {
		return nil, http.StatusBadRequest, types.NewValidation("fechaInicio must use the %s format", config.DATE_PARSE_FORMAT)
	}
	fin, err := utils.ParseFecha(body.FechaFin)
	if err != nil {
		return nil, http.StatusBadRequest, types.NewValidation("fechaFin must use the %s format", config.DATE_PARSE_FORMAT)
	}
	link, err := c.Links.Issue(ctx.Request.Context(), services.IssueLinkInput{
		NumeroHabitacion: body.NumeroHabitacion,
		FechaInicio:      inicio,
		FechaFin:         fin,
		Costo:            body.Costo,
		Email:            body.Email,
	})
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	log.Printf("Link %d issued by %s\n", link.ID, ctx.GetString("username"))
	c.Trail.Record(ctx.Request.Context(), models.TRAIL_LINK_ISSUED, ctx.GetString("username"), link.ID)
	return link, http.StatusCreated, nil
}

func (c *LinksController) List(ctx *gin.Context) ([]models.LinkFormulario, int, error) {
	var filters types.LinkQueryFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		return nil, http.StatusBadRequest, err
	}
	links, err := c.Links.List(ctx.Request.Context(), services.LinkFilters{
		Completado: filters.Completado,
		Expirado:   filters.Expirado,
	})
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	return links, http.StatusOK, nil
}

func (c *LinksController) Get(ctx *gin.Context) (*models.LinkFormulario, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	link, err := c.Links.FindByID(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	return link, http.StatusOK, nil
}

func (c *LinksController) Regenerate(ctx *gin.Context) (*models.LinkFormulario, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	link, err := c.Links.Regenerate(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	c.Trail.Record(ctx.Request.Context(), models.TRAIL_LINK_REGENERATED, ctx.GetString("username"), link.ID)
	return link, http.StatusOK, nil
}

func (c *LinksController) Revoke(ctx *gin.Context) (int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return http.StatusBadRequest, err
	}
	if err := c.Links.Revoke(ctx.Request.Context(), params.ID); err != nil {
		return types.StatusOf(err), err
	}
	c.Trail.Record(ctx.Request.Context(), models.TRAIL_LINK_REVOKED, ctx.GetString("username"), params.ID)
	return http.StatusNoContent, nil
}

func (c *LinksController) Trails(ctx *gin.Context) ([]models.TrailLog, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	entries, err := c.Trail.ForLink(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	return entries, http.StatusOK, nil
}

func (c *LinksController) QRCode(ctx *gin.Context) ([]byte, int, error) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		return nil, http.StatusBadRequest, err
	}
	img, err := c.Links.QRCode(ctx.Request.Context(), params.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	return img, http.StatusOK, nil
}

// Validate backs the public form page: it reports whether the invitation in
// the Authorization header can still be used and for which stay.
func (c *LinksController) Validate(ctx *gin.Context) (*models.LinkFormulario, int, error) {
	token := utils.BearerToken(ctx.GetHeader("Authorization"))
	claims, err := c.Links.Validate(ctx.Request.Context(), token)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	link, err := c.Links.FindByID(ctx.Request.Context(), claims.ID)
	if err != nil {
		return nil, types.StatusOf(err), err
	}
	if link.Completado {
		return nil, http.StatusConflict, types.NewConflict("a formulario is already linked to this link")
	}
	return link, http.StatusOK, nil
}
