package main

import (
	"hms/src/controllers"
	"net/http"

	"github.com/gin-gonic/gin"
)

// publicFormularioHandlers expects g to be guarded by the invitation token
// middleware.
func publicFormularioHandlers(g *gin.RouterGroup, c *controllers.FormulariosController) *gin.RouterGroup {
	g.POST("/formularios", func(ctx *gin.Context) {
		result, status, err := c.Create(ctx)
		if err != nil {
			errorResponse(ctx, "CreateFormulario", status, err)
			return
		}
		ctx.JSON(status, gin.H{"data": result, "traStatus": result.TraStatus})
	})
	return g
}

func formularioHandlers(g *gin.RouterGroup, c *controllers.FormulariosController) *gin.RouterGroup {
	g.POST("/formularios/:id/tra", func(ctx *gin.Context) {
		traID, status, err := c.RegisterInTra(ctx)
		if err != nil {
			errorResponse(ctx, "RegisterFormularioInTra", status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"traId": traID})
	})
	return g
}
