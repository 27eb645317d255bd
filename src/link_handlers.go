package main

import (
	"hms/src/controllers"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func linkHandlers(g *gin.RouterGroup, c *controllers.LinksController) *gin.RouterGroup {
	g.
		POST("/links", func(ctx *gin.Context) {
			link, status, err := c.Issue(ctx)
			if err != nil {
				errorResponse(ctx, "IssueLink", status, err)
				return
			}
			ctx.JSON(status, gin.H{"data": link, "url": link.URL})
		}).
		GET("/links", func(ctx *gin.Context) {
			links, status, err := c.List(ctx)
			if err != nil {
				errorResponse(ctx, "ListLinks", status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": links, "count": len(links)})
		}).
		GET("/links/:id", func(ctx *gin.Context) {
			link, status, err := c.Get(ctx)
			if err != nil {
				errorResponse(ctx, "GetLink", status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": link})
		}).
		POST("/links/:id/regenerate", func(ctx *gin.Context) {
			link, status, err := c.Regenerate(ctx)
			if err != nil {
				errorResponse(ctx, "RegenerateLink", status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": link, "url": link.URL})
		}).
		DELETE("/links/:id", func(ctx *gin.Context) {
			status, err := c.Revoke(ctx)
			if err != nil {
				errorResponse(ctx, "RevokeLink", status, err)
				return
			}
			ctx.Status(status)
		}).
		GET("/links/:id/qr", func(ctx *gin.Context) {
			img, status, err := c.QRCode(ctx)
			if err != nil {
				errorResponse(ctx, "LinkQRCode", status, err)
				return
			}
			ctx.Data(http.StatusOK, "image/jpeg", img)
		}).
		GET("/links/:id/trail", func(ctx *gin.Context) {
			entries, status, err := c.Trails(ctx)
			if err != nil {
				errorResponse(ctx, "LinkTrail", status, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
		})
	return g
}

func publicLinkHandlers(g *gin.RouterGroup, c *controllers.LinksController) *gin.RouterGroup {
	g.GET("/links/validate", func(ctx *gin.Context) {
		link, status, err := c.Validate(ctx)
		if err != nil {
			log.Printf("[ValidateLink] rejected invitation from %s\n", ctx.ClientIP())
			errorResponse(ctx, "ValidateLink", status, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"valid":            true,
			"id":               link.ID,
			"estado":           link.Estado,
			"numeroHabitacion": link.NumeroHabitacion,
			"fechaInicio":      link.FechaInicio,
			"fechaFin":         link.FechaFin,
			"vencimiento":      link.Vencimiento,
		})
	})
	return g
}
