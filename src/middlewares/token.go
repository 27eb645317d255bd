package middlewares

import (
	"context"
	"hms/src/types"
	"hms/src/utils"
	"log"

	"github.com/gin-gonic/gin"
)

type LinkValidator interface {
	Validate(ctx context.Context, token string) (*types.LinkClaims, error)
}

// VerifyLinkToken admits guests holding a live invitation and stores the
// link id under "link_id".
func VerifyLinkToken(links LinkValidator) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := utils.BearerToken(ctx.GetHeader("Authorization"))
		claims, err := links.Validate(ctx.Request.Context(), token)
		if err != nil {
			log.Printf("Check failed: %s\n", err.Error())
			ctx.AbortWithStatusJSON(types.StatusOf(err), gin.H{"error": types.PublicMessage(err)})
			return
		}
		ctx.Set("link_id", claims.ID)
		ctx.Next()
	}
}
