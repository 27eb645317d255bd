package middlewares

import (
	"hms/src/config"
	"hms/src/lib"
	"hms/src/utils"
	"log"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware admits front desk staff carrying a session token.
func AuthMiddleware(ctx *gin.Context) {
	reqToken := utils.BearerToken(ctx.GetHeader("Authorization"))
	if reqToken == "" {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
		return
	}
	claims, err := lib.ParseStaffToken(config.GetJWTSecret(), reqToken)
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if claims.Username == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("username", claims.Username)
	ctx.Set("role", claims.Role)
	ctx.Next()
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := ctx.GetString("role")
		if !slices.Contains(roles, role) {
			log.Printf("Role %q is not allowed on %s\n", role, ctx.FullPath())
			ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		ctx.Next()
	}
}
