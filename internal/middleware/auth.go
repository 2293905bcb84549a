package middleware

import (
	"net/http"

	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/gin-gonic/gin"
)

const OperatorContextKey = "operator"

// AuthMiddleware requires a valid operator token when a JWT secret is configured
// and lets every request through otherwise.
func (m Middleware) AuthMiddleware(ctx *gin.Context) {
	if !m.app.Config.AuthEnabled() {
		ctx.Next()
		return
	}

	token, err := util.ReadBearerToken(ctx)
	if err != nil {
		m.app.Logger.Debugf("Failed to read token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	claim, err := m.app.JWTService.VerifyJwtToken(token)
	if err != nil {
		m.app.Logger.Debugf("Failed to verify token: %v", err)
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Invalid token", util.GenerateErrorMessages(err, "unauthorized"), nil)
		return
	}

	ctx.Set(OperatorContextKey, claim.Operator)
	ctx.Next()
}
