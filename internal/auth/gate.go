package auth

import (
	"encoding/json"

	xhttp "github.com/myola/storefront/pkg/http"
	"github.com/myola/storefront/pkg/logger"
)

// Gate wraps handlers with a role check. The caller's token comes from
// the Authorization header; the resolved user is stashed on the request
// context under UserKey.
type Gate struct {
	identity Identity
}

const UserKey = "auth.user"

func NewGate(identity Identity) *Gate {
	return &Gate{identity: identity}
}

func (g *Gate) RequireRole(required Role, next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		token := BearerToken(string(ctx.Request.Header.Peek("Authorization")))
		if token == "" {
			deny(ctx, xhttp.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := g.identity.Resolve(ctx, token)
		if err != nil {
			deny(ctx, xhttp.StatusUnauthorized, "unknown credentials")
			return
		}

		if !user.Role.Satisfies(required) {
			logger.Warn("[auth] role check failed",
				"user_id", user.ID,
				"role", string(user.Role),
				"required", string(required),
				"path", string(ctx.Path()),
			)
			deny(ctx, xhttp.StatusForbidden, "insufficient role")
			return
		}

		ctx.SetUserValue(UserKey, user)
		next(ctx)
	}
}

// CallerFrom returns the user a gate stored on the request, if any.
func CallerFrom(ctx *xhttp.RequestCtx) (*User, bool) {
	user, ok := ctx.UserValue(UserKey).(*User)
	return user, ok
}

func deny(ctx *xhttp.RequestCtx, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}
