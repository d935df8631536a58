package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/access"
	"github.com/movieon/auth-service/internal/authrpc"
)

// AccessChecker is the remote verdict call, satisfied by authrpc.Client.
type AccessChecker interface {
	HasAccess(ctx context.Context, token string, roles []string) (bool, string, error)
}

// RemoteGate is the network deployment shape of the authorization gate:
// it forwards the token and required roles to the authorization service
// and trusts its verdict.  Two contract differences from Gate:
//
//   - every required role is an AND requirement (the remote endpoint has
//     no OR group), and
//   - roles are re-derived from the user store at check time instead of
//     trusting the token snapshot, trading a network round trip for
//     always-current permissions.
//
// Any transport failure denies the request.  There is no retry: granting
// access on an ambiguous answer is the one failure mode this gate must
// never have.
type RemoteGate struct {
	checker AccessChecker
}

func NewRemoteGate(checker AccessChecker) *RemoteGate {
	return &RemoteGate{checker: checker}
}

// Require returns middleware that requires all of the given roles.
func (g *RemoteGate) Require(roles ...access.Role) echo.MiddlewareFunc {
	required := access.Names(roles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			allowed, msg, err := g.checker.HasAccess(c.Request().Context(), raw, required)
			if err != nil {
				// Fail closed: unreachable verifier means no access.
				log.Printf("remote gate: verdict unavailable: %v", err)
				return c.JSON(http.StatusForbidden, echo.Map{"error": "authorization unavailable"})
			}
			if !allowed {
				// A role shortfall is 403; everything else the service
				// denies (bad token, blocklisted) is an authentication
				// failure.
				if msg == authrpc.MsgNotEnoughRole {
					return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
			}
			return next(c)
		}
	}
}
