package http

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// ActorClaims are the claims of an access token issued by the auth service.
// Subject is the user id, Role one of student, restaurant, rider or admin.
type ActorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ActorMiddleware turns the bearer token into an order.Actor stored on the
// request context. The event stream may pass the token as access_token since
// browsers cannot set headers on an EventSource.
func ActorMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				raw = c.QueryParam("access_token")
			}
			if raw == "" {
				return writeError(c, http.StatusUnauthorized, "missing access token")
			}

			actor, err := ParseActorToken(secret, raw)
			if err != nil {
				return writeError(c, http.StatusUnauthorized, "invalid access token")
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// RequireRoles rejects actors whose role is not listed.
func RequireRoles(roles ...order.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := actorFrom(c)
			if !ok {
				return writeError(c, http.StatusUnauthorized, "missing access token")
			}
			if !slices.Contains(roles, actor.Role) {
				return writeError(c, http.StatusForbidden, "role "+actor.Role.String()+" may not call this endpoint")
			}
			return next(c)
		}
	}
}

// ParseActorToken validates an HS256 token and builds the actor from its
// subject and role claims.
func ParseActorToken(secret []byte, raw string) (order.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return order.Actor{}, err
	}
	if !token.Valid {
		return order.Actor{}, errors.New("token is not valid")
	}

	id, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return order.Actor{}, err
	}
	role, err := order.ParseRole(claims.Role)
	if err != nil {
		return order.Actor{}, err
	}
	return order.NewActor(role, id)
}

func actorFrom(c echo.Context) (order.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(order.Actor)
	return actor, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
