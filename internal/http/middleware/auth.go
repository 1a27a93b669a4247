package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"busbooking/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey         = "userId"
	userRoleKey       = "userRole"
	requestContextKey = "requestContext"
)

// Auth verifies an HS256 bearer token and stores the caller on the gin context.
// Tokens carry user_id, role and exp claims.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		if len(key) == 0 {
			abortUnauthorized(c, "token verification is not configured")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		userID := claimString(claims["user_id"])
		if userID == "" {
			abortUnauthorized(c, "token has no user_id")
			return
		}
		role := strings.ToUpper(claimString(claims["role"]))

		c.Set(userIDKey, userID)
		c.Set(userRoleKey, role)
		c.Set(requestContextKey, domain.RequestContext{UserID: userID, Role: role, RequestID: GetRequestID(c)})
		c.Next()
	}
}

// RequireRoles only lets callers with one of allowedRoles through. Auth must run first.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(r))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortUnauthorized(c, "no role on request")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "role not allowed",
				"code":       "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller resolved by Auth. Without Auth it only carries the request id.
func CurrentUser(c *gin.Context) domain.RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(domain.RequestContext); ok {
			return rc
		}
	}
	return domain.RequestContext{RequestID: GetRequestID(c)}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func claimString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return fmt.Sprintf("%.0f", x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
