// Package middleware carries the gin middleware owned by the HTTP
// controller: bearer-token authentication.
package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain/auth"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type authClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// Auth parses the bearer token, if any, and attaches the resulting
// principal to the request context. Requests without a token pass
// through unauthenticated; the domain services reject them. A present
// but invalid token is a hard 401.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		principal, err := parsePrincipal(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthenticated",
				"message": "invalid token",
			})
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the
// legacy `token` header older storefront clients still send.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return c.GetHeader("token")
}

func parsePrincipal(raw, secret string) (auth.Principal, error) {
	var claims authClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return auth.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return auth.Principal{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("parse subject: %w", err)
	}

	return auth.Principal{UserID: userID, Admin: claims.Admin}, nil
}
