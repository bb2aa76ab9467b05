package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/starter-spark/kitclaim/internal/identity"
)

// sessionClaims is the token shape minted by the platform gateway after it
// verifies the account's email. The engine trusts the email claim as the
// verified address for license authorization.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// IdentityRequired authenticates requests with a bearer session token and
// stores the verified identity on the request context.
func (s *Server) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims := &sessionClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(s.cfg.AuthSecret), nil
		})
		if err != nil || !token.Valid {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := snowflake.ParseString(strings.TrimSpace(claims.Subject))
		if err != nil || userID == 0 || strings.TrimSpace(claims.Email) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := identity.WithIdentity(c.Request.Context(), identity.Identity{
			UserID: userID,
			Email:  strings.TrimSpace(claims.Email),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClaimRateLimit gates claim traffic per account. The engine itself never
// consults the limiter; it is purely a transport-level brake.
func (s *Server) ClaimRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := identity.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !s.claimLimiter.Allow(ident.UserID.String()) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
