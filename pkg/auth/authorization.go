package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nvbf/torneo/pkg/metrics"
)

const (
	userIDKey  = "userID"
	isAdminKey = "isAdmin"
)

// IdentityMiddleware attaches the visitor's anonymous user id to the context.
// A Firebase ID token in the Authorization header wins over the session
// cookie; with neither, a new identity is created and remembered in a cookie.
// When no identity can be resolved the request continues without one.
func IdentityMiddleware(provider IdentityProvider, sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			uid, err := provider.Verify(c, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
				c.Abort()
				return
			}
			c.Set(userIDKey, uid)
			c.Next()
			return
		}

		if cookie, err := c.Cookie(UserCookie); err == nil {
			if claims, err := sessions.Parse(cookie); err == nil && claims.Subject != "" && !claims.Admin {
				c.Set(userIDKey, claims.Subject)
				c.Next()
				return
			}
		}

		uid, err := provider.Create(c)
		if err != nil {
			metrics.IdentitiesCreated.WithLabelValues("error").Inc()
			log.Error().Err(err).Msg("Failed to create anonymous identity")
			c.Next()
			return
		}
		metrics.IdentitiesCreated.WithLabelValues("ok").Inc()
		log.Debug().
			Str("path", c.Request.URL.Path).
			Str("userAgent", c.Request.UserAgent()).
			Msg("Created anonymous identity")
		token, err := sessions.IssueUser(uid)
		if err != nil {
			log.Error().Err(err).Msg("Failed to issue session")
			c.Next()
			return
		}
		sessions.SetUserCookie(c, token)
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// AdminMiddleware marks requests carrying a valid admin session.
func AdminMiddleware(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(AdminCookie); err == nil {
			if claims, err := sessions.Parse(cookie); err == nil && claims.Admin {
				c.Set(isAdminKey, true)
			}
		}
		c.Next()
	}
}

// RequireIdentity rejects API calls made before an identity exists.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "identity not available"})
			return
		}
		c.Next()
	}
}

// RequireAdmin only lets admin sessions through.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAdmin(c) {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

func UserID(c *gin.Context) (string, bool) {
	uid := c.GetString(userIDKey)
	return uid, uid != ""
}

func IsAdmin(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
