package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/config"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

// Context keys set by the auth middlewares.
const (
	CtxAuthSubject = "auth_subject"
	CtxUserID      = "user_id"
)

// JWTCheck verifies the bearer token against the configured issuer, audience
// and key, and stores the identity provider subject in the context. It does
// not touch the database; create-new-user runs with this stage alone because
// no user row exists yet at that point.
func JWTCheck(cfg config.Config) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithIssuer(cfg.AuthIssuer),
		jwt.WithAudience(cfg.AuthAudience),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims := jwt.RegisteredClaims{}
		token, err := parser.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.AuthSecret), nil
		})
		if err != nil || !token.Valid {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid or expired token"))
			c.Abort()
			return
		}
		if claims.Subject == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token has no subject"))
			c.Abort()
			return
		}

		c.Set(CtxAuthSubject, claims.Subject)
		c.Next()
	}
}

// JWTParse resolves the verified subject to an internal user id and stores it
// in the context. Runs after JWTCheck.
func JWTParse(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(CtxAuthSubject)
		if subject == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("no verified subject in context"))
			c.Abort()
			return
		}

		var user models.User
		if err := db.Where("auth0_id = ?", subject).First(&user).Error; err != nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown user"))
			c.Abort()
			return
		}

		c.Set(CtxUserID, user.ID)
		c.Next()
	}
}

// UserID reads the caller's internal user id resolved by JWTParse.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
