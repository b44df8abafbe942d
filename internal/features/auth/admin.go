package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const adminRole = "admin"

// AdminAuthMiddleware gates the administrative surface behind an HS256
// bearer token carrying role=admin.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetString("requestId")

		token := bearerToken(ctx)
		if token == "" {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     "Authorization token required",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		role, err := parseAdminToken(token, secret)
		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"error":     "Invalid token",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		if role != adminRole {
			ctx.JSON(http.StatusForbidden, gin.H{
				"success":   false,
				"error":     "Insufficient permissions",
				"requestId": requestID,
			})
			ctx.Abort()
			return
		}

		ctx.Next()
	}
}

func parseAdminToken(token, secret string) (string, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return "", errors.New("invalid token claims")
	}

	role, _ := claims["role"].(string)
	return role, nil
}

// CreateAdminToken issues a short-lived admin token. Used by operational
// tooling and tests.
func CreateAdminToken(secret string, subject string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": adminRole,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	})

	return token.SignedString([]byte(secret))
}
