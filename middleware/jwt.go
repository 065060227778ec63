package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slm/models/learning"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// UserSyncer mirrors a verified identity into the local users table.
type UserSyncer interface {
	SyncUser(ctx context.Context, u learning.User) error
}

// GenerateJWT signs a token carrying the claims the identity service issues.
func GenerateJWT(secret string, userID uint, name, role, email string) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"name":   name,
		"role":   role,
		"email":  email,
		"iat":    time.Now().Unix(),                     // issued at
		"exp":    time.Now().Add(24 * time.Hour).Unix(), // expiry 24h
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// JWTMiddleware checks the bearer token, stores userId and role in the request
// context and mirrors the identity locally so enrollments can reference it.
func JWTMiddleware(secret string, users UserSyncer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the token from the Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		// The token should be prefixed with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
		}
		tokenString := authHeader[len("Bearer "):]

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
		}
		// JWT numbers decode as float64
		rawID, ok := claims["userId"].(float64)
		if !ok || rawID < 1 {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid token payload", nil)
		}

		user := learning.User{
			ID:    uint(rawID),
			Role:  claimString(claims, "role"),
			Email: claimString(claims, "email"),
			Name:  claimString(claims, "name"),
		}
		if user.Role == "" {
			user.Role = learning.RoleStudent
		}
		if users != nil {
			if err := users.SyncUser(c.UserContext(), user); err != nil {
				return ErrorResponse(c, err)
			}
		}

		c.Locals("userId", user.ID)
		c.Locals("role", user.Role)
		return c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}
