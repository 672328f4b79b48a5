package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// TokenValidator проверяет токен и возвращает его claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// AuthMiddleware прикрепляет Identity к запросу, если передан Bearer токен
type AuthMiddleware struct {
	validator TokenValidator
}

func NewAuthMiddleware(validator TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// OptionalAuthenticate пропускает анонимные запросы (без заголовка Authorization),
// а для запросов с заголовком требует валидный токен.
// Решение "нужна ли аутентификация" принимает сервисный слой.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			return
		}

		claims, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		identity := claims.Identity()
		SetIdentity(c, identity)

		c.Next()
	}
}

// SetIdentity кладет Identity в контекст Gin (используется middleware и тестами)
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(identityKey, id)
}

// IdentityFromContext возвращает Identity запроса или nil для анонимного вызова
func IdentityFromContext(c *gin.Context) *Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*Identity)
	if !ok {
		return nil
	}
	return identity
}
