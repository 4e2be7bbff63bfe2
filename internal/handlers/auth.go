package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/examprep-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// Claims is the bearer token body issued by the platform's identity service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs an HS256 token. Used by tests and local tooling.
func (a *Authenticator) IssueToken(userID string, role models.UserRole, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) Parse(tokenStr string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return models.Principal{}, errors.New("token has no subject")
	}

	return models.Principal{UserID: claims.Subject, Role: models.ParseRole(claims.Role)}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// principal in the gin context.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing bearer token"})
			return
		}

		principal, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireAdmin must run after Middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Admin role required"})
			return
		}
		c.Next()
	}
}

func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
