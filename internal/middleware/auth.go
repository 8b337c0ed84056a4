package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/BruksfildServices01/clinica-scheduler/internal/config"
	"github.com/BruksfildServices01/clinica-scheduler/internal/domain/access"
)

const ContextPrincipal = "principal"

// Claims é o payload emitido pelo serviço de autenticação da plataforma.
type Claims struct {
	CompanyID      string             `json:"company_id"`
	Role           string             `json:"role"`
	ProfessionalID string             `json:"professional_id,omitempty"`
	Timezone       string             `json:"tz,omitempty"`
	Permissions    access.Permissions `json:"permissions"`
	jwt.RegisteredClaims
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		if claims.Subject == "" || claims.CompanyID == "" || claims.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		// capacidades avaliadas uma vez por request
		c.Set(ContextPrincipal, access.NewPrincipal(access.Actor{
			UID:            claims.Subject,
			CompanyID:      claims.CompanyID,
			Role:           access.Role(claims.Role),
			ProfessionalID: claims.ProfessionalID,
			Timezone:       claims.Timezone,
			Permissions:    claims.Permissions,
		}))

		c.Next()
	}
}

// PrincipalFrom devolve o ator autenticado da request.
func PrincipalFrom(c *gin.Context) (access.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return access.Principal{}, false
	}
	p, ok := v.(access.Principal)
	return p, ok
}
