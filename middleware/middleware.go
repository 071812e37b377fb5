package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/dinerozz/behavior-monitor/internal/model/response/wrapper"
	"github.com/dinerozz/behavior-monitor/pkg/utils"
	"github.com/gin-gonic/gin"
)

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("token"); err == nil && token != "" {
		return token
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// AuthenticationMiddleware rejects every request when no secret is configured.
func AuthenticationMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(secret) == 0 {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Admin API is disabled", Success: false})
			c.Abort()
			return
		}

		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Missing authentication token", Success: false})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			log.Printf("⚠️ Error validating token: %v", err)
			c.JSON(http.StatusUnauthorized, wrapper.ErrorWrapper{Message: "Invalid authentication token", Success: false})
			c.Abort()
			return
		}

		c.Set("admin", claims["sub"])
		c.Next()
	}
}

// CORS allows local development origins plus the configured ones. Report
// requests carry no credentials, so any origin may post to them.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		} else if origin != "" && isReportPath(c.Request.URL.Path) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func isReportPath(path string) bool {
	return path == "/report" || strings.HasSuffix(path, "/behaviors/report")
}

// SwaggerHostMiddleware hides the docs from every host but the given one.
func SwaggerHostMiddleware(host string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/swagger") && host != "" {
			if !strings.HasPrefix(c.Request.Host, host) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "Access denied",
				})
				return
			}
		}
		c.Next()
	}
}
