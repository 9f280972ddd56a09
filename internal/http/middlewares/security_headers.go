package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// JSON API responses never load anything.
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// /docs pulls Swagger UI from unpkg and boots it inline.
	docsCSP = "default-src 'self'; base-uri 'none'; frame-ancestors 'none'; object-src 'none'; connect-src 'self'; img-src 'self' data: https:; font-src 'self' https://unpkg.com data:; style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com"
)

// credentialRoutes receive passwords or hand out session tokens. Neither the
// browser nor an intermediary may keep a copy of their responses.
var credentialRoutes = map[string]bool{
	"/login":    true,
	"/register": true,
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/docs") {
			h.Set("Content-Security-Policy", docsCSP)
		} else {
			h.Set("Content-Security-Policy", apiCSP)
		}
		if credentialRoutes[path] {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
		}

		c.Next()
	}
}
