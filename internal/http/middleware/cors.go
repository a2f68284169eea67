package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured browser origins. A "*" entry opens the API to any
// origin, in which case credentials are not allowed.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", "X-Requested-With", headerRequestID, headerTraceID},
		ExposeHeaders: []string{headerRequestID, headerTraceID},
		MaxAge:        12 * time.Hour,
	}
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		// cors.New panics on origins without a scheme.
		if o == "" || (o != "*" && !strings.Contains(o, "://")) {
			continue
		}
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
		allowed = append(allowed, o)
	}
	if len(allowed) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}
	cfg.AllowOrigins = allowed
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
