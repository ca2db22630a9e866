package middleware

import (
	"strconv"
	"strings"

	"github.com/yourusername/blaze/pkg/blaze/core"
	"github.com/yourusername/blaze/pkg/blaze/http11"
)

// CORSConfig configures the CORS middleware. Grounded on
// bolt/middleware/cors.go's CORSConfig, trimmed of the JSON-response
// preflight body (this engine has no JSON helper, §1 Non-goals).
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig mirrors bolt/middleware/cors.go's DefaultCORSConfig.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"*"},
		MaxAge:       86400,
	}
}

// CORS returns a middleware handling Cross-Origin Resource Sharing using
// DefaultCORSConfig. Grounded on bolt/middleware/cors.go's CORS/CORSWithConfig.
func CORS() core.Middleware {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a CORS middleware with explicit configuration.
func CORSWithConfig(config CORSConfig) core.Middleware {
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"*"}
	}
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}
	}
	if len(config.AllowHeaders) == 0 {
		config.AllowHeaders = []string{"*"}
	}
	if config.MaxAge == 0 {
		config.MaxAge = 86400
	}

	allowMethods := strings.Join(config.AllowMethods, ", ")
	allowHeaders := strings.Join(config.AllowHeaders, ", ")
	exposeHeaders := strings.Join(config.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)

	allowAllOrigins := false
	originSet := make(map[string]bool, len(config.AllowOrigins))
	for _, origin := range config.AllowOrigins {
		if origin == "*" {
			allowAllOrigins = true
			break
		}
		originSet[origin] = true
	}

	return func(ctx *core.Context, next core.Handler, cancel <-chan struct{}) error {
		origin := ctx.Request.Header.Get("Origin")

		var allowOrigin string
		switch {
		case allowAllOrigins:
			allowOrigin = "*"
		case origin != "" && originSet[origin]:
			allowOrigin = origin
		}

		if allowOrigin != "" {
			ctx.Response.Header.Add("Access-Control-Allow-Origin", allowOrigin)
			if config.AllowCredentials {
				ctx.Response.Header.Add("Access-Control-Allow-Credentials", "true")
			}
			if len(config.ExposeHeaders) > 0 {
				ctx.Response.Header.Add("Access-Control-Expose-Headers", exposeHeaders)
			}
		}

		if ctx.Request.Method == http11.MethodOPTIONS {
			if allowOrigin != "" {
				ctx.Response.Header.Add("Access-Control-Allow-Methods", allowMethods)
				ctx.Response.Header.Add("Access-Control-Allow-Headers", allowHeaders)
				ctx.Response.Header.Add("Access-Control-Max-Age", maxAge)
			}
			ctx.Response.Status = 204
			ctx.Response.Reason = "No Content"
			return nil
		}

		return next(ctx, cancel)
	}
}
