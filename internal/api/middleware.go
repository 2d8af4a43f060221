package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"partnerhub/internal/service"
	"partnerhub/internal/util"
	"partnerhub/pkg/metrics"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// store the caller identity so handlers can build the engine context
		c.Set("leader_id", claims.LeaderID)
		c.Set("leader_email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)

		c.Next()
	}
}

// CronAuthMiddleware guards the scheduler trigger with a shared secret. An
// empty secret disables the guard and accepts any caller.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		token := util.ExtractToken(c.Request)
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MetricsMiddleware records request latency per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// callerFrom builds the engine caller context from the middleware values.
func callerFrom(c *gin.Context) service.Caller {
	caller := service.Caller{}
	if v, ok := c.Get("leader_id"); ok {
		caller.LeaderID = v.(int)
	}
	if v, ok := c.Get("is_admin"); ok {
		caller.IsAdmin = v.(bool)
	}
	if v, ok := c.Get("leader_email"); ok {
		caller.Email = v.(string)
	}
	return caller
}
