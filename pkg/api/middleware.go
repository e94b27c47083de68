package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"entregas/pkg/logger"
	"entregas/pkg/models"
)

const (
	ctxRequestID = "request_id"
	ctxProfile   = "profile"
	headerReqID  = "X-Request-ID"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerReqID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerReqID, id)
		c.Next()
	}
}

func accessLog(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []logger.Field{
			logger.String("request_id", c.GetString(ctxRequestID)),
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("ip", c.ClientIP()),
		}
		if p := currentProfile(c); p != nil {
			fields = append(fields, logger.Int64("profile_id", p.ID))
		}
		if c.Writer.Status() >= 500 {
			log.Error("http request", fields...)
			return
		}
		log.Info("http request", fields...)
	}
}

func cors(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[strings.ToLower(origin)]; allowAll || ok {
			if allowAll {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				c.Writer.Header().Add("Vary", "Origin")
			}
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// authRequired resolves the bearer token to a profile and, when roles are
// given, requires one of them. The token may also come in the token query
// parameter because browsers cannot set headers on websocket upgrades.
func (s *Server) authRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			unauthorized(c, "missing or invalid token")
			return
		}

		p, err := s.svc.Auth().Resolve(c.Request.Context(), token)
		if err != nil {
			s.fail(c, err)
			return
		}

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if p.Role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				forbidden(c, "forbidden")
				return
			}
		}

		c.Set(ctxProfile, p)
		c.Next()
	}
}

func currentProfile(c *gin.Context) *models.Profile {
	v, ok := c.Get(ctxProfile)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Profile)
	return p
}
