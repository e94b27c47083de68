// Package api is the JSON HTTP surface shared by the client, driver,
// wholesale and admin portals.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"entregas/config"
	"entregas/pkg/logger"
	"entregas/pkg/metrics"
	"entregas/pkg/models"
	"entregas/pkg/ratelimit"
	"entregas/pkg/realtime"
	"entregas/service"
)

type Server struct {
	cfg     config.Config
	svc     service.IServiceManager
	hub     *realtime.Hub
	limiter *ratelimit.Store
	log     logger.ILogger
	engine  *gin.Engine
	srv     *http.Server
}

func New(cfg config.Config, svc service.IServiceManager, hub *realtime.Hub, limiter *ratelimit.Store, log logger.ILogger) *Server {
	s := &Server{
		cfg:     cfg,
		svc:     svc,
		hub:     hub,
		limiter: limiter,
		log:     log,
	}
	s.engine = s.routes()
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Run() error {
	s.log.Info("http server listening", logger.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), cors(s.cfg.CORSOrigins), metrics.Middleware(), accessLog(s.log))
	if s.limiter != nil {
		r.Use(ratelimit.Middleware(s.limiter))
	}

	r.GET("/health", func(c *gin.Context) { ok(c, gin.H{"status": "up"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	a := r.Group("/auth")
	{
		a.POST("/signup", s.signUp)
		a.POST("/signin", s.signIn)
	}

	v := r.Group("/validate")
	{
		v.POST("/document", s.validateDocument)
		v.POST("/phone", s.validatePhone)
		v.POST("/cep", s.validateCEP)
	}

	authed := r.Group("", s.authRequired())
	{
		authed.GET("/me", s.me)
		authed.PATCH("/me", s.updateMe)
		authed.POST("/me/telegram", s.telegramLinkCode)
		authed.GET("/me/notifications", s.listNotifications)
		authed.GET("/me/notifications/unread", s.unreadCount)
		authed.POST("/me/notifications/read-all", s.markAllRead)
		authed.POST("/me/notifications/:id/read", s.markRead)
		authed.GET("/ws", s.serveWS)
		authed.GET("/tariffs", s.listActiveTariffs)
		authed.GET("/tariffs/:id/quote", s.quote)
	}

	orders := r.Group("/orders", s.authRequired(models.RoleClient, models.RoleWholesale))
	{
		orders.POST("", s.createOrder)
		orders.GET("", s.listMyOrders)
		orders.GET("/:id", s.getOrder)
		orders.POST("/:id/cancel", s.cancelOrder)
		orders.POST("/:id/rating", s.rateOrder)
	}

	d := r.Group("/driver", s.authRequired(models.RoleDriver))
	{
		d.GET("/orders/available", s.availableOrders)
		d.GET("/orders/:id", s.getOrder)
		d.POST("/orders/:id/accept", s.acceptOrder)
		d.GET("/deliveries", s.listDeliveries)
		d.POST("/deliveries/:id/pickup", s.pickUp)
		d.POST("/deliveries/:id/complete", s.complete)
		d.GET("/balance", s.balance)
		d.GET("/withdrawals", s.listWithdrawals)
		d.POST("/withdrawals", s.requestWithdrawal)
		d.GET("/rank", s.rank)
		d.GET("/ratings", s.myRatings)
		d.GET("/vehicle", s.getVehicle)
		d.PUT("/vehicle", s.setVehicle)
		d.GET("/leaderboard", s.leaderboard)
	}

	adm := r.Group("/admin", s.authRequired(models.RoleAdmin))
	{
		adm.GET("/dashboard", s.dashboard)

		adm.GET("/profiles", s.listProfiles)
		adm.GET("/profiles/:id", s.getProfile)
		adm.POST("/profiles/:id/approve", s.approveProfile)
		adm.POST("/profiles/:id/block", s.blockProfile)
		adm.POST("/profiles/:id/unblock", s.unblockProfile)

		adm.GET("/tariffs", s.listAllTariffs)
		adm.POST("/tariffs", s.createTariff)
		adm.PUT("/tariffs/:id", s.updateTariff)
		adm.DELETE("/tariffs/:id", s.deleteTariff)

		adm.GET("/orders", s.listAllOrders)
		adm.GET("/orders/:id", s.getOrder)
		adm.POST("/orders/:id/cancel", s.cancelOrder)

		adm.GET("/withdrawals", s.listWithdrawalsByStatus)
		adm.POST("/withdrawals/:id/approve", s.approveWithdrawal)
		adm.POST("/withdrawals/:id/reject", s.rejectWithdrawal)
		adm.POST("/withdrawals/:id/paid", s.markWithdrawalPaid)
	}

	return r
}
