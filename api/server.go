package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"apploto/application"
	"apploto/config"
	"apploto/domain/entities"
	"apploto/infrastructure"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Dependencies are the collaborators the HTTP layer needs
type Dependencies struct {
	UoWFactory application.UnitOfWorkFactory
	Services   *application.ServiceFactory
	NameCache  *infrastructure.ParticipantNameCache // optional
	Workbook   *infrastructure.ResultsWorkbook
	Chart      *infrastructure.ResultsChart
	Receipts   *infrastructure.ReceiptRenderer
	Metrics    *HTTPMetrics // optional, enables /metrics
}

// Server is the lottery HTTP API
type Server struct {
	uowFactory application.UnitOfWorkFactory
	services   *application.ServiceFactory
	nameCache  *infrastructure.ParticipantNameCache
	workbook   *infrastructure.ResultsWorkbook
	chart      *infrastructure.ResultsChart
	receipts   *infrastructure.ReceiptRenderer
	metrics    *HTTPMetrics

	router  *gin.Engine
	handler http.Handler
	http    *http.Server
}

// NewServer builds the router and wraps it with CORS
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		uowFactory: deps.UoWFactory,
		services:   deps.Services,
		nameCache:  deps.NameCache,
		workbook:   deps.Workbook,
		chart:      deps.Chart,
		receipts:   deps.Receipts,
		metrics:    deps.Metrics,
		router:     gin.New(),
	}
	if s.workbook == nil {
		s.workbook = infrastructure.NewResultsWorkbook()
	}
	if s.chart == nil {
		s.chart = infrastructure.NewResultsChart(infrastructure.DefaultChartPalette())
	}
	if s.receipts == nil {
		s.receipts = infrastructure.NewReceiptRenderer(cfg.PublicSiteURL)
	}

	s.router.Use(gin.Recovery(), requestLogger())
	if s.metrics != nil {
		s.router.Use(s.metrics.middleware())
	}
	if cfg.RateLimitRPS > 0 {
		s.router.Use(rateLimit(NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))
	}
	s.registerRoutes()

	corsMW := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	s.handler = corsMW.Handler(s.router)

	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	r := s.router

	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	r.POST("/api/contact-us", s.contactUs)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.DELETE("/revoke-access", s.revokeAccess)
	authGroup.DELETE("/revoke-refresh", s.revokeRefresh)
	authGroup.GET("/role", s.authRequired(), s.role)

	user := r.Group("/api/user", s.authRequired())
	user.GET("/account", s.getAccount)
	user.PUT("/account", s.updateAccount)
	user.PUT("/password", s.updatePassword)
	user.POST("/logout", s.logout)
	user.POST("/entries", s.registerEntry)
	user.GET("/history", s.history)
	user.GET("/lotteries/current", s.currentLottery)
	user.GET("/lotteries/:id", s.getLottery)
	user.GET("/lotteries/:id/result", s.getResult)
	user.GET("/lotteries/:id/rankings", s.getRankings)
	user.GET("/lotteries/:id/receipt.png", s.receipt)

	r.POST("/api/admin/login", s.adminLogin)
	admin := r.Group("/api/admin", s.authRequired(), requireRole(entities.RoleAdmin))
	admin.GET("/account", s.getAccount)
	admin.PUT("/account", s.updateAccount)
	admin.PUT("/password", s.updatePassword)
	admin.POST("/logout", s.logout)
	admin.POST("/lotteries", s.createLottery)
	admin.GET("/lotteries", s.listLotteries)
	admin.GET("/lotteries/:id", s.getLottery)
	admin.GET("/lotteries/:id/participants", s.listParticipants)
	admin.POST("/lotteries/:id/participants", s.addParticipant)
	admin.DELETE("/lotteries/:id/participants/:userId", s.removeParticipant)
	admin.POST("/lotteries/:id/finalize", s.finalize)
	admin.GET("/lotteries/:id/rankings", s.getRankings)
	admin.GET("/lotteries/:id/rankings.xlsx", s.rankingsWorkbook)
	admin.GET("/lotteries/:id/chart.png", s.rankingsChart)
	admin.POST("/simulations", s.simulate)
}

// Handler returns the CORS-wrapped router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// inUnitOfWork runs fn in a transaction bound to the request context
func (s *Server) inUnitOfWork(c *gin.Context, fn func(ctx context.Context, uow application.UnitOfWork) error) error {
	ctx := c.Request.Context()
	return application.RunInUnitOfWork(ctx, s.uowFactory, func(uow application.UnitOfWork) error {
		return fn(ctx, uow)
	})
}
