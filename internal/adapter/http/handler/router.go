package handler

import (
	"balance-topup-service/internal/adapter/http/middleware"
	redisStore "balance-topup-service/internal/adapter/storage/redis"
	"balance-topup-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc            ports.AuthService
	Registry           ports.PaymentMethodRegistry
	TopUpSvc           ports.TopUpService
	BalanceSvc         ports.BalanceService
	ReportingSvc       ports.ReportingService
	SigSvc             ports.SignatureService
	NonceStore         ports.NonceStore
	TokenSvc           ports.TokenService
	InternalAuthSecret string
	RateLimitStore     *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers     []ports.HealthChecker
	AuditSvc           ports.AuditService // nil = audit logging disabled
	Logger             zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes (seller settings UI) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	settingsHandler := NewSettingsHandler(deps.Registry, deps.ReportingSvc)
	topUpHandler := NewTopUpHandler(deps.TopUpSvc, deps.ReportingSvc)

	settings := v1.Group("/settings", jwtAuth)
	{
		settings.GET("/balance", rl("settings"), settingsHandler.GetBalance)
		settings.POST("/payment_methods", rl("settings"), settingsHandler.AttachMethod)
		settings.GET("/payment_methods", rl("settings"), settingsHandler.ListMethods)
		settings.DELETE("/payment_methods/:id", rl("settings"), settingsHandler.DetachMethod)
		settings.PUT("/payment_methods/:id/default", rl("settings"), settingsHandler.SetDefaultMethod)
	}

	topups := v1.Group("/topups", jwtAuth)
	{
		topups.POST("", rl("topups"), topUpHandler.CreateTopUp)
		topups.GET("", rl("topups"), topUpHandler.ListTopUps)
		topups.GET("/stats", rl("topups"), topUpHandler.GetStats)
	}

	// --- HMAC-authenticated routes (service-to-service) ---
	serviceAuth := middleware.ServiceAuth(deps.InternalAuthSecret, deps.SigSvc, deps.NonceStore, deps.Logger)
	internalHandler := NewInternalHandler(deps.BalanceSvc)

	internal := r.Group("/internal/v1", serviceAuth)
	{
		internal.POST("/refunds/ensure-covered", rl("internal"), internalHandler.EnsureCovered)
	}

	return r
}
