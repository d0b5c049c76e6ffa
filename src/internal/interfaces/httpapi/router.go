package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"go.uber.org/zap"
)

// RouterConfig HTTP 路由設定
type RouterConfig struct {
	Version     string
	CORSOrigins []string
	QRCode      QRCodeConfig
}

// Dependencies 路由需要的 use case 與基礎設施
//
// Health 與 Metrics 可為 nil。
type Dependencies struct {
	Redeemer    TokenRedeemer
	Issuer      TokenIssuer
	StatusQuery TokenStatusQuery
	Claimer     DiscountClaimer
	Registrar   CustomerRegistrar
	Auth        *Authenticator
	Health      func(ctx context.Context) error
	Metrics     http.Handler
}

// NewRouter 組裝 gin engine
func NewRouter(cfg RouterConfig, deps Dependencies, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logging.GinMiddleware(log))
	engine.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	engine.GET("/health", healthHandler(cfg.Version, deps.Health))
	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := engine.Group("/api")
	NewCheckinHandler(deps.Redeemer).RegisterRoutes(api)
	NewVisitTokenHandler(deps.Issuer, deps.StatusQuery, deps.Auth, cfg.QRCode).RegisterRoutes(api)
	NewDiscountHandler(deps.Claimer, deps.Auth).RegisterRoutes(api)
	NewCustomerHandler(deps.Registrar, deps.Auth).RegisterRoutes(api)

	return engine
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", logging.RequestIDHeader)
	config.ExposeHeaders = []string{logging.RequestIDHeader}
	config.MaxAge = 12 * time.Hour

	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func healthHandler(version string, check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	}
}
