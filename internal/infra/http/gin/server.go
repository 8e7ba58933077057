package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"travelquote/internal/infra/config"
	"travelquote/internal/infra/obs"
)

const serviceName = "travelquote"

type QuoteHTTP interface {
	Stream(c *gin.Context)
	ByProvider(c *gin.Context)
	Select(c *gin.Context)
	Reject(c *gin.Context)
	Statistics(c *gin.Context)
	Issue(c *gin.Context)
}

type PricingHTTP interface {
	Preview(c *gin.Context)
}

type ProviderHTTP interface {
	List(c *gin.Context)
}

type Handlers struct {
	Quotes    QuoteHTTP
	Pricing   PricingHTTP
	Providers ProviderHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine without binding an address.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.Tracing(serviceName))
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Last-Event-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Quotes != nil {
		quotes := api.Group("/quotes")
		quotes.GET("", h.Quotes.Stream)
		quotes.POST("", h.Quotes.Issue)
		quotes.GET("/statistics", h.Quotes.Statistics)
		quotes.GET("/providers/:providerId", h.Quotes.ByProvider)
		quotes.POST("/:id/select", h.Quotes.Select)
		quotes.POST("/:id/reject", h.Quotes.Reject)
	}
	if h.Pricing != nil {
		api.POST("/pricing/premium", h.Pricing.Preview)
	}
	if h.Providers != nil {
		api.GET("/providers", h.Providers.List)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
