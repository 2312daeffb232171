package http

import (
	"io"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sutra/internal/config"
	"sutra/internal/observability"
)

// RouterDeps carries everything the router wires into its handlers.
type RouterDeps struct {
	Processor TaskProcessor
	Config    config.ServerConfig
	// Logger receives the access log and handler errors, tagged with the
	// request ID.
	Logger  *observability.Logger
	Metrics *observability.MetricsCollector
	Tracer  *observability.TracerProvider
}

// NewRouter creates the gin engine with all endpoints.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Logger == nil {
		deps.Logger = observability.NewLogger(observability.LogConfig{Output: io.Discard})
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if deps.Config.EnableCORS {
		engine.Use(cors.New(corsConfig(deps.Config.AllowedOrigins)))
	}
	engine.Use(RequestIDMiddleware())
	engine.Use(ObservabilityMiddleware(deps.Logger, deps.Metrics, deps.Tracer))

	handler := NewAPIHandler(deps.Processor, deps.Logger, deps.Config.MaxBodyBytes)

	if deps.Config.IndexFile != "" {
		engine.StaticFile("/", deps.Config.IndexFile)
	}

	api := engine.Group("/api")
	{
		api.GET("/health", handler.HandleHealth)
		api.POST("/evaluate", handler.HandleEvaluate)
		api.GET("/test/:risk_type", handler.HandleSample)
	}

	if deps.Metrics.Enabled() {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	return engine
}

func corsConfig(allowedOrigins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", RequestIDHeader}
	corsCfg.ExposeHeaders = []string{RequestIDHeader}
	return corsCfg
}
