package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/stoplight-backend/internal/http/handlers"
	httpMW "github.com/yungbote/stoplight-backend/internal/http/middleware"
	"github.com/yungbote/stoplight-backend/internal/observability"
	"github.com/yungbote/stoplight-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	// ServiceName enables otelgin spans when non-empty.
	ServiceName     string
	CORSOrigins     []string
	MaxRequestBytes int64

	EmbeddingHandler *httpH.EmbeddingHandler
	DatasetHandler   *httpH.DatasetHandler
	RunHandler       *httpH.RunHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Legacy routes used by the existing dashboard.
	if cfg.EmbeddingHandler != nil {
		r.POST("/umap", cfg.EmbeddingHandler.Compute)
		r.POST("/recalculate-umap", cfg.EmbeddingHandler.Recompute)
	}

	api := r.Group("/api")
	{
		if cfg.EmbeddingHandler != nil {
			api.POST("/embeddings", cfg.EmbeddingHandler.Compute)
			api.POST("/embeddings/recompute", cfg.EmbeddingHandler.Recompute)
		}
		if cfg.DatasetHandler != nil {
			api.GET("/datasets", cfg.DatasetHandler.List)
		}
		if cfg.RunHandler != nil {
			api.GET("/runs", cfg.RunHandler.List)
		}
	}

	return r
}
