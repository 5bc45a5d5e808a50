package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/response-validator/internal/http/handlers"
	httpMW "github.com/yungbote/response-validator/internal/http/middleware"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler        *httpH.HealthHandler
	EcosystemHandler     *httpH.EcosystemHandler
	DatasetHandler       *httpH.DatasetHandler
	FeatureWeightHandler *httpH.FeatureWeightHandler
	ValidateHandler      *httpH.ValidateHandler
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

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/status", cfg.HealthHandler.Status)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Import
	if cfg.EcosystemHandler != nil {
		r.POST("/import", cfg.EcosystemHandler.Import)
	}

	datasets := r.Group("/datasets")
	{
		if cfg.DatasetHandler != nil {
			datasets.GET("/books", cfg.DatasetHandler.ListBooks)
			datasets.GET("/books/:vuid", cfg.DatasetHandler.GetBook)
			datasets.GET("/books/:vuid/pages", cfg.DatasetHandler.ListPages)
			datasets.GET("/books/:vuid/pages/:page", cfg.DatasetHandler.GetPage)
			datasets.GET("/books/:vuid/vocabularies", cfg.DatasetHandler.ListVocabularies)
			datasets.GET("/books/:vuid/vocabularies/:kind", cfg.DatasetHandler.GetVocabulary)
			datasets.GET("/books/:vuid/vocabularies/:kind/:page", cfg.DatasetHandler.GetPageVocabulary)
			datasets.GET("/questions", cfg.DatasetHandler.ListQuestions)
			datasets.GET("/questions/:uid", cfg.DatasetHandler.GetQuestions)
		}

		if cfg.FeatureWeightHandler != nil {
			datasets.POST("/feature_weights", cfg.FeatureWeightHandler.Create)
			datasets.GET("/feature_weights", cfg.FeatureWeightHandler.List)
			datasets.GET("/feature_weights/default", cfg.FeatureWeightHandler.GetDefault)
			datasets.PUT("/feature_weights/default", cfg.FeatureWeightHandler.SetDefault)
			datasets.GET("/feature_weights/:id", cfg.FeatureWeightHandler.Get)
			datasets.GET("/books/:vuid/feature_weights_id", cfg.FeatureWeightHandler.GetBookDefault)
			datasets.PUT("/books/:vuid/feature_weights_id", cfg.FeatureWeightHandler.SetBookDefault)
		}
	}

	// Validation
	if cfg.ValidateHandler != nil {
		r.GET("/validate", cfg.ValidateHandler.Validate)
		r.POST("/validate", cfg.ValidateHandler.Validate)
		r.POST("/validate/batch", cfg.ValidateHandler.ValidateBatch)
	}

	return r
}
