package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/http"
	httpH "github.com/yungbote/response-validator/internal/http/handlers"
)

func routerConfig(a *App) http.RouterConfig {
	svc := a.Services
	serviceName := ""
	if a.Cfg.Otel.Enabled {
		serviceName = a.Cfg.Otel.ServiceName
	}
	return http.RouterConfig{
		Log:                  a.Log,
		Metrics:              a.Metrics,
		ServiceName:          serviceName,
		CORSOrigins:          a.Cfg.CORSOrigins,
		HealthHandler:        httpH.NewHealthHandler(a.started, Version, svc.Ecosystem, svc.FeatureWeights),
		EcosystemHandler:     httpH.NewEcosystemHandler(a.Log, svc.Ecosystem),
		DatasetHandler:       httpH.NewDatasetHandler(svc.Ecosystem, svc.FeatureWeights),
		FeatureWeightHandler: httpH.NewFeatureWeightHandler(a.Log, svc.FeatureWeights),
		ValidateHandler:      httpH.NewValidateHandler(svc.Validator),
	}
}

func wireRouter(a *App) *gin.Engine {
	a.Log.Info("Wiring router...")
	return http.NewRouter(routerConfig(a))
}

func httpServer(a *App) *http.Server {
	return &http.Server{Engine: a.Router}
}
