package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/http/response"
	"github.com/yungbote/response-validator/internal/services"
)

type HealthHandler struct {
	started time.Time
	version string
	eco     *services.EcosystemService
	fw      *services.FeatureWeightService
}

func NewHealthHandler(started time.Time, version string, eco *services.EcosystemService, fw *services.FeatureWeightService) *HealthHandler {
	return &HealthHandler{started: started, version: version, eco: eco, fw: fw}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type statusBook struct {
	Name             string `json:"name"`
	VUID             string `json:"vuid"`
	FeatureWeightsID string `json:"feature_weights_id"`
}

// GET /status
func (h *HealthHandler) Status(c *gin.Context) {
	books := []statusBook{}
	if h.eco != nil {
		for _, b := range h.eco.Snapshot().Books() {
			sb := statusBook{Name: b.Name, VUID: b.VUID}
			if h.fw != nil {
				sb.FeatureWeightsID = h.fw.EffectiveBookDefault(b.VUID)
			}
			books = append(books, sb)
		}
	}
	sets := []string{}
	if h.fw != nil {
		for _, rec := range h.fw.List() {
			sets = append(sets, rec.ID)
		}
	}
	response.RespondOK(c, gin.H{
		"started": h.started.Format(time.ANSIC),
		"version": gin.H{"version": h.version},
		"datasets": gin.H{
			"books":           books,
			"feature_weights": sets,
		},
	})
}
