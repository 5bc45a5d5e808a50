package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/http/response"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/services"
)

const maxWeightsBytes = 1 << 20

type FeatureWeightHandler struct {
	log *logger.Logger
	fw  *services.FeatureWeightService
}

func NewFeatureWeightHandler(log *logger.Logger, fw *services.FeatureWeightService) *FeatureWeightHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FeatureWeightHandler{log: log.With("handler", "FeatureWeightHandler"), fw: fw}
}

type weightSetAck struct {
	Msg              string `json:"msg"`
	FeatureWeightsID string `json:"feature_weight_set_id"`
}

func readBody(c *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWeightsBytes))
}

// POST /datasets/feature_weights
func (h *FeatureWeightHandler) Create(c *gin.Context) {
	const op = "http.CreateFeatureWeights"
	body, err := readBody(c)
	if err != nil || !json.Valid(body) {
		response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "Unable to load feature weights as json file.", err))
		return
	}
	id, created, err := h.fw.Store(c.Request.Context(), body)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	if created {
		h.log.Info("Feature weights stored", "feature_weights_id", id)
	}
	response.RespondOK(c, weightSetAck{Msg: "Feature weights successfully imported.", FeatureWeightsID: id})
}

type weightRegistryView struct {
	Default          string            `json:"default"`
	FeatureWeightIDs []string          `json:"feature_weights"`
	BookDefaults     map[string]string `json:"book_defaults"`
}

// GET /datasets/feature_weights
func (h *FeatureWeightHandler) List(c *gin.Context) {
	view := weightRegistryView{
		Default:          h.fw.GlobalDefault(),
		FeatureWeightIDs: []string{},
		BookDefaults:     map[string]string{},
	}
	for _, rec := range h.fw.List() {
		view.FeatureWeightIDs = append(view.FeatureWeightIDs, rec.ID)
	}
	for _, d := range h.fw.BookDefaults() {
		view.BookDefaults[d.Scope] = d.ID
	}
	response.RespondOK(c, view)
}

// GET /datasets/feature_weights/:id
func (h *FeatureWeightHandler) Get(c *gin.Context) {
	w, err := h.fw.Get(c.Param("id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, w.Map())
}

// GET /datasets/feature_weights/default
func (h *FeatureWeightHandler) GetDefault(c *gin.Context) {
	response.RespondOK(c, h.fw.GlobalDefault())
}

// readID decodes a bare JSON string body.
func readID(c *gin.Context, op string) (string, bool) {
	body, err := readBody(c)
	var id string
	if err == nil {
		err = json.Unmarshal(body, &id)
	}
	if err != nil {
		response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "Unable to load new default id as json file.", err))
		return "", false
	}
	return strings.TrimSpace(id), true
}

// respondDefaultError reports an unknown set id as a bad request, since the
// id arrived in the body rather than the path.
func respondDefaultError(c *gin.Context, op string, err error) {
	if apperr.IsCode(err, apperr.CodeNotFound) {
		response.RespondError(c, http.StatusBadRequest, string(apperr.CodeNotFound),
			apperr.New(apperr.CodeNotFound, op, "Feature weight id not found.", err))
		return
	}
	response.RespondAppError(c, err)
}

// PUT /datasets/feature_weights/default
func (h *FeatureWeightHandler) SetDefault(c *gin.Context) {
	const op = "http.SetDefaultFeatureWeights"
	id, ok := readID(c, op)
	if !ok {
		return
	}
	if err := h.fw.SetGlobalDefault(c.Request.Context(), id); err != nil {
		respondDefaultError(c, op, err)
		return
	}
	response.RespondOK(c, weightSetAck{Msg: "Successfully set default feature weight id.", FeatureWeightsID: id})
}

// PUT /datasets/books/:vuid/feature_weights_id
func (h *FeatureWeightHandler) SetBookDefault(c *gin.Context) {
	const op = "http.SetBookFeatureWeights"
	id, ok := readID(c, op)
	if !ok {
		return
	}
	if err := h.fw.SetBookDefault(c.Request.Context(), c.Param("vuid"), id); err != nil {
		respondDefaultError(c, op, err)
		return
	}
	response.RespondOK(c, weightSetAck{Msg: "Successfully set the book's default feature weight id.", FeatureWeightsID: id})
}

// GET /datasets/books/:vuid/feature_weights_id
func (h *FeatureWeightHandler) GetBookDefault(c *gin.Context) {
	response.RespondOK(c, h.fw.EffectiveBookDefault(c.Param("vuid")))
}
