package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/http/response"
	"github.com/yungbote/response-validator/internal/normalization"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/services"
)

const (
	maxValidateBytes = 4 << 20
	maxBatchSize     = 1000
)

var optionParams = []string{"remove_stopwords", "tag_numeric", "spelling_correction", "remove_nonwords"}

type ValidateHandler struct {
	validator *services.Validator
}

func NewValidateHandler(v *services.Validator) *ValidateHandler {
	return &ValidateHandler{validator: v}
}

// GET|POST /validate
//
// Parameters come from the query string, a form body, or a JSON object.
func (h *ValidateHandler) Validate(c *gin.Context) {
	req, err := validationRequest(c)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	res, err := h.validator.Validate(c.Request.Context(), req)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type batchEntry struct {
	*services.ValidationResult
	Error *response.APIError `json:"error,omitempty"`
}

// POST /validate/batch
func (h *ValidateHandler) ValidateBatch(c *gin.Context) {
	const op = "http.ValidateBatch"
	var reqs []services.ValidationRequest
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxValidateBytes))
	if err := dec.Decode(&reqs); err != nil {
		response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "batch must be a JSON list of validation requests", err))
		return
	}
	if len(reqs) > maxBatchSize {
		response.RespondAppError(c, apperr.Newf(apperr.CodeInvalidArgument, op, "batch exceeds %d requests", maxBatchSize))
		return
	}
	items := h.validator.ValidateBatch(c.Request.Context(), reqs)
	out := make([]batchEntry, len(items))
	for i, it := range items {
		if it.Err != nil {
			out[i] = batchEntry{Error: &response.APIError{
				Message: apperr.MessageOf(it.Err),
				Code:    string(apperr.CodeOf(it.Err)),
			}}
			continue
		}
		out[i] = batchEntry{ValidationResult: it.Result}
	}
	response.RespondOK(c, out)
}

func validationRequest(c *gin.Context) (services.ValidationRequest, error) {
	const op = "http.Validate"
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if c.Request.Method == http.MethodPost && mediaType == "application/json" {
		var req services.ValidationRequest
		dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxValidateBytes))
		if err := dec.Decode(&req); err != nil {
			return req, apperr.New(apperr.CodeInvalidArgument, op, "Unable to load validation request as json.", err)
		}
		return req, nil
	}

	param := func(key string) (string, bool) {
		if v, ok := c.GetQuery(key); ok {
			return v, true
		}
		return c.GetPostForm(key)
	}
	text, ok := param("response")
	if !ok {
		return services.ValidationRequest{}, apperr.New(apperr.CodeInvalidArgument, op, "response is required", nil)
	}
	raw := make(map[string]string, len(optionParams))
	for _, k := range optionParams {
		if v, ok := param(k); ok {
			raw[k] = v
		}
	}
	opts, err := normalization.ParseOptions(raw)
	if err != nil {
		return services.ValidationRequest{}, apperr.New(apperr.CodeInvalidArgument, op, err.Error(), err)
	}
	uid, _ := param("uid")
	book, _ := param("book_vuid")
	fw, _ := param("feature_weights_set_id")
	return services.ValidationRequest{
		Response:         text,
		UID:              strings.TrimSpace(uid),
		BookVUID:         strings.TrimSpace(book),
		Options:          opts,
		FeatureWeightsID: strings.TrimSpace(fw),
	}, nil
}
