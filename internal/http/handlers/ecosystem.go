package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/http/response"
	"github.com/yungbote/response-validator/internal/ingestion/manifest"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/platform/logger"
	"github.com/yungbote/response-validator/internal/services"
)

const maxImportBytes = 64 << 20

const importUsage = "Could not process input. Provide either a location of a YAML file, " +
	"a string of YAML content, or a book_id and question_list"

type EcosystemHandler struct {
	log *logger.Logger
	eco *services.EcosystemService
}

func NewEcosystemHandler(log *logger.Logger, eco *services.EcosystemService) *EcosystemHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &EcosystemHandler{log: log.With("handler", "EcosystemHandler"), eco: eco}
}

type importRequest struct {
	Filename     string                     `json:"filename"`
	YAMLString   string                     `json:"yaml_string"`
	BookID       string                     `json:"book_id"`
	BookName     string                     `json:"book_name"`
	QuestionList []manifest.ContentExercise `json:"question_list"`
}

// POST /import
//
// Accepts a multipart "file", a raw YAML body, or a JSON object naming a
// manifest file, inline YAML, or a book id with its exercises.
func (h *EcosystemHandler) Import(c *gin.Context) {
	const op = "http.Import"
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	ctx := c.Request.Context()

	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	var (
		sum *services.ImportSummary
		err error
	)
	switch {
	case mediaType == "multipart/form-data":
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, importUsage, ferr))
			return
		}
		f, ferr := fh.Open()
		if ferr != nil {
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "could not open uploaded file", ferr))
			return
		}
		defer f.Close()
		sum, err = h.eco.ImportManifest(ctx, f)

	case isYAML(mediaType):
		body, rerr := io.ReadAll(c.Request.Body)
		if rerr != nil {
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "could not read request body", rerr))
			return
		}
		if len(strings.TrimSpace(string(body))) == 0 {
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, importUsage, nil))
			return
		}
		sum, err = h.eco.ImportBytes(ctx, body)

	default:
		var req importRequest
		if derr := json.NewDecoder(c.Request.Body).Decode(&req); derr != nil && !errors.Is(derr, io.EOF) {
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, "Unable to load import request as json.", derr))
			return
		}
		switch {
		case strings.TrimSpace(req.Filename) != "":
			sum, err = h.eco.ImportFile(ctx, strings.TrimSpace(req.Filename))
		case strings.TrimSpace(req.YAMLString) != "":
			sum, err = h.eco.ImportBytes(ctx, []byte(req.YAMLString))
		case strings.TrimSpace(req.BookID) != "" && len(req.QuestionList) > 0:
			sum, err = h.eco.ImportContent(ctx, strings.TrimSpace(req.BookID), req.BookName, req.QuestionList)
		default:
			response.RespondAppError(c, apperr.New(apperr.CodeInvalidArgument, op, importUsage, nil))
			return
		}
	}
	if err != nil {
		h.log.Warn("Import failed", "error", err)
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"msg":   "Ecosystem successfully imported",
		"books": sum.Books,
	})
}

func isYAML(mediaType string) bool {
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
