package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/response-validator/internal/platform/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Message is the acknowledgement body of mutating routes.
type Message struct {
	Msg string `json:"msg"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = apperr.MessageOf(err)
	}
	c.JSON(status, APIError{
		Message: msg,
		Code:    code,
	})
}

// RespondAppError derives the status and code from an apperr code.
func RespondAppError(c *gin.Context, err error) {
	code := string(apperr.CodeOf(err))
	if code == "" {
		code = string(apperr.CodeInternal)
	}
	RespondError(c, apperr.HTTPStatus(err), code, err)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
