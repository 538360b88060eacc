package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/collections-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps a classified error onto its HTTP status. Internal
// errors are reported generically; their cause belongs in the logs.
func RespondAPIError(c *gin.Context, err error) {
	code := apierr.CodeOf(err)
	status := apierr.HTTPStatus(code)
	var ae *apierr.Error
	switch {
	case code == apierr.CodeInternal:
		RespondError(c, status, string(code), errors.New("internal server error"))
	case errors.As(err, &ae) && ae.Message != "":
		RespondError(c, status, string(code), errors.New(ae.Message))
	default:
		RespondError(c, status, string(code), err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
