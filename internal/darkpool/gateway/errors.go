package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	derrors "github.com/darkpool-labs/darkpoolcore/internal/darkpool/errors"
)

// errorEnvelope is the JSON shape returned for every non-2xx response.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError maps a core error to the HTTP status table in spec §7 via
// errors.HTTPStatus and writes the JSON envelope. Errors that are not a
// *DarkpoolError (e.g. binding failures) fall back to 400.
func respondError(c *gin.Context, err error) {
	code := derrors.Code(err)
	status := derrors.HTTPStatus(code)
	if code == "" {
		status = http.StatusBadRequest
	}
	c.JSON(status, errorEnvelope{Error: err.Error(), Code: string(code)})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorEnvelope{Error: err.Error(), Code: string(derrors.ValidationError)})
}
