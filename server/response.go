package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/riv/errors"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries list metadata.
type Meta struct {
	Total int `json:"total"`
}

// RespondWithError writes err as an errors.ErrorResponse. The status
// follows the error code, except that a missing input file is a 404.
// Errors outside the taxonomy become GENERAL.
func RespondWithError(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	status := errors.HTTPStatus(appErr.Code)
	if appErr.IOKind == errors.IOKindNotFound {
		status = http.StatusNotFound
	}
	c.JSON(status, appErr.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}
