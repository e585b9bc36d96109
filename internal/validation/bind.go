package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BindOrder decodes the JSON body into out. If the body is not JSON, it
// writes a 400 response and returns the error for the handler to short-circuit.
// An empty body binds to the zero RawOrder and is left to validation.
func BindOrder(c *gin.Context, out *RawOrder) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":    false,
			"error": "Invalid JSON body",
		})
		return err
	}
	return nil
}
