package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrokernel/imperium/internal/domain/shared"
)

// respondData writes the success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError maps a domain error to the error envelope with the canonical
// failure code and, for structured failures, a details payload
func respondError(c *gin.Context, err error) {
	code := shared.CodeOf(err)

	envelope := gin.H{
		"success": false,
		"code":    string(code),
		"message": err.Error(),
	}
	if details := errorDetails(err); details != nil {
		envelope["details"] = details
	}
	if code == shared.CodeDBError {
		// Do not leak storage internals to clients
		envelope["message"] = "internal storage error"
	}

	c.JSON(httpStatus(code), envelope)
}

// httpStatus maps canonical failure codes to HTTP status codes
func httpStatus(code shared.ErrorCode) int {
	switch code {
	case shared.CodeNotFound, shared.CodeNotOwner:
		return http.StatusNotFound
	case shared.CodeAlreadyInProgress:
		return http.StatusConflict
	case shared.CodeDBError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// errorDetails extracts the structured payload carried by rich domain errors
func errorDetails(err error) interface{} {
	switch e := err.(type) {
	case *shared.TechRequirementsError:
		return gin.H{"unmet": e.Unmet}
	case *shared.CapacityError:
		return gin.H{"required": e.Required, "available": e.Available}
	case *shared.InsufficientFundsError:
		return gin.H{"required": e.Required, "available": e.Available}
	case *shared.InsufficientEnergyError:
		return e
	case *shared.AlreadyInProgressError:
		return gin.H{
			"queueType":   e.QueueType,
			"identityKey": e.IdentityKey,
			"catalogKey":  e.CatalogKey,
			"existing":    e.Existing,
		}
	}
	return nil
}
