// README: Shared handler utilities (JSON helpers, error-to-status mapping).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabswift/internal/modules/booking"
	"cabswift/internal/modules/pricing"
	"cabswift/internal/modules/rating"
	"cabswift/internal/modules/vehicle"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeDomainError(c *gin.Context, err error) {
	switch err {
	case booking.ErrBadRequest, vehicle.ErrBadRequest, pricing.ErrBadQuote, rating.ErrInvalidRating:
		writeError(c, http.StatusBadRequest, err.Error())
	case booking.ErrNotFound, vehicle.ErrNotFound, pricing.ErrPlanNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case booking.ErrInvalidState, booking.ErrConflict:
		writeError(c, http.StatusConflict, err.Error())
	case booking.ErrVehicleUnavailable, pricing.ErrPricingUnavailable:
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
