package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtrack/internal/errors"
	"subtrack/internal/services"
)

// RenewalHandler exposes the renewal batch job over HTTP so it can be
// triggered by a scheduler or operator in addition to the CLI entrypoint.
type RenewalHandler struct {
	renewalService services.RenewalServicer
}

// NewRenewalHandler creates a new RenewalHandler.
func NewRenewalHandler(renewalService services.RenewalServicer) *RenewalHandler {
	return &RenewalHandler{renewalService: renewalService}
}

// RenewalRunResponse represents the outcome of a renewal run
type RenewalRunResponse struct {
	Date    string `json:"date"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// RunRenewals triggers the renewal batch job
// @Summary     Run renewals
// @Description Process all active subscriptions due on or before the given date, booking one expense per subscription and advancing the next renewal date. Safe to run repeatedly: already-booked renewals are skipped.
// @Tags        renewals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       date query string false "Run date (YYYY-MM-DD, default today)"
// @Success     200 {object} RenewalRunResponse "Run outcome"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /renewals/run [post]
func (h *RenewalHandler) RunRenewals(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	today := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		parsed, err := parseFlexibleTime(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		today = parsed
	}

	created, skipped, err := h.renewalService.Run(today)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    today.Format("2006-01-02"),
		"created": created,
		"skipped": skipped,
	})
}
