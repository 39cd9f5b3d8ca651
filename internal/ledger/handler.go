package ledger

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cvconvert-backend/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
	rg.GET("/usage/summary", h.getSummary)
	rg.GET("/usage/duplicate", h.getDuplicate)
}

func (h *Handler) getUsage(c *gin.Context) {
	total, err := h.Svc.TotalCount(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	month, err := h.Svc.CurrentMonthCount(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"totalCount":        total,
		"currentMonthCount": month,
	})
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.Svc.MonthlySummary(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"months": summary})
}

func (h *Handler) getDuplicate(c *gin.Context) {
	hash := c.Query("hash")
	if hash == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "hash is required", nil)
		return
	}

	dup, at, err := h.Svc.IsDuplicate(c.Request.Context(), hash)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	resp := gin.H{"duplicate": dup}
	if dup {
		resp["convertedAt"] = at
	}
	respond.JSON(c, http.StatusOK, resp)
}

func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read usage ledger", nil)
	}
}
