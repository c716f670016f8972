package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copytrade/internal/repository"
	"copytrade/internal/service"
)

// PortfolioHandler exposes live holdings and the recorded snapshot history.
type PortfolioHandler struct {
	Positions *service.PositionService
	Repo      repository.Repository
	Logger    *zap.Logger
}

func (h *PortfolioHandler) Register(r *gin.Engine) {
	group := r.Group("/api/portfolio")
	group.GET("/holdings", h.holdings)
	group.GET("/snapshots", h.snapshots)
}

func (h *PortfolioHandler) holdings(c *gin.Context) {
	if h.Positions == nil {
		Error(c, http.StatusServiceUnavailable, "positions unavailable", nil)
		return
	}
	holdings, err := h.Positions.Holdings(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("query holdings failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, holdings, map[string]any{"count": len(holdings)})
}

func (h *PortfolioHandler) snapshots(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	items, err := h.Repo.ListPortfolioSnapshots(c.Request.Context(), limit)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
