package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"copytrade/internal/repository"
)

// TargetChangeHandler exposes the model-portfolio change journal.
type TargetChangeHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *TargetChangeHandler) Register(r *gin.Engine) {
	group := r.Group("/api/targets")
	group.GET("/changes", h.list)
}

func (h *TargetChangeHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	items, err := h.Repo.ListTargetChanges(c.Request.Context(), repository.ListTargetChangesParams{
		Limit:     limit,
		Offset:    offset,
		StockCode: strQueryPtr(c, "stock_code"),
		Market:    strQueryPtr(c, "market"),
	})
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("list target changes failed", zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
